package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// opTimeout bounds publish and subscribe acknowledgments.
	opTimeout = 5 * time.Second

	// disconnectQuiesce is the wait for pending operations on disconnect,
	// in milliseconds (paho API).
	disconnectQuiesce = 1000

	// keepAlive is the interval for broker liveness PINGs.
	keepAlive = 60 * time.Second

	// maxPayloadSize caps message payloads (aligns with broker defaults).
	maxPayloadSize = 1 << 20

	// maxQoS is the highest valid MQTT QoS level.
	maxQoS = 2
)

// MessageHandler is the callback signature for received messages. Handlers
// run in paho-managed goroutines and should not block for extended periods.
type MessageHandler func(topic string, payload []byte) error

// Client wraps a connected paho client. It is created by the guarded
// handle's connect function and only ever used while the handle is
// Available.
type Client struct {
	client   pahomqtt.Client
	clientID string
	qos      byte
}

// connectClient dials the broker described by desc.
//
// Unlike a long-lived paho setup there is no auto-reconnect and no connect
// retry: each call is one bounded attempt, and the gateway decides whether
// to try again. A Last Will message is still registered so subscribers can
// tell a crash from a graceful shutdown.
func connectClient(ctx context.Context, desc *gateway.Descriptor, cfg config.MQTTConfig, onLost func(error)) (*Client, error) {
	scheme := "tcp"
	if cfg.TLS || desc.Scheme == "ssl" || desc.Scheme == "mqtts" || desc.Scheme == "tls" {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s", scheme, desc.Target()))
	opts.SetClientID(cfg.ClientID)
	if desc.Username != "" || desc.Password != "" {
		opts.SetUsername(desc.Username)
		opts.SetPassword(desc.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetKeepAlive(keepAlive)
	if scheme == "ssl" {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		onLost(err)
	})

	// Last Will: broker publishes offline status if we vanish.
	opts.SetWill(Topics{}.SystemStatus(), statusPayload(cfg.ClientID, "offline", "unexpected_disconnect"), 1, true)

	c := &Client{
		client:   pahomqtt.NewClient(opts),
		clientID: cfg.ClientID,
		qos:      byte(cfg.QoS),
	}

	token := c.client.Connect()
	deadline, ok := ctx.Deadline()
	wait := opTimeout
	if ok {
		wait = time.Until(deadline)
	}
	if !token.WaitTimeout(wait) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, wait)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Announce ourselves on the retained status topic.
	c.client.Publish(Topics{}.SystemStatus(), 1, true, statusPayload(cfg.ClientID, "online", ""))

	return c, nil
}

// close publishes a graceful offline status and disconnects.
func (c *Client) close() {
	if c.client.IsConnected() {
		token := c.client.Publish(Topics{}.SystemStatus(), 1, true, statusPayload(c.clientID, "offline", "graceful_shutdown"))
		token.WaitTimeout(opTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)
}

// publish sends one message, waiting for the broker acknowledgment.
func (c *Client) publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, c.qos, retained, payload)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, opTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// subscribe registers handler for topic. Wildcards (+, #) are allowed.
func (c *Client) subscribe(topic string, handler MessageHandler, onHandlerErr func(topic string, err error)) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	wrapped := func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				onHandlerErr(msg.Topic(), fmt.Errorf("handler panic: %v", r))
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			onHandlerErr(msg.Topic(), err)
		}
	}

	token := c.client.Subscribe(topic, c.qos, wrapped)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, opTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// statusPayload renders the system status message.
func statusPayload(clientID, status, reason string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	if reason == "" {
		return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`, status, clientID, ts)
	}
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"reason":%q,"timestamp":%q}`, status, clientID, reason, ts)
}
