package mqtt

import (
	"context"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// dependencyName identifies the broker in logs, metrics, and health output.
const dependencyName = "mqtt"

// defaultPort is the standard plaintext MQTT port.
const defaultPort = 1883

// Events is the guarded event broker facade.
//
// Publish and Subscribe are total over the handle's state: they report
// false instead of erroring while the broker is unconfigured, connecting
// past the bounded wait, or unavailable.
type Events struct {
	handle *gateway.Handle[*Client]
	logger *logging.Logger
	topics Topics
}

// New creates the guarded event broker from configuration.
func New(cfg config.MQTTConfig, logger *logging.Logger, metrics *gateway.Metrics) (*Events, error) {
	desc := gateway.Parse(cfg.URL, defaultPortOr(cfg.Port))
	if desc == nil {
		desc = gateway.FromParts(cfg.Host, defaultPortOr(cfg.Port), cfg.Username, cfg.Password)
	}

	log := logger.With("component", "events")
	if desc != nil && desc.Opaque() {
		log.Warn("broker connection string is not URL-shaped, passing through verbatim",
			"target", desc.Redacted(),
		)
	}

	e := &Events{logger: log}

	handle, err := gateway.New(gateway.Options[*Client]{
		Name:       dependencyName,
		Descriptor: desc,
		Connect: func(ctx context.Context, d *gateway.Descriptor) (*Client, error) {
			return connectClient(ctx, d, cfg, func(lostErr error) {
				e.handle.Demote(lostErr)
			})
		},
		Close: func(client *Client) {
			client.close()
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	e.handle = handle

	return e, nil
}

func defaultPortOr(port int) int {
	if port <= 0 {
		return defaultPort
	}
	return port
}

// Start launches the bounded connection loop. Never blocks.
func (e *Events) Start(ctx context.Context) {
	e.handle.Start(ctx)
}

// Close publishes a graceful offline status and disconnects, if connected.
func (e *Events) Close() {
	e.handle.Close()
}

// Reporter exposes the handle's state for health aggregation.
func (e *Events) Reporter() gateway.Reporter {
	return e.handle
}

// OnTransition registers an observer for broker state transitions.
func (e *Events) OnTransition(fn gateway.TransitionFunc) {
	e.handle.OnTransition(fn)
}

// Topics returns the topic name builder.
func (e *Events) Topics() Topics {
	return e.topics
}

// Publish sends payload to topic. Returns true when a live broker
// acknowledged the message; a degraded broker drops it silently.
func (e *Events) Publish(ctx context.Context, topic string, payload []byte) bool {
	client, ok := e.handle.Use(ctx)
	if !ok {
		return false
	}

	if err := client.publish(topic, payload, false); err != nil {
		e.handle.Demote(err)
		return false
	}
	return true
}

// Subscribe registers handler for topic (wildcards allowed). Returns true
// when a live broker accepted the subscription.
//
// Subscriptions do not survive demotion: per the gateway contract there is
// no reconnection within a process lifetime, so there is nothing to
// restore them onto.
func (e *Events) Subscribe(ctx context.Context, topic string, handler MessageHandler) bool {
	client, ok := e.handle.Use(ctx)
	if !ok {
		return false
	}

	err := client.subscribe(topic, handler, func(msgTopic string, handlerErr error) {
		e.logger.Warn("event handler error", "topic", msgTopic, "error", handlerErr)
	})
	if err != nil {
		e.handle.Demote(err)
		return false
	}
	return true
}
