package mqtt

import "errors"

// Sentinel errors for MQTT operations, checked with errors.Is.
// These stay internal to the guarded facade: callers of Events never see
// them, they see the operation's neutral default instead.
var (
	// ErrNotConnected is returned when the underlying client lost its
	// connection between the handle check and the operation.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when a connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
