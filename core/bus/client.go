// Package bus defines the message-bus boundary used by both nodes. The bus
// is an unreliable publish/subscribe relay: delivery guarantees depend on
// broker configuration and neither node assumes exactly-once semantics.
package bus

import "time"

// MessageHandler is invoked from the client's receive loop for every frame
// arriving on a subscribed topic. Handlers must not block.
type MessageHandler func(topic string, payload []byte)

// EventKind identifies a connection lifecycle event.
type EventKind int

const (
	// Connected is emitted after a successful (re)connect.
	Connected EventKind = iota
	// ConnectionLost is emitted when the broker link drops.
	ConnectionLost
	// Reconnecting is emitted before each redial attempt, carrying the
	// backoff wait preceding it.
	Reconnecting
)

// Event describes a connection state change.
type Event struct {
	Kind EventKind
	Err  error
	// Wait is the backoff delay before the attempt; set on Reconnecting
	// events only.
	Wait time.Duration
}

// Client is the pub/sub client shared by the scheduler and dispenser nodes.
type Client interface {
	// Publish sends a payload on the given topic.
	Publish(topic string, payload []byte) error

	// Subscribe registers a handler for the given topic. Subscriptions
	// survive reconnects.
	Subscribe(topic string, handler MessageHandler) error

	// Connected reports whether the broker link is currently up.
	Connected() bool

	// Events exposes connection lifecycle notifications.
	Events() <-chan Event

	// Disconnect closes the broker link cleanly.
	Disconnect()
}
