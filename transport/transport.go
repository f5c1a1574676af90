// Package transport provides the persistent broker connection used by the
// realtime client.
//
// A Transport owns exactly one connection to a publish/subscribe broker and
// exposes topic-level subscribe and publish primitives. Implementations are
// expected to reconnect on their own; subscriptions registered while the
// connection is down are attached as soon as the connection (re)completes,
// so no event published after the connect point is missed.
//
// Example:
//
//	tr := transport.NewWebSocket(transport.Config{URL: "ws://localhost:8080/ws", Token: token})
//	tr.Subscribe("online-status/bob", func(payload []byte) {
//	    fmt.Printf("presence: %s\n", payload)
//	})
//	if err := tr.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
package transport

import (
	"context"
	"errors"
)

// Handler processes the payload of a message delivered on a subscribed topic.
// Handlers run on the transport's delivery goroutine and must not block.
type Handler func(payload []byte)

// SubscriptionID identifies an active subscription for later removal.
type SubscriptionID uint64

// Errors returned by transport operations.
var (
	// ErrNotConnected is returned by Publish when the broker connection is
	// down. The operation is not queued; the caller decides whether to
	// surface the failure and retry.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("transport: closed")
)

// Transport is the broker connection capability consumed by the realtime
// client. Implementations must be safe for concurrent use.
type Transport interface {
	// Connect establishes the broker connection, retrying with a fixed
	// backoff until it succeeds, the context is canceled, or the transport
	// is closed. Handlers registered beforehand are attached before any
	// message is delivered.
	Connect(ctx context.Context) error

	// OnConnect registers a callback invoked after every successful
	// connection, including reconnects. Used by the owner to reconcile
	// snapshot state, since missed events are never replayed.
	OnConnect(fn func())

	// Subscribe registers a handler for a topic. Safe to call before
	// Connect; the subscription is attached when the connection completes.
	Subscribe(topic string, handler Handler) (SubscriptionID, error)

	// Unsubscribe removes a previously registered subscription.
	Unsubscribe(id SubscriptionID)

	// Publish sends a payload to a topic. Headers carry per-message
	// metadata such as an Authorization token; implementations without
	// header support may ignore them. Returns ErrNotConnected when the
	// connection is down.
	Publish(topic string, payload []byte, headers map[string]string) error

	// Connected reports whether the broker connection is currently up.
	Connected() bool

	// Close tears the connection down and drops every subscription. The
	// transport cannot be reused afterwards.
	Close() error
}
