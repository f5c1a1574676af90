package transport

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis is a Transport over Redis pub/sub channels. Topic names map
// directly to Redis channels. Redis has no per-message headers, so the
// headers argument of Publish is ignored. go-redis reconnects and
// resubscribes the underlying PubSub on its own, so missed-event
// reconciliation still goes through OnConnect only for the initial
// connection.
type Redis struct {
	client *redis.Client
	subs   *registry

	mu        sync.Mutex
	pubsub    *redis.PubSub
	connected bool
	closed    bool
	onConnect []func()
}

// NewRedis creates a Redis transport around an existing client. The caller
// retains ownership of the client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		subs:   newRegistry(),
	}
}

// Connect pings the broker, retrying with a fixed 5 second backoff until
// it answers or the context is canceled, then starts the delivery loop.
func (t *Redis) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.connected {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	for {
		if err := t.client.Ping(ctx).Err(); err == nil {
			break
		} else {
			logrus.WithFields(logrus.Fields{
				"function": "Connect",
				"error":    err,
			}).Error("redis broker unreachable, retrying")
		}
		timer := time.NewTimer(defaultReconnectDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	pubsub := t.client.Subscribe(context.Background())
	if topics := t.subs.activeTopics(); len(topics) > 0 {
		if err := pubsub.Subscribe(ctx, topics...); err != nil {
			pubsub.Close()
			return err
		}
	}

	t.mu.Lock()
	t.pubsub = pubsub
	t.connected = true
	callbacks := make([]func(), len(t.onConnect))
	copy(callbacks, t.onConnect)
	t.mu.Unlock()

	go t.deliver(pubsub)

	logrus.WithFields(logrus.Fields{
		"function": "Connect",
		"addr":     t.client.Options().Addr,
	}).Info("connected to redis broker")

	go func() {
		for _, fn := range callbacks {
			fn()
		}
	}()
	return nil
}

// OnConnect registers a callback fired once the broker connection is up.
func (t *Redis) OnConnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnect = append(t.onConnect, fn)
}

// Subscribe registers a handler for a topic.
func (t *Redis) Subscribe(topic string, handler Handler) (SubscriptionID, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	pubsub := t.pubsub
	t.mu.Unlock()

	id, first := t.subs.add(topic, handler)
	if first && pubsub != nil {
		if err := pubsub.Subscribe(context.Background(), topic); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Subscribe",
				"topic":    topic,
				"error":    err,
			}).Error("redis channel subscribe failed")
		}
	}
	return id, nil
}

// Unsubscribe removes a subscription.
func (t *Redis) Unsubscribe(id SubscriptionID) {
	topic, last := t.subs.remove(id)
	if topic == "" || !last {
		return
	}

	t.mu.Lock()
	pubsub := t.pubsub
	t.mu.Unlock()

	if pubsub != nil {
		if err := pubsub.Unsubscribe(context.Background(), topic); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Unsubscribe",
				"topic":    topic,
				"error":    err,
			}).Warn("redis channel unsubscribe failed")
		}
	}
}

// Publish sends a payload to a topic. Headers are ignored.
func (t *Redis) Publish(topic string, payload []byte, _ map[string]string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	t.mu.Unlock()

	if err := t.client.Publish(context.Background(), topic, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Publish",
			"topic":    topic,
			"error":    err,
		}).Error("redis publish failed")
		return ErrNotConnected
	}
	return nil
}

// Connected reports whether the broker connection is up.
func (t *Redis) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Close stops delivery and drops all subscriptions. The Redis client
// itself is left open for its owner.
func (t *Redis) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.connected = false
	pubsub := t.pubsub
	t.pubsub = nil
	t.mu.Unlock()

	t.subs.clear()
	if pubsub != nil {
		return pubsub.Close()
	}
	return nil
}

// deliver pumps messages from the PubSub channel into topic handlers until
// the PubSub is closed.
func (t *Redis) deliver(pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		if n := t.subs.dispatch(msg.Channel, []byte(msg.Payload)); n == 0 {
			logrus.WithFields(logrus.Fields{
				"function": "deliver",
				"topic":    msg.Channel,
			}).Debug("no handler for delivered topic")
		}
	}
}
