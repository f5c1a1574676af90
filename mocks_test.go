package realtime

import (
	"context"
	"sync"

	"github.com/hikemate/realtime/transport"
)

// ---------------------------------------------------------------------------
// mockTransport is an in-memory Transport for exercising the client
// without a broker. Deliveries run the registered handlers synchronously
// on the caller's goroutine, like a broker read loop would.
// ---------------------------------------------------------------------------

type publishedMessage struct {
	Topic   string
	Payload []byte
	Headers map[string]string
}

type mockTransport struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	nextID    transport.SubscriptionID
	subs      map[transport.SubscriptionID]string
	handlers  map[string]map[transport.SubscriptionID]transport.Handler
	published []publishedMessage
	onConnect []func()
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		nextID:   1,
		subs:     make(map[transport.SubscriptionID]string),
		handlers: make(map[string]map[transport.SubscriptionID]transport.Handler),
	}
}

func (m *mockTransport) Connect(ctx context.Context) error {
	m.mu.Lock()
	m.connected = true
	callbacks := make([]func(), len(m.onConnect))
	copy(callbacks, m.onConnect)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return nil
}

func (m *mockTransport) OnConnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnect = append(m.onConnect, fn)
}

func (m *mockTransport) Subscribe(topic string, handler transport.Handler) (transport.SubscriptionID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, transport.ErrClosed
	}
	id := m.nextID
	m.nextID++
	m.subs[id] = topic
	if m.handlers[topic] == nil {
		m.handlers[topic] = make(map[transport.SubscriptionID]transport.Handler)
	}
	m.handlers[topic][id] = handler
	return id, nil
}

func (m *mockTransport) Unsubscribe(id transport.SubscriptionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topic, ok := m.subs[id]
	if !ok {
		return
	}
	delete(m.subs, id)
	delete(m.handlers[topic], id)
	if len(m.handlers[topic]) == 0 {
		delete(m.handlers, topic)
	}
}

func (m *mockTransport) Publish(topic string, payload []byte, headers map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return transport.ErrClosed
	}
	if !m.connected {
		return transport.ErrNotConnected
	}
	m.published = append(m.published, publishedMessage{Topic: topic, Payload: payload, Headers: headers})
	return nil
}

func (m *mockTransport) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.connected = false
	return nil
}

// deliver runs every handler registered for the topic with the payload.
func (m *mockTransport) deliver(topic, payload string) {
	m.mu.Lock()
	handlers := make([]transport.Handler, 0, len(m.handlers[topic]))
	for _, h := range m.handlers[topic] {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h([]byte(payload))
	}
}

// messages returns the frames published to a topic, in publish order.
func (m *mockTransport) messages(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []publishedMessage
	for _, p := range m.published {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// handlerCount reports how many handlers are registered for a topic.
func (m *mockTransport) handlerCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers[topic])
}

// setConnected flips the connection flag without touching subscriptions.
func (m *mockTransport) setConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}
