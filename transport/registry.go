package transport

import (
	"sort"
	"sync"
)

// registry tracks topic subscriptions for a transport. It is shared by the
// websocket and redis implementations so both attach handlers identically.
type registry struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	byID   map[SubscriptionID]string
	topics map[string]map[SubscriptionID]Handler
}

func newRegistry() *registry {
	return &registry{
		nextID: 1,
		byID:   make(map[SubscriptionID]string),
		topics: make(map[string]map[SubscriptionID]Handler),
	}
}

// add registers a handler and reports whether this is the first
// subscription for the topic (the implementation then tells the broker).
func (r *registry) add(topic string, handler Handler) (SubscriptionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.byID[id] = topic

	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[SubscriptionID]Handler)
		r.topics[topic] = subs
	}
	subs[id] = handler
	return id, !ok
}

// remove drops a subscription and reports the topic and whether it was the
// last subscription for that topic.
func (r *registry) remove(id SubscriptionID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic, ok := r.byID[id]
	if !ok {
		return "", false
	}
	delete(r.byID, id)

	subs := r.topics[topic]
	delete(subs, id)
	if len(subs) == 0 {
		delete(r.topics, topic)
		return topic, true
	}
	return topic, false
}

// dispatch invokes every handler registered for the topic and reports how
// many ran.
func (r *registry) dispatch(topic string, payload []byte) int {
	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.topics[topic]))
	for _, h := range r.topics[topic] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return len(handlers)
}

// activeTopics returns the sorted set of topics with at least one handler.
// Used to replay subscriptions after a reconnect.
func (r *registry) activeTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// clear drops every subscription.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[SubscriptionID]string)
	r.topics = make(map[string]map[SubscriptionID]Handler)
}
