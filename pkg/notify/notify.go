// Package notify is a minimal topic-keyed publish/subscribe broadcaster.
//
// Every delivery carries the current state of the topic, the change that
// caused it and derived counts, so subscribers never need to read state
// back from the publisher. New subscribers get one initial delivery at
// registration time.
//
// Delivery is synchronous: Publish returns after every handler ran, in
// registration order.
package notify

import "sync"

// Payload is what a handler receives on each delivery.
type Payload[V, C any] struct {
	Value  V              `json:"value"`
	Change C              `json:"change"`
	Counts map[string]int `json:"counts"`
}

// Handler receives deliveries for one topic.
type Handler[V, C any] func(Payload[V, C])

// Source provides the state delivered alongside each change.
type Source[V any] interface {
	State(topic string) V
	Counts() map[string]int
}

type subscriber[V, C any] struct {
	id      uint64
	handler Handler[V, C]
}

// Notifier fans changes out to per-topic handlers.
type Notifier[V, C any] struct {
	mu     sync.Mutex
	source Source[V]
	init   C
	nextID uint64
	subs   map[string][]subscriber[V, C]
}

// New creates a notifier that reads state from source and sends init as
// the change of every initial delivery.
func New[V, C any](source Source[V], init C) *Notifier[V, C] {
	return &Notifier[V, C]{
		source: source,
		init:   init,
		subs:   make(map[string][]subscriber[V, C]),
	}
}

// Subscribe registers handler on topic and immediately delivers the
// current state to it. The returned function removes the handler; calling
// it more than once is a no-op.
func (n *Notifier[V, C]) Subscribe(topic string, handler Handler[V, C]) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[topic] = append(n.subs[topic], subscriber[V, C]{id: id, handler: handler})
	n.mu.Unlock()

	handler(n.payload(topic, n.init))

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(topic, id) })
	}
}

// Publish delivers change to every handler registered on topic when the
// call started.
func (n *Notifier[V, C]) Publish(topic string, change C) {
	n.mu.Lock()
	subs := append([]subscriber[V, C](nil), n.subs[topic]...)
	n.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	p := n.payload(topic, change)
	for _, s := range subs {
		s.handler(p)
	}
}

// Len returns the number of handlers registered on topic.
func (n *Notifier[V, C]) Len(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[topic])
}

func (n *Notifier[V, C]) payload(topic string, change C) Payload[V, C] {
	return Payload[V, C]{
		Value:  n.source.State(topic),
		Change: change,
		Counts: n.source.Counts(),
	}
}

func (n *Notifier[V, C]) remove(topic string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	subs := n.subs[topic]
	for i, s := range subs {
		if s.id == id {
			n.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(n.subs[topic]) == 0 {
		delete(n.subs, topic)
	}
}
