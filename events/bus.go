// Package events is a small synchronous publish/subscribe registry.
package events

import "sync"

// Topic names an event stream.
type Topic string

const (
	// ReceiptsCleared fires when pending delivery receipts are dropped.
	ReceiptsCleared Topic = "receipts_cleared"
	// NospamChanged fires after the core accepted a new nospam; the payload is nospam.Value.
	NospamChanged Topic = "nospam_changed"
	// SettingsChanged fires after a privacy setting was persisted; the payload is the setting name.
	SettingsChanged Topic = "settings_changed"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

type subscription struct {
	id uint64
	fn Handler
}

// Bus delivers events to subscribers in registration order. Handlers run on
// the publishing goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Topic][]subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns its unsubscribe func.
// Calling the returned func more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// Publish calls every handler subscribed to topic.
func (b *Bus) Publish(topic Topic, payload any) {
	if b == nil {
		return
	}

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, s := range b.subs[topic] {
		handlers = append(handlers, s.fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(payload)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}
