// Package events provides the in-process change notification bus shared by
// the caught-state store and every UI element that renders caught state.
package events

import "sync"

// Origin identifies where a change came from.
type Origin int

const (
	// Local changes were written through this process' store.
	Local Origin = iota
	// External changes were observed through the storage change signal,
	// typically written by another process sharing the same data.
	External
)

func (o Origin) String() string {
	switch o {
	case Local:
		return "local"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Event signals that caught state changed and should be re-read.
// IDs optionally lists the affected ids; nil means unknown or all.
type Event struct {
	Origin Origin
	IDs    []int
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an ordered observer list. The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// Subscribe registers h and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus) Subscribe(h Handler) func() {
	if h == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish invokes every current handler synchronously in subscription
// order. Handlers may subscribe or unsubscribe while running; such changes
// take effect from the next Publish.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
