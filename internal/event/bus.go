package event

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const subscriberBuffer = 100

type subscription struct {
	name  string
	types map[Type]bool
	ch    chan Event
}

func (s *subscription) wants(t Type) bool {
	return len(s.types) == 0 || s.types[t]
}

// InMemoryBus fans events out to named subscribers inside one process.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscription
	dropped     atomic.Uint64
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]*subscription),
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (b *InMemoryBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if !sub.wants(e.Type) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.dropped.Add(1)
			slog.Warn("event dropped for slow subscriber", "subscriber", sub.name, "type", e.Type, "event_id", e.ID)
		}
	}
}

// Subscribe registers a buffered subscriber. With no types it receives every
// event. The returned function closes the channel and is safe to call twice.
func (b *InMemoryBus) Subscribe(name string, types ...Type) (<-chan Event, func()) {
	sub := &subscription{name: name, ch: make(chan Event, subscriberBuffer)}
	if len(types) > 0 {
		sub.types = make(map[Type]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	id := uuid.NewString()
	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.subscribers[id]; exists {
			close(sub.ch)
			delete(b.subscribers, id)
		}
	}

	return sub.ch, unsubscribe
}

// Dropped reports how many deliveries were skipped because a buffer was full.
func (b *InMemoryBus) Dropped() uint64 {
	return b.dropped.Load()
}
