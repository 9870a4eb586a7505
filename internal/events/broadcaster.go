package events

import (
	"sync"

	"github.com/google/logger"
)

// Event names sent to subscribers.
const (
	EventTick         = "tick"
	EventSettled      = "settled"
	EventReset        = "reset"
	EventParticipants = "participants"
	EventGroups       = "groups"
)

// Event is a single server-sent message. Data is JSON encoded by the HTTP layer.
type Event struct {
	Name string
	Data any
}

// Broadcaster fans events out to the subscribers of one session.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	buffer  int
	closed  bool
}

// NewBroadcaster creates a Broadcaster whose subscriber channels hold buffer events.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		clients: make(map[chan Event]struct{}),
		buffer:  buffer,
	}
}

// Subscribe registers a new client. The returned func unsubscribes it and
// closes the channel; it is safe to call more than once. After Close the
// channel comes back already closed.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.clients[ch]; ok {
				delete(b.clients, ch)
				close(ch)
			}
		})
	}
}

// Publish sends ev to every subscriber without blocking. Slow subscribers
// miss events.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
			logger.V(1).Infof("events: dropped %s for a slow subscriber", ev.Name)
		}
	}
}

// Close unsubscribes every client and refuses later subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.clients {
		delete(b.clients, ch)
		close(ch)
	}
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
