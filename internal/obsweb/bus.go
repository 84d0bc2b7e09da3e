// Package obsweb streams dispatched events to connected operators over a
// read-only WebSocket endpoint. It implements runtime.Observer; wiring it
// in does not add any control surface, only visibility.
//
// The broadcast core is a nil-safe, non-blocking fan-out to
// per-subscriber buffered channels.
package obsweb

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
)

// envelope is the JSON shape delivered to every WebSocket subscriber.
type envelope struct {
	Timestamp time.Time     `json:"ts"`
	Source    chat.SourceId `json:"source"`
	Type      string        `json:"type"`
	Line      string        `json:"line"`
}

// Bus is a non-blocking broadcast hub. Subscribers receive events on
// buffered channels; a slow subscriber misses events rather than
// blocking the dispatch loop that calls Observe.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan envelope]struct{}
}

// NewBus creates an empty, ready-to-use broadcast hub.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan envelope]struct{})}
}

// Observe implements runtime.Observer. Safe to call on a nil *Bus.
func (b *Bus) Observe(e chat.SourceEvent) {
	if b == nil {
		return
	}
	env := envelope{
		Timestamp: time.Now(),
		Source:    e.Source,
		Type:      e.Event.Type().String(),
		Line:      e.Event.Display(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- env:
		default:
			// Subscriber is full; drop rather than block dispatch.
		}
	}
}

func (b *Bus) subscribe(bufSize int) chan envelope {
	ch := make(chan envelope, bufSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

func (b *Bus) unsubscribe(ch chan envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// SubscriberCount returns the number of currently connected WebSocket
// clients. Exposed mainly for tests.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (e envelope) marshal() ([]byte, error) {
	return json.Marshal(e)
}
