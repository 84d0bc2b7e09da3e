package runtime

import "github.com/fizyk20/chatbot/internal/chat"

// Sink is the shared multi-producer single-consumer event queue. It is a
// generously bounded buffered channel: a bounded sink gives backpressure,
// so a slow dispatch loop throttles all ingress. Source workers and the
// Timer Service are its only producers; the dispatch loop is its only
// consumer.
type Sink struct {
	ch chan chat.SourceEvent
}

// NewSink creates a sink with the given buffer capacity.
func NewSink(capacity int) *Sink {
	return &Sink{ch: make(chan chat.SourceEvent, capacity)}
}

// Publish enqueues e, blocking if the sink is full.
func (s *Sink) Publish(e chat.SourceEvent) {
	s.ch <- e
}

// Receive blocks until an event is available.
func (s *Sink) Receive() chat.SourceEvent {
	return <-s.ch
}

// Chan exposes the underlying channel for select-based consumers (tests,
// graceful shutdown).
func (s *Sink) Chan() <-chan chat.SourceEvent {
	return s.ch
}
