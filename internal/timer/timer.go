// Package timer implements the Timer Service: delayed delivery of
// synthetic Timer events into the shared event sink. It keeps one
// *time.Timer per task id in a map and cancels-and-replaces on
// reschedule, the same per-id AfterFunc pattern used for delayed/periodic
// work elsewhere, simplified to a single operation (schedule by string id
// and duration, no cron/at/every kinds).
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
)

// Sink is the write side of the shared event queue.
type Sink interface {
	Publish(chat.SourceEvent)
}

// Service schedules deferred Timer(id) deliveries to a sink. Rescheduling
// the same id cancels any prior pending delivery for that id, so exactly
// one Timer(id) fires per reschedule (the most recent).
type Service struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	sink   Sink
	logger *slog.Logger
}

// New creates a Timer Service bound to sink.
func New(sink Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		timers: make(map[string]*time.Timer),
		sink:   sink,
		logger: logger,
	}
}

// Schedule registers a single deferred delivery of
// SourceEvent{source="core", event=Timer(id)} after delay. A prior
// pending schedule for the same id is cancelled first.
func (s *Service) Schedule(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.fire(id)
	})
}

func (s *Service) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	s.logger.Debug("timer fired", "id", id)
	s.sink.Publish(chat.SourceEvent{
		Source: chat.Core,
		Event:  chat.TimerFired(id),
	})
}

// Stop cancels every pending timer. Cancellation of a timer past its fire
// time has no effect.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
