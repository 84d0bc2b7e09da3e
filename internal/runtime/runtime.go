// Package runtime implements the Core Runtime: construction of
// sources and modules from configuration, the shared event sink, the
// serialized dispatch loop, and subscriber-list construction.
package runtime

import (
	"fmt"
	"log/slog"

	"github.com/fizyk20/chatbot/internal/botlog"
	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/config"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
	"github.com/fizyk20/chatbot/internal/source"
	"github.com/fizyk20/chatbot/internal/timer"
)

// Observer receives a copy of every dispatched SourceEvent for read-only
// operator visibility (obsweb wiring). Optional — pass nil to
// disable.
type Observer interface {
	Observe(chat.SourceEvent)
}

// Runtime owns the sources map and modules list after construction;
// neither is mutated again once Run starts.
type Runtime struct {
	sources map[chat.SourceId]source.EventSource
	modules []*moduleDef

	sink       *Sink
	timers     *timer.Service
	transcript *botlog.Logger
	facade     *facade.Facade
	observer   Observer
	logger     *slog.Logger
}

// New constructs the runtime from cfg, in order:
// (1) the shared sink, (2) every configured source via its registered
// factory, (3) every configured module via its registered factory, (4)
// the Timer Service bound to the same sink. An unregistered source or
// module type tag fails construction with no partial startup.
func New(cfg *config.Config, logger *slog.Logger, observer Observer) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sink := NewSink(256)
	transcript := botlog.New(cfg.LogFolder, botlog.ModeFile)

	sources := make(map[chat.SourceId]source.EventSource, len(cfg.Sources))
	for _, id := range cfg.SourceOrder {
		def := cfg.Sources[id]
		t := source.Type(def.Type)
		src, err := source.Build(t, chat.SourceId(id), sink, def)
		if err != nil {
			return nil, fmt.Errorf("building source %q: %w", id, err)
		}
		sources[chat.SourceId(id)] = src
	}

	var modules []*moduleDef
	for i, id := range cfg.ModuleOrder {
		def := cfg.Modules[id]
		inst, err := module.Build(def.Type, id, def)
		if err != nil {
			return nil, fmt.Errorf("building module %q: %w", id, err)
		}

		subs := make(map[chat.SourceId]map[chat.EventType]bool, len(def.Subscriptions))
		for srcID, typeNames := range def.Subscriptions {
			set := make(map[chat.EventType]bool, len(typeNames))
			for _, tn := range typeNames {
				et, ok := chat.ParseEventType(tn)
				if !ok {
					return nil, fmt.Errorf("module %q: unknown event type %q in subscriptions", id, tn)
				}
				set[et] = true
			}
			subs[chat.SourceId(srcID)] = set
		}

		modules = append(modules, &moduleDef{
			id:            id,
			instance:      inst,
			priority:      def.Priority,
			subscriptions: subs,
			order:         i,
		})
	}

	timers := timer.New(sink, logger)
	f := facade.New(sources, transcript, timers, logger)

	return &Runtime{
		sources:    sources,
		modules:    modules,
		sink:       sink,
		timers:     timers,
		transcript: transcript,
		facade:     f,
		observer:   observer,
		logger:     logger,
	}, nil
}

// Sink exposes the shared sink so callers outside the runtime can publish
// synthetic events. Sources receive the sink through their builder, not
// through this accessor.
func (r *Runtime) Sink() *Sink { return r.sink }

// ConnectAll invokes Connect on every source in configured order. A
// failure of any source is fatal at this phase.
func (r *Runtime) ConnectAll(order []string) error {
	for _, id := range order {
		src, ok := r.sources[chat.SourceId(id)]
		if !ok {
			continue
		}
		if err := src.Connect(); err != nil {
			return fmt.Errorf("connecting source %q: %w", id, err)
		}
	}
	return nil
}

// Run drains the sink sequentially forever, dispatching each event to its
// subscriber list in priority order. It blocks until the sink is closed,
// which this runtime never does in normal operation — the process runs
// until killed.
func (r *Runtime) Run() {
	for e := range r.sink.Chan() {
		r.dispatchOne(e)
	}
}

func (r *Runtime) dispatchOne(e chat.SourceEvent) {
	if e.Source != chat.Core {
		if _, known := r.sources[e.Source]; !known {
			r.logger.Warn("event from unknown source, dropping", "source", e.Source)
			return
		}
	}

	line := e.Event.Display()
	r.logger.Info("event", "source", e.Source, "line", line)
	if r.transcript != nil {
		if err := r.transcript.Log(e.Source, line); err != nil {
			r.logger.Warn("transcript log failed", "source", e.Source, "error", err)
		}
	}

	if r.observer != nil {
		r.observer.Observe(e)
	}

	t := e.Event.Type()
	subscribers := r.buildSubscriberList(e.Source, t)

	for _, m := range subscribers {
		resume := r.invoke(m, e)
		if resume == module.ResumeStop {
			break
		}
	}
}

// buildSubscriberList returns every module subscribed to (source, t),
// sorted ascending by priority with ties broken by configured order.
func (r *Runtime) buildSubscriberList(s chat.SourceId, t chat.EventType) []*moduleDef {
	var out []*moduleDef
	for _, m := range r.modules {
		if m.subscribes(s, t) {
			out = append(out, m)
		}
	}
	// Stable sort by priority; moduleDef.order already reflects
	// configured order, so a plain stable sort on priority alone
	// preserves it for ties (the slice is built in configured order).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].priority > out[j].priority; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// invoke calls m's HandleEvent, catching any panic and treating it as
// Resume with the event dropped for that module only.
func (r *Runtime) invoke(m *moduleDef, e chat.SourceEvent) (resume module.Resume) {
	resume = module.ResumeContinue
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("module panicked, dropping event for this module", "module", m.id, "panic", rec)
			resume = module.ResumeContinue
		}
	}()
	return m.instance.HandleEvent(r.facade, e)
}

// Timers exposes the Timer Service. Close already stops its pending
// timers.
func (r *Runtime) Timers() *timer.Service { return r.timers }

// Close releases the transcript logger's open file handles and stops all
// pending timers.
func (r *Runtime) Close() error {
	r.timers.Stop()
	return r.transcript.Close()
}
