// Package facade implements the Core API: the minimal surface modules are
// allowed to touch during dispatch. It is passed by reference into every
// module callback and exposes exactly three operations — send, nick, and
// scheduleTimer — deliberately omitting source handles, the modules list,
// the event sink, and the config file, so modules cannot reach across to
// other modules or mutate runtime internals directly.
package facade

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

// TranscriptLogger is the narrow slice of botlog.Logger the facade needs:
// one line per source, day-rotating log contract.
type TranscriptLogger interface {
	Log(sourceID chat.SourceId, line string) error
}

// TimerScheduler is the narrow slice of timer.Service the facade needs.
type TimerScheduler interface {
	Schedule(id string, delay time.Duration)
}

// Facade is the Core API instance handed to modules for the duration of
// one dispatch call. It is safe to keep a *Facade around only for that
// call's lifetime; it is reconstructed (or its source map read fresh)
// every dispatch by the runtime, which remains the sole mutator of the
// sources map.
type Facade struct {
	sources    map[chat.SourceId]source.EventSource
	transcript TranscriptLogger
	timers     TimerScheduler
	logger     *slog.Logger
}

// New constructs a Facade over the given sources map. The caller (the
// runtime) retains ownership of the map; the facade only reads from it.
func New(sources map[chat.SourceId]source.EventSource, transcript TranscriptLogger, timers TimerScheduler, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{sources: sources, transcript: transcript, timers: timers, logger: logger}
}

// ErrUnknownSource is returned by Send when sourceId names no configured
// source.
type ErrUnknownSource chat.SourceId

func (e ErrUnknownSource) Error() string {
	return fmt.Sprintf("facade: unknown source %q", chat.SourceId(e))
}

// Send looks up sourceId, fails with ErrUnknownSource if absent, and
// otherwise delegates to the source's Send after writing a transcript
// line of the form "<nick> text", "* nick text", or "<nick> [Image]" —
// this logging happens here and nowhere else, which is why the facade
// must remain the sole send path (open question: a bypass would mean
// outbound messages never reach the transcript).
func (f *Facade) Send(sourceId chat.SourceId, m chat.Message) error {
	src, ok := f.sources[sourceId]
	if !ok {
		return ErrUnknownSource(sourceId)
	}

	nick := src.Nick()
	if f.transcript != nil {
		line := chat.DisplayWithNick(nick, m.Content)
		if err := f.transcript.Log(sourceId, line); err != nil {
			f.logger.Warn("transcript log failed", "source", sourceId, "error", err)
		}
	}

	return src.Send(m.Channel, m.Content)
}

// Nick returns sourceId's current nick, or empty if the source is unknown
// or has not yet reported identity.
func (f *Facade) Nick(sourceId chat.SourceId) string {
	src, ok := f.sources[sourceId]
	if !ok {
		return ""
	}
	return src.Nick()
}

// ScheduleTimer forwards to the Timer Service. Subsequent timer delivery
// is indistinguishable from other events to modules.
func (f *Facade) ScheduleTimer(id string, delay time.Duration) {
	f.timers.Schedule(id, delay)
}
