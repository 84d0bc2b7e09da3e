// Package source defines the Event Source capability set shared by every
// network adapter (console, IRC, Slack, Discord), its factory registry, and
// the error taxonomy sources report through.
package source

import (
	"fmt"

	"github.com/fizyk20/chatbot/internal/chat"
)

// Type tags a source's network kind.
type Type string

const (
	TypeConsole Type = "console"
	TypeIRC     Type = "irc"
	TypeSlack   Type = "slack"
	TypeDiscord Type = "discord"
)

// Sink is the write side of the shared multi-producer single-consumer
// event queue. Sources and the Timer Service are the only producers.
type Sink interface {
	Publish(chat.SourceEvent)
}

// State is the lifecycle state of a source's underlying network handle.
type State int

const (
	Disconnected State = iota
	Connected
)

// EventSource is the capability set every network adapter implements. It
// must be safe to hold behind an interface value and called only from the
// runtime goroutine that owns it, except where documented otherwise
// (Send may be called concurrently with the adapter's own read loop).
type EventSource interface {
	Connect() error
	Join(channel string) error
	Send(c chat.Channel, content chat.MessageContent) error
	Reconnect() error
	Nick() string
	Type() Type
}

// Builder constructs a source of a given id from its opaque per-source
// configuration, wired to sink for all events it produces. A missing or
// ill-typed config for a source type that requires one must fail
// construction rather than panic.
type Builder func(id chat.SourceId, sink Sink, config Config) (EventSource, error)

// Config is the opaque per-source configuration payload, deferred-decoded
// by each Builder into its own concrete struct (see internal/config's
// yaml.Node-backed implementation).
type Config interface {
	Decode(into any) error
}

var registry = map[Type]Builder{}

// Register adds a builder for the given source type. Called from each
// source subpackage's init, following the same registry-by-tag pattern as
// the Module registry (internal/module).
func Register(t Type, b Builder) {
	registry[t] = b
}

// Build looks up the builder for t and constructs a source. Returns an
// error — never panics — if t is unregistered or construction fails, so
// an unknown type tag fails construction cleanly rather than panicking.
func Build(t Type, id chat.SourceId, sink Sink, config Config) (EventSource, error) {
	b, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("source: unknown type %q", t)
	}
	return b(id, sink, config)
}

// Kind tags the taxonomy of errors a source reports.
type Kind int

const (
	KindDisconnected Kind = iota
	KindEOF
	KindConnectionError
	KindInvalidChannel
	KindInvalidMessage
	KindUnderlyingProtocol
	KindOther
)

// Error is the concrete representation of the error taxonomy: a kind
// tag, the originating source id, and a detail string/wrapped cause.
type Error struct {
	Kind   Kind
	Source chat.SourceId
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

func Disconnect(id chat.SourceId) error {
	return &Error{Kind: KindDisconnected, Source: id, Detail: "source is disconnected"}
}

func EOF(id chat.SourceId) error {
	return &Error{Kind: KindEOF, Source: id, Detail: "end of input"}
}

func ConnectionError(id chat.SourceId, detail string, cause error) error {
	return &Error{Kind: KindConnectionError, Source: id, Detail: detail, Cause: cause}
}

func InvalidChannel(id chat.SourceId, c chat.Channel) error {
	return &Error{Kind: KindInvalidChannel, Source: id, Detail: fmt.Sprintf("invalid channel %s", c)}
}

func InvalidMessage(id chat.SourceId, c chat.MessageContent) error {
	return &Error{Kind: KindInvalidMessage, Source: id, Detail: fmt.Sprintf("invalid content kind %d", c.Kind)}
}

func ProtocolError(id chat.SourceId, cause error) error {
	return &Error{Kind: KindUnderlyingProtocol, Source: id, Detail: "underlying protocol error", Cause: cause}
}

func OtherError(id chat.SourceId, detail string, cause error) error {
	return &Error{Kind: KindOther, Source: id, Detail: detail, Cause: cause}
}
