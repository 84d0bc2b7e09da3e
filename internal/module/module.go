// Package module defines the Module capability set and its factory
// registry. The command-parsing helper shared by command-aware modules
// lives in the chat package (chat.ParseCommand).
package module

import (
	"fmt"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/facade"
)

// Resume is the two-valued decision a module returns from HandleEvent,
// telling the dispatch loop whether later modules in the subscriber list
// may still run for this event.
type Resume int

const (
	// ResumeContinue lets the dispatch loop proceed to the next module.
	ResumeContinue Resume = iota
	// ResumeStop terminates iteration: no later module in the list sees
	// this event.
	ResumeStop
)

// Module is the capability set every reactor implements. HandleEvent must
// not block the dispatch thread for non-trivial durations; long work
// belongs in a private worker the module owns.
type Module interface {
	HandleEvent(f *facade.Facade, e chat.SourceEvent) Resume
}

// Config is the opaque per-module configuration payload, deferred-decoded
// by each module's Builder (mirrors source.Config).
type Config interface {
	Decode(into any) error
}

// Builder constructs a module instance from its id and opaque config.
type Builder func(id string, config Config) (Module, error)

var registry = map[string]Builder{}

// Register adds a builder for the given module type tag.
func Register(t string, b Builder) {
	registry[t] = b
}

// Build looks up the builder for t and constructs a module. Returns an
// error — never panics — if t is unregistered or construction fails.
func Build(t, id string, config Config) (Module, error) {
	b, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("module: unknown type %q", t)
	}
	return b(id, config)
}
