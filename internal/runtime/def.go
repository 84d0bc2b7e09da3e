package runtime

import (
	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/module"
)

// moduleDef is the runtime's record of one configured module: its
// identity, its built instance, its dispatch priority, and its read-only
// subscription set, plus its position in the configuration document
// (used only to break priority ties deterministically, so iteration
// order within a priority is deterministic for a given configuration).
type moduleDef struct {
	id            string
	instance      module.Module
	priority      uint8
	subscriptions map[chat.SourceId]map[chat.EventType]bool
	order         int
}

// subscribes reports whether this module wants events of type t from
// source s.
func (d *moduleDef) subscribes(s chat.SourceId, t chat.EventType) bool {
	types, ok := d.subscriptions[s]
	if !ok {
		return false
	}
	return types[t]
}
