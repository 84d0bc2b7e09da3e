package chat

import "strings"

// Command is the derived form of a Text message whose payload begins with
// the configured command prefix. It is never stored by the core; modules
// derive it on demand from a ReceivedMessage via ParseCommand.
type Command struct {
	Sender  string
	Channel Channel
	Params  []string
}

// ParseCommand derives a Command from a message if its Text content begins
// with prefix. Returns ok=false (not a command) for non-Text content or
// text that does not start with prefix. An empty prefix never matches
// (there is no meaningful "command" with no prefix to strip).
//
// The payload after the prefix is split on ASCII spaces unconditionally,
// so Params always has at least one token — a message that is exactly the
// prefix yields a single empty token, which modules must tolerate rather
// than treat as invalid input.
func ParseCommand(m Message, prefix string) (Command, bool) {
	if prefix == "" || m.Content.Kind != ContentText {
		return Command{}, false
	}
	if !strings.HasPrefix(m.Content.Text, prefix) {
		return Command{}, false
	}
	params := strings.Split(m.Content.Text[len(prefix):], " ")
	return Command{Sender: m.Author, Channel: m.Channel, Params: params}, true
}
