package eightball

import (
	"testing"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
	"github.com/fizyk20/chatbot/internal/source"
)

type stubSource struct{ sent []chat.Message }

func (s *stubSource) Connect() error    { return nil }
func (s *stubSource) Join(string) error { return nil }
func (s *stubSource) Send(c chat.Channel, content chat.MessageContent) error {
	s.sent = append(s.sent, chat.Message{Channel: c, Content: content})
	return nil
}
func (s *stubSource) Reconnect() error  { return nil }
func (s *stubSource) Nick() string      { return "bot" }
func (s *stubSource) Type() source.Type { return source.TypeIRC }

func TestEightballRespondsToCommand(t *testing.T) {
	m := &Module{commandChar: "!", responses: []string{"Definitely, %s."}}
	src := &stubSource{}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, nil, nil)

	e := chat.SourceEvent{
		Source: "irc1",
		Event: chat.ReceivedMessage(chat.Message{
			Author:  "bob",
			Channel: chat.ChannelOf("#room"),
			Content: chat.TextContent("!eightball will it rain?"),
		}),
	}

	resume := m.HandleEvent(f, e)
	if resume != module.ResumeContinue {
		t.Fatalf("expected ResumeContinue")
	}
	if len(src.sent) != 1 {
		t.Fatalf("expected one response, got %d", len(src.sent))
	}
	if src.sent[0].Content.Text != "Definitely, bob." {
		t.Fatalf("got %q", src.sent[0].Content.Text)
	}
}

func TestEightballIgnoresOtherCommands(t *testing.T) {
	m := &Module{commandChar: "!", responses: []string{"x"}}
	src := &stubSource{}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, nil, nil)

	e := chat.SourceEvent{
		Source: "irc1",
		Event: chat.ReceivedMessage(chat.Message{
			Content: chat.TextContent("!weather"),
		}),
	}
	m.HandleEvent(f, e)
	if len(src.sent) != 0 {
		t.Fatalf("expected no response for an unrelated command, got %d", len(src.sent))
	}
}

func TestEightballIgnoresMissingParams(t *testing.T) {
	m := &Module{commandChar: "!", responses: []string{"x"}}
	src := &stubSource{}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, nil, nil)

	e := chat.SourceEvent{
		Source: "irc1",
		Event:  chat.ReceivedMessage(chat.Message{Content: chat.TextContent("!eightball")}),
	}
	m.HandleEvent(f, e)
	if len(src.sent) != 0 {
		t.Fatalf("expected eightball with no question to be a defensive no-op, got %d sends", len(src.sent))
	}
}
