package randomchat

import (
	"testing"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
	"github.com/fizyk20/chatbot/internal/source"
)

type stubSource struct {
	nick string
	sent []chat.Message
}

func (s *stubSource) Connect() error    { return nil }
func (s *stubSource) Join(string) error { return nil }
func (s *stubSource) Send(c chat.Channel, content chat.MessageContent) error {
	s.sent = append(s.sent, chat.Message{Channel: c, Content: content})
	return nil
}
func (s *stubSource) Reconnect() error  { return nil }
func (s *stubSource) Nick() string      { return s.nick }
func (s *stubSource) Type() source.Type { return source.TypeIRC }

func TestRandomChatLearnsFromOthersNotItself(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary()}
	src := &stubSource{nick: "bot"}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, noopTimers{}, nil)

	m.HandleEvent(f, chat.SourceEvent{Source: "irc1", Event: chat.ReceivedMessage(chat.Message{
		Author: "bot", Content: chat.TextContent("ignore this, it's my own message"),
	})})
	if len(m.dict.words) != 0 {
		t.Fatalf("expected the bot's own messages not to be learned from, got %d words", len(m.dict.words))
	}

	m.HandleEvent(f, chat.SourceEvent{Source: "irc1", Event: chat.ReceivedMessage(chat.Message{
		Author: "alice", Content: chat.TextContent("hello there"),
	})})
	if len(m.dict.words) != 2 {
		t.Fatalf("expected alice's message to be learned, got %d words", len(m.dict.words))
	}
}

func TestRandomChatChatCommandGenerates(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary()}
	m.dict.LearnFromLine("hello there friend")
	src := &stubSource{nick: "bot"}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, noopTimers{}, nil)

	resume := m.HandleEvent(f, chat.SourceEvent{Source: "irc1", Event: chat.ReceivedMessage(chat.Message{
		Channel: chat.ChannelOf("#room"), Content: chat.TextContent("!chat"),
	})})
	if resume != module.ResumeStop {
		t.Fatalf("expected the chat command to stop further dispatch")
	}
	if len(src.sent) != 1 || src.sent[0].Content.Text != "hello there friend" {
		t.Fatalf("got sends %+v", src.sent)
	}
}

func TestRandomChatZeroReplyChanceNeverSpeaksUnprompted(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary(), replyChance: 0}
	m.dict.LearnFromLine("hello there friend")
	src := &stubSource{nick: "bot"}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, noopTimers{}, nil)

	for i := 0; i < 20; i++ {
		m.HandleEvent(f, chat.SourceEvent{Source: "irc1", Event: chat.ReceivedMessage(chat.Message{
			Author: "alice", Content: chat.TextContent("hello there friend"),
		})})
	}
	if len(src.sent) != 0 {
		t.Fatalf("expected zero reply_chance to suppress all unprompted replies, got %d", len(src.sent))
	}
}

func TestRandomChatSchedulesSaveTimerOnce(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary()}
	src := &stubSource{nick: "bot"}
	timers := &countingTimers{}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, timers, nil)

	for i := 0; i < 3; i++ {
		m.HandleEvent(f, chat.SourceEvent{Source: "irc1", Event: chat.ReceivedMessage(chat.Message{
			Author: "alice", Content: chat.TextContent("hi"),
		})})
	}
	if timers.scheduled != 1 {
		t.Fatalf("expected exactly one initial schedule call, got %d", timers.scheduled)
	}
}

func TestRandomChatTimerSavesAndReschedules(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary()}
	src := &stubSource{nick: "bot"}
	timers := &countingTimers{}
	f := facade.New(map[chat.SourceId]source.EventSource{"irc1": src}, nil, timers, nil)

	resume := m.HandleEvent(f, chat.SourceEvent{Source: chat.Core, Event: chat.TimerFired("rc")})
	if resume != module.ResumeStop {
		t.Fatalf("expected a matching timer id to stop dispatch")
	}
	if timers.scheduled != 1 {
		t.Fatalf("expected the save timer to reschedule itself, got %d schedules", timers.scheduled)
	}
}

func TestRandomChatIgnoresOtherTimerIds(t *testing.T) {
	m := &Module{id: "rc", commandChar: "!", dict: NewDictionary()}
	timers := &countingTimers{}
	f := facade.New(map[chat.SourceId]source.EventSource{}, nil, timers, nil)

	resume := m.HandleEvent(f, chat.SourceEvent{Source: chat.Core, Event: chat.TimerFired("someone-else")})
	if resume != module.ResumeContinue {
		t.Fatalf("expected an unrelated timer id to be ignored")
	}
	if timers.scheduled != 0 {
		t.Fatalf("expected no rescheduling for an unrelated timer id")
	}
}

type noopTimers struct{}

func (noopTimers) Schedule(id string, delay time.Duration) {}

type countingTimers struct{ scheduled int }

func (c *countingTimers) Schedule(id string, delay time.Duration) { c.scheduled++ }
