package facade

import (
	"errors"
	"testing"

	"github.com/fizyk20/chatbot/internal/chat"
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

type recordingTranscript struct {
	ids   []chat.SourceId
	lines []string
}

func (r *recordingTranscript) Log(id chat.SourceId, line string) error {
	r.ids = append(r.ids, id)
	r.lines = append(r.lines, line)
	return nil
}

func TestSendLogsTranscriptLineAndDelegates(t *testing.T) {
	src := &stubSource{nick: "bot"}
	tr := &recordingTranscript{}
	f := New(map[chat.SourceId]source.EventSource{"irc1": src}, tr, nil, nil)

	if err := f.Send("irc1", chat.Message{Channel: chat.ChannelOf("#room"), Content: chat.TextContent("hi")}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(tr.lines) != 1 || tr.lines[0] != "<bot> hi" {
		t.Fatalf("transcript lines = %v, want [<bot> hi]", tr.lines)
	}
	if len(src.sent) != 1 || src.sent[0].Content.Text != "hi" {
		t.Fatalf("source sends = %+v", src.sent)
	}

	if err := f.Send("irc1", chat.Message{Channel: chat.ChannelOf("#room"), Content: chat.MeContent("waves")}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if tr.lines[1] != "* bot waves" {
		t.Fatalf("Me transcript line = %q, want %q", tr.lines[1], "* bot waves")
	}
}

func TestSendUnknownSource(t *testing.T) {
	f := New(map[chat.SourceId]source.EventSource{}, nil, nil, nil)
	err := f.Send("ghost", chat.Message{Content: chat.TextContent("hi")})
	var unknown ErrUnknownSource
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestNickOfUnknownSourceIsEmpty(t *testing.T) {
	f := New(map[chat.SourceId]source.EventSource{}, nil, nil, nil)
	if got := f.Nick("ghost"); got != "" {
		t.Fatalf("Nick of unknown source = %q, want empty", got)
	}
}
