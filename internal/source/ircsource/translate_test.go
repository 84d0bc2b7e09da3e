package ircsource

import (
	"testing"

	irc "gopkg.in/irc.v3"

	"github.com/fizyk20/chatbot/internal/chat"
)

func mustParse(t *testing.T, line string) *irc.Message {
	t.Helper()
	m, err := irc.ParseMessage(line)
	if err != nil {
		t.Fatalf("ParseMessage(%q): %v", line, err)
	}
	return m
}

func TestTranslatePrivmsgChannel(t *testing.T) {
	m := mustParse(t, ":bob!u@h PRIVMSG #room :hi")
	events := Translate(m)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type() != chat.TextMessage {
		t.Fatalf("type = %v, want TextMessage", e.Type())
	}
	if e.Message.Author != "bob" {
		t.Errorf("author = %q, want bob", e.Message.Author)
	}
	if !e.Message.Channel.Equal(chat.ChannelOf("#room")) {
		t.Errorf("channel = %v, want Channel(#room)", e.Message.Channel)
	}
	if e.Message.Content.Text != "hi" {
		t.Errorf("text = %q, want hi", e.Message.Content.Text)
	}
}

func TestTranslatePrivmsgUser(t *testing.T) {
	m := mustParse(t, ":alice!u@h PRIVMSG bob :psst")
	events := Translate(m)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Message.Channel.Equal(chat.UserOf("bob")) {
		t.Errorf("channel = %v, want User(bob)", events[0].Message.Channel)
	}
}

func TestTranslateSuppressesPingPong(t *testing.T) {
	for _, line := range []string{"PING :server", "PONG :server"} {
		m := mustParse(t, line)
		if events := Translate(m); len(events) != 0 {
			t.Errorf("%q: expected no events, got %v", line, events)
		}
	}
}

func TestTranslateNickChange(t *testing.T) {
	m := mustParse(t, ":bob!u@h NICK robert")
	events := Translate(m)
	if len(events) != 1 || events[0].Type() != chat.UserStatus {
		t.Fatalf("unexpected events %v", events)
	}
	if events[0].User != "bob" || events[0].NewNick != "robert" {
		t.Errorf("got old=%q new=%q", events[0].User, events[0].NewNick)
	}
}

func TestTranslateNamReply(t *testing.T) {
	m := mustParse(t, ":server 353 me = #room :@bob +alice carol")
	events := Translate(m)
	if len(events) != 3 {
		t.Fatalf("expected 3 UserOnline events, got %d: %v", len(events), events)
	}
	want := []string{"bob", "alice", "carol"}
	for i, e := range events {
		if e.User != want[i] {
			t.Errorf("event %d user = %q, want %q", i, e.User, want[i])
		}
	}
}

func TestTranslateJoinPartQuit(t *testing.T) {
	if e := Translate(mustParse(t, ":bob!u@h JOIN #room"))[0]; e.User != "bob" || e.Kind != chat.EvUserOnline {
		t.Fatalf("JOIN: got %+v", e)
	}
	e := Translate(mustParse(t, ":bob!u@h PART #room :bye"))[0]
	if e.Kind != chat.EvUserOffline || e.User != "bob" || e.Reason == nil || *e.Reason != "bye" {
		t.Fatalf("PART: got %+v", e)
	}
	e = Translate(mustParse(t, ":bob!u@h QUIT :gone"))[0]
	if e.Kind != chat.EvUserOffline || e.User != "bob" || e.Reason == nil || *e.Reason != "gone" {
		t.Fatalf("QUIT: got %+v", e)
	}
}

func TestTranslateOtherFallsThrough(t *testing.T) {
	m := mustParse(t, ":server 301 bob carol :is away")
	events := Translate(m)
	if len(events) != 1 || events[0].Type() != chat.Other {
		t.Fatalf("expected one Other event, got %v", events)
	}
}
