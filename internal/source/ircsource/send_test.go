package ircsource

import (
	"errors"
	"testing"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

func assertKind(t *testing.T, err error, kind source.Kind) {
	t.Helper()
	var srcErr *source.Error
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected a *source.Error, got %v", err)
	}
	if srcErr.Kind != kind {
		t.Fatalf("error kind = %v, want %v", srcErr.Kind, kind)
	}
}

func TestSendOnDisconnectedSourceFails(t *testing.T) {
	s := &Source{id: "irc1"}
	err := s.Send(chat.ChannelOf("#room"), chat.TextContent("hi"))
	assertKind(t, err, source.KindDisconnected)
}

func TestSendRejectsImageContent(t *testing.T) {
	s := &Source{id: "irc1", state: source.Connected}
	err := s.Send(chat.ChannelOf("#room"), chat.ImageContent())
	assertKind(t, err, source.KindInvalidMessage)
}

func TestSendRejectsGroupChannel(t *testing.T) {
	s := &Source{id: "irc1", state: source.Connected}
	err := s.Send(chat.GroupOf([]string{"a", "b"}), chat.TextContent("hi"))
	assertKind(t, err, source.KindInvalidChannel)
}

func TestSendRejectsNoneChannel(t *testing.T) {
	s := &Source{id: "irc1", state: source.Connected}
	err := s.Send(chat.Channel{}, chat.TextContent("hi"))
	assertKind(t, err, source.KindInvalidChannel)
}
