// Package ircsource implements the IRC event source, the richest of the
// adapters. Wire parsing is delegated to gopkg.in/irc.v3, so this
// package's own logic is the translation table from a parsed
// *irc.Message to zero or more normalized chat.Events, plus connection
// lifecycle and the outbound send path.
package ircsource

import (
	"fmt"
	"strings"

	irc "gopkg.in/irc.v3"

	"github.com/fizyk20/chatbot/internal/chat"
)

// senderNick returns the nick portion of a message's prefix, or "" if the
// message carries no prefix. gopkg.in/irc.v3 already splits "nick!user@host"
// into Prefix.Name/User/Host, so this is a direct field read rather than
// a separate re-derivation of the "up to the first !" rule.
func senderNick(m *irc.Message) string {
	if m.Prefix == nil {
		return ""
	}
	return m.Prefix.Name
}

// Translate maps one inbound IRC message to the normalized events it
// produces. Most commands produce exactly one event; RPL_NAMREPLY can
// produce several; PING/PONG produce none.
func Translate(m *irc.Message) []chat.Event {
	switch m.Command {
	case "PING", "PONG":
		return nil

	case "PRIVMSG":
		if len(m.Params) < 2 {
			return []chat.Event{chat.OtherEvent(m.String())}
		}
		target := m.Params[0]
		body := m.Params[1]
		var ch chat.Channel
		if strings.HasPrefix(target, "#") {
			ch = chat.ChannelOf(target)
		} else {
			ch = chat.UserOf(target)
		}
		content := chat.TextContent(body)
		if strings.HasPrefix(body, "\x01ACTION ") && strings.HasSuffix(body, "\x01") {
			content = chat.MeContent(strings.TrimSuffix(strings.TrimPrefix(body, "\x01ACTION "), "\x01"))
		}
		return []chat.Event{chat.ReceivedMessage(chat.Message{
			Author:  senderNick(m),
			Channel: ch,
			Content: content,
		})}

	case "NICK":
		if len(m.Params) < 1 {
			return []chat.Event{chat.OtherEvent(m.String())}
		}
		return []chat.Event{chat.NickChange(senderNick(m), m.Params[0])}

	case "JOIN":
		return []chat.Event{chat.UserOnline(senderNick(m))}

	case "PART":
		var reason *string
		if len(m.Params) >= 2 {
			r := m.Params[1]
			reason = &r
		}
		return []chat.Event{chat.UserOffline(senderNick(m), reason)}

	case "QUIT":
		var reason *string
		if len(m.Params) >= 1 {
			r := m.Params[0]
			reason = &r
		}
		return []chat.Event{chat.UserOffline(senderNick(m), reason)}

	case "RPL_NAMREPLY", "353":
		if len(m.Params) == 0 {
			return nil
		}
		body := m.Params[len(m.Params)-1]
		events := make([]chat.Event, 0)
		for _, tok := range strings.Fields(body) {
			nick := strings.TrimLeft(tok, "@+%~&")
			if nick == "" {
				continue
			}
			events = append(events, chat.UserOnline(nick))
		}
		return events

	default:
		return []chat.Event{chat.OtherEvent(debugFormat(m))}
	}
}

func debugFormat(m *irc.Message) string {
	return fmt.Sprintf("%+v", *m)
}
