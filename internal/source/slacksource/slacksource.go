// Package slacksource implements the Slack event source. Wire transport
// is github.com/slack-go/slack's RTM client.
package slacksource

import (
	"fmt"
	"sync"

	"github.com/slack-go/slack"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

func init() {
	source.Register(source.TypeSlack, build)
}

// Config is the Slack source's configuration: requires a "token".
type Config struct {
	Token string `yaml:"token"`
}

func build(id chat.SourceId, sink source.Sink, raw source.Config) (source.EventSource, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("slack source %q: %w", id, err)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack source %q: missing required field token", id)
	}
	return &Source{id: id, sink: sink, token: cfg.Token}, nil
}

// Source is the Slack adapter. It retains a roster/channels snapshot
// (*slack.Info) captured at connect time, used to resolve ids to names
// and back for incoming/outgoing messages.
type Source struct {
	id    chat.SourceId
	sink  source.Sink
	token string

	mu      sync.Mutex
	api     *slack.Client
	rtm     *slack.RTM
	info    *slack.Info
	ownNick string
	state   source.State
}

func (s *Source) Connect() error {
	s.mu.Lock()
	if s.rtm != nil {
		s.rtm.Disconnect()
	}
	api := slack.New(s.token)
	rtm := api.NewRTM()
	s.api = api
	s.rtm = rtm
	s.mu.Unlock()

	go rtm.ManageConnection()
	go s.loop(rtm)

	return nil
}

func (s *Source) loop(rtm *slack.RTM) {
	for msg := range rtm.IncomingEvents {
		switch ev := msg.Data.(type) {
		case *slack.ConnectedEvent:
			s.mu.Lock()
			s.info = rtm.GetInfo()
			if s.info != nil && s.info.User != nil {
				s.ownNick = s.info.User.Name
			}
			s.state = source.Connected
			s.mu.Unlock()
			s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Connected()})

		case *slack.DisconnectedEvent:
			s.mu.Lock()
			s.state = source.Disconnected
			s.mu.Unlock()
			s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Disconnected()})

		case *slack.UserTypingEvent, *slack.ReconnectUrlEvent,
			*slack.LatencyReport, *slack.ConnectingEvent:
			// suppressed

		case *slack.PresenceChangeEvent:
			nick := s.nickByID(ev.User)
			switch ev.Presence {
			case "active":
				s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.UserOnline(nick)})
			case "away":
				s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.UserOffline(nick, nil)})
			}

		case *slack.MessageEvent:
			if ev.User == "" || ev.Channel == "" || ev.Text == "" {
				s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.OtherEvent(fmt.Sprintf("%+v", ev))})
				continue
			}
			nick := s.nickByID(ev.User)
			ch := s.channelByID(ev.Channel)
			s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.ReceivedMessage(chat.Message{
				Author:  nick,
				Channel: ch,
				Content: chat.TextContent(ev.Text),
			})})

		default:
			s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.OtherEvent(fmt.Sprintf("%+v", msg.Data))})
		}
	}
}

// nickByID resolves a Slack user id to a display name using the cached
// roster snapshot, falling back to a placeholder if the lookup fails.
func (s *Source) nickByID(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info != nil {
		for _, u := range s.info.Users {
			if u.ID == id {
				return u.Name
			}
		}
	}
	return "[no author]"
}

func (s *Source) channelByID(id string) chat.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info != nil {
		for _, c := range s.info.Channels {
			if c.ID == id {
				return chat.ChannelOf(c.Name)
			}
		}
		for _, im := range s.info.IMs {
			if im.ID == id {
				return chat.UserOf(s.nickByIDLocked(im.User))
			}
		}
	}
	return chat.ChannelOf("[invalid channel]")
}

func (s *Source) nickByIDLocked(id string) string {
	if s.info != nil {
		for _, u := range s.info.Users {
			if u.ID == id {
				return u.Name
			}
		}
	}
	return "[no author]"
}

func (s *Source) idByChannel(c chat.Channel) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return "", false
	}
	switch c.Kind {
	case chat.ChannelDirect:
		for _, ch := range s.info.Channels {
			if ch.Name == c.Name {
				return ch.ID, true
			}
		}
	case chat.ChannelUser:
		for _, u := range s.info.Users {
			if u.Name == c.Name {
				for _, im := range s.info.IMs {
					if im.User == u.ID {
						return im.ID, true
					}
				}
			}
		}
	}
	return "", false
}

func (s *Source) Join(string) error { return nil }

// Send resolves the destination to a Slack channel/IM id via the cached
// snapshot and posts an RTM message. Group/None channels and Image
// content are unsupported, same error set as IRC.
func (s *Source) Send(c chat.Channel, content chat.MessageContent) error {
	s.mu.Lock()
	rtm := s.rtm
	state := s.state
	s.mu.Unlock()

	if state != source.Connected {
		return source.Disconnect(s.id)
	}

	if c.Kind != chat.ChannelDirect && c.Kind != chat.ChannelUser {
		return source.InvalidChannel(s.id, c)
	}

	var body string
	switch content.Kind {
	case chat.ContentText:
		body = content.Text
	case chat.ContentMe:
		body = "_" + content.Text + "_"
	default:
		return source.InvalidMessage(s.id, content)
	}

	channelID, ok := s.idByChannel(c)
	if !ok {
		return source.InvalidChannel(s.id, c)
	}

	rtm.SendMessage(rtm.NewOutgoingMessage(body, channelID))
	return nil
}

func (s *Source) Reconnect() error { return s.Connect() }

func (s *Source) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownNick
}

func (s *Source) Type() source.Type { return source.TypeSlack }
