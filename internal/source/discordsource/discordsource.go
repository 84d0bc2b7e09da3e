// Package discordsource implements the Discord event source. Wire
// transport is github.com/bwmarrin/discordgo.
package discordsource

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

func init() {
	source.Register(source.TypeDiscord, build)
}

// Config is the Discord source's configuration: requires a "token".
type Config struct {
	Token string `yaml:"token"`
}

func build(id chat.SourceId, sink source.Sink, raw source.Config) (source.EventSource, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("discord source %q: %w", id, err)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord source %q: missing required field token", id)
	}
	return &Source{id: id, sink: sink, token: cfg.Token}, nil
}

// Source is the Discord adapter.
type Source struct {
	id    chat.SourceId
	sink  source.Sink
	token string

	mu     sync.Mutex
	dg     *discordgo.Session
	selfID string
	state  source.State
}

func (s *Source) Connect() error {
	s.mu.Lock()
	if s.dg != nil {
		s.dg.Close()
	}
	s.mu.Unlock()

	dg, err := discordgo.New("Bot " + s.token)
	if err != nil {
		return source.ConnectionError(s.id, "session create failed", err)
	}
	dg.AddHandler(s.onMessageCreate)
	dg.AddHandler(s.onReady)

	if err := dg.Open(); err != nil {
		return source.ConnectionError(s.id, "gateway open failed", err)
	}

	s.mu.Lock()
	s.dg = dg
	s.state = source.Connected
	s.mu.Unlock()

	return nil
}

func (s *Source) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	s.mu.Lock()
	if r.User != nil {
		s.selfID = r.User.ID
	}
	s.mu.Unlock()
	s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Connected()})
}

// onMessageCreate translates one incoming message, ignoring messages
// authored by the bot itself. For a guild channel, author is the
// member's display name when resolvable, else the raw username; for a
// DM, author is the other party's name and the channel is User(name).
func (s *Source) onMessageCreate(sess *discordgo.Session, m *discordgo.MessageCreate) {
	s.mu.Lock()
	selfID := s.selfID
	s.mu.Unlock()
	if m.Author == nil || m.Author.ID == selfID {
		return
	}

	ch, err := sess.State.Channel(m.ChannelID)
	if err != nil || ch == nil {
		s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.OtherEvent(fmt.Sprintf("message in unresolved channel %s", m.ChannelID))})
		return
	}

	var author string
	var dest chat.Channel
	if ch.Type == discordgo.ChannelTypeDM {
		author = m.Author.Username
		dest = chat.UserOf(m.Author.Username)
	} else {
		author = m.Author.Username
		if member, err := sess.State.Member(ch.GuildID, m.Author.ID); err == nil && member != nil && member.Nick != "" {
			author = member.Nick
		}
		dest = chat.ChannelOf(ch.Name)
	}

	s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.ReceivedMessage(chat.Message{
		Author:  author,
		Channel: dest,
		Content: chat.TextContent(m.Content),
	})})
}

func (s *Source) Join(string) error { return nil }

// resolveChannelID scans known guilds/channels/members to turn a Channel
// or User name into a Discord channel id to post to.
func (s *Source) resolveChannelID(c chat.Channel) (string, error) {
	s.mu.Lock()
	dg := s.dg
	s.mu.Unlock()
	if dg == nil {
		return "", source.Disconnect(s.id)
	}

	switch c.Kind {
	case chat.ChannelDirect:
		for _, g := range dg.State.Guilds {
			for _, ch := range g.Channels {
				if ch.Name == c.Name {
					return ch.ID, nil
				}
			}
		}
		return "", source.InvalidChannel(s.id, c)

	case chat.ChannelUser:
		for _, g := range dg.State.Guilds {
			for _, mem := range g.Members {
				if mem.User != nil && mem.User.Username == c.Name {
					privCh, err := dg.UserChannelCreate(mem.User.ID)
					if err != nil {
						return "", source.ProtocolError(s.id, err)
					}
					return privCh.ID, nil
				}
			}
		}
		return "", source.InvalidChannel(s.id, c)

	default:
		return "", source.InvalidChannel(s.id, c)
	}
}

func (s *Source) Send(c chat.Channel, content chat.MessageContent) error {
	if content.Kind != chat.ContentText && content.Kind != chat.ContentMe {
		return source.InvalidMessage(s.id, content)
	}

	channelID, err := s.resolveChannelID(c)
	if err != nil {
		return err
	}

	body := content.Text
	if content.Kind == chat.ContentMe {
		body = "*" + content.Text + "*"
	}

	s.mu.Lock()
	dg := s.dg
	s.mu.Unlock()
	if _, err := dg.ChannelMessageSend(channelID, body); err != nil {
		return source.ProtocolError(s.id, err)
	}
	return nil
}

func (s *Source) Reconnect() error { return s.Connect() }

func (s *Source) Nick() string {
	s.mu.Lock()
	dg := s.dg
	s.mu.Unlock()
	if dg == nil || dg.State == nil || dg.State.User == nil {
		return ""
	}
	return dg.State.User.Username
}

func (s *Source) Type() source.Type { return source.TypeDiscord }
