package ircsource

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"

	irc "gopkg.in/irc.v3"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

func init() {
	source.Register(source.TypeIRC, build)
}

// Config is the IRC source's type-specific configuration, decoded from
// the opaque per-source config document. It must satisfy the underlying
// IRC client's schema, including a nickname.
type Config struct {
	Server           string   `yaml:"server"`
	Port             int      `yaml:"port"`
	TLS              bool     `yaml:"tls"`
	Nickname         string   `yaml:"nickname"`
	Channels         []string `yaml:"channels"`
	NickservPassword string   `yaml:"nickserv_password"`
}

func build(id chat.SourceId, sink source.Sink, raw source.Config) (source.EventSource, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("irc source %q: %w", id, err)
	}
	if cfg.Nickname == "" {
		return nil, fmt.Errorf("irc source %q: missing required field nickname", id)
	}
	if cfg.Server == "" {
		return nil, fmt.Errorf("irc source %q: missing required field server", id)
	}
	if cfg.Port == 0 {
		cfg.Port = 6667
	}
	return &Source{id: id, sink: sink, cfg: cfg}, nil
}

// Source is the IRC adapter. It owns the underlying TCP/TLS connection
// and the irc.v3 *Client, re-created on each Connect/Reconnect.
type Source struct {
	id   chat.SourceId
	sink source.Sink
	cfg  Config

	mu      sync.Mutex
	conn    net.Conn
	client  *irc.Client
	state   source.State
}

func (s *Source) Connect() error {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	addr := net.JoinHostPort(s.cfg.Server, strconv.Itoa(s.cfg.Port))
	var conn net.Conn
	var err error
	if s.cfg.TLS {
		conn, err = tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Server})
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		s.mu.Lock()
		s.state = source.Disconnected
		s.mu.Unlock()
		return source.ConnectionError(s.id, "dial failed", err)
	}

	client := irc.NewClient(conn, irc.ClientConfig{
		Nick:    s.cfg.Nickname,
		User:    s.cfg.Nickname,
		Name:    s.cfg.Nickname,
		Handler: irc.HandlerFunc(s.handle),
	})

	s.mu.Lock()
	s.conn = conn
	s.client = client
	s.state = source.Connected
	s.mu.Unlock()

	go func() {
		runErr := client.Run()
		s.mu.Lock()
		s.state = source.Disconnected
		s.mu.Unlock()
		if runErr != nil {
			s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.OtherEvent(fmt.Sprintf("irc run ended: %v", runErr))})
		}
		s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Disconnected()})
	}()

	return nil
}

// handle is the irc.v3 Handler: identifies with NickServ and joins
// configured channels on welcome (001), then translates every other
// inbound message via Translate and publishes the results.
func (s *Source) handle(c *irc.Client, m *irc.Message) {
	if m.Command == "001" {
		if s.cfg.NickservPassword != "" {
			c.Writef("PRIVMSG NickServ :IDENTIFY %s", s.cfg.NickservPassword)
		}
		for _, ch := range s.cfg.Channels {
			c.Writef("JOIN %s", ch)
		}
		s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Connected()})
		return
	}

	for _, e := range Translate(m) {
		s.sink.Publish(chat.SourceEvent{Source: s.id, Event: e})
	}
}

func (s *Source) Join(channel string) error {
	s.mu.Lock()
	client := s.client
	state := s.state
	s.mu.Unlock()
	if state != source.Connected {
		return source.Disconnect(s.id)
	}
	return client.Writef("JOIN %s", channel)
}

// Send emits a PRIVMSG to the resolved target. Only Channel and User
// destinations are valid for IRC; Group and None are rejected with
// InvalidChannel, and only Text/Me content is supported — Image yields
// InvalidMessage.
func (s *Source) Send(c chat.Channel, content chat.MessageContent) error {
	s.mu.Lock()
	client := s.client
	state := s.state
	s.mu.Unlock()

	if state != source.Connected {
		return source.Disconnect(s.id)
	}

	var target string
	switch c.Kind {
	case chat.ChannelDirect, chat.ChannelUser:
		target = c.Name
	default:
		return source.InvalidChannel(s.id, c)
	}

	var body string
	switch content.Kind {
	case chat.ContentText:
		body = content.Text
	case chat.ContentMe:
		body = "\x01ACTION " + content.Text + "\x01"
	default:
		return source.InvalidMessage(s.id, content)
	}

	if err := client.Writef("PRIVMSG %s :%s", target, body); err != nil {
		return source.ProtocolError(s.id, err)
	}
	return nil
}

func (s *Source) Reconnect() error { return s.Connect() }

func (s *Source) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return ""
	}
	return s.client.CurrentNick()
}

func (s *Source) Type() source.Type { return source.TypeIRC }
