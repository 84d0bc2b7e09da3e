// Package console implements the interactive Console event source: it
// reads stdin line by line and emits DirectInput events, using Go's
// goroutine + bufio.Scanner idiom to spawn a worker that feeds events
// into the sink.
package console

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/source"
)

func init() {
	source.Register(source.TypeConsole, build)
}

func build(id chat.SourceId, sink source.Sink, _ source.Config) (source.EventSource, error) {
	return &Source{id: id, sink: sink, in: os.Stdin}, nil
}

// Source is the Console adapter. Unlike the networked sources it has no
// meaningful identity: Nick always returns "" and Send is a no-op
// success.
type Source struct {
	id   chat.SourceId
	sink source.Sink
	in   io.Reader

	mu      sync.Mutex
	running bool
	eof     bool
	stop    chan struct{}
}

// Connect spawns the worker that reads stdin line by line. A second call
// stops the previous worker and starts a fresh one, matching the
// idempotent-by-replacement semantics required of every source's connect.
func (s *Source) Connect() error {
	s.mu.Lock()
	if s.eof {
		s.mu.Unlock()
		return source.EOF(s.id)
	}
	if s.running {
		close(s.stop)
	}
	s.stop = make(chan struct{})
	s.running = true
	stop := s.stop
	s.mu.Unlock()

	go s.run(stop)
	return nil
}

func (s *Source) run(stop chan struct{}) {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case <-stop:
			return
		default:
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.DirectInput(line)})
	}

	// stdin reached end-of-input; there is nothing to reconnect to.
	s.mu.Lock()
	s.running = false
	s.eof = true
	s.mu.Unlock()
	s.sink.Publish(chat.SourceEvent{Source: s.id, Event: chat.Disconnected()})
}

func (s *Source) Join(string) error { return nil }

func (s *Source) Send(chat.Channel, chat.MessageContent) error { return nil }

func (s *Source) Reconnect() error { return s.Connect() }

func (s *Source) Nick() string { return "" }

func (s *Source) Type() source.Type { return source.TypeConsole }
