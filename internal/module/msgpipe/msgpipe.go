// Package msgpipe implements the "pipe" module: it forwards text messages
// arriving on one configured (source, channel) endpoint to every other
// configured endpoint, reformatted as "[author]: text".
package msgpipe

import (
	"fmt"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
)

func init() {
	module.Register("pipe", build)
}

// Endpoint names one (source, channel) pair forwarded-to/from.
type Endpoint struct {
	Source  string `yaml:"source"`
	Channel string `yaml:"channel"`
}

// Config is the pipe module's configuration: the list of endpoints to
// forward between.
type Config struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

func build(_ string, raw module.Config) (module.Module, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("pipe module: %w", err)
	}
	return &Module{endpoints: cfg.Endpoints}, nil
}

// Module is the pipe reactor.
type Module struct {
	endpoints []Endpoint
}

func (m *Module) HandleEvent(f *facade.Facade, e chat.SourceEvent) module.Resume {
	if e.Event.Kind != chat.EvReceivedMessage || e.Event.Message.Content.Kind != chat.ContentText {
		return module.ResumeContinue
	}
	msg := e.Event.Message

	matchIdx := -1
	for i, ep := range m.endpoints {
		if ep.Source == string(e.Source) && chat.ChannelOf(ep.Channel).Equal(msg.Channel) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		return module.ResumeContinue
	}

	reformatted := chat.TextContent(fmt.Sprintf("[%s]: %s", msg.Author, msg.Content.Text))
	for i, ep := range m.endpoints {
		if i == matchIdx {
			continue
		}
		out := chat.Message{
			Author:  "",
			Channel: chat.ChannelOf(ep.Channel),
			Content: reformatted,
		}
		// A send failure on one endpoint must not prevent trying the
		// others; the facade already logged the attempt.
		_ = f.Send(chat.SourceId(ep.Source), out)
	}

	return module.ResumeContinue
}
