// Package patterns implements the regex auto-responder module: every
// configured regex that matches a non-command text message fires its
// response, with no early exit (more than one pattern may respond to a
// single message).
package patterns

import (
	"fmt"
	"regexp"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/config"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
)

func init() {
	module.Register("patterns", build)
}

// patternConfig is one {pattern, response} pair as written in config.
type patternConfig struct {
	Pattern  string `yaml:"pattern"`
	Response string `yaml:"response"`
}

// Config is the patterns module's configuration.
type Config struct {
	CommandChar string          `yaml:"command_char"`
	Patterns    []patternConfig `yaml:"patterns"`
}

// pattern is a compiled {regexp, response} pair.
type pattern struct {
	re       *regexp.Regexp
	response string
}

func build(_ string, raw module.Config) (module.Module, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("patterns module: %w", err)
	}
	if cfg.CommandChar == "" {
		cfg.CommandChar = config.CommandChar()
	}

	compiled := make([]pattern, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("patterns module: invalid pattern %q: %w", p.Pattern, err)
		}
		compiled = append(compiled, pattern{re: re, response: p.Response})
	}

	return &Module{commandChar: cfg.CommandChar, patterns: compiled}, nil
}

// Module is the patterns reactor.
type Module struct {
	commandChar string
	patterns    []pattern
}

func (m *Module) HandleEvent(f *facade.Facade, e chat.SourceEvent) module.Resume {
	if e.Event.Kind != chat.EvReceivedMessage || e.Event.Message.Content.Kind != chat.ContentText {
		return module.ResumeContinue
	}
	msg := e.Event.Message

	if _, isCommand := chat.ParseCommand(msg, m.commandChar); isCommand {
		return module.ResumeContinue
	}

	for _, p := range m.patterns {
		if p.re.MatchString(msg.Content.Text) {
			_ = f.Send(e.Source, chat.Message{
				Author:  "",
				Channel: msg.Channel,
				Content: chat.TextContent(p.response),
			})
		}
	}

	return module.ResumeContinue
}
