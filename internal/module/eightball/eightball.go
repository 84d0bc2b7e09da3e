// Package eightball implements the "eightball" command module: it
// responds to an "eightball" command with a random configured response,
// substituting "%s" with the asker's name.
package eightball

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/config"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
)

func init() {
	module.Register("eightball", build)
}

// Config is the eightball module's configuration.
type Config struct {
	CommandChar string   `yaml:"command_char"`
	Responses   []string `yaml:"responses"`
}

func build(_ string, raw module.Config) (module.Module, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("eightball module: %w", err)
	}
	if cfg.CommandChar == "" {
		cfg.CommandChar = config.CommandChar()
	}
	if len(cfg.Responses) == 0 {
		cfg.Responses = []string{"Yes.", "No.", "Ask again later, %s."}
	}
	return &Module{commandChar: cfg.CommandChar, responses: cfg.Responses}, nil
}

// Module is the eightball reactor.
type Module struct {
	commandChar string
	responses   []string
}

func (m *Module) HandleEvent(f *facade.Facade, e chat.SourceEvent) module.Resume {
	if e.Event.Kind != chat.EvReceivedMessage {
		return module.ResumeContinue
	}
	cmd, ok := chat.ParseCommand(e.Event.Message, m.commandChar)
	if !ok || len(cmd.Params) == 0 {
		return module.ResumeContinue
	}
	if cmd.Params[0] != "eightball" || len(cmd.Params) < 2 {
		return module.ResumeContinue
	}

	response := m.responses[rand.IntN(len(m.responses))]
	response = strings.ReplaceAll(response, "%s", cmd.Sender)

	_ = f.Send(e.Source, chat.Message{
		Author:  "",
		Channel: cmd.Channel,
		Content: chat.TextContent(response),
	})
	return module.ResumeContinue
}
