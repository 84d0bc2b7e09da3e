package randomchat

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
	"github.com/fizyk20/chatbot/internal/config"
	"github.com/fizyk20/chatbot/internal/facade"
	"github.com/fizyk20/chatbot/internal/module"
)

func init() {
	module.Register("randomchat", build)
}

// saveInterval is the fixed re-save cadence for the learned dictionary.
const saveInterval = 10 * time.Minute

// Config is the randomchat module's configuration.
type Config struct {
	CommandChar string `yaml:"command_char"`
	// ReplyChance gates unprompted responses to ordinary channel text, as
	// a probability in [0, 1]. Zero (the default) means the module only
	// ever speaks when addressed with the "chat" command, keeping it
	// silent by default.
	ReplyChance float64 `yaml:"reply_chance"`
	// DictionaryPath, if set, persists the learned dictionary to a SQLite
	// file across restarts. Left empty, the dictionary is in-memory only.
	DictionaryPath string `yaml:"dictionary_path"`
}

func build(id string, raw module.Config) (module.Module, error) {
	var cfg Config
	if err := raw.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("randomchat module: %w", err)
	}
	if cfg.CommandChar == "" {
		cfg.CommandChar = config.CommandChar()
	}
	if cfg.ReplyChance < 0 || cfg.ReplyChance > 1 {
		return nil, fmt.Errorf("randomchat module: reply_chance must be in [0, 1], got %v", cfg.ReplyChance)
	}

	var store *Store
	var dict *Dictionary
	if cfg.DictionaryPath != "" {
		s, err := OpenStore(cfg.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("randomchat module: %w", err)
		}
		d, err := s.Load()
		if err != nil {
			return nil, fmt.Errorf("randomchat module: %w", err)
		}
		store, dict = s, d
	} else {
		dict = NewDictionary()
	}

	return &Module{
		id:          id,
		commandChar: cfg.CommandChar,
		replyChance: cfg.ReplyChance,
		dict:        dict,
		store:       store,
	}, nil
}

// Module is the randomchat reactor: it learns from every non-command text
// message written by someone other than the bot itself, and can be asked
// to generate one with the "chat" command.
type Module struct {
	id           string
	commandChar  string
	replyChance  float64
	dict         *Dictionary
	store        *Store
	timerStarted bool
}

func (m *Module) HandleEvent(f *facade.Facade, e chat.SourceEvent) module.Resume {
	switch e.Event.Kind {
	case chat.EvReceivedMessage:
		if cmd, ok := chat.ParseCommand(e.Event.Message, m.commandChar); ok {
			return m.handleCommand(f, e.Source, cmd)
		}
		return m.handleMessage(f, e.Source, e.Event.Message)
	case chat.EvTimer:
		return m.handleTimer(f, e.Event.Text)
	default:
		return module.ResumeContinue
	}
}

func (m *Module) handleMessage(f *facade.Facade, src chat.SourceId, msg chat.Message) module.Resume {
	if !m.timerStarted {
		m.timerStarted = true
		f.ScheduleTimer(m.id, saveInterval)
	}

	if msg.Content.Kind == chat.ContentText && msg.Author != f.Nick(src) {
		m.dict.LearnFromLine(msg.Content.Text)
	}

	if m.replyChance > 0 && rand.Float64() < m.replyChance {
		if response := m.dict.GenerateSentence(); response != "" {
			_ = f.Send(src, chat.Message{
				Channel: msg.Channel,
				Content: chat.TextContent(response),
			})
		}
	}

	return module.ResumeContinue
}

func (m *Module) handleCommand(f *facade.Facade, src chat.SourceId, cmd chat.Command) module.Resume {
	if len(cmd.Params) == 0 || cmd.Params[0] != "chat" {
		return module.ResumeContinue
	}

	response := m.dict.GenerateSentence()
	_ = f.Send(src, chat.Message{
		Channel: cmd.Channel,
		Content: chat.TextContent(response),
	})
	return module.ResumeStop
}

func (m *Module) handleTimer(f *facade.Facade, id string) module.Resume {
	if id != m.id {
		return module.ResumeContinue
	}

	if m.store != nil {
		_ = m.store.Save(m.dict)
	}
	f.ScheduleTimer(m.id, saveInterval)
	return module.ResumeStop
}
