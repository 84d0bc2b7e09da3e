// Package config handles chatbot configuration loading: a single YAML
// document describing the command prefix, the log folder, the configured
// sources, and the configured modules.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fizyk20/chatbot/internal/chat"
)

// DefaultSearchPaths returns the config file search order. An explicit
// path (from -config) is checked first by FindConfig; otherwise these are
// tried in order.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "chatbot", "config.yaml"))
	}
	paths = append(paths, "/config/config.yaml") // Container convention
	paths = append(paths, "/etc/chatbot/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty it must
// exist. Otherwise DefaultSearchPaths is searched in order.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// SourceDef is one entry of the sources map: a source type tag plus its
// opaque, type-specific configuration.
type SourceDef struct {
	Type   string    `yaml:"type"`
	Config yaml.Node `yaml:"config"`
}

// Decode implements source.Config by deferring to the yaml.Node's own
// decode, so each source type only pays for decoding once its concrete
// type tag is known.
func (d SourceDef) Decode(into any) error {
	if d.Config.Kind == 0 {
		return fmt.Errorf("no config provided")
	}
	return d.Config.Decode(into)
}

// ModuleDef is one entry of the modules map: a registered type tag,
// dispatch priority, per-source event-type subscriptions, and opaque
// module-specific configuration.
type ModuleDef struct {
	Type          string              `yaml:"type"`
	Priority      uint8               `yaml:"priority"`
	Subscriptions map[string][]string `yaml:"subscriptions"`
	Config        yaml.Node           `yaml:"config"`
}

// Decode implements module.Config the same way SourceDef.Decode does.
func (d ModuleDef) Decode(into any) error {
	if d.Config.Kind == 0 {
		return nil // modules with no config (e.g. pipe with defaults) are fine
	}
	return d.Config.Decode(into)
}

// Config holds the whole chatbot configuration document. Sources and
// Modules are keyed for lookup by id, but since a module's priority ties
// break on "configured order" (invariant: "iteration order within a
// priority must be deterministic for a given configuration"), the
// document's original mapping order is preserved separately in
// SourceOrder/ModuleOrder rather than relying on Go's randomized map
// iteration.
type Config struct {
	CommandChar string
	LogFolder   string
	LogLevel    string
	// ObsWebAddr, if non-empty, is the listen address (e.g. ":8090") for
	// the read-only observability WebSocket endpoint (obsweb
	// wiring). Left empty, the endpoint is not started.
	ObsWebAddr  string
	Sources     map[string]SourceDef
	Modules     map[string]ModuleDef
	SourceOrder []string
	ModuleOrder []string

	path string
}

// UnmarshalYAML decodes the document while recording the original
// mapping-key order of sources/modules, using yaml.Node's own mapping
// Content (alternating key, value nodes in document order) rather than
// decoding straight into a Go map.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		CommandChar string    `yaml:"command_char"`
		LogFolder   string    `yaml:"log_folder"`
		LogLevel    string    `yaml:"log_level"`
		ObsWebAddr  string    `yaml:"obsweb_addr"`
		Sources     yaml.Node `yaml:"sources"`
		Modules     yaml.Node `yaml:"modules"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.CommandChar = raw.CommandChar
	c.LogFolder = raw.LogFolder
	c.LogLevel = raw.LogLevel
	c.ObsWebAddr = raw.ObsWebAddr
	c.Sources, c.SourceOrder = decodeOrderedMapping[SourceDef](&raw.Sources)
	c.Modules, c.ModuleOrder = decodeOrderedMapping[ModuleDef](&raw.Modules)
	return nil
}

// decodeOrderedMapping decodes a YAML mapping node into a Go map plus the
// slice of keys in document order. Returns empty values for a node that
// was never set (Kind == 0).
func decodeOrderedMapping[V any](n *yaml.Node) (map[string]V, []string) {
	m := make(map[string]V)
	var order []string
	if n.Kind != yaml.MappingNode {
		return m, order
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var v V
		if err := n.Content[i+1].Decode(&v); err != nil {
			continue
		}
		m[key] = v
		order = append(order, key)
	}
	return m, order
}

// MarshalYAML rebuilds the document in SourceOrder/ModuleOrder order, so
// round-tripping through Load then Save preserves the tie-break order a
// reload would otherwise have depended on.
func (c *Config) MarshalYAML() (any, error) {
	root := yaml.Node{Kind: yaml.MappingNode}
	addScalar := func(key, value string) {
		if value == "" {
			return
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}
	addScalar("command_char", c.CommandChar)
	addScalar("log_folder", c.LogFolder)
	addScalar("log_level", c.LogLevel)
	addScalar("obsweb_addr", c.ObsWebAddr)

	sources := yaml.Node{Kind: yaml.MappingNode}
	for _, id := range c.SourceOrder {
		var valueNode yaml.Node
		if err := valueNode.Encode(c.Sources[id]); err != nil {
			return nil, err
		}
		sources.Content = append(sources.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: id}, &valueNode)
	}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "sources"}, &sources)

	modules := yaml.Node{Kind: yaml.MappingNode}
	for _, id := range c.ModuleOrder {
		var valueNode yaml.Node
		if err := valueNode.Encode(c.Modules[id]); err != nil {
			return nil, err
		}
		modules.Content = append(modules.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: id}, &valueNode)
	}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "modules"}, &modules)

	return &root, nil
}

// Load reads configuration from a YAML file, expands environment
// variables, applies defaults, and validates the result. After Load
// returns successfully every field is usable without further checks.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g. ${IRC_PASSWORD}) — a convenience
	// for container deployments.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	SetCommandChar(cfg.CommandChar)

	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.CommandChar == "" {
		c.CommandChar = "!"
	}
	if c.LogFolder == "" {
		c.LogFolder = "./logs"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the configuration is internally consistent. It
// runs after applyDefaults. Returns an error describing the first problem
// found, or nil.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, reserved := c.Sources[string(chat.Core)]; reserved {
		return fmt.Errorf("source id %q is reserved for the core and must not be configured", chat.Core)
	}
	for id, s := range c.Sources {
		if s.Type == "" {
			return fmt.Errorf("source %q: missing type", id)
		}
	}
	for id, m := range c.Modules {
		if m.Type == "" {
			return fmt.Errorf("module %q: missing type", id)
		}
	}
	return nil
}

// Save writes the configuration back to the file it was loaded from. Not
// called automatically on mutation — saving is a distinct, explicit
// operation.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config: no path to save to")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
