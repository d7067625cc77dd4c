// Package config loads and validates autoforge's harness configuration.
//
// Configuration lives in autoforge.yaml (located via the paths package).
// A missing file is not an error: Load returns the defaults so a fresh
// install works without any setup. Values from the file override the
// defaults field by field, and command-line flags override both (the cli
// package applies flags after Load).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muphy/autoforge/claude"
	"github.com/muphy/autoforge/paths"
)

// Models lists the model aliases accepted by the claude CLI's --model flag.
var Models = []string{"sonnet", "opus", "haiku"}

// DefaultModel is used when neither the config file nor flags choose one.
const DefaultModel = "sonnet"

// DefaultSessionDelay is the pause between consecutive agent sessions.
const DefaultSessionDelay = 3 * time.Second

// Duration wraps time.Duration so YAML values can be written in the
// usual Go form ("3s", "2m30s").
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML parses a duration string such as "90s" or "5m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"3s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds every tunable of the agent loop.
type Config struct {
	// Model is the claude model alias passed to every session.
	Model string `yaml:"model"`

	// MaxIterations caps the number of sessions the loop runs.
	// Negative means unbounded; zero runs no sessions at all.
	MaxIterations int `yaml:"max_iterations"`

	// SessionDelay is the pause between consecutive sessions.
	SessionDelay Duration `yaml:"session_delay"`

	// SessionTimeout bounds a single session's wall-clock time.
	// Zero disables the timeout.
	SessionTimeout Duration `yaml:"session_timeout"`

	// AllowedTools is passed to the claude CLI's --allowed-tools flag.
	AllowedTools []string `yaml:"allowed_tools"`

	// PromptsDir optionally overrides the embedded prompt templates.
	PromptsDir string `yaml:"prompts_dir"`

	// Binary is the claude executable to invoke.
	Binary string `yaml:"binary"`
}

// Default returns a Config with every field set to its built-in default.
func Default() *Config {
	return &Config{
		Model:         DefaultModel,
		MaxIterations: -1,
		SessionDelay:  Duration(DefaultSessionDelay),
		AllowedTools:  slices.Clone(claude.DefaultAllowedTools),
		Binary:        claude.DefaultBinary,
	}
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = paths.ConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config without modifying it.
func (c *Config) Validate() error {
	if !slices.Contains(Models, c.Model) {
		return fmt.Errorf("unknown model %q (valid: %v)", c.Model, Models)
	}
	if c.SessionDelay < 0 {
		return fmt.Errorf("session_delay must not be negative, got %s", c.SessionDelay.Std())
	}
	if c.SessionTimeout < 0 {
		return fmt.Errorf("session_timeout must not be negative, got %s", c.SessionTimeout.Std())
	}
	if len(c.AllowedTools) == 0 {
		return errors.New("allowed_tools must not be empty")
	}
	if c.Binary == "" {
		return errors.New("binary must not be empty")
	}
	return nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
