package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, -1, cfg.MaxIterations)
	assert.Equal(t, DefaultSessionDelay, cfg.SessionDelay.Std())
	assert.Equal(t, time.Duration(0), cfg.SessionTimeout.Std())
	assert.Contains(t, cfg.AllowedTools, "Bash")
	assert.Equal(t, "claude", cfg.Binary)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
model: opus
max_iterations: 10
session_delay: 500ms
session_timeout: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Model)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 500*time.Millisecond, cfg.SessionDelay.Std())
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout.Std())

	// Fields absent from the file keep their defaults.
	assert.Equal(t, Default().AllowedTools, cfg.AllowedTools)
	assert.Equal(t, Default().Binary, cfg.Binary)
}

func TestLoadRejectsUnknownModel(t *testing.T) {
	path := writeConfig(t, "model: gpt-4\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt-4")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "model: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "session_delay: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:   "unbounded iterations pass",
			mutate: func(c *Config) { c.MaxIterations = -1 },
		},
		{
			name:    "unknown model",
			mutate:  func(c *Config) { c.Model = "turbo" },
			wantErr: "unknown model",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.SessionDelay = Duration(-time.Second) },
			wantErr: "session_delay",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.SessionTimeout = Duration(-time.Minute) },
			wantErr: "session_timeout",
		},
		{
			name:    "empty tools",
			mutate:  func(c *Config) { c.AllowedTools = nil },
			wantErr: "allowed_tools",
		},
		{
			name:    "empty binary",
			mutate:  func(c *Config) { c.Binary = "" },
			wantErr: "binary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "autoforge.yaml")

	cfg := Default()
	cfg.Model = "haiku"
	cfg.SessionTimeout = Duration(45 * time.Minute)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
