package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muphy/autoforge/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultModel, cfg.Model)
	assert.Equal(t, -1, cfg.MaxIterations)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, "model: opus\nmax_iterations: 7\n")

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("config", path))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Model)
	assert.Equal(t, 7, cfg.MaxIterations)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "model: opus\nmax_iterations: 7\n")

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("model", "haiku"))
	require.NoError(t, cmd.Flags().Set("max-iterations", "2"))
	require.NoError(t, cmd.Flags().Set("session-timeout", "30m"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "haiku", cfg.Model)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout.Std())
}

func TestLoadConfigRejectsInvalidModelFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, cmd.Flags().Set("model", "gpt-4"))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt-4")
}
