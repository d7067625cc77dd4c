package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muphy/autoforge/checklist"
)

func TestDeriveRole(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, RoleInitializer, DeriveRole(dir))

	path := filepath.Join(dir, checklist.FileName)
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	assert.Equal(t, RoleCoding, DeriveRole(dir))
}

func TestDeriveRoleMissingDir(t *testing.T) {
	assert.Equal(t, RoleInitializer, DeriveRole(filepath.Join(t.TempDir(), "nope")))
}
