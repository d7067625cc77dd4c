package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedInitializerPrompt(t *testing.T) {
	prompt, err := Loader{}.Initializer()
	require.NoError(t, err)
	assert.Contains(t, prompt, "feature_list.json")
	assert.Contains(t, prompt, "app_spec.txt")
	assert.Contains(t, prompt, `"passes"`)
}

func TestEmbeddedCodingPrompt(t *testing.T) {
	prompt, err := Loader{}.Coding()
	require.NoError(t, err)
	assert.Contains(t, prompt, "claude-progress.txt")
	assert.Contains(t, prompt, "feature_list.json")
	assert.Contains(t, prompt, "git log")
}

func TestLoadUnknownTemplate(t *testing.T) {
	_, err := Loader{}.Load("nonexistent_prompt")
	require.Error(t, err)
}

func TestOverrideDirTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	custom := "my custom coding instructions"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CodingName+".md"), []byte(custom), 0644))

	l := Loader{Dir: dir}

	prompt, err := l.Coding()
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)

	// Templates missing from the override dir fall back to embedded.
	prompt, err = l.Initializer()
	require.NoError(t, err)
	assert.Contains(t, prompt, "feature_list.json")
}

func TestCopySpec(t *testing.T) {
	promptsDir := t.TempDir()
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(promptsDir, SpecFileName), []byte("build a todo app"), 0644))

	copied, err := Loader{Dir: promptsDir}.CopySpec(projectDir)
	require.NoError(t, err)
	assert.Equal(t, []string{SpecFileName}, copied)

	data, err := os.ReadFile(filepath.Join(projectDir, SpecFileName))
	require.NoError(t, err)
	assert.Equal(t, "build a todo app", string(data))
}

func TestCopySpecIncludesOptionalDetails(t *testing.T) {
	promptsDir := t.TempDir()
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(promptsDir, SpecFileName), []byte("spec"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(promptsDir, DetailsFileName), []byte("details"), 0644))

	copied, err := Loader{Dir: promptsDir}.CopySpec(projectDir)
	require.NoError(t, err)
	assert.Equal(t, []string{SpecFileName, DetailsFileName}, copied)
}

func TestCopySpecNeverClobbers(t *testing.T) {
	promptsDir := t.TempDir()
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(promptsDir, SpecFileName), []byte("new spec"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, SpecFileName), []byte("edited by agent"), 0644))

	copied, err := Loader{Dir: promptsDir}.CopySpec(projectDir)
	require.NoError(t, err)
	assert.Empty(t, copied)

	data, err := os.ReadFile(filepath.Join(projectDir, SpecFileName))
	require.NoError(t, err)
	assert.Equal(t, "edited by agent", string(data))
}

func TestCopySpecNoDirIsNoop(t *testing.T) {
	copied, err := Loader{}.CopySpec(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, copied)
}
