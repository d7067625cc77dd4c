package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muphy/autoforge/checklist"
	"github.com/muphy/autoforge/claude"
	"github.com/muphy/autoforge/config"
	"github.com/muphy/autoforge/exec"
	"github.com/muphy/autoforge/git"
	"github.com/muphy/autoforge/progress"
	"github.com/muphy/autoforge/prompts"
)

const goodStream = `{"type":"system","subtype":"init","session_id":"11111111-2222-3333-4444-555555555555"}
{"type":"assistant","message":{"content":[{"type":"text","text":"working"}]}}
{"type":"result","subtype":"success","result":"done","num_turns":3}
`

// hookedLauncher lets tests mutate the project directory at launch time,
// after the runner has taken its checklist snapshot.
type hookedLauncher struct {
	replay   *claude.Replay
	onLaunch func(opts claude.Options)
}

func (h *hookedLauncher) Launch(ctx context.Context, opts claude.Options) (*claude.Stream, error) {
	if h.onLaunch != nil {
		h.onLaunch(opts)
	}
	return h.replay.Launch(ctx, opts)
}

func newTestRunner(t *testing.T, launcher claude.Launcher) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := git.NewServiceWithExecutor(exec.NewMockExecutor(nil))
	return NewRunner(launcher, prompts.Loader{}, config.Default(), NewPrinter(&buf), repo, log), &buf
}

func writeChecklist(t *testing.T, dir string, passes bool) {
	t.Helper()
	content := `[{"category":"functional","description":"login","steps":["open"],"passes":false}]`
	if passes {
		content = `[{"category":"functional","description":"login","steps":["open"],"passes":true}]`
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, checklist.FileName), []byte(content), 0644))
}

func TestRunSessionInitializerSuccess(t *testing.T) {
	replay := &claude.Replay{Data: goodStream}
	runner, buf := newTestRunner(t, replay)
	dir := t.TempDir()

	result, err := runner.RunSession(context.Background(), dir, 1)
	require.NoError(t, err)

	assert.Equal(t, RoleInitializer, result.Role)
	assert.True(t, result.Success)
	assert.Equal(t, "done", result.Summary)
	assert.Empty(t, result.Violations)

	require.Len(t, replay.Launched(), 1)
	opts := replay.Launched()[0]
	assert.Equal(t, "sonnet", opts.Model)
	assert.Equal(t, dir, opts.ProjectDir)
	assert.Contains(t, opts.Prompt, checklist.FileName)

	note, err := progress.Read(dir)
	require.NoError(t, err)
	assert.Contains(t, note, "Session 1 (initializer)")
	assert.Contains(t, note, "Outcome: success")

	assert.Contains(t, buf.String(), "[Session: 11111111...]")
	assert.Contains(t, buf.String(), "done")
}

func TestRunSessionCodingRole(t *testing.T) {
	replay := &claude.Replay{Data: goodStream}
	runner, _ := newTestRunner(t, replay)
	dir := t.TempDir()
	writeChecklist(t, dir, false)

	result, err := runner.RunSession(context.Background(), dir, 4)
	require.NoError(t, err)

	assert.Equal(t, RoleCoding, result.Role)

	note, err := progress.Read(dir)
	require.NoError(t, err)
	assert.Contains(t, note, "Session 4 (coding)")
	assert.Contains(t, note, "0/1 features passing")
}

func TestRunSessionProtocolFailure(t *testing.T) {
	replay := &claude.Replay{Data: "", ExitCode: 1, Stderr: "boom"}
	runner, buf := newTestRunner(t, replay)
	dir := t.TempDir()

	result, err := runner.RunSession(context.Background(), dir, 1)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Summary, "boom")
	assert.Contains(t, buf.String(), "boom")

	note, err := progress.Read(dir)
	require.NoError(t, err)
	assert.Contains(t, note, "Outcome: failure")
}

func TestRunSessionErrorVerdict(t *testing.T) {
	stream := `{"type":"system","subtype":"init","session_id":"11111111-2222-3333-4444-555555555555"}
{"type":"result","subtype":"error_during_execution","result":"","error":"rate limited"}
`
	replay := &claude.Replay{Data: stream}
	runner, _ := newTestRunner(t, replay)

	result, err := runner.RunSession(context.Background(), t.TempDir(), 1)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Summary, "rate limited")
}

func TestRunSessionReportsChecklistRegression(t *testing.T) {
	dir := t.TempDir()
	writeChecklist(t, dir, true)

	launcher := &hookedLauncher{
		replay:   &claude.Replay{Data: goodStream},
		onLaunch: func(claude.Options) { writeChecklist(t, dir, false) },
	}
	runner, buf := newTestRunner(t, launcher)

	result, err := runner.RunSession(context.Background(), dir, 2)
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, checklist.ViolationRegressed, result.Violations[0].Kind)
	assert.Contains(t, buf.String(), "regressed")

	// Advisory only: the session outcome is still what the stream said.
	assert.True(t, result.Success)
}

func TestRunSessionEnvironmentErrorPropagates(t *testing.T) {
	replay := &claude.Replay{Err: &claude.EnvironmentError{Binary: "claude"}}
	runner, _ := newTestRunner(t, replay)

	_, err := runner.RunSession(context.Background(), t.TempDir(), 1)
	require.Error(t, err)

	var envErr *claude.EnvironmentError
	assert.True(t, errors.As(err, &envErr))
}
