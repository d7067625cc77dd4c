package claude

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/muphy/autoforge/logger"
)

// DefaultBinary is the assistant CLI binary name resolved from PATH.
const DefaultBinary = "claude"

// Options describe one session invocation.
type Options struct {
	Prompt       string
	Model        string
	AllowedTools []string
	SystemPrompt string // optional, passed via --system-prompt
	Resume       string // optional session ID to resume
	ProjectDir   string // working directory for the subprocess
}

// Launcher abstracts session launch so the agent loop can be driven by
// canned streams in tests (see Replay).
type Launcher interface {
	Launch(ctx context.Context, opts Options) (*Stream, error)
}

// Client launches the Claude CLI as a one-shot subprocess per session.
// No retry is performed here; retry policy belongs to the caller.
type Client struct {
	binary string
}

// NewClient creates a client for the given binary name. An empty name
// selects DefaultBinary.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary}
}

// BuildCommandArgs builds the claude invocation for one session.
// Exported so tests can verify argument construction without spawning:
// the result is a pure function of the options.
func BuildCommandArgs(opts Options) []string {
	args := []string{
		"-p", opts.Prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--allowed-tools", strings.Join(opts.AllowedTools, ","),
		"--permission-mode", "bypassPermissions",
		"--model", opts.Model,
	}
	if opts.SystemPrompt != "" {
		args = append(args, "--system-prompt", opts.SystemPrompt)
	}
	if opts.Resume != "" {
		args = append(args, "--resume", opts.Resume)
	}
	return args
}

// Launch spawns one session and returns its event stream. It fails with
// *EnvironmentError before any process is spawned when the binary cannot
// be resolved.
func (c *Client) Launch(ctx context.Context, opts Options) (*Stream, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return nil, &EnvironmentError{Binary: c.binary, Err: err}
	}

	streamID := uuid.NewString()
	log := logger.WithSession(streamID)

	cmd := exec.CommandContext(ctx, c.binary, BuildCommandArgs(opts)...)
	cmd.Dir = opts.ProjectDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, &EnvironmentError{Binary: c.binary, Err: err}
	}
	log.Info("session process started", "pid", cmd.Process.Pid, "model", opts.Model, "dir", opts.ProjectDir)

	s := newStream(log, openStreamLog(streamID, log))
	go func() {
		var stderrText string
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			stderrText = readStderr(stderr, log)
		}()
		s.consume(stdout)
		wg.Wait()
		waitErr := cmd.Wait()
		log.Info("session process exited", "exitCode", exitCodeOf(waitErr))
		s.finish(exitCodeOf(waitErr), stderrText)
	}()
	return s, nil
}

// Stream is the lazy, forward-only event sequence of one session. Events
// are delivered in the exact order emitted by the subprocess. The sequence
// is not restartable; a new Launch creates a new Stream.
//
// Callers must drain Events before calling Wait: the reader goroutine
// blocks on undelivered events, and the process is not reaped until the
// reader finishes.
type Stream struct {
	events    chan Event
	done      chan struct{}
	log       *slog.Logger
	streamLog *os.File

	mu        sync.Mutex
	terminal  *Event
	truncated string
	exitCode  int
	stderr    string
}

func newStream(log *slog.Logger, streamLog *os.File) *Stream {
	return &Stream{
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
		log:       log,
		streamLog: streamLog,
	}
}

// openStreamLog opens the per-session raw stream log. Returns nil when the
// log directory is unavailable; raw logging is best-effort.
func openStreamLog(streamID string, log *slog.Logger) *os.File {
	path, err := logger.StreamLogPath(streamID)
	if err != nil {
		log.Warn("failed to get stream log path", "error", err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Warn("failed to open stream log file", "path", path, "error", err)
		return nil
	}
	return f
}

// Events returns the event channel. It is closed when the subprocess
// closes its output.
func (s *Stream) Events() <-chan Event { return s.events }

// consume reads lines until EOF, decoding each into an event. Decode
// failures are logged and skipped; they never corrupt parsing of later
// lines. A non-empty undecodable partial line at EOF is recorded as
// truncation.
func (s *Stream) consume(r io.Reader) {
	defer close(s.events)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			s.handleLine(line, err != nil)
		}
		if err != nil {
			if err != io.EOF {
				s.log.Debug("error reading stream", "error", err)
			}
			return
		}
	}
}

func (s *Stream) handleLine(line string, atEOF bool) {
	s.writeStreamLog(line)

	ev, err := ParseLine(line)
	if err != nil {
		if atEOF {
			// The final line was cut off before its newline and did
			// not decode - the message was truncated mid-write.
			s.mu.Lock()
			s.truncated = strings.TrimSpace(line)
			s.mu.Unlock()
			return
		}
		s.log.Warn("skipping undecodable stream line", "error", err)
		return
	}
	if ev == nil {
		return
	}

	if ev.Terminal() {
		s.mu.Lock()
		s.terminal = ev
		s.mu.Unlock()
	}
	s.events <- *ev
}

func (s *Stream) writeStreamLog(line string) {
	if s.streamLog == nil {
		return
	}
	fmt.Fprintln(s.streamLog, strings.TrimRight(line, "\n"))
}

// finish records the exit status and releases Wait.
func (s *Stream) finish(exitCode int, stderr string) {
	s.mu.Lock()
	s.exitCode = exitCode
	s.stderr = stderr
	s.mu.Unlock()
	if s.streamLog != nil {
		s.streamLog.Close()
	}
	close(s.done)
}

// Wait blocks until the subprocess has exited and the stream is fully
// drained, then classifies the termination. A parsed terminal event
// (result or error) yields nil - the event itself carries the session
// verdict. A truncated final message yields *StreamTruncated; any other
// termination without a terminal event yields *ProtocolError.
func (s *Stream) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal != nil {
		return nil
	}
	if s.truncated != "" {
		return &StreamTruncated{Partial: s.truncated}
	}
	return &ProtocolError{ExitCode: s.exitCode, Stderr: s.stderr}
}

// TerminalEvent returns the parsed terminal event, or nil when the stream
// ended without one. Valid after Wait returns.
func (s *Stream) TerminalEvent() *Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// ExitCode returns the subprocess exit code. Valid after Wait returns.
func (s *Stream) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// Stderr returns the captured standard error text. Valid after Wait returns.
func (s *Stream) Stderr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stderr
}

// readStderr captures all stderr content. Stderr is free-text diagnostics,
// never machine-parsed; it is surfaced on protocol errors.
func readStderr(r io.Reader, log *slog.Logger) string {
	data, err := io.ReadAll(r)
	if err != nil {
		log.Debug("error reading stderr", "error", err)
		return ""
	}
	text := strings.TrimSpace(string(data))
	if text != "" {
		log.Debug("captured stderr", "content", truncateForLog(text))
	}
	return text
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Ensure Client implements Launcher at compile time.
var _ Launcher = (*Client)(nil)
