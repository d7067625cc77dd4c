package claude

import (
	"context"
	"strings"
	"sync"

	"github.com/muphy/autoforge/logger"
)

// Replay is a Launcher that feeds a canned byte stream through the same
// parsing and classification path as a real subprocess, without spawning
// one. It exists for tests of the session runner and agent loop.
type Replay struct {
	Data     string // newline-delimited stream-json output
	ExitCode int
	Stderr   string
	Err      error // when set, Launch fails with this error instead

	mu       sync.Mutex
	launched []Options
}

// Launch replays the canned stream. The options are recorded for later
// inspection via Launched.
func (r *Replay) Launch(_ context.Context, opts Options) (*Stream, error) {
	r.mu.Lock()
	r.launched = append(r.launched, opts)
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	s := newStream(logger.WithComponent("replay"), nil)
	go func() {
		s.consume(strings.NewReader(r.Data))
		s.finish(r.ExitCode, r.Stderr)
	}()
	return s, nil
}

// Launched returns a copy of the options passed to each Launch call.
func (r *Replay) Launched() []Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Options, len(r.launched))
	copy(out, r.launched)
	return out
}

// Ensure Replay implements Launcher at compile time.
var _ Launcher = (*Replay)(nil)
