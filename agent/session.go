package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/muphy/autoforge/checklist"
	"github.com/muphy/autoforge/claude"
	"github.com/muphy/autoforge/config"
	"github.com/muphy/autoforge/git"
	"github.com/muphy/autoforge/progress"
	"github.com/muphy/autoforge/prompts"
)

// SessionResult is the outcome of one agent session. Failures here are
// recoverable: the loop answers them with a fresh session.
type SessionResult struct {
	Role       Role
	Success    bool
	Summary    string // terminal result text, or the failure description
	ExitCode   int
	Violations []checklist.AuditViolation
}

// Runner executes single agent sessions.
type Runner struct {
	launcher claude.Launcher
	loader   prompts.Loader
	cfg      *config.Config
	printer  *Printer
	repo     *git.Service
	log      *slog.Logger
	now      func() time.Time
}

// NewRunner wires a session runner. The launcher is injected so tests can
// substitute canned streams.
func NewRunner(launcher claude.Launcher, loader prompts.Loader, cfg *config.Config, printer *Printer, repo *git.Service, log *slog.Logger) *Runner {
	return &Runner{
		launcher: launcher,
		loader:   loader,
		cfg:      cfg,
		printer:  printer,
		repo:     repo,
		log:      log,
		now:      time.Now,
	}
}

// RunSession runs session number n in projectDir: derive the role, send
// the matching prompt, echo the stream, audit the checklist, and append
// the bookkeeping entry to the progress note.
//
// A non-nil error is reserved for conditions no further session can fix,
// such as a missing binary. Session-level failures come back as a
// SessionResult with Success false.
func (r *Runner) RunSession(ctx context.Context, projectDir string, n int) (*SessionResult, error) {
	role := DeriveRole(projectDir)
	log := r.log.With("session", n, "role", role.String())

	prompt, err := r.prepare(role, projectDir)
	if err != nil {
		return nil, err
	}

	snapshot, err := checklist.Snap(projectDir)
	if err != nil {
		log.Warn("checklist snapshot failed", "error", err)
	}

	if timeout := r.cfg.SessionTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.printer.BeginSession()
	r.printer.Infof("Sending prompt to the agent...\n")

	stream, err := r.launcher.Launch(ctx, claude.Options{
		Prompt:       prompt,
		Model:        r.cfg.Model,
		AllowedTools: r.cfg.AllowedTools,
		ProjectDir:   projectDir,
	})
	if err != nil {
		return nil, err
	}

	for ev := range stream.Events() {
		r.printer.Event(ev)
	}

	result := &SessionResult{Role: role}
	if err := stream.Wait(); err != nil {
		log.Warn("session ended without a verdict", "error", err)
		r.printer.Infof("\n%s", err)
		result.Summary = err.Error()
	} else {
		result.Success, result.Summary = verdict(stream.TerminalEvent())
	}
	result.ExitCode = stream.ExitCode()

	result.Violations, err = snapshot.Diff(projectDir)
	if err != nil {
		log.Warn("checklist audit failed", "error", err)
	}
	r.printer.Violations(result.Violations)

	counts, err := checklist.Count(projectDir)
	if err != nil {
		log.Warn("checklist count failed", "error", err)
	}

	entry := progress.Entry{
		Session: n,
		Role:    role.String(),
		Date:    r.now(),
		Success: result.Success,
		Counts:  counts,
		Summary: result.Summary,
	}
	if err := progress.Append(projectDir, entry); err != nil {
		log.Warn("progress note append failed", "error", err)
	}

	if r.repo.HasRepo(ctx, projectDir) {
		if commits, err := r.repo.RecentCommits(ctx, projectDir, 3); err == nil && len(commits) > 0 {
			log.Info("recent commits", "subjects", commits)
		}
		if dirty, err := r.repo.HasUncommittedChanges(ctx, projectDir); err == nil && dirty {
			r.printer.Infof("Note: the session left uncommitted changes in the work tree")
		}
	}

	r.printer.Separator()
	log.Info("session finished", "success", result.Success, "progress", counts.String())
	return result, nil
}

// prepare loads the role's prompt, seeding the project directory with the
// app spec before the first session so the initializer can read it.
func (r *Runner) prepare(role Role, projectDir string) (string, error) {
	if role == RoleInitializer {
		copied, err := r.loader.CopySpec(projectDir)
		if err != nil {
			return "", fmt.Errorf("seeding project spec: %w", err)
		}
		for _, name := range copied {
			r.printer.Infof("Copied %s into project directory", name)
		}
		return r.loader.Initializer()
	}
	return r.loader.Coding()
}

// verdict maps a terminal event to the session outcome.
func verdict(ev *claude.Event) (bool, string) {
	if ev == nil {
		return false, "stream ended without a terminal event"
	}
	if ev.Kind == claude.EventError {
		return false, ev.ErrorText
	}
	return true, ev.Result
}
