package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/muphy/autoforge/checklist"
	"github.com/muphy/autoforge/config"
	"github.com/muphy/autoforge/git"
)

// nextSessionDelay is the short pause printed as "Preparing next session".
const nextSessionDelay = 1 * time.Second

// Loop drives sessions until the iteration cap is reached or the context
// is cancelled. Session failures are absorbed: the recovery policy for a
// crashed or truncated session is simply the next session, which re-reads
// the project state from disk.
type Loop struct {
	cfg     *config.Config
	runner  *Runner
	printer *Printer
	repo    *git.Service
	log     *slog.Logger

	// sleep is replaced in tests so loop tests run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLoop wires the agent loop.
func NewLoop(cfg *config.Config, runner *Runner, printer *Printer, repo *git.Service, log *slog.Logger) *Loop {
	return &Loop{
		cfg:     cfg,
		runner:  runner,
		printer: printer,
		repo:    repo,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Run executes sessions in projectDir until the cap is hit. A negative
// cap means unbounded; zero runs no sessions at all. The returned error
// is nil on a clean stop (cap reached or context cancelled after a
// session) and non-nil only for unrecoverable conditions.
func (l *Loop) Run(ctx context.Context, projectDir string) error {
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	l.announce(ctx, projectDir)

	limit := l.cfg.MaxIterations
	for n := 1; limit < 0 || n <= limit; n++ {
		l.printer.SessionHeader(n, DeriveRole(projectDir))

		result, err := l.runner.RunSession(ctx, projectDir, n)
		if err != nil {
			return err
		}

		if result.Success {
			l.printer.Infof("\nAgent will auto-continue in %s...", l.cfg.SessionDelay.Std())
			l.printer.ProgressSummary(projectDir)
		} else {
			l.printer.Infof("\nSession encountered an error")
			l.printer.Infof("Will retry with a fresh session...")
		}
		if err := l.sleep(ctx, l.cfg.SessionDelay.Std()); err != nil {
			break
		}

		if limit < 0 || n < limit {
			l.printer.Infof("\nPreparing next session...\n")
			if err := l.sleep(ctx, nextSessionDelay); err != nil {
				break
			}
		}
	}

	l.printer.Banner("SESSION COMPLETE")
	return nil
}

// announce prints the run header and the project's starting state.
func (l *Loop) announce(ctx context.Context, projectDir string) {
	l.printer.Banner("AUTONOMOUS CODING AGENT")
	l.printer.Infof("Project directory: %s", projectDir)
	l.printer.Infof("Model: %s", l.cfg.Model)
	if l.cfg.MaxIterations < 0 {
		l.printer.Infof("Max iterations: unlimited (runs until interrupted)")
	} else {
		l.printer.Infof("Max iterations: %d", l.cfg.MaxIterations)
	}

	if checklist.Exists(projectDir) {
		l.printer.Infof("\nContinuing existing project")
		l.printer.ProgressSummary(projectDir)
		if commits, err := l.repo.RecentCommits(ctx, projectDir, 5); err == nil && len(commits) > 0 {
			l.printer.Infof("Recent commits:")
			for _, c := range commits {
				l.printer.Infof("  %s", c)
			}
		}
	} else {
		l.printer.Infof("\nFresh start, the first session will be an initializer")
		l.printer.Infof("It writes the feature checklist before any code, so it can take a while.")
	}
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
