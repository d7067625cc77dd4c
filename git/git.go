// Package git inspects the project repository the agent sessions commit
// to. The harness never writes to the repository itself; sessions own all
// commits, so only read operations live here.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/muphy/autoforge/exec"
)

// Service provides read-only git operations with explicit dependency
// injection. Each instance holds its own executor, so tests can substitute
// a mock without global state.
type Service struct {
	executor exec.CommandExecutor
}

// NewService creates a Service backed by the real git binary.
func NewService() *Service {
	return &Service{executor: exec.NewRealExecutor()}
}

// NewServiceWithExecutor creates a Service with a custom executor.
func NewServiceWithExecutor(executor exec.CommandExecutor) *Service {
	return &Service{executor: executor}
}

// HasRepo reports whether dir is inside a git work tree.
func (s *Service) HasRepo(ctx context.Context, dir string) bool {
	output, err := s.executor.Output(ctx, dir, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(output)) == "true"
}

// RecentCommits returns up to n subject lines from the log, newest first.
// An empty repository yields an empty slice, not an error.
func (s *Service) RecentCommits(ctx context.Context, dir string, n int) ([]string, error) {
	output, err := s.executor.Output(ctx, dir, "git", "log", "--oneline", fmt.Sprintf("-%d", n))
	if err != nil {
		// git log fails on a repo with no commits yet.
		return nil, nil
	}

	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// HasUncommittedChanges reports whether the work tree has staged or
// unstaged changes, including untracked files.
func (s *Service) HasUncommittedChanges(ctx context.Context, dir string) (bool, error) {
	output, err := s.executor.Output(ctx, dir, "git", "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status failed: %w", err)
	}
	return strings.TrimSpace(string(output)) != "", nil
}
