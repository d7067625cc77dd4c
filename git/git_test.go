package git

import (
	"context"
	"errors"
	"testing"

	"github.com/muphy/autoforge/exec"
)

func TestHasRepo(t *testing.T) {
	tests := []struct {
		name     string
		response exec.MockResponse
		want     bool
	}{
		{
			name:     "inside work tree",
			response: exec.MockResponse{Stdout: []byte("true\n")},
			want:     true,
		},
		{
			name:     "not a repository",
			response: exec.MockResponse{Err: errors.New("exit status 128")},
			want:     false,
		},
		{
			name:     "bare repository",
			response: exec.MockResponse{Stdout: []byte("false\n")},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := exec.NewMockExecutor(nil)
			mock.AddExactMatch("git", []string{"rev-parse", "--is-inside-work-tree"}, tt.response)

			svc := NewServiceWithExecutor(mock)
			if got := svc.HasRepo(context.Background(), "/tmp/project"); got != tt.want {
				t.Errorf("HasRepo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecentCommits(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"log", "--oneline", "-5"}, exec.MockResponse{
		Stdout: []byte("abc1234 Add login form\ndef5678 Initial commit\n"),
	})

	svc := NewServiceWithExecutor(mock)
	commits, err := svc.RecentCommits(context.Background(), "/tmp/project", 5)
	if err != nil {
		t.Fatalf("RecentCommits() error = %v", err)
	}

	if len(commits) != 2 {
		t.Fatalf("Expected 2 commits, got %d", len(commits))
	}
	if commits[0] != "abc1234 Add login form" {
		t.Errorf("Unexpected first commit: %q", commits[0])
	}

	calls := mock.GetCalls()
	if len(calls) != 1 || calls[0].Dir != "/tmp/project" {
		t.Errorf("Expected one call in project dir, got %+v", calls)
	}
}

func TestRecentCommitsEmptyRepo(t *testing.T) {
	mock := exec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"log", "--oneline", "-5"}, exec.MockResponse{
		Err: errors.New("exit status 128"),
	})

	svc := NewServiceWithExecutor(mock)
	commits, err := svc.RecentCommits(context.Background(), "/tmp/project", 5)
	if err != nil {
		t.Fatalf("RecentCommits() on empty repo should not error: %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("Expected no commits, got %v", commits)
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	tests := []struct {
		name     string
		response exec.MockResponse
		want     bool
		wantErr  bool
	}{
		{
			name:     "clean tree",
			response: exec.MockResponse{Stdout: []byte("")},
			want:     false,
		},
		{
			name:     "dirty tree",
			response: exec.MockResponse{Stdout: []byte(" M main.go\n?? notes.txt\n")},
			want:     true,
		},
		{
			name:     "status fails",
			response: exec.MockResponse{Err: errors.New("exit status 128")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := exec.NewMockExecutor(nil)
			mock.AddExactMatch("git", []string{"status", "--porcelain"}, tt.response)

			svc := NewServiceWithExecutor(mock)
			got, err := svc.HasUncommittedChanges(context.Background(), "/tmp/project")
			if (err != nil) != tt.wantErr {
				t.Fatalf("HasUncommittedChanges() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HasUncommittedChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}
