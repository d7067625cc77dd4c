// Package cli validates the external tools autoforge depends on.
package cli

import (
	"fmt"
	"os/exec"
	"strings"
)

// Prerequisite represents an external CLI tool.
type Prerequisite struct {
	Name        string // Command name (e.g., "claude", "git")
	Required    bool   // Whether the tool is required to run
	Description string // Human-readable description
	InstallURL  string // URL for installation instructions
}

// Prerequisites returns the tools the agent loop needs. The claude binary
// name comes from configuration so alternate installs work.
func Prerequisites(claudeBinary string) []Prerequisite {
	return []Prerequisite{
		{
			Name:        claudeBinary,
			Required:    true,
			Description: "Claude Code CLI (runs the agent sessions)",
			InstallURL:  "https://claude.ai/code",
		},
		{
			Name:        "git",
			Required:    true,
			Description: "Git version control (sessions commit their work)",
			InstallURL:  "https://git-scm.com/downloads",
		},
	}
}

// CheckResult contains the result of checking one prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string // Path to the executable if found
	Version      string // Version string if available
	Error        error
}

// Check verifies that a CLI tool is available in PATH.
func Check(prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := exec.LookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = getVersion(prereq.Name)
	return result
}

// CheckAll verifies all prerequisites and returns results in order.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = Check(prereq)
	}
	return results
}

// ValidateRequired checks that all required prerequisites are present.
// The returned error lists every missing tool with install instructions.
func ValidateRequired(prereqs []Prerequisite) error {
	var missing []string

	for _, prereq := range prereqs {
		if !prereq.Required {
			continue
		}
		if result := Check(prereq); !result.Found {
			missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
				prereq.Name, prereq.Description, prereq.InstallURL))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(missing, "\n"))
	}
	return nil
}

// getVersion attempts to get the version of a CLI tool.
func getVersion(name string) string {
	versionFlags := []string{"--version", "-v", "version"}

	for _, flag := range versionFlags {
		output, err := exec.Command(name, flag).Output()
		if err != nil {
			continue
		}
		version := strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
		if len(version) > 100 {
			version = version[:100] + "..."
		}
		if version != "" {
			return version
		}
	}
	return ""
}

// FormatCheckResults formats check results for display.
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("Prerequisites:\n")
	for _, r := range results {
		status := "✓"
		if !r.Found {
			if r.Prerequisite.Required {
				status = "✗"
			} else {
				status = "○"
			}
		}

		sb.WriteString(fmt.Sprintf("  %s %s", status, r.Prerequisite.Name))
		switch {
		case r.Found && r.Version != "":
			sb.WriteString(fmt.Sprintf(" (%s)", r.Version))
		case !r.Found && r.Prerequisite.Required:
			sb.WriteString(" [REQUIRED]")
		case !r.Found:
			sb.WriteString(" [optional]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
