// Package agent runs the autonomous coding loop: it derives the role for
// each session from the project state, launches the claude CLI with the
// matching prompt, echoes the stream to the terminal, and records the
// outcome in the progress note.
package agent

import (
	"github.com/muphy/autoforge/checklist"
)

// Role selects which prompt a session receives.
type Role string

const (
	// RoleInitializer bootstraps the project: feature checklist, scaffold,
	// first commit. Used exactly once, while no checklist exists.
	RoleInitializer Role = "initializer"

	// RoleCoding continues an existing project, one feature at a time.
	RoleCoding Role = "coding"
)

func (r Role) String() string { return string(r) }

// DeriveRole picks the session role from the project directory alone.
// The checklist file is the only marker: once it exists, every later
// session is a coding session, even right after an initializer crash.
func DeriveRole(projectDir string) Role {
	if checklist.Exists(projectDir) {
		return RoleCoding
	}
	return RoleInitializer
}
