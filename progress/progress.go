// Package progress appends harness bookkeeping to the shared progress
// note. Sessions write their own free-text entries to the same file; the
// harness only ever appends, so nothing a session wrote is touched.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muphy/autoforge/checklist"
)

// FileName is the progress note file name inside the project directory.
const FileName = "claude-progress.txt"

// Path returns the progress note path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Entry is one harness bookkeeping record, appended after a session.
type Entry struct {
	Session int
	Role    string
	Date    time.Time
	Success bool
	Counts  checklist.Counts
	Summary string // terminal result text, may be empty
}

// Format renders the entry as the block appended to the note.
func (e Entry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Session %d (%s) - %s ===\n", e.Session, e.Role, e.Date.Format("2006-01-02 15:04"))
	if e.Success {
		b.WriteString("Outcome: success\n")
	} else {
		b.WriteString("Outcome: failure\n")
	}
	fmt.Fprintf(&b, "Progress: %s\n", e.Counts)
	if e.Summary != "" {
		fmt.Fprintf(&b, "Result: %s\n", firstLine(e.Summary))
	}
	return b.String()
}

// Append writes the entry to the end of the progress note, creating the
// file if this is the first session.
func Append(projectDir string, e Entry) error {
	f, err := os.OpenFile(Path(projectDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open progress note: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(e.Format()); err != nil {
		return fmt.Errorf("append progress note: %w", err)
	}
	return nil
}

// Read returns the whole progress note, or an empty string when none
// exists yet. The content is opaque to the harness; it is only forwarded
// into prompts and displayed.
func Read(projectDir string) (string, error) {
	data, err := os.ReadFile(Path(projectDir))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read progress note: %w", err)
	}
	return string(data), nil
}

// firstLine truncates multi-line result text to its first line so one
// session contributes one block of bounded size.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
