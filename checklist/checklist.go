// Package checklist reads the shared feature checklist that sessions
// maintain in the project directory. The file is created once by the
// initializer session and updated by coding sessions; this package never
// writes it, it only inspects it for control flow and reporting.
package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the checklist file name inside the project directory.
const FileName = "feature_list.json"

// FeatureRecord is one entry of the checklist. After initialization only
// the Passes field is expected to change, and only false to true; the
// audit in audit.go reports departures from that contract.
type FeatureRecord struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Passes      bool     `json:"passes"`
}

// Path returns the checklist path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Exists reports whether the checklist file is present. This is the sole
// signal used to choose the session role.
func Exists(projectDir string) bool {
	info, err := os.Stat(Path(projectDir))
	return err == nil && !info.IsDir()
}

// Load reads and decodes the checklist. A missing file surfaces as an
// error wrapping os.ErrNotExist.
func Load(projectDir string) ([]FeatureRecord, error) {
	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}
	var records []FeatureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode checklist %s: %w", FileName, err)
	}
	return records, nil
}

// Counts summarizes checklist completion.
type Counts struct {
	Passing int
	Total   int
}

// Percent returns the passing fraction as a percentage, 0 for an empty
// checklist.
func (c Counts) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Passing) / float64(c.Total) * 100
}

func (c Counts) String() string {
	return fmt.Sprintf("%d/%d features passing (%.1f%%)", c.Passing, c.Total, c.Percent())
}

// Count loads the checklist and tallies passing records. A missing file
// yields zero counts and no error, so callers can report progress before
// the initializer has run.
func Count(projectDir string) (Counts, error) {
	records, err := Load(projectDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Counts{}, nil
		}
		return Counts{}, err
	}
	counts := Counts{Total: len(records)}
	for _, r := range records {
		if r.Passes {
			counts.Passing++
		}
	}
	return counts, nil
}
