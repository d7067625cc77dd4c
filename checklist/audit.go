package checklist

import (
	"fmt"
	"slices"
)

// The checklist contract says coding sessions may only flip Passes from
// false to true on existing records. That contract is enforced by prompt
// instruction, not by code, so the audit here is advisory: violations are
// reported on the session outcome and logged, never fatal.

// ViolationKind classifies one checklist contract violation.
type ViolationKind string

const (
	ViolationRemoved   ViolationKind = "removed"   // records disappeared
	ViolationAdded     ViolationKind = "added"     // records appended after initialization
	ViolationMutated   ViolationKind = "mutated"   // category/description/steps changed
	ViolationRegressed ViolationKind = "regressed" // passes flipped true to false
	ViolationDeleted   ViolationKind = "deleted"   // the whole file is gone
)

// AuditViolation is one departure from the checklist contract.
type AuditViolation struct {
	Kind   ViolationKind
	Index  int // record index, -1 for file-level violations
	Detail string
}

func (v AuditViolation) String() string {
	if v.Index < 0 {
		return fmt.Sprintf("checklist %s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("checklist record %d %s: %s", v.Index, v.Kind, v.Detail)
}

// Snapshot captures the checklist state before a session so the state
// after it can be diffed.
type Snapshot struct {
	records []FeatureRecord
	present bool
}

// Snap reads the current checklist state. An absent file is a valid
// snapshot: the following session is the initializer and may create it.
func Snap(projectDir string) (Snapshot, error) {
	if !Exists(projectDir) {
		return Snapshot{}, nil
	}
	records, err := Load(projectDir)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{records: records, present: true}, nil
}

// Diff re-reads the checklist and reports every contract violation
// relative to the snapshot. Creation of a previously absent file is not
// a violation; anything beyond Passes flipping false to true is.
func (s Snapshot) Diff(projectDir string) ([]AuditViolation, error) {
	if !s.present {
		return nil, nil
	}

	if !Exists(projectDir) {
		return []AuditViolation{{
			Kind:   ViolationDeleted,
			Index:  -1,
			Detail: FileName + " existed before the session and is now missing",
		}}, nil
	}

	current, err := Load(projectDir)
	if err != nil {
		// An unreadable file after the session is equivalent to deletion
		// for contract purposes.
		return []AuditViolation{{
			Kind:   ViolationDeleted,
			Index:  -1,
			Detail: fmt.Sprintf("%s no longer decodes: %v", FileName, err),
		}}, nil
	}

	var violations []AuditViolation

	if len(current) < len(s.records) {
		violations = append(violations, AuditViolation{
			Kind:   ViolationRemoved,
			Index:  -1,
			Detail: fmt.Sprintf("%d records before, %d after", len(s.records), len(current)),
		})
	}
	if len(current) > len(s.records) {
		violations = append(violations, AuditViolation{
			Kind:   ViolationAdded,
			Index:  -1,
			Detail: fmt.Sprintf("%d records before, %d after", len(s.records), len(current)),
		})
	}

	n := min(len(s.records), len(current))
	for i := 0; i < n; i++ {
		before, after := s.records[i], current[i]
		if before.Category != after.Category || before.Description != after.Description ||
			!slices.Equal(before.Steps, after.Steps) {
			violations = append(violations, AuditViolation{
				Kind:   ViolationMutated,
				Index:  i,
				Detail: fmt.Sprintf("fields other than passes changed (%q)", before.Description),
			})
		}
		if before.Passes && !after.Passes {
			violations = append(violations, AuditViolation{
				Kind:   ViolationRegressed,
				Index:  i,
				Detail: fmt.Sprintf("passes flipped true to false (%q)", before.Description),
			})
		}
	}

	return violations, nil
}
