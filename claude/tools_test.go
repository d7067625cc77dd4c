package claude

import (
	"reflect"
	"slices"
	"testing"
)

func TestComposeTools(t *testing.T) {
	tests := []struct {
		name     string
		sets     [][]string
		expected []string
	}{
		{
			name:     "single set",
			sets:     [][]string{{"Read", "Write"}},
			expected: []string{"Read", "Write"},
		},
		{
			name:     "deduplicates across sets",
			sets:     [][]string{{"Read", "Bash"}, {"Bash", "Grep"}},
			expected: []string{"Read", "Bash", "Grep"},
		},
		{
			name:     "order preserved first occurrence wins",
			sets:     [][]string{{"Write", "Read"}, {"Read", "Write"}},
			expected: []string{"Write", "Read"},
		},
		{
			name:     "empty sets",
			sets:     [][]string{{}, {}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeTools(tt.sets...)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDefaultAllowedTools(t *testing.T) {
	for _, tool := range []string{"Read", "Write", "Edit", "Glob", "Grep", "Bash", "WebSearch", "WebFetch"} {
		if !slices.Contains(DefaultAllowedTools, tool) {
			t.Errorf("expected default tools to include %q", tool)
		}
	}
}
