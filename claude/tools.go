package claude

// Tool sets are composable building blocks for allowed-tool lists.
// The loop composes them explicitly via ComposeTools; users can replace
// the whole list through configuration.

// ToolSetFiles contains the file-operation tools every session needs.
var ToolSetFiles = []string{
	"Read",
	"Write",
	"Edit",
	"Glob",
	"Grep",
}

// ToolSetShell contains unrestricted shell access. Sessions build and run
// the project, so restricting Bash would defeat the point.
var ToolSetShell = []string{
	"Bash",
}

// ToolSetWeb contains web access tools.
var ToolSetWeb = []string{
	"WebSearch",
	"WebFetch",
}

// DefaultAllowedTools is the full set passed to every session unless
// overridden in config. Composed from ToolSetFiles + ToolSetShell + ToolSetWeb.
var DefaultAllowedTools = ComposeTools(ToolSetFiles, ToolSetShell, ToolSetWeb)

// ComposeTools merges multiple tool sets into a single deduplicated slice.
// Order is preserved (first occurrence wins).
func ComposeTools(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, set := range sets {
		for _, tool := range set {
			if _, exists := seen[tool]; !exists {
				seen[tool] = struct{}{}
				result = append(result, tool)
			}
		}
	}
	return result
}
