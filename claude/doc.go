// Package claude wraps the Claude CLI for one-shot autonomous sessions.
//
// The package is organized into focused modules:
//   - client.go: Client and Stream, subprocess lifecycle
//   - events.go: decoded stream event types
//   - parsing.go: stream-json line parsing and tool input extraction
//   - errors.go: error taxonomy for session failures
//   - tools.go: composable allowed-tool sets
//   - replay.go: canned-stream launcher for testing
package claude
