package claude

import "fmt"

// EnvironmentError reports a missing or unusable claude binary. This is the
// one fatal error class: the agent loop aborts immediately instead of
// counting the failure against its iteration budget.
type EnvironmentError struct {
	Binary string
	Err    error
}

func (e *EnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("claude binary %q unavailable: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("claude binary %q unavailable", e.Binary)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// ProtocolError reports a session whose termination did not match any
// recognized terminal event: the process exited without emitting a result
// or error message. Treated as a failed session, never fatal.
type ProtocolError struct {
	ExitCode int
	Stderr   string
}

func (e *ProtocolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("session ended without a terminal event (exit %d): %s", e.ExitCode, truncateForLog(e.Stderr))
	}
	return fmt.Sprintf("session ended without a terminal event (exit %d)", e.ExitCode)
}

// StreamTruncated reports output that stopped mid-message: the final line
// was cut off before its newline and did not decode. Treated as a failed
// session, never fatal.
type StreamTruncated struct {
	Partial string
}

func (e *StreamTruncated) Error() string {
	return fmt.Sprintf("stream truncated mid-message: %s", truncateForLog(e.Partial))
}

// DecodeError reports a single malformed stream line. Non-fatal: the line
// is logged and skipped, and parsing continues with the next line.
type DecodeError struct {
	Line   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("undecodable stream line: %v (%s)", e.Err, truncateForLog(e.Line))
	}
	return fmt.Sprintf("undecodable stream line: %s (%s)", e.Reason, truncateForLog(e.Line))
}

func (e *DecodeError) Unwrap() error { return e.Err }
