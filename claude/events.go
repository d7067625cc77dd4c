package claude

// EventKind classifies a decoded stream event.
type EventKind string

const (
	EventSystem    EventKind = "system"    // session handshake (subtype "init")
	EventAssistant EventKind = "assistant" // assistant text and/or tool invocations
	EventUser      EventKind = "user"      // tool results returned to the assistant
	EventResult    EventKind = "result"    // terminal success for the session
	EventError     EventKind = "error"     // terminal failure signal
)

// ToolUse is one tool invocation inside an assistant event.
type ToolUse struct {
	ID      string // tool use ID (matches a later ToolResult)
	Name    string // tool name, e.g. "Bash"
	Summary string // brief human-readable description of the input
}

// ToolResult is one tool result inside a user event.
type ToolResult struct {
	ToolUseID string
	IsError   bool
	Text      string // result content, flattened to text
}

// Event is one decoded unit from the assistant's stream-json output.
// Constructed per line, consumed immediately, then discarded - no state
// is carried between events.
type Event struct {
	Kind    EventKind
	Subtype string

	// system events
	SessionID string

	// assistant events
	Text     string // concatenated text blocks
	ToolUses []ToolUse

	// user events
	ToolResults []ToolResult

	// result events
	Result       string
	NumTurns     int
	DurationMs   int
	TotalCostUSD float64

	// error events (and error-subtyped results)
	ErrorText string
}

// Terminal reports whether this event ends the session.
func (e *Event) Terminal() bool {
	return e.Kind == EventResult || e.Kind == EventError
}
