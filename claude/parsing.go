package claude

import (
	"encoding/json"
	"strings"
)

// streamMessage is the wire shape of one line of stream-json output.
// The message field is kept raw because its type varies by event kind:
// assistant and user messages carry an object with content blocks, while
// error messages carry a plain string.
type streamMessage struct {
	Type         string          `json:"type"`
	Subtype      string          `json:"subtype"`
	Message      json.RawMessage `json:"message,omitempty"`
	Result       string          `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	SessionID    string          `json:"session_id,omitempty"`
	NumTurns     int             `json:"num_turns,omitempty"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	TotalCostUSD float64         `json:"total_cost_usd,omitempty"`
}

// messageBody is the object form of the message field.
type messageBody struct {
	Content []contentBlock `json:"content"`
}

// contentBlock is one entry of message.content.
type contentBlock struct {
	Type      string          `json:"type"` // "text", "tool_use", "tool_result"
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`          // tool use ID (for tool_use)
	Name      string          `json:"name,omitempty"`        // tool name
	Input     json.RawMessage `json:"input,omitempty"`       // tool input
	ToolUseID string          `json:"tool_use_id,omitempty"` // tool use ID reference (for tool_result)
	IsError   bool            `json:"is_error,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"` // tool result content (string or block array)
}

// ParseLine classifies and decodes one line of stream-json output.
//
// It is a pure function: no side effects, no state across lines. A blank
// line yields (nil, nil). Anything that is not a recognized event yields
// a *DecodeError, which callers log and skip - a bad line never aborts
// the session.
func ParseLine(line string) (*Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	// Claude CLI with --verbose may emit non-JSON informational lines.
	if !strings.HasPrefix(line, "{") {
		return nil, &DecodeError{Line: line, Reason: "not a JSON object"}
	}

	var msg streamMessage
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return nil, &DecodeError{Line: line, Err: err}
	}

	switch msg.Type {
	case "system":
		if msg.Subtype == "init" && msg.SessionID == "" {
			return nil, &DecodeError{Line: line, Reason: "init message without session_id"}
		}
		return &Event{Kind: EventSystem, Subtype: msg.Subtype, SessionID: msg.SessionID}, nil

	case "assistant":
		body, err := decodeMessageBody(msg.Message)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}
		ev := &Event{Kind: EventAssistant, SessionID: msg.SessionID}
		var texts []string
		for _, block := range body.Content {
			switch block.Type {
			case "text":
				if block.Text != "" {
					texts = append(texts, block.Text)
				}
			case "tool_use":
				ev.ToolUses = append(ev.ToolUses, ToolUse{
					ID:      block.ID,
					Name:    block.Name,
					Summary: extractToolInputDescription(block.Name, block.Input),
				})
			}
		}
		ev.Text = strings.Join(texts, "\n")
		return ev, nil

	case "user":
		body, err := decodeMessageBody(msg.Message)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}
		ev := &Event{Kind: EventUser, SessionID: msg.SessionID}
		for _, block := range body.Content {
			if block.Type != "tool_result" && block.ToolUseID == "" {
				continue
			}
			ev.ToolResults = append(ev.ToolResults, ToolResult{
				ToolUseID: block.ToolUseID,
				IsError:   block.IsError,
				Text:      extractResultText(block.Content),
			})
		}
		return ev, nil

	case "result":
		ev := &Event{
			Kind:         EventResult,
			Subtype:      msg.Subtype,
			SessionID:    msg.SessionID,
			Result:       msg.Result,
			NumTurns:     msg.NumTurns,
			DurationMs:   msg.DurationMs,
			TotalCostUSD: msg.TotalCostUSD,
		}
		// Claude CLI reports failures as result messages with an error
		// subtype (e.g. "error_during_execution"). Fold those into the
		// error kind so callers see a single terminal-failure shape.
		if strings.Contains(msg.Subtype, "error") {
			ev.Kind = EventError
			ev.ErrorText = firstNonEmpty(msg.Result, msg.Error, msg.Subtype)
		}
		return ev, nil

	case "error":
		ev := &Event{Kind: EventError, Subtype: msg.Subtype, SessionID: msg.SessionID}
		ev.ErrorText = firstNonEmpty(decodeErrorMessage(msg.Message), msg.Error)
		if ev.ErrorText == "" {
			return nil, &DecodeError{Line: line, Reason: "error message without message text"}
		}
		return ev, nil
	}

	return nil, &DecodeError{Line: line, Reason: "unrecognized message type " + strconvQuote(msg.Type)}
}

// decodeMessageBody decodes the object form of the message field.
func decodeMessageBody(raw json.RawMessage) (*messageBody, error) {
	var body messageBody
	if len(raw) == 0 {
		return &body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// decodeErrorMessage extracts the text of an error event's message field,
// which may be a plain string or an object with a message key.
func decodeErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// extractResultText flattens a tool result's content field to plain text.
// The field can be a string or an array of {type: "text", text} blocks.
func extractResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			texts = append(texts, b.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}

// toolInputConfig defines how to extract a description from a tool's input.
type toolInputConfig struct {
	Field       string // JSON field to extract
	ShortenPath bool   // Whether to shorten file paths to just filename
	MaxLen      int    // Maximum length before truncation (0 = no limit)
}

// toolInputConfigs maps tool names to their input extraction configuration.
var toolInputConfigs = map[string]toolInputConfig{
	// File operations - extract file_path and shorten to filename
	"Read":  {Field: "file_path", ShortenPath: true},
	"Edit":  {Field: "file_path", ShortenPath: true},
	"Write": {Field: "file_path", ShortenPath: true},

	// Search operations - extract the pattern/query
	"Glob":      {Field: "pattern"},
	"Grep":      {Field: "pattern", MaxLen: 30},
	"WebSearch": {Field: "query"},

	// Command execution - show the command with truncation
	"Bash": {Field: "command", MaxLen: 60},

	// Web operations - show URL with truncation
	"WebFetch": {Field: "url", MaxLen: 60},
}

// DefaultToolInputMaxLen is the default max length for tool descriptions.
const DefaultToolInputMaxLen = 60

// extractToolInputDescription extracts a brief, human-readable description
// from tool input, using the toolInputConfigs map.
func extractToolInputDescription(toolName string, input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}

	var inputMap map[string]any
	if err := json.Unmarshal(input, &inputMap); err != nil {
		return ""
	}

	if cfg, ok := toolInputConfigs[toolName]; ok {
		if value, exists := inputMap[cfg.Field].(string); exists {
			return formatToolInput(value, cfg.ShortenPath, cfg.MaxLen)
		}
	}

	// Default: return first string value found
	for _, v := range inputMap {
		if s, ok := v.(string); ok && s != "" {
			return truncateString(s, DefaultToolInputMaxLen)
		}
	}
	return ""
}

// formatToolInput formats a tool input value according to the config.
func formatToolInput(value string, shorten bool, maxLen int) string {
	if shorten {
		value = shortenPath(value)
	}
	if maxLen > 0 {
		value = truncateString(value, maxLen)
	}
	return value
}

// ToolVerb returns a human-readable verb for the tool type, used when
// echoing tool invocations to the console.
func ToolVerb(toolName string) string {
	switch toolName {
	case "Read":
		return "Reading"
	case "Edit":
		return "Editing"
	case "Write":
		return "Writing"
	case "Glob", "Grep", "WebSearch":
		return "Searching"
	case "Bash":
		return "Running"
	case "WebFetch":
		return "Fetching"
	default:
		return "Using"
	}
}

// truncateString truncates a string to maxLen characters, including "..." suffix.
// A maxLen of 0 means no limit.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// shortenPath returns just the filename or last path component
func shortenPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return path
}

// truncateForLog truncates long strings for log messages
func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
