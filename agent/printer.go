package agent

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muphy/autoforge/checklist"
	"github.com/muphy/autoforge/claude"
)

// ruleWidth is the width of banner and separator rules.
const ruleWidth = 70

// toolResultErrorLimit caps how much of a failed tool result is echoed.
const toolResultErrorLimit = 500

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true)
	sessionStyle = lipgloss.NewStyle().Faint(true)
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Printer echoes the agent stream to the terminal. It keeps the text the
// current session has already printed so the terminal result line is not
// shown twice when it repeats the assistant's final message.
type Printer struct {
	out      io.Writer
	response strings.Builder
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// BeginSession resets per-session state. Call before draining a stream.
func (p *Printer) BeginSession() {
	p.response.Reset()
}

// Event echoes one stream event in the same shape a user watching the
// agent work expects: assistant text verbatim, tool calls as one-liners,
// tool results as a verdict.
func (p *Printer) Event(ev claude.Event) {
	switch ev.Kind {
	case claude.EventSystem:
		if ev.Subtype == "init" && ev.SessionID != "" {
			fmt.Fprintln(p.out, sessionStyle.Render(fmt.Sprintf("[Session: %.8s...]", ev.SessionID)))
		}

	case claude.EventAssistant:
		if ev.Text != "" {
			p.response.WriteString(ev.Text)
			fmt.Fprint(p.out, ev.Text)
		}
		for _, tu := range ev.ToolUses {
			fmt.Fprintln(p.out, "\n"+toolStyle.Render(fmt.Sprintf("[Tool: %s]", tu.Name)))
			if tu.Summary != "" {
				fmt.Fprintf(p.out, "   Input: %s\n", tu.Summary)
			}
		}

	case claude.EventUser:
		for _, tr := range ev.ToolResults {
			switch {
			case strings.Contains(strings.ToLower(tr.Text), "blocked"):
				fmt.Fprintf(p.out, "   %s %s\n", blockedStyle.Render("[BLOCKED]"), tr.Text)
			case tr.IsError:
				fmt.Fprintf(p.out, "   %s %s\n", errorStyle.Render("[Error]"), clip(tr.Text, toolResultErrorLimit))
			default:
				fmt.Fprintln(p.out, "   "+doneStyle.Render("[Done]"))
			}
		}

	case claude.EventResult:
		if ev.Result != "" && !strings.Contains(p.response.String(), ev.Result) {
			p.response.WriteString(ev.Result)
			fmt.Fprint(p.out, ev.Result)
		}

	case claude.EventError:
		fmt.Fprintln(p.out, "\n"+errorStyle.Render(fmt.Sprintf("[Error] %s", ev.ErrorText)))
	}
}

// Separator prints the rule that closes a session's output.
func (p *Printer) Separator() {
	fmt.Fprintf(p.out, "\n%s\n\n", strings.Repeat("-", ruleWidth))
}

// Banner prints a framed block of lines.
func (p *Printer) Banner(lines ...string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(p.out, "\n"+bannerStyle.Render(rule))
	for _, line := range lines {
		fmt.Fprintln(p.out, bannerStyle.Render("  "+line))
	}
	fmt.Fprintln(p.out, bannerStyle.Render(rule))
	fmt.Fprintln(p.out)
}

// SessionHeader prints the banner that opens session n.
func (p *Printer) SessionHeader(n int, role Role) {
	p.Banner(fmt.Sprintf("SESSION %d: %s", n, strings.ToUpper(role.String())))
}

// ProgressSummary prints the current checklist tally, or a note when the
// checklist does not exist yet.
func (p *Printer) ProgressSummary(projectDir string) {
	counts, err := checklist.Count(projectDir)
	if err != nil || counts.Total == 0 {
		fmt.Fprintf(p.out, "\nProgress: %s not yet created\n", checklist.FileName)
		return
	}
	fmt.Fprintf(p.out, "\nProgress: %s\n", counts)
}

// Violations prints checklist audit findings. They are warnings, not
// errors: the loop keeps going either way.
func (p *Printer) Violations(violations []checklist.AuditViolation) {
	for _, v := range violations {
		fmt.Fprintln(p.out, errorStyle.Render(fmt.Sprintf("[Checklist] %s", v)))
	}
}

// Infof prints a plain informational line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
