package types

import (
	"fmt"
	"strings"
	"time"
)

// Resolution tells how a dispatch cycle ended.
type Resolution string

const (
	ResolutionIgnored Resolution = "ignored"
	ResolutionLiteral Resolution = "literal"
	ResolutionModel   Resolution = "model"
)

// DispatchResult is the full record of one dispatch cycle.
type DispatchResult struct {
	ID         string         `json:"id"`
	Speaker    string         `json:"username"`
	Message    string         `json:"message"`
	Resolution Resolution     `json:"resolution"`
	Command    string         `json:"command,omitempty"`
	Reply      string         `json:"reply,omitempty"`
	Results    []ActionResult `json:"results,omitempty"`
	Time       time.Time      `json:"timestamp"`
}

// Report returns one "name(args): outcome" line per executed action.
func (r DispatchResult) Report() []string {
	lines := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		lines = append(lines, res.Report())
	}
	return lines
}

// String is the human readable outcome returned to tool callers.
func (r DispatchResult) String() string {
	if r.Resolution == ResolutionIgnored {
		return fmt.Sprintf("Message from %s was not addressed to the bot; nothing to do.", r.Speaker)
	}

	sb := strings.Builder{}
	if r.Reply != "" {
		sb.WriteString(fmt.Sprintf("Reply: %s", r.Reply))
	} else {
		sb.WriteString("No reply sent")
	}
	if report := r.Report(); len(report) > 0 {
		sb.WriteString("\nActions:")
		for _, line := range report {
			sb.WriteString("\n- " + line)
		}
	}
	return sb.String()
}
