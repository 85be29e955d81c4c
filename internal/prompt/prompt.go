// Package prompt assembles the text sent to the advice model.
package prompt

import (
	"strings"

	"health-advisor/internal/storage"
)

const (
	// ContextSize is how many recent issues are quoted back to the model.
	ContextSize = 3

	baseTemplate  = "Provide first aid or health advice for: "
	contextPrefix = "\n\nUser's recent health concerns: "
	contextSuffix = ". Consider any patterns or related conditions."
)

// Build returns the prompt for issue, quoting the issues of the last
// ContextSize history records in chronological order when there are any.
func Build(issue string, history []storage.Interaction) string {
	var b strings.Builder
	b.WriteString(baseTemplate)
	b.WriteString(issue)
	if len(history) == 0 {
		return b.String()
	}

	recent := history
	if len(recent) > ContextSize {
		recent = recent[len(recent)-ContextSize:]
	}
	issues := make([]string, len(recent))
	for i, h := range recent {
		issues[i] = h.Issue
	}
	b.WriteString(contextPrefix)
	b.WriteString(strings.Join(issues, ", "))
	b.WriteString(contextSuffix)
	return b.String()
}
