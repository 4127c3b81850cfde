package leadwizard

import (
	"regexp"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/terrasite/leadform/internal/form"
)

// ansiEscapePattern matches CSI sequences (colors, cursor control).
var ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// newlinePattern matches one or more newline characters
var newlinePattern = regexp.MustCompile(`\n+`)

// sanitizePaste strips ANSI sequences and control characters other than
// \n and \t, normalizes line endings and trims trailing whitespace.
func sanitizePaste(content string) string {
	content = ansiEscapePattern.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var result strings.Builder
	for _, r := range content {
		switch {
		case r == '\n' || r == '\t':
			result.WriteRune(r)
		case r < 32 || r == 127:
			continue
		default:
			result.WriteRune(r)
		}
	}

	return strings.TrimRight(result.String(), " \t\n")
}

// collapseNewlines replaces every run of newlines with a single space,
// for single-line inputs.
func collapseNewlines(content string) string {
	return newlinePattern.ReplaceAllString(content, " ")
}

// pasteFor returns the paste message a field should receive, or false when
// the field takes no text.
func pasteFor(f form.Field, msg tea.PasteMsg) (tea.PasteMsg, bool) {
	switch f {
	case "", form.FieldServices, form.FieldBudget, form.FieldContactMethod:
		return tea.PasteMsg{}, false
	case form.FieldDescription:
		return tea.PasteMsg{Content: sanitizePaste(msg.Content)}, true
	default:
		return tea.PasteMsg{Content: collapseNewlines(sanitizePaste(msg.Content))}, true
	}
}
