package leadwizard

import (
	"strings"

	"github.com/terrasite/leadform/internal/tui/theme"
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "space", "select", "esc", "back")
// Returns: "↑↓ navigate • space select • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, s.HintKey.Render(pairs[i])+" "+s.HintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, " "+s.HintSeparator.Render("•")+" ")
}
