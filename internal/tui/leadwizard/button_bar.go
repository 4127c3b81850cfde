package leadwizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/terrasite/leadform/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar lays out a row of buttons.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button, width int) *ButtonBar {
	return &ButtonBar{buttons: buttons, width: width}
}

// Render renders the button bar centered in its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// navButtons builds the Back / Next (or Submit) pair for a step.
func navButtons(first, last, submitting bool, focus buttonFocus) []Button {
	back := Button{Label: "← Back", State: ButtonNormal}
	if first || submitting {
		back.State = ButtonDisabled
	} else if focus == focusBack {
		back.State = ButtonFocused
	}

	next := Button{Label: "Next →", State: ButtonNormal}
	if last {
		next.Label = "Send request"
	}
	if submitting {
		next.Label = "Sending..."
		next.State = ButtonDisabled
	} else if focus == focusNext {
		next.State = ButtonFocused
	}

	return []Button{back, next}
}

// buttonFocus tells which button, if any, holds the focus.
type buttonFocus int

const (
	focusNone buttonFocus = iota
	focusBack
	focusNext
)
