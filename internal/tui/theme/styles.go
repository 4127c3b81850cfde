package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	Modal       lipgloss.Style

	Text     lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style

	InputBox        lipgloss.Style
	InputBoxFocused lipgloss.Style

	CounterWarning lipgloss.Style
	CounterSuccess lipgloss.Style

	StepDone    lipgloss.Style
	StepActive  lipgloss.Style
	StepPending lipgloss.Style

	ToastError   lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
