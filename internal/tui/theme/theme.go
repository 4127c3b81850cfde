package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Borders
	BorderDefault string
	BorderFocused string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	currentMu sync.RWMutex
	current   = NewCatppuccinMocha()
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = t
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocused)).
			Padding(1, 2),
		Text:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Bold(true),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderDefault)).
			Padding(0, 1),
		InputBoxFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocused)).
			Padding(0, 1),
		CounterWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		CounterSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		StepDone:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		StepActive:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),
		StepPending:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		ToastError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Error)).
			Padding(0, 1).
			Bold(true),
		ToastSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Success)).
			Padding(0, 1).
			Bold(true),
		ToastInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Info)).
			Padding(0, 1),
		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.BorderFocused)).
			Bold(true),
		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
	}
}
