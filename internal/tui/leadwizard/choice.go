package leadwizard

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/terrasite/leadform/internal/tui/theme"
)

// Option is one entry of a ChoiceList.
type Option struct {
	Value string
	Label string
}

// ChoiceList is a vertical list of options with a cursor. In multi mode
// space toggles the highlighted option (checkboxes); in single mode it
// selects it (radio buttons).
type ChoiceList struct {
	options  []Option
	multi    bool
	cursor   int
	focused  bool
	selected []string // selection order preserved
}

// NewChoiceList creates a list over options.
func NewChoiceList(options []Option, multi bool) *ChoiceList {
	return &ChoiceList{options: options, multi: multi}
}

// Update handles navigation and selection keys. It reports whether the
// selection changed.
func (c *ChoiceList) Update(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !c.focused || len(c.options) == 0 {
		return false
	}

	switch key.String() {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.options)-1 {
			c.cursor++
		}
	case "space", "x":
		c.toggle(c.options[c.cursor].Value)
		return true
	}
	return false
}

func (c *ChoiceList) toggle(value string) {
	if !c.multi {
		c.selected = []string{value}
		return
	}
	if i := slices.Index(c.selected, value); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return
	}
	c.selected = append(c.selected, value)
}

// Selected returns the selected values in selection order.
func (c *ChoiceList) Selected() []string {
	return slices.Clone(c.selected)
}

// Value returns the selected value of a single-choice list.
func (c *ChoiceList) Value() string {
	if len(c.selected) == 0 {
		return ""
	}
	return c.selected[len(c.selected)-1]
}

// SetSelected replaces the selection. Unknown values are kept so that
// validation can reject them.
func (c *ChoiceList) SetSelected(values []string) {
	c.selected = slices.Clone(values)
	if !c.multi && len(c.selected) > 1 {
		c.selected = c.selected[len(c.selected)-1:]
	}
}

// Clear removes the selection and returns the cursor to the top.
func (c *ChoiceList) Clear() {
	c.selected = nil
	c.cursor = 0
}

func (c *ChoiceList) Focus() { c.focused = true }
func (c *ChoiceList) Blur()  { c.focused = false }

// Focused reports whether the list receives keys.
func (c *ChoiceList) Focused() bool { return c.focused }

// View renders the list.
func (c *ChoiceList) View() string {
	s := theme.Current().S()

	var b strings.Builder
	for i, opt := range c.options {
		pointer := "  "
		if c.focused && i == c.cursor {
			pointer = s.Cursor.Render("› ")
		}

		mark := c.mark(slices.Contains(c.selected, opt.Value))
		label := s.Text.Render(opt.Label)
		if slices.Contains(c.selected, opt.Value) {
			mark = s.Selected.Render(mark)
			label = s.Selected.Render(opt.Label)
		}

		b.WriteString(pointer + mark + " " + label)
		if i < len(c.options)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (c *ChoiceList) mark(on bool) string {
	switch {
	case c.multi && on:
		return "[x]"
	case c.multi:
		return "[ ]"
	case on:
		return "(•)"
	default:
		return "( )"
	}
}
