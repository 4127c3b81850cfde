package leadwizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/tui/theme"
)

var stepTitles = map[form.Step]string{
	form.StepServices:    "What do you need?",
	form.StepDescription: "Tell us about the project",
	form.StepBudget:      "What is your budget?",
	form.StepContacts:    "How can we reach you?",
}

// View renders the wizard.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.render()

	width, height := m.width, m.height
	if height == 0 {
		height = lipgloss.Height(content)
	}
	canvas := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: width, Y: height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render builds the modal without placing it on a canvas.
func (m *Model) render() string {
	t := theme.Current()
	s := t.S()

	modalWidth := min(max(m.width-10, 60), 100)
	inner := modalWidth - 6

	var sections []string
	sections = append(sections, theme.ApplyGradient("Request a website", t.Primary, t.Secondary))
	sections = append(sections, m.renderProgress())
	sections = append(sections, "")

	step := m.state.Current()
	sections = append(sections, s.HeaderTitle.Render(fmt.Sprintf("Step %d of %d: %s", int(step), form.TotalSteps, stepTitles[step])))
	sections = append(sections, "")
	sections = append(sections, m.renderStep())
	sections = append(sections, "")

	if n, ok := m.board.Current(); ok {
		sections = append(sections, renderNotice(n, inner), "")
	}

	bar := NewButtonBar(navButtons(
		step == form.StepServices,
		m.state.IsLast(),
		m.ctrl.InFlight(),
		m.focusedButton(),
	), inner)
	sections = append(sections, bar.Render())
	sections = append(sections, "")
	sections = append(sections, m.renderHints())

	modal := s.Modal.Width(modalWidth).Render(strings.Join(sections, "\n"))
	if m.width == 0 || m.height == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderProgress draws "● ● ○ ○" style step markers.
func (m *Model) renderProgress() string {
	s := theme.Current().S()
	current := m.state.Current()

	marks := make([]string, 0, form.TotalSteps)
	for step := form.StepServices; step <= form.StepContacts; step++ {
		switch {
		case step < current:
			marks = append(marks, s.StepDone.Render("●"))
		case step == current:
			marks = append(marks, s.StepActive.Render("●"))
		default:
			marks = append(marks, s.StepPending.Render("○"))
		}
	}
	return strings.Join(marks, " ")
}

func (m *Model) renderStep() string {
	switch m.state.Current() {
	case form.StepServices:
		return m.inputs.services.View()
	case form.StepDescription:
		return m.renderDescription()
	case form.StepBudget:
		return m.inputs.budget.View()
	case form.StepContacts:
		return m.renderContacts()
	}
	return ""
}

func (m *Model) renderDescription() string {
	s := theme.Current().S()

	box := s.InputBox
	if m.focusedField() == form.FieldDescription {
		box = s.InputBoxFocused
	}

	c := form.DescriptionCounter(m.inputs.Value(form.FieldDescription), m.state.Rules().MinDescription)
	counter := s.CounterWarning.Render(fmt.Sprintf("%d / %d", c.Count, c.Min))
	if c.State == form.CounterSuccess {
		counter = s.CounterSuccess.Render(fmt.Sprintf("%d ✓", c.Count))
	}

	return box.Render(m.inputs.description.View()) + "\n" + counter
}

func (m *Model) renderContacts() string {
	s := theme.Current().S()

	var b strings.Builder
	b.WriteString(s.Label.Render("Name") + "\n")
	b.WriteString(m.inputs.name.View() + "\n\n")
	b.WriteString(s.Label.Render("Preferred contact method") + "\n")
	b.WriteString(m.inputs.method.View())

	for _, f := range m.inputs.Method().VariantFields() {
		b.WriteString("\n\n" + s.Label.Render(fieldLabels[f]) + "\n")
		b.WriteString(m.inputs.input(f).View())
	}
	return b.String()
}

var fieldLabels = map[form.Field]string{
	form.FieldPhone:       "WhatsApp number",
	form.FieldTelegram:    "Telegram username",
	form.FieldPhoneNumber: "Phone number",
	form.FieldCallTime:    "Convenient time to call",
	form.FieldEmail:       "Email",
}

func (m *Model) renderHints() string {
	pairs := []string{"tab", "next field"}
	switch m.focusedField() {
	case form.FieldServices:
		pairs = append(pairs, "space", "toggle")
	case form.FieldBudget, form.FieldContactMethod:
		pairs = append(pairs, "space", "select")
	case form.FieldDescription:
		pairs = append(pairs, "ctrl+e", "editor", "ctrl+s", "next")
	}
	if m.focusedField() != form.FieldDescription {
		if m.state.IsLast() {
			pairs = append(pairs, "enter", "send")
		} else {
			pairs = append(pairs, "enter", "next")
		}
	}
	pairs = append(pairs, "esc", "back")
	return renderHintBar(pairs...)
}
