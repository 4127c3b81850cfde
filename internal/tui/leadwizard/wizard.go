// Package leadwizard is the terminal front end of the lead form: four
// steps of inputs driven by form.WizardState and submitted through a
// submit.Controller.
package leadwizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/notice"
	"github.com/terrasite/leadform/internal/submit"
)

// Config wires the wizard to its collaborators.
type Config struct {
	Services   []string
	Rules      form.Rules
	Transport  submit.Transport
	NoticeTTL  time.Duration
	ResetDelay time.Duration
	Timeout    time.Duration
}

// Result reports what happened in a wizard session.
type Result struct {
	Submitted int  // Successful submissions
	Cancelled bool // Left with esc on the first step or ctrl+c
}

// submitDoneMsg carries the outcome of Deliver back into the event loop.
type submitDoneMsg struct {
	err error
}

// resetMsg fires ResetDelay after a successful submission.
type resetMsg struct{}

// descriptionEditedMsg is sent when $EDITOR returns.
type descriptionEditedMsg struct {
	text string
}

// Model is the BubbleTea model of the lead wizard.
type Model struct {
	cfg       Config
	inputs    *Inputs
	state     *form.WizardState
	board     *notice.Board
	presenter *boardPresenter
	ctrl      *submit.Controller

	focus  int // index into focusOrder()
	width  int
	height int

	submitted int
	cancelled bool
}

// New creates a wizard on its first step.
func New(cfg Config) *Model {
	if cfg.Rules == (form.Rules{}) {
		cfg.Rules = form.DefaultRules()
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = notice.DefaultTTL
	}

	inputs := NewInputs(cfg.Services, cfg.Rules.MaxDescription)
	state := form.NewWizardState(inputs, cfg.Rules)
	board := notice.NewBoard(cfg.NoticeTTL)
	presenter := &boardPresenter{board: board}

	m := &Model{
		cfg:       cfg,
		inputs:    inputs,
		state:     state,
		board:     board,
		presenter: presenter,
		ctrl: submit.NewController(state, cfg.Transport, presenter, submit.Options{
			ResetDelay: cfg.ResetDelay,
			Timeout:    cfg.Timeout,
		}),
		width: 80,
	}
	m.focusField(0)
	return m
}

// Run starts a standalone program and returns when the user leaves.
func Run(cfg Config) (*Result, error) {
	p := tea.NewProgram(New(cfg))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	m, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return m.Result(), nil
}

// Result returns the session summary.
func (m *Model) Result() *Result {
	return &Result{Submitted: m.submitted, Cancelled: m.cancelled}
}

// State exposes the wizard state.
func (m *Model) State() *form.WizardState {
	return m.state
}

// Inputs exposes the widget adapter.
func (m *Model) Inputs() *Inputs {
	return m.inputs
}

// Notice returns the visible notice, if any.
func (m *Model) Notice() (notice.Notice, bool) {
	return m.board.Current()
}

// Init initializes the wizard model.
func (m *Model) Init() tea.Cmd {
	return m.inputs.Focus(m.focusedField())
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.inputs.SetWidth(min(max(m.width-16, 30), 80))
		return m, nil

	case noticeExpiredMsg:
		m.board.Expire(msg.seq)
		return m, nil

	case submitDoneMsg:
		out := m.ctrl.Complete(msg.err)
		cmds := []tea.Cmd{m.presenter.expiryCmds()}
		if out.Succeeded {
			cmds = append(cmds, tea.Tick(out.ResetAfter, func(time.Time) tea.Msg { return resetMsg{} }))
		}
		return m, tea.Batch(cmds...)

	case resetMsg:
		if m.ctrl.ApplyReset() {
			m.submitted++
			return m, m.focusField(0)
		}
		return m, nil

	case descriptionEditedMsg:
		m.inputs.SetValue(form.FieldDescription, msg.text)
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.PasteMsg:
		f := m.focusedField()
		paste, ok := pasteFor(f, msg)
		if !ok {
			return m, nil
		}
		return m, m.inputs.Update(f, paste)
	}

	// Cursor blink and other widget messages go to the focused widget.
	if f := m.focusedField(); f != "" {
		return m, m.inputs.Update(f, msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	// Any interaction closes a success acknowledgment.
	if n, ok := m.board.Current(); ok && n.Kind == notice.KindSuccess && msg.String() != "ctrl+c" {
		m.board.Dismiss()
	}

	field := m.focusedField()

	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return tea.Quit
	case "esc":
		return m.back()
	case "tab":
		return m.focusField(m.focus + 1)
	case "shift+tab":
		return m.focusField(m.focus - 1)
	case "ctrl+s":
		return m.next()
	case "ctrl+e":
		if field == form.FieldDescription {
			return m.openEditor()
		}
	case "enter":
		switch m.focusedButton() {
		case focusBack:
			return m.back()
		case focusNext:
			return m.next()
		}
		if field != form.FieldDescription {
			return m.next()
		}
	case "space":
		switch m.focusedButton() {
		case focusBack:
			return m.back()
		case focusNext:
			return m.next()
		}
	}

	if field == "" {
		return nil
	}
	before := m.inputs.Method()
	cmd := m.inputs.Update(field, msg)
	if field == form.FieldContactMethod && m.inputs.Method() != before {
		// The variant inputs below the method list changed; keep the
		// focus on the list itself.
		m.focus = slices.Index(m.focusOrder(), form.FieldContactMethod)
	}
	return cmd
}

// next advances one step, or submits on the last one.
func (m *Model) next() tea.Cmd {
	if m.state.IsLast() {
		return m.submit()
	}

	if err := m.state.Advance(); err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			m.presenter.Show(notice.KindError, ve.Message)
			cmds := []tea.Cmd{m.presenter.expiryCmds()}
			if i := slices.Index(m.focusOrder(), ve.Field); i >= 0 {
				cmds = append(cmds, m.focusField(i))
			}
			return tea.Batch(cmds...)
		}
		logger.Warn("Advance failed: %v", err)
		return nil
	}
	m.board.Dismiss()
	return m.focusField(0)
}

func (m *Model) back() tea.Cmd {
	if m.ctrl.InFlight() {
		return nil
	}
	if !m.state.Retreat() {
		m.cancelled = true
		return tea.Quit
	}
	return m.focusField(0)
}

// submit runs Begin here and Deliver in a command goroutine.
func (m *Model) submit() tea.Cmd {
	// The sent form is waiting for its reset.
	if m.ctrl.ResetPending() {
		return nil
	}
	p, err := m.ctrl.Begin()
	expiry := m.presenter.expiryCmds()
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			if i := slices.Index(m.focusOrder(), ve.Field); i >= 0 {
				return tea.Batch(expiry, m.focusField(i))
			}
		}
		return expiry
	}

	ctrl := m.ctrl
	deliver := func() tea.Msg {
		return submitDoneMsg{err: ctrl.Deliver(context.Background(), p)}
	}
	return tea.Batch(expiry, deliver)
}

// focusOrder lists the inputs of the active step followed by the two
// button slots (empty names).
func (m *Model) focusOrder() []form.Field {
	var fields []form.Field
	switch m.state.Current() {
	case form.StepServices:
		fields = []form.Field{form.FieldServices}
	case form.StepDescription:
		fields = []form.Field{form.FieldDescription}
	case form.StepBudget:
		fields = []form.Field{form.FieldBudget}
	case form.StepContacts:
		fields = []form.Field{form.FieldName, form.FieldContactMethod}
		fields = append(fields, m.inputs.Method().VariantFields()...)
	}
	return append(fields, "", "")
}

func (m *Model) focusedField() form.Field {
	order := m.focusOrder()
	if m.focus < 0 || m.focus >= len(order) {
		return ""
	}
	return order[m.focus]
}

func (m *Model) focusedButton() buttonFocus {
	order := m.focusOrder()
	switch m.focus {
	case len(order) - 2:
		return focusBack
	case len(order) - 1:
		return focusNext
	}
	return focusNone
}

// focusField moves the focus to index i of focusOrder, wrapping around.
func (m *Model) focusField(i int) tea.Cmd {
	n := len(m.focusOrder())
	m.focus = ((i % n) + n) % n
	if f := m.focusedField(); f != "" {
		return m.inputs.Focus(f)
	}
	m.inputs.blurAll()
	return nil
}

// openEditor launches $EDITOR with the current description.
func (m *Model) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "leadform_description_*.md")
	if err != nil {
		logger.Warn("Could not create temp file for editor: %v", err)
		return nil
	}
	if _, err := tmpfile.WriteString(m.inputs.Value(form.FieldDescription)); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("leadform", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return descriptionEditedMsg{text: string(content)}
	})
}
