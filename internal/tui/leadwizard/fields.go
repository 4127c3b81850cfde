package leadwizard

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/gosimple/slug"

	"github.com/terrasite/leadform/internal/form"
)

// Inputs holds every widget of the wizard and exposes them to the form
// core as a form.FieldAccessor.
type Inputs struct {
	services    *ChoiceList
	description textarea.Model
	budget      *ChoiceList
	method      *ChoiceList

	name        textinput.Model
	phone       textinput.Model
	telegram    textinput.Model
	phoneNumber textinput.Model
	callTime    textinput.Model
	email       textinput.Model
}

var _ form.FieldAccessor = (*Inputs)(nil)

// ServiceOptions turns catalog labels into options whose values are the
// labels' slugs.
func ServiceOptions(labels []string) []Option {
	opts := make([]Option, 0, len(labels))
	for _, l := range labels {
		opts = append(opts, Option{Value: slug.Make(l), Label: l})
	}
	return opts
}

func budgetOptions() []Option {
	opts := make([]Option, 0, len(form.Budgets))
	for _, b := range form.Budgets {
		opts = append(opts, Option{Value: b.Value, Label: b.Label})
	}
	return opts
}

func methodOptions() []Option {
	opts := make([]Option, 0, len(form.ContactMethods))
	for _, m := range form.ContactMethods {
		opts = append(opts, Option{Value: string(m), Label: m.Label()})
	}
	return opts
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.SetWidth(40)
	return ti
}

// NewInputs creates the widgets. maxDescription caps the textarea.
func NewInputs(serviceLabels []string, maxDescription int) *Inputs {
	ta := textarea.New()
	ta.Placeholder = "What should the project do? Who is it for? Any examples you like?"
	ta.ShowLineNumbers = false
	ta.CharLimit = maxDescription
	ta.SetWidth(60)
	ta.SetHeight(6)

	return &Inputs{
		services:    NewChoiceList(ServiceOptions(serviceLabels), true),
		description: ta,
		budget:      NewChoiceList(budgetOptions(), false),
		method:      NewChoiceList(methodOptions(), false),
		name:        newInput("Your name", 50),
		phone:       newInput("+7 999 123-45-67", 20),
		telegram:    newInput("@username", 33),
		phoneNumber: newInput("+7 999 123-45-67", 20),
		callTime:    newInput("Weekdays after 18:00", 60),
		email:       newInput("you@example.com", 100),
	}
}

func (in *Inputs) input(f form.Field) *textinput.Model {
	switch f {
	case form.FieldName:
		return &in.name
	case form.FieldPhone:
		return &in.phone
	case form.FieldTelegram:
		return &in.telegram
	case form.FieldPhoneNumber:
		return &in.phoneNumber
	case form.FieldCallTime:
		return &in.callTime
	case form.FieldEmail:
		return &in.email
	}
	return nil
}

func (in *Inputs) list(f form.Field) *ChoiceList {
	switch f {
	case form.FieldServices:
		return in.services
	case form.FieldBudget:
		return in.budget
	case form.FieldContactMethod:
		return in.method
	}
	return nil
}

// Value returns the raw value of a single-value field.
func (in *Inputs) Value(f form.Field) string {
	if f == form.FieldDescription {
		return in.description.Value()
	}
	if ti := in.input(f); ti != nil {
		return ti.Value()
	}
	if l := in.list(f); l != nil {
		return l.Value()
	}
	return ""
}

// Values returns a multi-choice field's selection.
func (in *Inputs) Values(f form.Field) []string {
	if l := in.list(f); l != nil {
		return l.Selected()
	}
	return nil
}

// SetValue sets a single-value field.
func (in *Inputs) SetValue(f form.Field, v string) {
	if f == form.FieldDescription {
		in.description.SetValue(v)
		return
	}
	if ti := in.input(f); ti != nil {
		ti.SetValue(v)
		return
	}
	if l := in.list(f); l != nil {
		if v == "" {
			l.Clear()
			return
		}
		l.SetSelected([]string{v})
	}
}

// SetValues replaces a multi-choice field's selection.
func (in *Inputs) SetValues(f form.Field, v []string) {
	if l := in.list(f); l != nil {
		l.SetSelected(v)
	}
}

// Clear empties every input.
func (in *Inputs) Clear() {
	in.services.Clear()
	in.budget.Clear()
	in.method.Clear()
	in.description.Reset()
	for _, f := range []form.Field{
		form.FieldName, form.FieldPhone, form.FieldTelegram,
		form.FieldPhoneNumber, form.FieldCallTime, form.FieldEmail,
	} {
		in.input(f).Reset()
	}
}

// Method returns the currently selected contact method.
func (in *Inputs) Method() form.ContactMethod {
	return form.ContactMethod(in.method.Value())
}

// Focus gives f the keyboard and blurs every other widget.
func (in *Inputs) Focus(f form.Field) tea.Cmd {
	in.blurAll()
	if f == form.FieldDescription {
		return in.description.Focus()
	}
	if ti := in.input(f); ti != nil {
		return ti.Focus()
	}
	if l := in.list(f); l != nil {
		l.Focus()
	}
	return nil
}

func (in *Inputs) blurAll() {
	in.services.Blur()
	in.budget.Blur()
	in.method.Blur()
	in.description.Blur()
	for _, f := range []form.Field{
		form.FieldName, form.FieldPhone, form.FieldTelegram,
		form.FieldPhoneNumber, form.FieldCallTime, form.FieldEmail,
	} {
		in.input(f).Blur()
	}
}

// Update forwards msg to the widget of f.
func (in *Inputs) Update(f form.Field, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case f == form.FieldDescription:
		in.description, cmd = in.description.Update(msg)
	case in.input(f) != nil:
		ti := in.input(f)
		*ti, cmd = ti.Update(msg)
	case in.list(f) != nil:
		in.list(f).Update(msg)
	}
	return cmd
}

// SetWidth sizes the text widgets.
func (in *Inputs) SetWidth(w int) {
	in.description.SetWidth(w)
	for _, f := range []form.Field{
		form.FieldName, form.FieldPhone, form.FieldTelegram,
		form.FieldPhoneNumber, form.FieldCallTime, form.FieldEmail,
	} {
		in.input(f).SetWidth(min(w, 50))
	}
}
