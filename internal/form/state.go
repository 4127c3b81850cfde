package form

import (
	"errors"
	"strings"
)

// ErrLastStep is returned by Advance when the wizard is already on the last step.
var ErrLastStep = errors.New("already at the last step")

// WizardState holds the current step and the accumulated answers.
// It is created once per mounted wizard, mutated only through its methods
// and reset after a successful submission.
type WizardState struct {
	step   Step
	data   FormData
	fields FieldAccessor
	rules  Rules
}

// NewWizardState creates a wizard positioned on the first step with empty data.
func NewWizardState(fields FieldAccessor, rules Rules) *WizardState {
	return &WizardState{
		step:   StepServices,
		fields: fields,
		rules:  rules,
	}
}

// Current returns the active step.
func (s *WizardState) Current() Step {
	return s.step
}

// IsActive reports whether step is the one visible step.
func (s *WizardState) IsActive(step Step) bool {
	return s.step == step
}

// IsLast reports whether the wizard is on the final step.
func (s *WizardState) IsLast() bool {
	return s.step == TotalSteps
}

// Data returns a copy of the last synced answers.
func (s *WizardState) Data() FormData {
	return s.data.Clone()
}

// Rules returns the validation thresholds in use.
func (s *WizardState) Rules() Rules {
	return s.rules
}

// Fields returns the accessor the wizard reads its inputs from.
func (s *WizardState) Fields() FieldAccessor {
	return s.fields
}

// Validate runs the active step's validator against the current inputs.
func (s *WizardState) Validate() error {
	return s.rules.ValidateStep(s.step, s.fields)
}

// Advance moves to the next step if the active step validates.
// It returns the *ValidationError on failure and ErrLastStep when there is
// no next step. Data is synced after a successful move.
func (s *WizardState) Advance() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.step >= TotalSteps {
		return ErrLastStep
	}
	s.step++
	s.Sync()
	return nil
}

// Retreat moves back one step without validation. It returns false on the
// first step.
func (s *WizardState) Retreat() bool {
	if s.step <= StepServices {
		return false
	}
	s.step--
	return true
}

// Reset returns to the first step with empty data and clears the inputs.
func (s *WizardState) Reset() {
	s.step = StepServices
	s.data = FormData{}
	s.fields.Clear()
}

// Sync refreshes data from every input. Of the contact variants only the
// selected method's fields are read; the others keep whatever they held.
func (s *WizardState) Sync() {
	f := s.fields
	next := s.data.Clone()

	next.Services = normalizeServices(f.Values(FieldServices))
	next.Description = strings.TrimSpace(f.Value(FieldDescription))
	if budget := f.Value(FieldBudget); budget != "" {
		next.Budget = budget
	}
	next.Name = strings.TrimSpace(f.Value(FieldName))

	if method := ContactMethod(strings.TrimSpace(f.Value(FieldContactMethod))); method != "" {
		next.ContactMethod = method
		switch method {
		case ContactWhatsApp:
			next.Phone = strings.TrimSpace(f.Value(FieldPhone))
		case ContactTelegram:
			next.Telegram = strings.TrimSpace(f.Value(FieldTelegram))
		case ContactPhone:
			next.PhoneNumber = strings.TrimSpace(f.Value(FieldPhoneNumber))
			next.CallTime = strings.TrimSpace(f.Value(FieldCallTime))
		case ContactEmail:
			next.Email = strings.TrimSpace(f.Value(FieldEmail))
		}
	}

	s.data = next
}

func normalizeServices(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
