package submit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/terrasite/leadform/internal/form"
)

// Answers is a prepared set of wizard inputs for headless submission.
type Answers struct {
	Services      []string `yaml:"services"`
	Description   string   `yaml:"description"`
	Budget        string   `yaml:"budget"`
	Name          string   `yaml:"name"`
	ContactMethod string   `yaml:"contact_method"`
	Phone         string   `yaml:"phone"`
	Telegram      string   `yaml:"telegram"`
	PhoneNumber   string   `yaml:"phone_number"`
	CallTime      string   `yaml:"call_time"`
	Email         string   `yaml:"email"`
}

// LoadAnswers reads an answer file. Unknown keys are rejected.
func LoadAnswers(path string) (Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Answers{}, fmt.Errorf("reading answers: %w", err)
	}

	var a Answers
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return Answers{}, fmt.Errorf("parsing answers %s: %w", path, err)
	}
	return a, nil
}

// Fill writes the answers into fields. Services may be given as catalog
// labels or as their slugs.
func (a Answers) Fill(fields form.FieldAccessor) {
	services := make([]string, 0, len(a.Services))
	for _, s := range a.Services {
		services = append(services, slug.Make(s))
	}

	fields.SetValues(form.FieldServices, services)
	fields.SetValue(form.FieldDescription, a.Description)
	fields.SetValue(form.FieldBudget, a.Budget)
	fields.SetValue(form.FieldName, a.Name)
	fields.SetValue(form.FieldContactMethod, a.ContactMethod)
	fields.SetValue(form.FieldPhone, a.Phone)
	fields.SetValue(form.FieldTelegram, a.Telegram)
	fields.SetValue(form.FieldPhoneNumber, a.PhoneNumber)
	fields.SetValue(form.FieldCallTime, a.CallTime)
	fields.SetValue(form.FieldEmail, a.Email)
}

// Walk advances state to the last step and validates it, stopping at the
// first step that fails.
func Walk(state *form.WizardState) error {
	for !state.IsLast() {
		if err := state.Advance(); err != nil {
			return err
		}
	}
	return state.Validate()
}
