package form

import (
	"slices"
	"unicode/utf8"
)

// Payload is the minimal JSON body sent to the submission endpoint.
// Empty values are omitted so the endpoint never sees placeholders.
type Payload struct {
	Services      []string      `json:"services,omitempty"`
	Description   string        `json:"description,omitempty"`
	Budget        string        `json:"budget,omitempty"`
	Name          string        `json:"name,omitempty"`
	ContactMethod ContactMethod `json:"contact_method,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Telegram      string        `json:"telegram,omitempty"`
	PhoneNumber   string        `json:"phone_number,omitempty"`
	CallTime      string        `json:"call_time,omitempty"`
	Email         string        `json:"email,omitempty"`
}

// BuildPayload projects data into a Payload carrying only the variant
// fields of the selected contact method. Stale values of other variants
// are dropped.
func BuildPayload(d FormData) Payload {
	p := Payload{
		Services:      slices.Clone(d.Services),
		Description:   d.Description,
		Budget:        d.Budget,
		Name:          d.Name,
		ContactMethod: d.ContactMethod,
	}
	if len(p.Services) == 0 {
		p.Services = nil
	}

	switch d.ContactMethod {
	case ContactWhatsApp:
		p.Phone = d.Phone
	case ContactTelegram:
		p.Telegram = d.Telegram
	case ContactPhone:
		p.PhoneNumber = d.PhoneNumber
		p.CallTime = d.CallTime
	case ContactEmail:
		p.Email = d.Email
	}
	return p
}

// Keys returns the wire names present in p, sorted.
func (p Payload) Keys() []string {
	var keys []string
	add := func(f Field, present bool) {
		if present {
			keys = append(keys, string(f))
		}
	}
	add(FieldServices, len(p.Services) > 0)
	add(FieldDescription, p.Description != "")
	add(FieldBudget, p.Budget != "")
	add(FieldName, p.Name != "")
	add(FieldContactMethod, p.ContactMethod != "")
	add(FieldPhone, p.Phone != "")
	add(FieldTelegram, p.Telegram != "")
	add(FieldPhoneNumber, p.PhoneNumber != "")
	add(FieldCallTime, p.CallTime != "")
	add(FieldEmail, p.Email != "")
	slices.Sort(keys)
	return keys
}

// ContactValue returns the primary contact value for the payload's method.
func (p Payload) ContactValue() string {
	return FormData{
		ContactMethod: p.ContactMethod,
		Phone:         p.Phone,
		Telegram:      p.Telegram,
		PhoneNumber:   p.PhoneNumber,
		Email:         p.Email,
	}.ContactValue()
}

// CounterState classifies the description length against the minimum.
type CounterState int

const (
	CounterWarning CounterState = iota
	CounterSuccess
)

// Counter is the live description character counter.
type Counter struct {
	Count int
	Min   int
	State CounterState
}

// DescriptionCounter counts the raw characters of text.
func DescriptionCounter(text string, min int) Counter {
	n := utf8.RuneCountInString(text)
	c := Counter{Count: n, Min: min, State: CounterWarning}
	if n >= min {
		c.State = CounterSuccess
	}
	return c
}
