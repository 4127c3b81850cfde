package form

import "slices"

// TotalSteps is the fixed number of wizard steps.
const TotalSteps = 4

// Step numbers a wizard page, 1-based.
type Step int

// Wizard steps in order.
const (
	StepServices    Step = 1
	StepDescription Step = 2
	StepBudget      Step = 3
	StepContacts    Step = 4
)

// String returns the human-readable step title.
func (s Step) String() string {
	switch s {
	case StepServices:
		return "Services"
	case StepDescription:
		return "Project description"
	case StepBudget:
		return "Budget"
	case StepContacts:
		return "Contacts"
	default:
		return "Unknown"
	}
}

// ContactMethod is the channel the user wants to be reached through.
type ContactMethod string

// Supported contact methods.
const (
	ContactWhatsApp ContactMethod = "whatsapp"
	ContactTelegram ContactMethod = "telegram"
	ContactPhone    ContactMethod = "phone"
	ContactEmail    ContactMethod = "email"
)

// ContactMethods lists the supported methods in display order.
var ContactMethods = []ContactMethod{ContactWhatsApp, ContactTelegram, ContactPhone, ContactEmail}

// Valid reports whether m is one of the supported methods.
func (m ContactMethod) Valid() bool {
	return slices.Contains(ContactMethods, m)
}

// Label returns the display label of the method.
func (m ContactMethod) Label() string {
	switch m {
	case ContactWhatsApp:
		return "WhatsApp"
	case ContactTelegram:
		return "Telegram"
	case ContactPhone:
		return "Phone call"
	case ContactEmail:
		return "Email"
	default:
		return string(m)
	}
}

// VariantFields returns the fields that belong to the method's variant.
func (m ContactMethod) VariantFields() []Field {
	switch m {
	case ContactWhatsApp:
		return []Field{FieldPhone}
	case ContactTelegram:
		return []Field{FieldTelegram}
	case ContactPhone:
		return []Field{FieldPhoneNumber, FieldCallTime}
	case ContactEmail:
		return []Field{FieldEmail}
	default:
		return nil
	}
}

// BudgetOption is one entry of the fixed budget range list.
type BudgetOption struct {
	Value string
	Label string
}

// Budgets is the enumerated set of budget ranges.
var Budgets = []BudgetOption{
	{Value: "30-50k", Label: "30-50 thousand"},
	{Value: "50-150k", Label: "50-150 thousand"},
	{Value: "150-300k", Label: "150-300 thousand"},
	{Value: "300-500k", Label: "300-500 thousand"},
	{Value: "500k+", Label: "500+ thousand"},
}

// BudgetLabel returns the label for a budget value, or the value itself
// when it is not in the list.
func BudgetLabel(value string) string {
	for _, b := range Budgets {
		if b.Value == value {
			return b.Label
		}
	}
	return value
}

func validBudget(value string) bool {
	return slices.ContainsFunc(Budgets, func(b BudgetOption) bool { return b.Value == value })
}

// FormData is the accumulated set of answers.
type FormData struct {
	Services      []string
	Description   string
	Budget        string
	Name          string
	ContactMethod ContactMethod
	Phone         string
	Telegram      string
	PhoneNumber   string
	CallTime      string
	Email         string
}

// Clone returns a deep copy of d.
func (d FormData) Clone() FormData {
	d.Services = slices.Clone(d.Services)
	return d
}

// Equal reports whether d and o hold the same answers.
func (d FormData) Equal(o FormData) bool {
	return slices.Equal(d.Services, o.Services) &&
		d.Description == o.Description &&
		d.Budget == o.Budget &&
		d.Name == o.Name &&
		d.ContactMethod == o.ContactMethod &&
		d.Phone == o.Phone &&
		d.Telegram == o.Telegram &&
		d.PhoneNumber == o.PhoneNumber &&
		d.CallTime == o.CallTime &&
		d.Email == o.Email
}

// IsZero reports whether d holds no answers at all.
func (d FormData) IsZero() bool {
	return d.Equal(FormData{})
}

// ContactValue returns the primary contact value for the selected method.
func (d FormData) ContactValue() string {
	switch d.ContactMethod {
	case ContactWhatsApp:
		return d.Phone
	case ContactTelegram:
		return d.Telegram
	case ContactPhone:
		return d.PhoneNumber
	case ContactEmail:
		return d.Email
	default:
		return ""
	}
}
