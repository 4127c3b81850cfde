package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule identifies which validation rule a value violated.
type Rule string

const (
	RuleEmptySelection    Rule = "empty_selection"
	RuleRequired          Rule = "required"
	RuleTooShort          Rule = "too_short"
	RuleTooLong           Rule = "too_long"
	RuleLowEffort         Rule = "low_effort"
	RuleInvalidCharacters Rule = "invalid_characters"
	RuleInvalidFormat     Rule = "invalid_format"
	RuleUnknownOption     Rule = "unknown_option"
)

// ValidationError describes the first rule a step violated.
type ValidationError struct {
	Step    Step
	Field   Field
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Default description limits.
const (
	DefaultMinDescription = 50
	DefaultMaxDescription = 2000

	minDescriptionWords = 8
	// A run of 21 or more copies of one character is rejected as filler.
	repeatedRunLength = 21

	minNameLength     = 2
	maxNameLength     = 50
	minCallTimeLength = 5
)

var (
	namePattern     = regexp.MustCompile(`^[а-яёА-ЯЁa-zA-Z\s-]+$`)
	phoneStrip      = regexp.MustCompile(`[\s\-()]`)
	phonePattern    = regexp.MustCompile(`^(\+7|8)\d{10}$`)
	telegramPattern = regexp.MustCompile(`^@[a-zA-Z0-9_]{5,32}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Rules holds the deployment-tunable thresholds of the step validators.
type Rules struct {
	MinDescription int
	MaxDescription int
}

// DefaultRules returns the canonical thresholds.
func DefaultRules() Rules {
	return Rules{MinDescription: DefaultMinDescription, MaxDescription: DefaultMaxDescription}
}

// ValidateStep reads the inputs of step through fields and runs its validator.
func (r Rules) ValidateStep(step Step, fields FieldAccessor) error {
	switch step {
	case StepServices:
		return ValidateServices(fields.Values(FieldServices))
	case StepDescription:
		return r.ValidateDescription(fields.Value(FieldDescription))
	case StepBudget:
		return ValidateBudget(fields.Value(FieldBudget))
	case StepContacts:
		return ValidateContacts(fields)
	default:
		return nil
	}
}

func fail(step Step, field Field, rule Rule, format string, args ...any) *ValidationError {
	return &ValidationError{Step: step, Field: field, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ValidateServices requires at least one selected service.
func ValidateServices(services []string) error {
	for _, s := range services {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return fail(StepServices, FieldServices, RuleEmptySelection, "Select at least one service")
}

// ValidateDescription checks the trimmed project description.
func (r Rules) ValidateDescription(raw string) error {
	s := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return fail(StepDescription, FieldDescription, RuleRequired, "Project description is required")
	case n < r.MinDescription:
		return fail(StepDescription, FieldDescription, RuleTooShort,
			"Description must be at least %d characters so we can understand the project", r.MinDescription)
	case r.MaxDescription > 0 && n > r.MaxDescription:
		return fail(StepDescription, FieldDescription, RuleTooLong,
			"Description is too long (maximum %d characters)", r.MaxDescription)
	case isRepeatedRun(s) || len(strings.Fields(s)) < minDescriptionWords:
		return fail(StepDescription, FieldDescription, RuleLowEffort,
			"Please describe the project in more detail (at least %d words)", minDescriptionWords)
	}
	return nil
}

// isRepeatedRun reports whether s is a single character repeated
// repeatedRunLength or more times.
func isRepeatedRun(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return false
	}
	count := 0
	for _, r := range s {
		if r != first {
			return false
		}
		count++
	}
	return count >= repeatedRunLength
}

// ValidateBudget requires one of the enumerated budget ranges.
func ValidateBudget(budget string) error {
	if budget == "" {
		return fail(StepBudget, FieldBudget, RuleRequired, "Select an estimated budget")
	}
	if !validBudget(budget) {
		return fail(StepBudget, FieldBudget, RuleUnknownOption, "Unknown budget option: %s", budget)
	}
	return nil
}

// ValidateName checks the trimmed contact name.
func ValidateName(raw string) error {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return fail(StepContacts, FieldName, RuleRequired, "Name is required")
	case n < minNameLength:
		return fail(StepContacts, FieldName, RuleTooShort, "Name must be at least %d characters", minNameLength)
	case n > maxNameLength:
		return fail(StepContacts, FieldName, RuleTooLong, "Name is too long (maximum %d characters)", maxNameLength)
	case !namePattern.MatchString(name):
		return fail(StepContacts, FieldName, RuleInvalidCharacters, "Name may contain only letters, spaces and hyphens")
	}
	return nil
}

// ValidateContacts checks the name, the chosen contact method and only the
// fields of that method's variant.
func ValidateContacts(fields FieldAccessor) error {
	if err := ValidateName(fields.Value(FieldName)); err != nil {
		return err
	}

	method := ContactMethod(strings.TrimSpace(fields.Value(FieldContactMethod)))
	if method == "" {
		return fail(StepContacts, FieldContactMethod, RuleRequired, "Choose a contact method")
	}
	if !method.Valid() {
		return fail(StepContacts, FieldContactMethod, RuleUnknownOption, "Unknown contact method: %s", method)
	}

	return ValidateVariant(method, fields)
}

// ValidateVariant checks the fields specific to method.
func ValidateVariant(method ContactMethod, fields FieldAccessor) error {
	switch method {
	case ContactWhatsApp:
		return validatePhone(FieldPhone, fields.Value(FieldPhone), "Enter your WhatsApp number")

	case ContactTelegram:
		tg := strings.TrimSpace(fields.Value(FieldTelegram))
		if tg == "" {
			return fail(StepContacts, FieldTelegram, RuleRequired, "Enter your Telegram username")
		}
		if !IsTelegramUsername(tg) {
			return fail(StepContacts, FieldTelegram, RuleInvalidFormat, "Enter a valid Telegram username (for example: @username)")
		}

	case ContactPhone:
		if err := validatePhone(FieldPhoneNumber, fields.Value(FieldPhoneNumber), "Enter your phone number"); err != nil {
			return err
		}
		callTime := strings.TrimSpace(fields.Value(FieldCallTime))
		if callTime == "" {
			return fail(StepContacts, FieldCallTime, RuleRequired, "Tell us a convenient time to call")
		}
		if utf8.RuneCountInString(callTime) < minCallTimeLength {
			return fail(StepContacts, FieldCallTime, RuleTooShort, "Describe the time in more detail (for example: 10:00-18:00 or mornings)")
		}

	case ContactEmail:
		email := strings.TrimSpace(fields.Value(FieldEmail))
		if email == "" {
			return fail(StepContacts, FieldEmail, RuleRequired, "Enter your email address")
		}
		if !IsEmail(email) {
			return fail(StepContacts, FieldEmail, RuleInvalidFormat, "Enter a valid email address")
		}
	}
	return nil
}

func validatePhone(field Field, raw, requiredMsg string) error {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return fail(StepContacts, field, RuleRequired, "%s", requiredMsg)
	}
	if !IsPhoneNumber(phone) {
		return fail(StepContacts, field, RuleInvalidFormat, "Enter a valid phone number (for example: +7 999 123-45-67)")
	}
	return nil
}

// IsPhoneNumber reports whether s is +7 or 8 followed by ten digits once
// spaces, dashes and parentheses are removed.
func IsPhoneNumber(s string) bool {
	return phonePattern.MatchString(phoneStrip.ReplaceAllString(s, ""))
}

// IsTelegramUsername reports whether s is @ followed by 5-32 word characters.
func IsTelegramUsername(s string) bool {
	return telegramPattern.MatchString(s)
}

// IsEmail reports whether s has a local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}
