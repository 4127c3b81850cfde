package form

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sixtyCharDescription = "New corporate site with product catalogue and online booking"

// requireRule asserts err is a *ValidationError with the given rule.
func requireRule(t *testing.T, err error, rule Rule) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	require.Equal(t, rule, verr.Rule, "message: %s", verr.Message)
	return verr
}

func TestValidateServices(t *testing.T) {
	requireRule(t, ValidateServices(nil), RuleEmptySelection)
	requireRule(t, ValidateServices([]string{" "}), RuleEmptySelection)
	require.NoError(t, ValidateServices([]string{"landing"}))
}

func TestValidateDescription(t *testing.T) {
	rules := DefaultRules()

	require.Equal(t, 60, utf8.RuneCountInString(sixtyCharDescription))
	require.Len(t, strings.Fields(sixtyCharDescription), 9)

	tests := []struct {
		name  string
		input string
		rule  Rule // empty means valid
	}{
		{name: "empty", input: "", rule: RuleRequired},
		{name: "whitespace only", input: "   \n\t", rule: RuleRequired},
		{name: "two characters", input: "ok", rule: RuleTooShort},
		{name: "49 characters", input: strings.Repeat("ab ", 16) + "a", rule: RuleTooShort},
		{name: "too long", input: strings.Repeat("word ", 401), rule: RuleTooLong},
		{name: "repeated character run", input: strings.Repeat("a", 60), rule: RuleLowEffort},
		{name: "too few words", input: "word word word word word " + strings.Repeat("x", 40), rule: RuleLowEffort},
		{name: "sixty chars nine words", input: sixtyCharDescription},
		{name: "surrounding whitespace is trimmed", input: "  " + sixtyCharDescription + "  "},
		{name: "cyrillic counted in characters", input: "Нужен сайт для пекарни с каталогом и онлайн оплатой картой для клиентов"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.ValidateDescription(tt.input)
			if tt.rule == "" {
				require.NoError(t, err)
				return
			}
			verr := requireRule(t, err, tt.rule)
			assert.Equal(t, StepDescription, verr.Step)
			assert.Equal(t, FieldDescription, verr.Field)
		})
	}
}

func TestValidateDescription_ConfigurableMinimum(t *testing.T) {
	lenient := Rules{MinDescription: 10, MaxDescription: 2000}

	requireRule(t, lenient.ValidateDescription("too short"), RuleTooShort)
	// Passes the length check but still needs eight words.
	requireRule(t, lenient.ValidateDescription("a fine sentence"), RuleLowEffort)
	require.NoError(t, lenient.ValidateDescription("one two three four five six seven eight"))
}

func TestValidateBudget(t *testing.T) {
	requireRule(t, ValidateBudget(""), RuleRequired)
	requireRule(t, ValidateBudget("1M"), RuleUnknownOption)
	for _, b := range Budgets {
		require.NoError(t, ValidateBudget(b.Value), b.Value)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		input string
		rule  Rule
	}{
		{input: "", rule: RuleRequired},
		{input: "  ", rule: RuleRequired},
		{input: "A", rule: RuleTooShort},
		{input: strings.Repeat("a", 51), rule: RuleTooLong},
		{input: "R2D2", rule: RuleInvalidCharacters},
		{input: "Ivan_Petrov", rule: RuleInvalidCharacters},
		{input: "Ivan"},
		{input: "Анна-Мария Ёлкина"},
		{input: "Mary Jane"},
		{input: strings.Repeat("я", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.rule == "" {
				require.NoError(t, err)
				return
			}
			requireRule(t, err, tt.rule)
		})
	}
}

func contactFields(method ContactMethod, kv ...string) *MapFields {
	f := NewMapFields()
	f.SetValue(FieldName, "Ivan")
	f.SetValue(FieldContactMethod, string(method))
	for i := 0; i+1 < len(kv); i += 2 {
		f.SetValue(Field(kv[i]), kv[i+1])
	}
	return f
}

func TestValidateContacts(t *testing.T) {
	tests := []struct {
		name   string
		fields *MapFields
		field  Field
		rule   Rule
	}{
		{
			name:   "method missing",
			fields: contactFields(""),
			field:  FieldContactMethod,
			rule:   RuleRequired,
		},
		{
			name:   "unknown method",
			fields: contactFields("pigeon"),
			field:  FieldContactMethod,
			rule:   RuleUnknownOption,
		},
		{
			name:   "name checked before method",
			fields: contactFields("", "name", ""),
			field:  FieldName,
			rule:   RuleRequired,
		},
		{
			name:   "whatsapp empty",
			fields: contactFields(ContactWhatsApp),
			field:  FieldPhone,
			rule:   RuleRequired,
		},
		{
			name:   "whatsapp malformed",
			fields: contactFields(ContactWhatsApp, "phone", "+1 555 123 4567"),
			field:  FieldPhone,
			rule:   RuleInvalidFormat,
		},
		{
			name:   "whatsapp grouped",
			fields: contactFields(ContactWhatsApp, "phone", "+7 (999) 123-45-67"),
		},
		{
			name:   "whatsapp leading eight",
			fields: contactFields(ContactWhatsApp, "phone", "89991234567"),
		},
		{
			name:   "telegram too short",
			fields: contactFields(ContactTelegram, "telegram", "@abc"),
			field:  FieldTelegram,
			rule:   RuleInvalidFormat,
		},
		{
			name:   "telegram without at",
			fields: contactFields(ContactTelegram, "telegram", "username"),
			field:  FieldTelegram,
			rule:   RuleInvalidFormat,
		},
		{
			name:   "telegram valid",
			fields: contactFields(ContactTelegram, "telegram", "@user_name"),
		},
		{
			name:   "phone valid with call time",
			fields: contactFields(ContactPhone, "phone_number", "+7 999 123-45-67", "call_time", "10-18"),
		},
		{
			name:   "phone without call time",
			fields: contactFields(ContactPhone, "phone_number", "+7 999 123-45-67"),
			field:  FieldCallTime,
			rule:   RuleRequired,
		},
		{
			name:   "phone call time too short",
			fields: contactFields(ContactPhone, "phone_number", "+7 999 123-45-67", "call_time", "10am"),
			field:  FieldCallTime,
			rule:   RuleTooShort,
		},
		{
			name:   "phone number checked first",
			fields: contactFields(ContactPhone, "phone_number", "123", "call_time", "evenings"),
			field:  FieldPhoneNumber,
			rule:   RuleInvalidFormat,
		},
		{
			name:   "email malformed",
			fields: contactFields(ContactEmail, "email", "ivan@localhost"),
			field:  FieldEmail,
			rule:   RuleInvalidFormat,
		},
		{
			name:   "email valid",
			fields: contactFields(ContactEmail, "email", "ivan@example.com"),
		},
		{
			name: "other variants are not checked",
			fields: contactFields(ContactEmail,
				"email", "ivan@example.com",
				"phone", "garbage",
				"telegram", "@x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContacts(tt.fields)
			if tt.rule == "" {
				require.NoError(t, err)
				return
			}
			verr := requireRule(t, err, tt.rule)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsPhoneNumber("8 (999) 123-45-67"))
	assert.False(t, IsPhoneNumber("+7 999 123-45-6"))
	assert.False(t, IsPhoneNumber("+79991234567890"))

	assert.True(t, IsTelegramUsername("@abcde"))
	assert.True(t, IsTelegramUsername("@"+strings.Repeat("a", 32)))
	assert.False(t, IsTelegramUsername("@"+strings.Repeat("a", 33)))

	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail("a b@c.d"))
	assert.False(t, IsEmail("a@@b.c"))
}
