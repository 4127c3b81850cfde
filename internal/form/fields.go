// Package form holds the lead wizard core: field access, step validation,
// the step state machine and payload projection.
package form

import "slices"

// Field is the logical name of a form input.
type Field string

// Logical field names. The string values double as JSON wire names.
const (
	FieldServices      Field = "services"
	FieldDescription   Field = "description"
	FieldBudget        Field = "budget"
	FieldName          Field = "name"
	FieldContactMethod Field = "contact_method"
	FieldPhone         Field = "phone"
	FieldTelegram      Field = "telegram"
	FieldPhoneNumber   Field = "phone_number"
	FieldCallTime      Field = "call_time"
	FieldEmail         Field = "email"
)

// FieldAccessor reads and writes form inputs by logical name so that
// validation and state logic never depend on a concrete widget toolkit.
// Single-value fields use Value/SetValue, multi-choice fields use
// Values/SetValues.
type FieldAccessor interface {
	Value(f Field) string
	Values(f Field) []string
	SetValue(f Field, v string)
	SetValues(f Field, v []string)
	// Clear empties every input.
	Clear()
}

// MapFields is an in-memory FieldAccessor.
type MapFields struct {
	single map[Field]string
	multi  map[Field][]string
}

// NewMapFields creates an empty MapFields.
func NewMapFields() *MapFields {
	return &MapFields{
		single: make(map[Field]string),
		multi:  make(map[Field][]string),
	}
}

// Value returns the raw value of a single-value field.
func (m *MapFields) Value(f Field) string {
	return m.single[f]
}

// Values returns a copy of a multi-choice field's selection.
func (m *MapFields) Values(f Field) []string {
	return slices.Clone(m.multi[f])
}

// SetValue sets a single-value field.
func (m *MapFields) SetValue(f Field, v string) {
	m.single[f] = v
}

// SetValues replaces a multi-choice field's selection.
func (m *MapFields) SetValues(f Field, v []string) {
	m.multi[f] = slices.Clone(v)
}

// Clear empties every field.
func (m *MapFields) Clear() {
	clear(m.single)
	clear(m.multi)
}
