package schema

import "slices"

// UnknownEnumValue is the fallback stored when a value is outside the
// permitted set.
const UnknownEnumValue = "UNKNOWN_ENUM_VALUE"

// Enum is the set of permitted string values of a field.
type Enum struct {
	Values   []string
	Fallback string
}

// NewEnum returns an enum constraint with the UnknownEnumValue fallback.
func NewEnum(values ...string) *Enum {
	return &Enum{Values: values, Fallback: UnknownEnumValue}
}

func (e *Enum) Allows(value string) bool {
	return slices.Contains(e.Values, value)
}

// Normalize returns the value to store and whether it was kept as given.
// Empty values are stored as-is.
func (e *Enum) Normalize(value string) (string, bool) {
	if value == "" || e.Allows(value) {
		return value, true
	}
	fallback := e.Fallback
	if fallback == "" {
		fallback = UnknownEnumValue
	}
	return fallback, false
}
