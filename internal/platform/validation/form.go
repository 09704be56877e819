package validation

import "errors"

// ErrInvalid is returned by Form.Submit when the handler was not invoked.
var ErrInvalid = errors.New("form has validation errors")

// Form binds a rule set to a set of field values. Setting a field re-validates
// it immediately; Submit validates everything and only invokes the handler
// when the form is clean.
type Form struct {
	rules    RuleSet
	defaults map[string]string
	values   map[string]string
	errors   Errors
	touched  map[string]bool
}

// NewForm creates a form seeded with default values. Defaults are not
// validated until a field is set or the form is submitted.
func NewForm(rules RuleSet, defaults map[string]string) *Form {
	f := &Form{rules: rules}
	f.Reset(defaults)
	return f
}

// Set updates one field and re-validates it.
func (f *Form) Set(field, value string) {
	f.values[field] = value
	f.touched[field] = true
	if msg := f.rules.ValidateField(field, value); msg != "" {
		f.errors[field] = msg
	} else {
		delete(f.errors, field)
	}
}

// Value returns the current value of a field.
func (f *Form) Value(field string) string { return f.values[field] }

// Values returns a copy of all current values.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// FieldError returns the current message for a field, or "".
func (f *Form) FieldError(field string) string { return f.errors[field] }

// Errors returns a copy of the current field errors.
func (f *Form) Errors() Errors {
	out := make(Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Touched reports whether a field has been set since the last reset.
func (f *Form) Touched(field string) bool { return f.touched[field] }

// Valid reports whether the form currently has no errors.
func (f *Form) Valid() bool { return len(f.errors) == 0 }

// Submit validates every field and calls fn only when all are valid. When the
// form is invalid it returns ErrInvalid and fn is never invoked.
func (f *Form) Submit(fn func(values map[string]string) error) error {
	f.errors = f.rules.Validate(f.values)
	if len(f.errors) > 0 {
		return ErrInvalid
	}
	return fn(f.Values())
}

// Reset discards values, errors and touched state, reseeding from defaults.
func (f *Form) Reset(defaults map[string]string) {
	f.defaults = defaults
	f.values = make(map[string]string, len(defaults))
	for k, v := range defaults {
		f.values[k] = v
	}
	f.errors = make(Errors)
	f.touched = make(map[string]bool)
}
