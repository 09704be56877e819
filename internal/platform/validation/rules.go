// Package validation provides declarative per-form rule sets. A RuleSet maps
// field names to ordered rules; validating a value map yields at most one
// message per field (the first rule that fails). Rules other than Required
// skip empty values, so optional fields only get format checks when filled in.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Errors maps field names to validation messages.
type Errors map[string]string

// Error carries field errors across the service boundary so handlers can
// return them as a 400 body.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError wraps field errors. Returns nil when there are none.
func NewError(fields Errors) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

// Rule checks a single field value and returns a message, or "" when valid.
type Rule func(value string) string

// RuleSet maps field names to their rules, applied in order.
type RuleSet map[string][]Rule

// Validate runs every field's rules against the value map. Missing fields are
// treated as empty strings, so Required rules still fire for them.
func (rs RuleSet) Validate(values map[string]string) Errors {
	errs := make(Errors)
	for field, rules := range rs {
		value := values[field]
		for _, rule := range rules {
			if msg := rule(value); msg != "" {
				errs[field] = msg
				break
			}
		}
	}
	return errs
}

// ValidateField runs only the rules of a single field.
func (rs RuleSet) ValidateField(field, value string) string {
	for _, rule := range rs[field] {
		if msg := rule(value); msg != "" {
			return msg
		}
	}
	return ""
}

func Required(msg string) Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return msg
		}
		return ""
	}
}

func MinLen(n int, msg string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if len([]rune(value)) < n {
			return msg
		}
		return ""
	}
}

func MaxLen(n int, msg string) Rule {
	return func(value string) string {
		if len([]rune(value)) > n {
			return msg
		}
		return ""
	}
}

func Pattern(re *regexp.Regexp, msg string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !re.MatchString(value) {
			return msg
		}
		return ""
	}
}

// Min checks a numeric lower bound. Non-numeric input is rejected.
func Min(min float64, msg string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < min {
			return msg
		}
		return ""
	}
}

// Max checks a numeric upper bound. Non-numeric input is rejected.
func Max(max float64, msg string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n > max {
			return msg
		}
		return ""
	}
}

// OneOf checks enum membership.
func OneOf(msg string, allowed ...string) Rule {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !set[value] {
			return msg
		}
		return ""
	}
}

// IntRange checks that the value is an integer within [min, max].
func IntRange(min, max int, msg string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min || n > max {
			return msg
		}
		return ""
	}
}

// FormatInt renders an int for rule evaluation.
func FormatInt(n int) string { return strconv.Itoa(n) }

// FormatFloat renders a float for rule evaluation.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Helper for building messages in predefined sets.
func between(min, max int) string {
	return fmt.Sprintf("deve ter entre %d e %d caracteres", min, max)
}
