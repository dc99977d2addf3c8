// Package validate implements the field-validation pipeline: a rule set is
// applied to every field independently and all failures are collected into
// one Errors set, so the user sees every problem at once. Within a single
// field the first failing rule wins, which keeps messages sensible (an empty
// value reports "required", not a length complaint).
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FormField is the error-set key for form-level failures (CSRF, honeypot,
// rate limit) that are not tied to a single input.
const FormField = "form"

// Errors maps a field name to a human-readable message. An empty set means
// the input is valid. Never persisted; produced per request.
type Errors map[string]string

// Add records a message for field. A second message for the same field is
// appended, so aggregated form-level failures are all visible.
func (e Errors) Add(field, msg string) {
	if prev, ok := e[field]; ok {
		e[field] = prev + " " + msg
		return
	}
	e[field] = msg
}

// Has reports whether field already carries an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Valid reports whether the set is empty.
func (e Errors) Valid() bool { return len(e) == 0 }

// Rule checks a single value and returns a message, or "" when it passes.
type Rule func(value string) string

// Field binds a form field name and its already-trimmed value to the rules
// that apply to it.
type Field struct {
	Name  string
	Value string
	Rules []Rule
}

// Fields evaluates every field and collects the first failure of each into
// an Errors set. All fields are always evaluated.
func Fields(fields ...Field) Errors {
	errs := Errors{}
	for _, f := range fields {
		for _, rule := range f.Rules {
			if msg := rule(f.Value); msg != "" {
				errs.Add(f.Name, msg)
				break
			}
		}
	}
	return errs
}

// Required fails on a value that is empty after trimming.
func Required(label string) Rule {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fmt.Sprintf("%s is required.", label)
		}
		return ""
	}
}

// MinLen fails on values shorter than n characters. Lengths are logical
// character counts, not bytes.
func MinLen(label string, n int) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return fmt.Sprintf("%s must be at least %d characters.", label, n)
		}
		return ""
	}
}

// MaxLen fails on values longer than n characters.
func MaxLen(label string, n int) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
		return ""
	}
}

// namePattern allows Unicode letters and combining marks plus apostrophe,
// hyphen, and space.
var namePattern = regexp.MustCompile(`^[\p{L}\p{M}'\- ]+$`)

// Name fails on characters outside the letter/mark/apostrophe/hyphen/space
// class, so "O'Connor-Smith" passes and "John_Doe" does not.
func Name() Rule {
	return func(v string) string {
		if !namePattern.MatchString(v) {
			return "Use letters, spaces, apostrophes, or hyphens only."
		}
		return ""
	}
}

// Email fails on anything that is not a plain, well-formed address with a
// dotted domain.
func Email() Rule {
	return func(v string) string {
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return "Enter a valid email address."
		}
		at := strings.LastIndex(v, "@")
		if at < 0 || !strings.Contains(v[at+1:], ".") {
			return "Enter a valid email address."
		}
		return ""
	}
}
