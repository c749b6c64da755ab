// Package validation evaluates declarative rule tables against a value and
// reports every violation at once.
//
// A rule table is a slice of Rule values. Each rule names the field it guards
// and returns a violation message, or "" when the value is acceptable. Rules
// never short-circuit each other.
package validation

import (
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Violation is a single failed rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the full set of violations found in one pass. It is returned as
// an error only when non-empty.
type Errors []Violation

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Field + ": " + v.Message
	}
	return strings.Join(parts, "; ")
}

// Rule checks one field of T.
type Rule[T any] struct {
	Field string
	Check func(T) string
}

// Rules is an ordered rule table.
type Rules[T any] []Rule[T]

// Validate runs every rule and returns Errors when any of them fail.
func (rs Rules[T]) Validate(target T) error {
	var violations Errors
	for _, rule := range rs {
		if msg := rule.Check(target); msg != "" {
			violations = append(violations, Violation{Field: rule.Field, Message: msg})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return violations
}

// Field-level checks. Optional checks accept a nil value.

const (
	MsgNotBlank = "must not be blank"
	MsgEmail    = "must be a well-formed email address"
	MsgPast     = "must be a past date"
)

// NotBlank requires a value with at least one non-whitespace character.
func NotBlank(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return MsgNotBlank
	}
	return ""
}

// Email requires a well-formed address when set. An empty string is set and
// therefore rejected.
func Email(s *string) string {
	if s == nil {
		return ""
	}
	if !govalidator.IsEmail(*s) {
		return MsgEmail
	}
	return ""
}

// Pattern returns a check that requires a full match of re when set.
func Pattern(re *regexp.Regexp) func(*string) string {
	msg := `must match "` + re.String() + `"`
	return func(s *string) string {
		if s == nil {
			return ""
		}
		if !re.MatchString(*s) {
			return msg
		}
		return ""
	}
}
