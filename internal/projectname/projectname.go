package projectname

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength is the longest name the npm registry accepts.
const MaxLength = 214

var namePattern = regexp.MustCompile(`^(?:@[a-z0-9][a-z0-9-]*/)?[a-z0-9][a-z0-9-]*$`)

// Rejection reasons. Each is returned wrapped in a *ValidationError.
var (
	ErrRequired          = errors.New("project name is required")
	ErrTooLong           = fmt.Errorf("project name must be at most %d characters", MaxLength)
	ErrInvalidCharacters = errors.New("project name may only contain lowercase letters, digits and hyphens, with an optional @scope/ prefix")
)

// ValidationError reports why a name was rejected.
type ValidationError struct {
	Name   string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("invalid project name %q: %v", e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// Validate returns nil when name is acceptable, or a *ValidationError carrying
// the first rule it breaks.
func Validate(name string) error {
	switch {
	case name == "":
		return &ValidationError{Name: name, Reason: ErrRequired}
	case utf8.RuneCountInString(name) > MaxLength:
		return &ValidationError{Name: name, Reason: ErrTooLong}
	case !namePattern.MatchString(name):
		return &ValidationError{Name: name, Reason: ErrInvalidCharacters}
	}
	return nil
}

// IsValid reports whether Validate accepts name.
func IsValid(name string) bool {
	return Validate(name) == nil
}

// Name is a validated project name. The zero value is not valid; build one
// with Parse.
type Name struct {
	raw string
}

// Parse validates raw and wraps it.
func Parse(raw string) (Name, error) {
	if err := Validate(raw); err != nil {
		return Name{}, err
	}
	return Name{raw: raw}, nil
}

// MustParse is Parse for names known at compile time. It panics on invalid input.
func MustParse(raw string) Name {
	n, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the full name, including any scope.
func (n Name) String() string { return n.raw }

// Scope returns the scope without "@", or "" for unscoped names.
func (n Name) Scope() string {
	if !strings.HasPrefix(n.raw, "@") {
		return ""
	}
	scope, _, _ := strings.Cut(n.raw[1:], "/")
	return scope
}

// Base returns the name with any scope removed. It is the default directory name.
func (n Name) Base() string {
	if i := strings.LastIndex(n.raw, "/"); i >= 0 {
		return n.raw[i+1:]
	}
	return n.raw
}

// IsZero reports whether n was never parsed.
func (n Name) IsZero() bool { return n.raw == "" }
