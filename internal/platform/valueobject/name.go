// Package valueobject holds validated scalars shared by the org and event domains.
package valueobject

import (
	"strings"
	"unicode/utf8"

	"f3-catalog/backend/internal/platform/domainerr"
)

// MaxNameLength bounds display names in runes.
const MaxNameLength = 100

// Name is a trimmed, non-empty display name. Key() is the form used for uniqueness checks.
type Name struct {
	display string
}

// NewName validates raw and returns a Name. field is used in the validation error.
func NewName(field, raw string) (Name, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Name{}, domainerr.Invalid(field, "is required")
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return Name{}, domainerr.Invalid(field, "must be at most %d characters", MaxNameLength)
	}
	return Name{display: s}, nil
}

func (n Name) String() string { return n.display }

// Key returns the case and whitespace insensitive comparison key.
func (n Name) Key() string { return NameKey(n.display) }

func (n Name) IsZero() bool { return n.display == "" }

// NameKey lower-cases s and collapses every whitespace run to a single space.
func NameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
