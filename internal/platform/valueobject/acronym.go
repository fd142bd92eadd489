package valueobject

import (
	"strings"
	"unicode/utf8"

	"f3-catalog/backend/internal/platform/domainerr"
)

// MaxAcronymLength is the longest acronym accepted, in runes.
const MaxAcronymLength = 2

// Acronym is a 1–2 rune upper-case abbreviation.
type Acronym struct {
	value string
}

// NewAcronym normalizes raw (trim, upper-case). A blank raw value defaults to the first two runes of the
// trimmed name, so "A Team" gives "A".
func NewAcronym(raw string, name Name) (Acronym, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		s = strings.ToUpper(strings.TrimSpace(firstRunes(name.String(), MaxAcronymLength)))
	}
	if s == "" {
		return Acronym{}, domainerr.Invalid("acronym", "is required")
	}
	if utf8.RuneCountInString(s) > MaxAcronymLength {
		return Acronym{}, domainerr.Invalid("acronym", "must be at most %d characters", MaxAcronymLength)
	}
	return Acronym{value: s}, nil
}

func (a Acronym) String() string { return a.value }

// Key returns the comparison key; acronyms are already normalized.
func (a Acronym) Key() string { return a.value }

// AcronymKey normalizes a stored acronym for index lookups.
func AcronymKey(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
