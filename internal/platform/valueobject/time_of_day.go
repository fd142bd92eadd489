package valueobject

import (
	"fmt"
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
)

// TimeOfDay is a 24h wall-clock time stored as a 4-digit HHMM string.
type TimeOfDay struct {
	hour   int
	minute int
}

// ParseTimeOfDay parses "HHMM". Blank input yields (nil, nil).
func ParseTimeOfDay(field, raw string) (*TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if len(s) != 4 {
		return nil, domainerr.Invalid(field, "must be a 4-digit HHMM time, got %q", raw)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, domainerr.Invalid(field, "must be a 4-digit HHMM time, got %q", raw)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[2]-'0')*10 + int(s[3]-'0')
	if h > 23 || m > 59 {
		return nil, domainerr.Invalid(field, "hour must be 00-23 and minute 00-59, got %q", raw)
	}
	return &TimeOfDay{hour: h, minute: m}, nil
}

// MustTimeOfDay panics on invalid input. Intended for constants and tests.
func MustTimeOfDay(raw string) *TimeOfDay {
	t, err := ParseTimeOfDay("time", raw)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }

// String returns the HHMM form.
func (t TimeOfDay) String() string { return fmt.Sprintf("%02d%02d", t.hour, t.minute) }

// Before reports whether t is strictly earlier than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.hour*60+t.minute < o.hour*60+o.minute
}

// FormatTimeOfDay returns the HHMM form of t, or "" when t is nil.
func FormatTimeOfDay(t *TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// EqualTimeOfDay compares two optional times.
func EqualTimeOfDay(a, b *TimeOfDay) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
