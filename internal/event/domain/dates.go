package domain

import (
	"time"

	"f3-catalog/backend/internal/platform/domainerr"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Day returns the calendar date as midnight UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock part of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date. field names the input in the validation error.
func ParseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, domainerr.Invalid(field, "must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// OccurrenceInMonth is n when t is the nth occurrence of its weekday in its month.
func OccurrenceInMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}
