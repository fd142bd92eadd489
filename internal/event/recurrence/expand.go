// Package recurrence expands a series definition into dated instance drafts.
package recurrence

import (
	"time"

	"f3-catalog/backend/internal/event/domain"
)

// Expand walks every day from the series' start date through its last date (end date, or start plus two
// years) and returns one draft per emitted occurrence, in date order. A series with an interval below 1
// or a day of week outside 1..7 expands to nothing.
//
// A weekly series emits on every matching weekday; a monthly series only on the Nth matching weekday of
// each month. Matching days advance an interval counter, and only every Interval-th one emits.
func Expand(s *domain.Series) []domain.InstanceDraft {
	if s.Interval < 1 || s.DayOfWeek < 1 || s.DayOfWeek > 7 || s.StartDate.IsZero() {
		return nil
	}
	start := domain.DateOf(s.StartDate)
	end := domain.DateOf(s.LastDate())

	index := 0
	if s.Pattern == domain.Monthly {
		if s.IndexWithinInterval != nil {
			index = *s.IndexWithinInterval
		} else {
			index = occurrencesThrough(start, s.DayOfWeek)
		}
	}

	// Prime the first month with the matching weekdays before the start date.
	inMonth := occurrencesThrough(start.AddDate(0, 0, -1), s.DayOfWeek)
	if start.Day() == 1 {
		inMonth = 0
	}
	cycle := 1

	var drafts []domain.InstanceDraft
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Day() == 1 {
			inMonth = 0
		}
		if domain.ISOWeekday(day) != s.DayOfWeek {
			continue
		}
		inMonth++
		if s.Pattern == domain.Monthly && inMonth != index {
			continue
		}
		if cycle == 1 {
			drafts = append(drafts, draft(s, day))
		}
		cycle++
		if cycle > s.Interval {
			cycle = 1
		}
	}
	return drafts
}

// From filters drafts to those dated on or after day.
func From(drafts []domain.InstanceDraft, day time.Time) []domain.InstanceDraft {
	day = domain.DateOf(day)
	out := drafts[:0:0]
	for _, d := range drafts {
		if !d.Date.Before(day) {
			out = append(out, d)
		}
	}
	return out
}

// occurrencesThrough counts the days with ISO weekday dow from the 1st of day's month through day.
func occurrencesThrough(day time.Time, dow int) int {
	n := 0
	for d := domain.Day(day.Year(), day.Month(), 1); !d.After(day); d = d.AddDate(0, 0, 1) {
		if domain.ISOWeekday(d) == dow {
			n++
		}
	}
	return n
}

func draft(s *domain.Series, day time.Time) domain.InstanceDraft {
	return domain.InstanceDraft{
		OrgID:       s.OrgID,
		SeriesID:    s.ID,
		Name:        s.Name,
		Description: s.Description,
		LocationID:  s.LocationID,
		EventTypeID: s.EventTypeID,
		EventTagID:  s.EventTagID,
		Highlight:   s.Highlight,
		Date:        day,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}
}
