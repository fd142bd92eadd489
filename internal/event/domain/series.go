// Package domain holds event series (recurring definitions) and event instances (dated occurrences).
package domain

import (
	"strings"
	"time"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// RecurrencePattern is the cadence of a series.
type RecurrencePattern string

const (
	Weekly  RecurrencePattern = "weekly"
	Monthly RecurrencePattern = "monthly"
)

// ParseRecurrencePattern validates s as a RecurrencePattern.
func ParseRecurrencePattern(s string) (RecurrencePattern, error) {
	switch p := RecurrencePattern(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekly, Monthly:
		return p, nil
	default:
		return "", domainerr.Invalid("recurrence_pattern", "must be weekly or monthly")
	}
}

// DefaultHorizon bounds a series without an end date.
const DefaultHorizon = 2 // years

// Series is a recurring event definition. It is never hard-deleted.
type Series struct {
	ID          int64
	OrgID       int64
	Name        string
	Description string
	LocationID  *int64
	EventTypeID *int64
	EventTagID  *int64
	Highlight   bool
	StartDate   time.Time
	EndDate     *time.Time
	StartTime   *valueobject.TimeOfDay
	EndTime     *valueobject.TimeOfDay
	// DayOfWeek is ISO: Monday=1 .. Sunday=7.
	DayOfWeek int
	Pattern   RecurrencePattern
	Interval  int
	// IndexWithinInterval is the "Nth weekday of the month" of a monthly series.
	IndexWithinInterval *int
	IsActive            bool

	changes []Change
}

// SeriesInput describes a new series. Times are HHMM strings; blank means unset.
type SeriesInput struct {
	OrgID               int64
	Name                string
	Description         string
	LocationID          *int64
	EventTypeID         *int64
	EventTagID          *int64
	Highlight           bool
	StartDate           time.Time
	EndDate             *time.Time
	StartTime           string
	EndTime             string
	DayOfWeek           int
	Pattern             RecurrencePattern
	Interval            int
	IndexWithinInterval *int
}

// NewSeries validates in and returns an active series with a SeriesCreated record. A monthly series
// without an index gets the index of its start date.
func NewSeries(in SeriesInput) (*Series, error) {
	if in.OrgID <= 0 {
		return nil, domainerr.Invalid("org_id", "is required")
	}
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return nil, err
	}
	start, err := valueobject.ParseTimeOfDay("start_time", in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := valueobject.ParseTimeOfDay("end_time", in.EndTime)
	if err != nil {
		return nil, err
	}
	s := &Series{
		OrgID:               in.OrgID,
		Name:                name.String(),
		Description:         strings.TrimSpace(in.Description),
		LocationID:          positiveOrNil(in.LocationID),
		EventTypeID:         positiveOrNil(in.EventTypeID),
		EventTagID:          positiveOrNil(in.EventTagID),
		Highlight:           in.Highlight,
		StartDate:           DateOf(in.StartDate),
		EndDate:             dateOrNil(in.EndDate),
		StartTime:           start,
		EndTime:             end,
		DayOfWeek:           in.DayOfWeek,
		Pattern:             in.Pattern,
		Interval:            in.Interval,
		IndexWithinInterval: in.IndexWithinInterval,
		IsActive:            true,
	}
	if s.Interval == 0 {
		s.Interval = 1
	}
	if err := s.normalizeAndValidate(); err != nil {
		return nil, err
	}
	s.record(SeriesCreated{})
	return s, nil
}

// normalizeAndValidate checks the whole definition and fills a missing monthly index.
func (s *Series) normalizeAndValidate() error {
	if s.StartDate.IsZero() {
		return domainerr.Invalid("start_date", "is required")
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return domainerr.Invalid("end_date", "must not be before start_date")
	}
	if err := validateTimes(s.StartTime, s.EndTime); err != nil {
		return err
	}
	if s.DayOfWeek < 1 || s.DayOfWeek > 7 {
		return domainerr.Invalid("day_of_week", "must be between 1 (Monday) and 7 (Sunday)")
	}
	if _, err := ParseRecurrencePattern(string(s.Pattern)); err != nil {
		return err
	}
	if s.Interval < 1 {
		return domainerr.Invalid("recurrence_interval", "must be at least 1")
	}
	if s.Pattern == Weekly {
		s.IndexWithinInterval = nil
		return nil
	}
	if ISOWeekday(s.StartDate) != s.DayOfWeek {
		return domainerr.Invalid("day_of_week", "must match the weekday of start_date for a monthly series")
	}
	derived := OccurrenceInMonth(s.StartDate)
	if s.IndexWithinInterval == nil {
		s.IndexWithinInterval = &derived
		return nil
	}
	if *s.IndexWithinInterval != derived {
		return domainerr.Invalid("index_within_interval", "start_date is occurrence %d of its weekday, not %d",
			derived, *s.IndexWithinInterval)
	}
	return nil
}

// LastDate is the inclusive end of expansion: EndDate, or StartDate plus DefaultHorizon years.
func (s *Series) LastDate() time.Time {
	if s.EndDate != nil {
		return *s.EndDate
	}
	return s.StartDate.AddDate(DefaultHorizon, 0, 0)
}

// SeriesFields carries supplied (update input) or changed (diff record) series fields. For the id
// fields 0 clears the reference; for the time fields "" clears the time.
type SeriesFields struct {
	Name                *string
	Description         *string
	LocationID          *int64
	EventTypeID         *int64
	EventTagID          *int64
	Highlight           *bool
	StartDate           *time.Time
	EndDate             *time.Time
	ClearEndDate        bool
	StartTime           *string
	EndTime             *string
	DayOfWeek           *int
	Pattern             *RecurrencePattern
	Interval            *int
	IndexWithinInterval *int
}

// IsZero reports whether no field is set.
func (f SeriesFields) IsZero() bool { return f == SeriesFields{} }

// UpdateProfile applies in and records one SeriesUpdated holding only the fields that changed.
// It returns whether anything changed.
func (s *Series) UpdateProfile(in SeriesFields) (bool, error) {
	if !s.IsActive {
		return false, domainerr.NotFound("series", s.ID)
	}
	next := *s
	next.changes = nil
	if in.Name != nil {
		name, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return false, err
		}
		next.Name = name.String()
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.LocationID != nil {
		next.LocationID = positiveOrNil(in.LocationID)
	}
	if in.EventTypeID != nil {
		next.EventTypeID = positiveOrNil(in.EventTypeID)
	}
	if in.EventTagID != nil {
		next.EventTagID = positiveOrNil(in.EventTagID)
	}
	if in.Highlight != nil {
		next.Highlight = *in.Highlight
	}
	if in.StartDate != nil {
		next.StartDate = DateOf(*in.StartDate)
	}
	if in.ClearEndDate {
		next.EndDate = nil
	} else if in.EndDate != nil {
		next.EndDate = dateOrNil(in.EndDate)
	}
	if in.StartTime != nil {
		t, err := valueobject.ParseTimeOfDay("start_time", *in.StartTime)
		if err != nil {
			return false, err
		}
		next.StartTime = t
	}
	if in.EndTime != nil {
		t, err := valueobject.ParseTimeOfDay("end_time", *in.EndTime)
		if err != nil {
			return false, err
		}
		next.EndTime = t
	}
	if in.DayOfWeek != nil {
		next.DayOfWeek = *in.DayOfWeek
	}
	if in.Pattern != nil {
		next.Pattern = *in.Pattern
	}
	if in.Interval != nil {
		next.Interval = *in.Interval
	}
	if in.IndexWithinInterval != nil {
		idx := *in.IndexWithinInterval
		next.IndexWithinInterval = &idx
	} else if next.Pattern == Monthly && (in.StartDate != nil || in.Pattern != nil) {
		// A moved start date re-derives the index unless the caller pins it.
		next.IndexWithinInterval = nil
	}
	if err := next.normalizeAndValidate(); err != nil {
		return false, err
	}

	diff := diffSeries(s, &next)
	if diff.IsZero() {
		return false, nil
	}
	changes := s.changes
	*s = next
	s.changes = append(changes, SeriesUpdated{Fields: diff})
	return true, nil
}

// Deactivate soft-deletes the series. Deactivating an inactive series is a no-op without a record.
func (s *Series) Deactivate() bool {
	if !s.IsActive {
		return false
	}
	s.IsActive = false
	s.record(SeriesDeactivated{})
	return true
}

func (s *Series) record(c Change) { s.changes = append(s.changes, c) }

// PendingChanges returns unsaved change records in creation order.
func (s *Series) PendingChanges() []Change { return append([]Change(nil), s.changes...) }

// DrainChanges returns and clears the unsaved change records.
func (s *Series) DrainChanges() []Change {
	out := s.changes
	s.changes = nil
	return out
}

func diffSeries(cur, next *Series) SeriesFields {
	var d SeriesFields
	if cur.Name != next.Name {
		d.Name = ref(next.Name)
	}
	if cur.Description != next.Description {
		d.Description = ref(next.Description)
	}
	d.LocationID = diffRef(cur.LocationID, next.LocationID)
	d.EventTypeID = diffRef(cur.EventTypeID, next.EventTypeID)
	d.EventTagID = diffRef(cur.EventTagID, next.EventTagID)
	if cur.Highlight != next.Highlight {
		d.Highlight = ref(next.Highlight)
	}
	if !cur.StartDate.Equal(next.StartDate) {
		d.StartDate = ref(next.StartDate)
	}
	switch {
	case cur.EndDate != nil && next.EndDate == nil:
		d.ClearEndDate = true
	case next.EndDate != nil && (cur.EndDate == nil || !cur.EndDate.Equal(*next.EndDate)):
		d.EndDate = ref(*next.EndDate)
	}
	d.StartTime = diffTime(cur.StartTime, next.StartTime)
	d.EndTime = diffTime(cur.EndTime, next.EndTime)
	if cur.DayOfWeek != next.DayOfWeek {
		d.DayOfWeek = ref(next.DayOfWeek)
	}
	if cur.Pattern != next.Pattern {
		d.Pattern = ref(next.Pattern)
	}
	if cur.Interval != next.Interval {
		d.Interval = ref(next.Interval)
	}
	if derefInt(cur.IndexWithinInterval) != derefInt(next.IndexWithinInterval) {
		v := derefInt(next.IndexWithinInterval)
		d.IndexWithinInterval = &v
	}
	return d
}

// diffRef returns the new reference (0 for cleared) when it changed.
func diffRef(cur, next *int64) *int64 {
	a, b := derefInt64(cur), derefInt64(next)
	if a == b {
		return nil
	}
	return &b
}

// diffTime returns the new HHMM value ("" for cleared) when it changed.
func diffTime(cur, next *valueobject.TimeOfDay) *string {
	if valueobject.EqualTimeOfDay(cur, next) {
		return nil
	}
	s := valueobject.FormatTimeOfDay(next)
	return &s
}

// ref returns a pointer to a copy of v.
func ref[T any](v T) *T { return &v }

func positiveOrNil(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	id := *v
	return &id
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := DateOf(*t)
	return &d
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
