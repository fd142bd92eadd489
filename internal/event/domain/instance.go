package domain

import (
	"strings"
	"time"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// Instance is one dated occurrence. SeriesID is set when a series generated it.
type Instance struct {
	ID          int64
	OrgID       int64
	SeriesID    *int64
	Name        string
	Description string
	LocationID  *int64
	EventTypeID *int64
	EventTagID  *int64
	Highlight   bool
	Date        time.Time
	StartTime   *valueobject.TimeOfDay
	EndTime     *valueobject.TimeOfDay
	IsActive    bool

	changes []Change
}

// InstanceInput describes an unscheduled (stand-alone) instance.
type InstanceInput struct {
	OrgID       int64
	Name        string
	Description string
	LocationID  *int64
	EventTypeID *int64
	EventTagID  *int64
	Highlight   bool
	Date        time.Time
	StartTime   string
	EndTime     string
}

// NewInstance validates in and returns an active instance with an InstanceCreated record.
func NewInstance(in InstanceInput) (*Instance, error) {
	if in.OrgID <= 0 {
		return nil, domainerr.Invalid("org_id", "is required")
	}
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, domainerr.Invalid("date", "is required")
	}
	start, err := valueobject.ParseTimeOfDay("start_time", in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := valueobject.ParseTimeOfDay("end_time", in.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validateTimes(start, end); err != nil {
		return nil, err
	}
	inst := &Instance{
		OrgID:       in.OrgID,
		Name:        name.String(),
		Description: strings.TrimSpace(in.Description),
		LocationID:  positiveOrNil(in.LocationID),
		EventTypeID: positiveOrNil(in.EventTypeID),
		EventTagID:  positiveOrNil(in.EventTagID),
		Highlight:   in.Highlight,
		Date:        DateOf(in.Date),
		StartTime:   start,
		EndTime:     end,
		IsActive:    true,
	}
	inst.record(InstanceCreated{})
	return inst, nil
}

// InstanceDraft is an occurrence produced by the expansion engine, not yet persisted.
type InstanceDraft struct {
	OrgID       int64
	SeriesID    int64
	Name        string
	Description string
	LocationID  *int64
	EventTypeID *int64
	EventTagID  *int64
	Highlight   bool
	Date        time.Time
	StartTime   *valueobject.TimeOfDay
	EndTime     *valueobject.TimeOfDay
}

// Instance turns the draft into a new active instance with an InstanceCreated record.
func (d InstanceDraft) Instance() *Instance {
	seriesID := d.SeriesID
	inst := &Instance{
		OrgID:       d.OrgID,
		SeriesID:    &seriesID,
		Name:        d.Name,
		Description: d.Description,
		LocationID:  d.LocationID,
		EventTypeID: d.EventTypeID,
		EventTagID:  d.EventTagID,
		Highlight:   d.Highlight,
		Date:        d.Date,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		IsActive:    true,
	}
	inst.record(InstanceCreated{})
	return inst
}

// InstanceFields carries supplied (update input) or changed (diff record) instance fields.
// For the id fields 0 clears the reference; for the time fields "" clears the time.
type InstanceFields struct {
	Name        *string
	Description *string
	LocationID  *int64
	EventTypeID *int64
	EventTagID  *int64
	Highlight   *bool
	Date        *time.Time
	StartTime   *string
	EndTime     *string
}

func (f InstanceFields) IsZero() bool { return f == InstanceFields{} }

// UpdateProfile applies in and records one InstanceUpdated holding only the fields that changed.
func (i *Instance) UpdateProfile(in InstanceFields) (bool, error) {
	if !i.IsActive {
		return false, domainerr.NotFound("instance", i.ID)
	}
	next := *i
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
	if in.Date != nil {
		if in.Date.IsZero() {
			return false, domainerr.Invalid("date", "is required")
		}
		next.Date = DateOf(*in.Date)
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
	if err := validateTimes(next.StartTime, next.EndTime); err != nil {
		return false, err
	}

	var d InstanceFields
	if i.Name != next.Name {
		d.Name = ref(next.Name)
	}
	if i.Description != next.Description {
		d.Description = ref(next.Description)
	}
	d.LocationID = diffRef(i.LocationID, next.LocationID)
	d.EventTypeID = diffRef(i.EventTypeID, next.EventTypeID)
	d.EventTagID = diffRef(i.EventTagID, next.EventTagID)
	if i.Highlight != next.Highlight {
		d.Highlight = ref(next.Highlight)
	}
	if !i.Date.Equal(next.Date) {
		d.Date = ref(next.Date)
	}
	d.StartTime = diffTime(i.StartTime, next.StartTime)
	d.EndTime = diffTime(i.EndTime, next.EndTime)
	if d.IsZero() {
		return false, nil
	}
	changes := i.changes
	*i = next
	i.changes = append(changes, InstanceUpdated{Fields: d})
	return true, nil
}

// Deactivate soft-deletes the instance; a no-op without a record when already inactive.
func (i *Instance) Deactivate() bool {
	if !i.IsActive {
		return false
	}
	i.IsActive = false
	i.record(InstanceDeactivated{})
	return true
}

func (i *Instance) record(c Change) { i.changes = append(i.changes, c) }

func (i *Instance) PendingChanges() []Change { return append([]Change(nil), i.changes...) }

func (i *Instance) DrainChanges() []Change {
	out := i.changes
	i.changes = nil
	return out
}

func validateTimes(start, end *valueobject.TimeOfDay) error {
	if start != nil && end != nil && !start.Before(*end) {
		return domainerr.Invalid("end_time", "must be after start_time")
	}
	return nil
}
