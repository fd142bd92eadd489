package command

// Dates are YYYY-MM-DD, times HHMM. For optional references 0 clears the reference; for optional
// times and the end date "" clears the value.

type CreateSeries struct {
	orgTarget
	Name                string `json:"name" validate:"required"`
	Description         string `json:"description"`
	LocationID          *int64 `json:"location_id,omitempty" validate:"omitempty,gt=0"`
	EventTypeID         *int64 `json:"event_type_id,omitempty" validate:"omitempty,gt=0"`
	EventTagID          *int64 `json:"event_tag_id,omitempty" validate:"omitempty,gt=0"`
	Highlight           bool   `json:"highlight"`
	StartDate           string `json:"start_date" validate:"required"`
	EndDate             string `json:"end_date,omitempty"`
	StartTime           string `json:"start_time,omitempty"`
	EndTime             string `json:"end_time,omitempty"`
	DayOfWeek           int    `json:"day_of_week" validate:"min=1,max=7"`
	Pattern             string `json:"recurrence_pattern" validate:"required"`
	Interval            int    `json:"recurrence_interval" validate:"min=0"`
	IndexWithinInterval *int   `json:"index_within_interval,omitempty" validate:"omitempty,min=1,max=5"`
}

type UpdateSeries struct {
	orgTarget
	SeriesID            int64   `json:"series_id" validate:"required,gt=0"`
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	LocationID          *int64  `json:"location_id,omitempty" validate:"omitempty,min=0"`
	EventTypeID         *int64  `json:"event_type_id,omitempty" validate:"omitempty,min=0"`
	EventTagID          *int64  `json:"event_tag_id,omitempty" validate:"omitempty,min=0"`
	Highlight           *bool   `json:"highlight,omitempty"`
	StartDate           *string `json:"start_date,omitempty"`
	EndDate             *string `json:"end_date,omitempty"`
	StartTime           *string `json:"start_time,omitempty"`
	EndTime             *string `json:"end_time,omitempty"`
	DayOfWeek           *int    `json:"day_of_week,omitempty" validate:"omitempty,min=1,max=7"`
	Pattern             *string `json:"recurrence_pattern,omitempty"`
	Interval            *int    `json:"recurrence_interval,omitempty" validate:"omitempty,min=1"`
	IndexWithinInterval *int    `json:"index_within_interval,omitempty" validate:"omitempty,min=0,max=5"`
}

type DeactivateSeries struct {
	orgTarget
	SeriesID int64 `json:"series_id" validate:"required,gt=0"`
}

type CreateInstance struct {
	orgTarget
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	LocationID  *int64 `json:"location_id,omitempty" validate:"omitempty,gt=0"`
	EventTypeID *int64 `json:"event_type_id,omitempty" validate:"omitempty,gt=0"`
	EventTagID  *int64 `json:"event_tag_id,omitempty" validate:"omitempty,gt=0"`
	Highlight   bool   `json:"highlight"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

type UpdateInstance struct {
	orgTarget
	InstanceID  int64   `json:"instance_id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	LocationID  *int64  `json:"location_id,omitempty" validate:"omitempty,min=0"`
	EventTypeID *int64  `json:"event_type_id,omitempty" validate:"omitempty,min=0"`
	EventTagID  *int64  `json:"event_tag_id,omitempty" validate:"omitempty,min=0"`
	Highlight   *bool   `json:"highlight,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
}

type DeactivateInstance struct {
	orgTarget
	InstanceID int64 `json:"instance_id" validate:"required,gt=0"`
}

func (CreateSeries) Kind() Kind       { return KindCreateSeries }
func (UpdateSeries) Kind() Kind       { return KindUpdateSeries }
func (DeactivateSeries) Kind() Kind   { return KindDeactivateSeries }
func (CreateInstance) Kind() Kind     { return KindCreateInstance }
func (UpdateInstance) Kind() Kind     { return KindUpdateInstance }
func (DeactivateInstance) Kind() Kind { return KindDeactivateInstance }
