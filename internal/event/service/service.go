// Package service executes series and instance commands. Creating or changing a series expands it
// into dated instances; past instances are never touched.
package service

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/event/recurrence"
	"f3-catalog/backend/internal/event/repository"
	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry"
)

// Result reports what a command did. Changed is false for no-op updates and repeated deactivations.
type Result struct {
	SeriesID    int64 `json:"series_id,omitempty"`
	InstanceID  int64 `json:"instance_id,omitempty"`
	Changed     bool  `json:"changed"`
	Generated   int   `json:"generated,omitempty"`
	Deactivated int   `json:"deactivated,omitempty"`
}

type CommandHandler struct {
	repo  repository.Repository
	log   *logger.Logger
	now   func() time.Time
	instr *telemetry.Instruments
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithClock sets the clock that decides which instances are in the future.
func WithClock(now func() time.Time) Option { return func(h *CommandHandler) { h.now = now } }

func NewCommandHandler(repo repository.Repository, log *logger.Logger, opts ...Option) *CommandHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &CommandHandler{
		repo:  repo,
		log:   log,
		now:   time.Now,
		instr: telemetry.NewInstruments("f3-catalog/event"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute dispatches one event command.
func (h *CommandHandler) Execute(ctx context.Context, cmd command.Command) (res Result, err error) {
	ctx, end := h.instr.Start(ctx, string(cmd.Kind()), cmd.TargetOrg())
	defer func() { end(err) }()

	switch c := cmd.(type) {
	case *command.CreateSeries:
		return h.createSeries(ctx, c)
	case *command.UpdateSeries:
		return h.updateSeries(ctx, c)
	case *command.DeactivateSeries:
		return h.deactivateSeries(ctx, c)
	case *command.CreateInstance:
		return h.createInstance(ctx, c)
	case *command.UpdateInstance:
		return h.updateInstance(ctx, c)
	case *command.DeactivateInstance:
		return h.deactivateInstance(ctx, c)
	default:
		return Result{}, domainerr.Invalid("kind", "%s is not an event command", cmd.Kind())
	}
}

func (h *CommandHandler) today() time.Time { return domain.DateOf(h.now()) }

func (h *CommandHandler) createSeries(ctx context.Context, c *command.CreateSeries) (Result, error) {
	start, err := domain.ParseDate("start_date", c.StartDate)
	if err != nil {
		return Result{}, err
	}
	end, err := optionalDate("end_date", c.EndDate)
	if err != nil {
		return Result{}, err
	}
	pattern, err := domain.ParseRecurrencePattern(c.Pattern)
	if err != nil {
		return Result{}, err
	}
	s, err := domain.NewSeries(domain.SeriesInput{
		OrgID:               c.OrgID,
		Name:                c.Name,
		Description:         c.Description,
		LocationID:          c.LocationID,
		EventTypeID:         c.EventTypeID,
		EventTagID:          c.EventTagID,
		Highlight:           c.Highlight,
		StartDate:           start,
		EndDate:             end,
		StartTime:           c.StartTime,
		EndTime:             c.EndTime,
		DayOfWeek:           c.DayOfWeek,
		Pattern:             pattern,
		Interval:            c.Interval,
		IndexWithinInterval: c.IndexWithinInterval,
	})
	if err != nil {
		return Result{}, err
	}
	if err := h.repo.SaveSeries(ctx, s); err != nil {
		return Result{}, err
	}
	n, err := h.repo.ReplaceFutureInstances(ctx, s.ID, s.StartDate, recurrence.Expand(s))
	if err != nil {
		return Result{}, errors.Wrapf(err, "generate instances for series %d", s.ID)
	}
	h.log.Info("series created", "org_id", s.OrgID, "series_id", s.ID, "instances", n)
	return Result{SeriesID: s.ID, Changed: true, Generated: n}, nil
}

func (h *CommandHandler) updateSeries(ctx context.Context, c *command.UpdateSeries) (Result, error) {
	s, err := h.loadSeries(ctx, c.OrgID, c.SeriesID)
	if err != nil {
		return Result{}, err
	}
	fields, err := seriesFields(c)
	if err != nil {
		return Result{}, err
	}
	changed, err := s.UpdateProfile(fields)
	if err != nil {
		return Result{}, err
	}
	res := Result{SeriesID: s.ID, Changed: changed}
	if !changed {
		return res, nil
	}
	if err := h.repo.SaveSeries(ctx, s); err != nil {
		return Result{}, err
	}
	today := h.today()
	// Expanding from the start date keeps the interval phase; only the future part is replaced.
	drafts := recurrence.From(recurrence.Expand(s), today)
	if res.Generated, err = h.repo.ReplaceFutureInstances(ctx, s.ID, today, drafts); err != nil {
		return Result{}, errors.Wrapf(err, "regenerate instances for series %d", s.ID)
	}
	h.log.Info("series updated", "org_id", s.OrgID, "series_id", s.ID, "instances", res.Generated)
	return res, nil
}

func (h *CommandHandler) deactivateSeries(ctx context.Context, c *command.DeactivateSeries) (Result, error) {
	s, err := h.loadSeries(ctx, c.OrgID, c.SeriesID)
	if err != nil {
		return Result{}, err
	}
	res := Result{SeriesID: s.ID}
	if !s.Deactivate() {
		return res, nil
	}
	if err := h.repo.SaveSeries(ctx, s); err != nil {
		return Result{}, err
	}
	res.Changed = true
	if res.Deactivated, err = h.repo.DeactivateFutureInstances(ctx, s.ID, h.today()); err != nil {
		return Result{}, errors.Wrapf(err, "deactivate instances of series %d", s.ID)
	}
	h.log.Info("series deactivated", "org_id", s.OrgID, "series_id", s.ID, "instances", res.Deactivated)
	return res, nil
}

func (h *CommandHandler) createInstance(ctx context.Context, c *command.CreateInstance) (Result, error) {
	date, err := domain.ParseDate("date", c.Date)
	if err != nil {
		return Result{}, err
	}
	inst, err := domain.NewInstance(domain.InstanceInput{
		OrgID:       c.OrgID,
		Name:        c.Name,
		Description: c.Description,
		LocationID:  c.LocationID,
		EventTypeID: c.EventTypeID,
		EventTagID:  c.EventTagID,
		Highlight:   c.Highlight,
		Date:        date,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	})
	if err != nil {
		return Result{}, err
	}
	if err := h.repo.SaveInstance(ctx, inst); err != nil {
		return Result{}, err
	}
	return Result{InstanceID: inst.ID, Changed: true}, nil
}

func (h *CommandHandler) updateInstance(ctx context.Context, c *command.UpdateInstance) (Result, error) {
	inst, err := h.loadInstance(ctx, c.OrgID, c.InstanceID)
	if err != nil {
		return Result{}, err
	}
	fields := domain.InstanceFields{
		Name:        c.Name,
		Description: c.Description,
		LocationID:  c.LocationID,
		EventTypeID: c.EventTypeID,
		EventTagID:  c.EventTagID,
		Highlight:   c.Highlight,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
	if c.Date != nil {
		d, err := domain.ParseDate("date", *c.Date)
		if err != nil {
			return Result{}, err
		}
		fields.Date = &d
	}
	changed, err := inst.UpdateProfile(fields)
	if err != nil {
		return Result{}, err
	}
	if changed {
		if err := h.repo.SaveInstance(ctx, inst); err != nil {
			return Result{}, err
		}
	}
	return Result{InstanceID: inst.ID, Changed: changed}, nil
}

func (h *CommandHandler) deactivateInstance(ctx context.Context, c *command.DeactivateInstance) (Result, error) {
	inst, err := h.loadInstance(ctx, c.OrgID, c.InstanceID)
	if err != nil {
		return Result{}, err
	}
	if !inst.Deactivate() {
		return Result{InstanceID: inst.ID}, nil
	}
	if err := h.repo.SaveInstance(ctx, inst); err != nil {
		return Result{}, err
	}
	return Result{InstanceID: inst.ID, Changed: true}, nil
}

// loadSeries hides series of other orgs behind NotFound.
func (h *CommandHandler) loadSeries(ctx context.Context, orgID, id int64) (*domain.Series, error) {
	s, err := h.repo.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.OrgID != orgID {
		return nil, domainerr.NotFound("series", id)
	}
	return s, nil
}

func (h *CommandHandler) loadInstance(ctx context.Context, orgID, id int64) (*domain.Instance, error) {
	inst, err := h.repo.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst.OrgID != orgID {
		return nil, domainerr.NotFound("instance", id)
	}
	return inst, nil
}

// GetSeries returns the series if it belongs to orgID.
func (h *CommandHandler) GetSeries(ctx context.Context, orgID, id int64) (*domain.Series, error) {
	return h.loadSeries(ctx, orgID, id)
}

// GetInstance returns the instance if it belongs to orgID.
func (h *CommandHandler) GetInstance(ctx context.Context, orgID, id int64) (*domain.Instance, error) {
	return h.loadInstance(ctx, orgID, id)
}

// ListSeriesInstances returns every instance of the series (inactive ones included) in date order.
func (h *CommandHandler) ListSeriesInstances(ctx context.Context, orgID, seriesID int64) ([]*domain.Instance, error) {
	if _, err := h.loadSeries(ctx, orgID, seriesID); err != nil {
		return nil, err
	}
	out, err := h.repo.ListSeriesInstances(ctx, seriesID)
	if err != nil {
		return nil, errors.Wrapf(err, "list instances of series %d", seriesID)
	}
	return out, nil
}

func seriesFields(c *command.UpdateSeries) (domain.SeriesFields, error) {
	f := domain.SeriesFields{
		Name:                c.Name,
		Description:         c.Description,
		LocationID:          c.LocationID,
		EventTypeID:         c.EventTypeID,
		EventTagID:          c.EventTagID,
		Highlight:           c.Highlight,
		StartTime:           c.StartTime,
		EndTime:             c.EndTime,
		DayOfWeek:           c.DayOfWeek,
		Interval:            c.Interval,
		IndexWithinInterval: c.IndexWithinInterval,
	}
	if c.IndexWithinInterval != nil && *c.IndexWithinInterval == 0 {
		f.IndexWithinInterval = nil
	}
	if c.StartDate != nil {
		d, err := domain.ParseDate("start_date", *c.StartDate)
		if err != nil {
			return f, err
		}
		f.StartDate = &d
	}
	if c.EndDate != nil {
		if *c.EndDate == "" {
			f.ClearEndDate = true
		} else {
			d, err := domain.ParseDate("end_date", *c.EndDate)
			if err != nil {
				return f, err
			}
			f.EndDate = &d
		}
	}
	if c.Pattern != nil {
		p, err := domain.ParseRecurrencePattern(*c.Pattern)
		if err != nil {
			return f, err
		}
		f.Pattern = &p
	}
	return f, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
