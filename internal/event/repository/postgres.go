package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/db"
	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sqlDB}
}

const seriesColumns = `id, org_id, location_id, event_type_id, event_tag_id, name, description, highlight,
	start_date, end_date, start_time, end_time, day_of_week, recurrence_pattern, recurrence_interval,
	index_within_interval, is_active`

const instanceColumns = `id, org_id, series_id, location_id, event_type_id, event_tag_id, name, description,
	highlight, start_date, start_time, end_time, is_active`

func (r *PostgresRepository) GetSeries(ctx context.Context, id int64) (*domain.Series, error) {
	var (
		s                  domain.Series
		loc, typ, tag      sql.NullInt64
		endDate            sql.NullTime
		startTime, endTime sql.NullString
		pattern            string
		index              sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM event_series WHERE id = $1`, id).Scan(
		&s.ID, &s.OrgID, &loc, &typ, &tag, &s.Name, &s.Description, &s.Highlight,
		&s.StartDate, &endDate, &startTime, &endTime, &s.DayOfWeek, &pattern, &s.Interval, &index, &s.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerr.NotFound("series", id)
		}
		return nil, errors.Wrap(err, "load series")
	}
	s.LocationID, s.EventTypeID, s.EventTagID = intPtr(loc), intPtr(typ), intPtr(tag)
	s.StartDate = domain.DateOf(s.StartDate)
	if endDate.Valid {
		d := domain.DateOf(endDate.Time)
		s.EndDate = &d
	}
	if s.StartTime, err = valueobject.ParseTimeOfDay("start_time", startTime.String); err != nil {
		return nil, errors.Wrap(err, "load series start_time")
	}
	if s.EndTime, err = valueobject.ParseTimeOfDay("end_time", endTime.String); err != nil {
		return nil, errors.Wrap(err, "load series end_time")
	}
	s.Pattern = domain.RecurrencePattern(pattern)
	if index.Valid {
		n := int(index.Int64)
		s.IndexWithinInterval = &n
	}
	return &s, nil
}

// SaveSeries writes the pending records of s in order inside one transaction.
func (r *PostgresRepository) SaveSeries(ctx context.Context, s *domain.Series) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range s.PendingChanges() {
			switch v := c.(type) {
			case domain.SeriesCreated:
				err := tx.QueryRowContext(ctx, `INSERT INTO event_series (org_id, location_id, event_type_id,
					event_tag_id, name, description, highlight, start_date, end_date, start_time, end_time,
					day_of_week, recurrence_pattern, recurrence_interval, index_within_interval, is_active)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`,
					s.OrgID, s.LocationID, s.EventTypeID, s.EventTagID, s.Name, s.Description, s.Highlight,
					s.StartDate, s.EndDate, timeValue(s.StartTime), timeValue(s.EndTime), s.DayOfWeek,
					string(s.Pattern), s.Interval, s.IndexWithinInterval, s.IsActive).Scan(&s.ID)
				if err != nil {
					return db.MapWriteError(err, "insert series")
				}
			case domain.SeriesUpdated:
				if err := updateSeries(ctx, tx, s.ID, v.Fields); err != nil {
					return err
				}
			case domain.SeriesDeactivated:
				if _, err := tx.ExecContext(ctx,
					`UPDATE event_series SET is_active = false, updated_at = now() WHERE id = $1`, s.ID); err != nil {
					return db.MapWriteError(err, "deactivate series")
				}
			default:
				return errors.Errorf("unhandled series change %T", c)
			}
		}
		return nil
	}, func() { s.DrainChanges() })
}

func updateSeries(ctx context.Context, tx *sql.Tx, id int64, f domain.SeriesFields) error {
	u := updateSet{}
	u.addString("name", f.Name)
	u.addString("description", f.Description)
	u.addRef("location_id", f.LocationID)
	u.addRef("event_type_id", f.EventTypeID)
	u.addRef("event_tag_id", f.EventTagID)
	if f.Highlight != nil {
		u.add("highlight", *f.Highlight)
	}
	if f.StartDate != nil {
		u.add("start_date", *f.StartDate)
	}
	if f.EndDate != nil {
		u.add("end_date", *f.EndDate)
	} else if f.ClearEndDate {
		u.add("end_date", nil)
	}
	u.addTime("start_time", f.StartTime)
	u.addTime("end_time", f.EndTime)
	if f.DayOfWeek != nil {
		u.add("day_of_week", *f.DayOfWeek)
	}
	if f.Pattern != nil {
		u.add("recurrence_pattern", string(*f.Pattern))
	}
	if f.Interval != nil {
		u.add("recurrence_interval", *f.Interval)
	}
	if f.IndexWithinInterval != nil {
		if *f.IndexWithinInterval == 0 {
			u.add("index_within_interval", nil)
		} else {
			u.add("index_within_interval", *f.IndexWithinInterval)
		}
	}
	return u.exec(ctx, tx, "event_series", id)
}

func (r *PostgresRepository) GetInstance(ctx context.Context, id int64) (*domain.Instance, error) {
	inst, err := scanInstance(r.db.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM event_instances WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerr.NotFound("instance", id)
		}
		return nil, errors.Wrap(err, "load instance")
	}
	return inst, nil
}

func (r *PostgresRepository) SaveInstance(ctx context.Context, i *domain.Instance) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range i.PendingChanges() {
			switch v := c.(type) {
			case domain.InstanceCreated:
				if err := insertInstance(ctx, tx, i); err != nil {
					return err
				}
			case domain.InstanceUpdated:
				if err := updateInstance(ctx, tx, i.ID, v.Fields); err != nil {
					return err
				}
			case domain.InstanceDeactivated:
				if _, err := tx.ExecContext(ctx,
					`UPDATE event_instances SET is_active = false, updated_at = now() WHERE id = $1`, i.ID); err != nil {
					return db.MapWriteError(err, "deactivate instance")
				}
			default:
				return errors.Errorf("unhandled instance change %T", c)
			}
		}
		return nil
	}, func() { i.DrainChanges() })
}

func updateInstance(ctx context.Context, tx *sql.Tx, id int64, f domain.InstanceFields) error {
	u := updateSet{}
	u.addString("name", f.Name)
	u.addString("description", f.Description)
	u.addRef("location_id", f.LocationID)
	u.addRef("event_type_id", f.EventTypeID)
	u.addRef("event_tag_id", f.EventTagID)
	if f.Highlight != nil {
		u.add("highlight", *f.Highlight)
	}
	if f.Date != nil {
		u.add("start_date", *f.Date)
	}
	u.addTime("start_time", f.StartTime)
	u.addTime("end_time", f.EndTime)
	return u.exec(ctx, tx, "event_instances", id)
}

func insertInstance(ctx context.Context, tx *sql.Tx, i *domain.Instance) error {
	err := tx.QueryRowContext(ctx, `INSERT INTO event_instances (org_id, series_id, location_id, event_type_id,
		event_tag_id, name, description, highlight, start_date, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		i.OrgID, i.SeriesID, i.LocationID, i.EventTypeID, i.EventTagID, i.Name, i.Description, i.Highlight,
		i.Date, timeValue(i.StartTime), timeValue(i.EndTime), i.IsActive).Scan(&i.ID)
	return db.MapWriteError(err, "insert instance")
}

func (r *PostgresRepository) ReplaceFutureInstances(ctx context.Context, seriesID int64, from time.Time, drafts []domain.InstanceDraft) (int, error) {
	n := 0
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM event_instances WHERE series_id = $1 AND start_date >= $2`, seriesID, domain.DateOf(from)); err != nil {
			return db.MapWriteError(err, "delete future instances")
		}
		for _, d := range drafts {
			if err := insertInstance(ctx, tx, d.Instance()); err != nil {
				return err
			}
			n++
		}
		return nil
	}, nil)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepository) DeactivateFutureInstances(ctx context.Context, seriesID int64, from time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE event_instances SET is_active = false, updated_at = now()
		WHERE series_id = $1 AND start_date >= $2 AND is_active`, seriesID, domain.DateOf(from))
	if err != nil {
		return 0, db.MapWriteError(err, "deactivate future instances")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deactivate future instances")
	}
	return int(n), nil
}

func (r *PostgresRepository) ListSeriesInstances(ctx context.Context, seriesID int64) ([]*domain.Instance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+instanceColumns+` FROM event_instances
		WHERE series_id = $1 ORDER BY start_date, id`, seriesID)
	if err != nil {
		return nil, errors.Wrap(err, "list series instances")
	}
	defer rows.Close()
	var out []*domain.Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan instance")
		}
		out = append(out, inst)
	}
	return out, errors.Wrap(rows.Err(), "list series instances")
}

func scanInstance(row interface{ Scan(...any) error }) (*domain.Instance, error) {
	var (
		i                     domain.Instance
		series, loc, typ, tag sql.NullInt64
		startTime, endTime    sql.NullString
	)
	if err := row.Scan(&i.ID, &i.OrgID, &series, &loc, &typ, &tag, &i.Name, &i.Description, &i.Highlight,
		&i.Date, &startTime, &endTime, &i.IsActive); err != nil {
		return nil, err
	}
	i.SeriesID, i.LocationID, i.EventTypeID, i.EventTagID = intPtr(series), intPtr(loc), intPtr(typ), intPtr(tag)
	i.Date = domain.DateOf(i.Date)
	var err error
	if i.StartTime, err = valueobject.ParseTimeOfDay("start_time", startTime.String); err != nil {
		return nil, err
	}
	if i.EndTime, err = valueobject.ParseTimeOfDay("end_time", endTime.String); err != nil {
		return nil, err
	}
	return &i, nil
}

// inTx runs fn in a transaction and calls done after a successful commit.
func (r *PostgresRepository) inTx(ctx context.Context, fn func(*sql.Tx) error, done func()) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	if done != nil {
		done()
	}
	return nil
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func timeValue(t *valueobject.TimeOfDay) sql.NullString {
	return sql.NullString{String: valueobject.FormatTimeOfDay(t), Valid: t != nil}
}

type updateSet struct {
	cols []string
	args []any
}

func (u *updateSet) add(col string, v any) {
	u.args = append(u.args, v)
	u.cols = append(u.cols, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

func (u *updateSet) addString(col string, v *string) {
	if v != nil {
		u.add(col, *v)
	}
}

// addRef writes NULL for a cleared (0) reference.
func (u *updateSet) addRef(col string, v *int64) {
	if v == nil {
		return
	}
	if *v == 0 {
		u.add(col, nil)
		return
	}
	u.add(col, *v)
}

// addTime writes NULL for a cleared ("") time.
func (u *updateSet) addTime(col string, v *string) {
	if v == nil {
		return
	}
	u.add(col, sql.NullString{String: *v, Valid: *v != ""})
}

func (u *updateSet) exec(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	if len(u.cols) == 0 {
		return nil
	}
	args := append(u.args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE id = $%d`, table, strings.Join(u.cols, ", "), len(args))
	_, err := tx.ExecContext(ctx, q, args...)
	return db.MapWriteError(err, "update "+table)
}
