package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/platform/domainerr"
)

var seriesCols = []string{"id", "org_id", "location_id", "event_type_id", "event_tag_id", "name", "description",
	"highlight", "start_date", "end_date", "start_time", "end_time", "day_of_week", "recurrence_pattern",
	"recurrence_interval", "index_within_interval", "is_active"}

var instanceCols = []string{"id", "org_id", "series_id", "location_id", "event_type_id", "event_tag_id", "name",
	"description", "highlight", "start_date", "start_time", "end_time", "is_active"}

func newSeries(t *testing.T) *domain.Series {
	t.Helper()
	s, err := domain.NewSeries(domain.SeriesInput{
		OrgID:     3,
		Name:      "The Grind",
		StartDate: domain.Day(2024, time.January, 1),
		StartTime: "0530",
		EndTime:   "0615",
		DayOfWeek: 1,
		Pattern:   domain.Weekly,
	})
	require.NoError(t, err)
	return s
}

func TestPostgresRepository_GetSeries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM event_series WHERE id = \$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(seriesCols).AddRow(5, 3, 30, nil, nil, "The Grind", "", false,
			domain.Day(2024, time.March, 12), nil, "0530", "0615", 2, "monthly", 1, 2, true))

	s, err := NewPostgresRepository(db).GetSeries(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), s.ID)
	require.Equal(t, int64(30), *s.LocationID)
	require.Nil(t, s.EventTypeID)
	require.Nil(t, s.EndDate)
	require.Equal(t, domain.Monthly, s.Pattern)
	require.Equal(t, 2, *s.IndexWithinInterval)
	require.Equal(t, "0530", s.StartTime.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetSeriesNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM event_series WHERE id = \$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(seriesCols))

	_, err = NewPostgresRepository(db).GetSeries(context.Background(), 5)
	require.True(t, domainerr.IsNotFound(err))
}

func TestPostgresRepository_SaveSeriesInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO event_series`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectCommit()

	s := newSeries(t)
	require.NoError(t, NewPostgresRepository(db).SaveSeries(context.Background(), s))
	require.Equal(t, int64(77), s.ID)
	require.Empty(t, s.PendingChanges())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveSeriesUpdateAndDeactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newSeries(t)
	s.ID = 77
	s.DrainChanges()
	changed, err := s.UpdateProfile(domain.SeriesFields{Name: ptr("The Grinder"), EndTime: ptr("")})
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, s.Deactivate())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE event_series SET name = \$1, end_time = \$2, updated_at = now\(\) WHERE id = \$3`).
		WithArgs("The Grinder", nil, int64(77)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE event_series SET is_active = false`).WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresRepository(db).SaveSeries(context.Background(), s))
	require.Empty(t, s.PendingChanges())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveSeriesKeepsChangesOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO event_series`).WillReturnError(&pgForeignKey)
	mock.ExpectRollback()

	s := newSeries(t)
	err = NewPostgresRepository(db).SaveSeries(context.Background(), s)
	require.True(t, domainerr.IsValidation(err))
	require.Len(t, s.PendingChanges(), 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ReplaceFutureInstances(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := domain.Day(2024, time.January, 10)
	drafts := []domain.InstanceDraft{
		{OrgID: 3, SeriesID: 77, Name: "The Grind", Date: domain.Day(2024, time.January, 15)},
		{OrgID: 3, SeriesID: 77, Name: "The Grind", Date: domain.Day(2024, time.January, 22)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM event_instances WHERE series_id = \$1 AND start_date >= \$2`).
		WithArgs(int64(77), from).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO event_instances`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectQuery(`INSERT INTO event_instances`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
	mock.ExpectCommit()

	n, err := NewPostgresRepository(db).ReplaceFutureInstances(context.Background(), 77, from, drafts)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ReplaceFutureInstancesRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := domain.Day(2024, time.January, 10)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM event_instances`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO event_instances`).WillReturnError(&pgForeignKey)
	mock.ExpectRollback()

	n, err := NewPostgresRepository(db).ReplaceFutureInstances(context.Background(), 77, from,
		[]domain.InstanceDraft{{OrgID: 3, SeriesID: 77, Date: domain.Day(2024, time.January, 15)}})
	require.Error(t, err)
	require.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeactivateFutureInstances(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := domain.Day(2024, time.February, 1)
	mock.ExpectExec(`UPDATE event_instances SET is_active = false`).WithArgs(int64(77), from).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewPostgresRepository(db).DeactivateFutureInstances(context.Background(), 77, from)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetInstanceAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM event_instances WHERE id = \$1`).WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows(instanceCols).AddRow(101, 3, 77, nil, nil, nil, "The Grind", "", true,
			domain.Day(2024, time.January, 15), "0530", nil, true))
	mock.ExpectQuery(`FROM event_instances\s+WHERE series_id = \$1 ORDER BY start_date, id`).WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows(instanceCols).
			AddRow(101, 3, 77, nil, nil, nil, "The Grind", "", false, domain.Day(2024, time.January, 15), nil, nil, true).
			AddRow(102, 3, 77, nil, nil, nil, "The Grind", "", false, domain.Day(2024, time.January, 22), nil, nil, false))

	repo := NewPostgresRepository(db)
	inst, err := repo.GetInstance(context.Background(), 101)
	require.NoError(t, err)
	require.Equal(t, int64(77), *inst.SeriesID)
	require.True(t, inst.Highlight)
	require.Nil(t, inst.EndTime)

	list, err := repo.ListSeriesInstances(context.Background(), 77)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.False(t, list[1].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}
