package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/platform/domainerr"
)

func weeklyInput() SeriesInput {
	return SeriesInput{
		OrgID: 1, Name: "Bootcamp", StartDate: Day(2024, time.January, 1),
		StartTime: "0530", EndTime: "0615", DayOfWeek: 1, Pattern: Weekly, Interval: 1,
	}
}

func TestNewSeries_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*SeriesInput)
		field  string
	}{
		{"missing name", func(in *SeriesInput) { in.Name = " " }, "name"},
		{"bad start time", func(in *SeriesInput) { in.StartTime = "2460" }, "start_time"},
		{"end before start", func(in *SeriesInput) { in.EndTime = "0500" }, "end_time"},
		{"day of week", func(in *SeriesInput) { in.DayOfWeek = 0 }, "day_of_week"},
		{"interval", func(in *SeriesInput) { in.Interval = -1 }, "recurrence_interval"},
		{"pattern", func(in *SeriesInput) { in.Pattern = "daily" }, "recurrence_pattern"},
		{"end date", func(in *SeriesInput) { d := Day(2023, time.December, 1); in.EndDate = &d }, "end_date"},
		{"monthly weekday mismatch", func(in *SeriesInput) { in.Pattern = Monthly; in.DayOfWeek = 2 }, "day_of_week"},
		{"monthly index mismatch", func(in *SeriesInput) { in.Pattern = Monthly; in.IndexWithinInterval = ref(3) }, "index_within_interval"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := weeklyInput()
			tc.mutate(&in)
			_, err := NewSeries(in)
			var ve *domainerr.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNewSeries_Defaults(t *testing.T) {
	in := weeklyInput()
	in.Interval = 0
	in.IndexWithinInterval = ref(4)
	s, err := NewSeries(in)
	require.NoError(t, err)
	require.Equal(t, 1, s.Interval)
	require.Nil(t, s.IndexWithinInterval, "weekly series carry no index")
	require.Equal(t, Day(2026, time.January, 1), s.LastDate())
	require.Equal(t, []Change{SeriesCreated{}}, s.PendingChanges())
}

func TestSeriesUpdateProfile_RecordsOnlyChangedFields(t *testing.T) {
	s, err := NewSeries(weeklyInput())
	require.NoError(t, err)
	s.DrainChanges()

	changed, err := s.UpdateProfile(SeriesFields{Name: ref("Bootcamp"), StartTime: ref("0530"), Description: ref("Hill repeats")})
	require.NoError(t, err)
	require.True(t, changed)
	changes := s.DrainChanges()
	require.Len(t, changes, 1)
	fields := changes[0].(SeriesUpdated).Fields
	require.Equal(t, SeriesFields{Description: ref("Hill repeats")}, fields)

	changed, err = s.UpdateProfile(SeriesFields{Description: ref("Hill repeats")})
	require.NoError(t, err)
	require.False(t, changed)
	require.Empty(t, s.PendingChanges())

	changed, err = s.UpdateProfile(SeriesFields{EndTime: ref("")})
	require.NoError(t, err)
	require.True(t, changed)
	require.Nil(t, s.EndTime)
	require.Equal(t, "", *s.DrainChanges()[0].(SeriesUpdated).Fields.EndTime)
}

func TestSeriesUpdateProfile_FailureLeavesSeriesUnchanged(t *testing.T) {
	s, err := NewSeries(weeklyInput())
	require.NoError(t, err)
	before := *s

	_, err = s.UpdateProfile(SeriesFields{Name: ref("New"), Pattern: ref(Monthly), DayOfWeek: ref(3)})
	require.True(t, domainerr.IsValidation(err))
	require.Equal(t, before, *s)
}

func TestSeriesUpdateProfile_MonthlyStartMoveRederivesIndex(t *testing.T) {
	in := weeklyInput()
	in.Pattern = Monthly
	in.StartDate = Day(2024, time.March, 12)
	in.DayOfWeek = 2
	s, err := NewSeries(in)
	require.NoError(t, err)
	require.Equal(t, 2, *s.IndexWithinInterval)

	_, err = s.UpdateProfile(SeriesFields{StartDate: ref(Day(2024, time.March, 19))})
	require.NoError(t, err)
	require.Equal(t, 3, *s.IndexWithinInterval)
}

func TestSeriesDeactivateIsIdempotent(t *testing.T) {
	s, err := NewSeries(weeklyInput())
	require.NoError(t, err)
	s.DrainChanges()
	require.True(t, s.Deactivate())
	require.False(t, s.Deactivate())
	require.Equal(t, []Change{SeriesDeactivated{}}, s.PendingChanges())

	_, err = s.UpdateProfile(SeriesFields{Name: ref("x")})
	require.True(t, domainerr.IsNotFound(err))
}

func TestInstance(t *testing.T) {
	inst, err := NewInstance(InstanceInput{OrgID: 1, Name: "Convergence", Date: Day(2024, time.May, 4), StartTime: "0600"})
	require.NoError(t, err)
	require.Nil(t, inst.SeriesID)
	inst.DrainChanges()

	changed, err := inst.UpdateProfile(InstanceFields{Date: ref(Day(2024, time.May, 4)), LocationID: ref(int64(9))})
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, InstanceFields{LocationID: ref(int64(9))}, inst.DrainChanges()[0].(InstanceUpdated).Fields)

	_, err = inst.UpdateProfile(InstanceFields{EndTime: ref("0500")})
	require.True(t, domainerr.IsValidation(err))

	_, err = NewInstance(InstanceInput{OrgID: 1, Name: "x"})
	require.True(t, domainerr.IsValidation(err))

	require.True(t, inst.Deactivate())
	require.False(t, inst.Deactivate())
}

func TestDraftInstance(t *testing.T) {
	inst := InstanceDraft{OrgID: 1, SeriesID: 5, Name: "Bootcamp", Date: Day(2024, time.January, 8)}.Instance()
	require.Equal(t, int64(5), *inst.SeriesID)
	require.True(t, inst.IsActive)
	require.Equal(t, []Change{InstanceCreated{}}, inst.PendingChanges())
}

func TestCalendarHelpers(t *testing.T) {
	require.Equal(t, 7, ISOWeekday(Day(2024, time.January, 7)))
	require.Equal(t, 1, ISOWeekday(Day(2024, time.January, 8)))
	require.Equal(t, 2, OccurrenceInMonth(Day(2024, time.March, 12)))
	_, err := ParseDate("start_date", "2024-13-01")
	require.True(t, domainerr.IsValidation(err))
}
