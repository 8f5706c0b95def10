package rates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

func TestSelectPicksScheduleForDate(t *testing.T) {
	a := sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1))
	b := sampleSchedule(2, date(2023, 7, 1), nil)
	schedules := []Schedule{a, b}

	got, err := Select(schedules, date(2023, 4, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	got, err = Select(schedules, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	_, err = Select(schedules, date(2022, 12, 31))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSelectBoundariesAreHalfOpen(t *testing.T) {
	a := sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1))
	b := sampleSchedule(2, date(2023, 7, 1), nil)

	got, err := Select([]Schedule{a, b}, date(2023, 6, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	got, err = Select([]Schedule{a, b}, date(2023, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)
}

func TestSelectIgnoresTimeOfDay(t *testing.T) {
	a := sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1))
	got, err := Select([]Schedule{a}, date(2023, 6, 30).Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestSelectOverlapIsConflict(t *testing.T) {
	a := sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 9, 1))
	b := sampleSchedule(2, date(2023, 7, 1), nil)

	_, err := Select([]Schedule{a, b}, date(2023, 8, 1))
	assert.ErrorIs(t, err, shared.ErrScheduleConflict)

	got, err := Select([]Schedule{a, b}, date(2023, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select(nil, date(2023, 1, 1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSelectReturnsCopy(t *testing.T) {
	schedules := []Schedule{sampleSchedule(1, date(2023, 1, 1), nil)}
	got, err := Select(schedules, date(2023, 2, 1))
	require.NoError(t, err)
	got.Name = "changed"
	assert.Equal(t, "schedule", schedules[0].Name)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Schedule
		want bool
	}{
		{"adjacent", sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1)), sampleSchedule(2, date(2023, 7, 1), nil), false},
		{"one day shared", sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 2)), sampleSchedule(2, date(2023, 7, 1), nil), true},
		{"both open ended", sampleSchedule(1, date(2023, 1, 1), nil), sampleSchedule(2, date(2030, 1, 1), nil), true},
		{"disjoint", sampleSchedule(1, date(2021, 1, 1), datePtr(2022, 1, 1)), sampleSchedule(2, date(2023, 1, 1), datePtr(2024, 1, 1)), false},
		{"contained", sampleSchedule(1, date(2021, 1, 1), datePtr(2025, 1, 1)), sampleSchedule(2, date(2023, 1, 1), datePtr(2024, 1, 1)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}
