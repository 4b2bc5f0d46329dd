package semester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeeks(t *testing.T) {
	t.Parallel()

	t.Run("mixed ranges and singles", func(t *testing.T) {
		weeks, err := ParseWeeks("1-3,5,7-16")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 5, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, weeks)
	})

	t.Run("overlapping segments are merged", func(t *testing.T) {
		weeks, err := ParseWeeks("4,1-4, 2")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, weeks)
	})

	t.Run("malformed segment", func(t *testing.T) {
		for _, expr := range []string{"a-3", "5-2", "0", "3-x"} {
			_, err := ParseWeeks(expr)
			assert.ErrorIs(t, err, ErrInvalidWeeks, "expr %q", expr)
		}
	})
}

func TestFilterWeeks(t *testing.T) {
	t.Parallel()

	weeks, err := ParseWeeks("1-3,5,7-16")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 5, 7, 9, 11, 13, 15}, FilterWeeks(weeks, WeekTypeOdd))
	assert.Equal(t, []int{2, 8, 10, 12, 14, 16}, FilterWeeks(weeks, WeekTypeEven))
	assert.Equal(t, weeks, FilterWeeks(weeks, WeekTypeFull))
}

func TestParseWeekType(t *testing.T) {
	t.Parallel()

	wt, ok := ParseWeekType(" Odd ")
	assert.True(t, ok)
	assert.Equal(t, WeekTypeOdd, wt)

	wt, ok = ParseWeekType("biweekly")
	assert.False(t, ok)
	assert.Equal(t, WeekTypeFull, wt)
}

func TestCalendarDate(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(time.Time{})
	assert.Equal(t, DefaultStart, cal.Date(1, 1))
	assert.Equal(t, time.Date(2025, time.February, 23, 0, 0, 0, 0, time.UTC), cal.Date(1, 7))
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), cal.Date(3, 3))

	dates := cal.Dates([]int{1, 2}, 2)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Tuesday, dates[0].Weekday())
	assert.Equal(t, 7*24*time.Hour, dates[1].Sub(dates[0]))
}
