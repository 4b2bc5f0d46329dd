package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "blank", raw: "   ", want: ""},
		{name: "already canonical", raw: "0,2,6", want: "0,2,6"},
		{name: "unsorted with duplicates", raw: "6, 2,2,0", want: "0,2,6"},
		{name: "blank tokens skipped", raw: "3,,1, ", want: "1,3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestParseRejectsNonNumericTokens(t *testing.T) {
	_, err := Parse("1,two,3")
	require.ErrorIs(t, err, ErrMalformedSlotData)
}

func TestCanonicalIsIdempotent(t *testing.T) {
	for _, raw := range []string{"", "5,1,3", "11,0,0,4", " 7 , 7 "} {
		once, err := Canonical(raw)
		require.NoError(t, err)
		twice, err := Canonical(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "raw %q", raw)
	}
}

func TestSetOperations(t *testing.T) {
	a := New(2, 3)
	b := New(3, 4)

	assert.Equal(t, "3", a.Intersect(b).String())
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(New(5)))
	assert.Equal(t, "2,3,4", a.Union(b).String())
	assert.True(t, a.Contains(2))
	assert.False(t, a.Contains(4))
	assert.True(t, New(1, 1, 0).Equal(New(0, 1)))

	first, ok := b.First()
	require.True(t, ok)
	assert.Equal(t, 3, first)
	_, ok = Set(nil).First()
	assert.False(t, ok)
}

func TestOutOfRange(t *testing.T) {
	assert.Empty(t, New(0, 11).OutOfRange())
	assert.Equal(t, []int{-1, 12}, New(-1, 3, 12).OutOfRange())
}

func TestParseTimeslot(t *testing.T) {
	tests := []struct {
		code    string
		day     int
		periods []int
	}{
		{code: "10103", day: 1, periods: []int{1, 2, 3, 4}},
		{code: "30507", day: 3, periods: []int{5, 6, 7, 8}},
		{code: "5090", day: 5, periods: []int{9, 10}},
		{code: "20911", day: 2, periods: nil},
		{code: "7", day: 7, periods: nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ts, err := ParseTimeslot(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.day, ts.Day)
			assert.Equal(t, tt.periods, ts.Periods)
		})
	}
}

func TestParseTimeslotRejectsBadDay(t *testing.T) {
	for _, code := range []string{"", "0101", "8010", "x0103"} {
		_, err := ParseTimeslot(code)
		assert.ErrorIs(t, err, ErrMalformedTimeslot, "code %q", code)
	}
}

func TestTransformSections(t *testing.T) {
	assert.Equal(t, "0,2,6", TransformSections([]int{1, 3, 5}).String())
	assert.Equal(t, "0,1,2,3", TransformSections([]int{1, 2, 3, 4}).String())
	assert.Equal(t, "6,7,8,9,10,11", TransformSections([]int{5, 6, 7, 8, 9, 10}).String())
	assert.True(t, TransformSections([]int{0, 11, 12, -3}).IsEmpty())
}

func TestPeriodClock(t *testing.T) {
	assert.Equal(t, "08:00-08:45", Label(0))
	assert.Equal(t, "19:55-20:40", Label(11))
	_, ok := PeriodOf(Count)
	assert.False(t, ok)

	loc := time.FixedZone("CST", 8*3600)
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	start, ok := StartOn(date, 2, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 0, 0, 0, loc), start)

	end, ok := EndOn(date, 2, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 45, 0, 0, loc), end)
}
