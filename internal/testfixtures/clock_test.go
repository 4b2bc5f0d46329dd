package testfixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	assert.True(t, clock.Now().Equal(ReferenceTime()))
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	assert.True(t, clock.Advance(90*time.Minute).Equal(start.Add(90*time.Minute)))

	clock.Set(start.Add(2 * time.Hour))
	assert.True(t, clock.Now().Equal(start.Add(2*time.Hour)))
}

func TestClockTodayUsesCampusDate(t *testing.T) {
	// 17:30 UTC is already the next day at +08:00.
	clock := NewClock(time.Date(2025, time.March, 3, 17, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC), clock.Today())

	clock.SetCampus(ReferenceDate(), 8, 5)
	assert.Equal(t, 8, clock.Now().In(Campus).Hour())
	assert.Equal(t, ReferenceDate(), clock.Today())
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	assert.True(t, nowFn().Equal(clock.Now()))
	clock.Advance(time.Minute)
	assert.True(t, nowFn().Equal(clock.Now()))
}
