package testfixtures

import (
	"sync"
	"time"
)

// Campus is the fixed +08:00 zone tests use as campus time.
var Campus = time.FixedZone("CST", 8*60*60)

// Clock is a controllable time source for services that read the wall clock.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// SetCampus moves the clock to hh:mm campus time on date.
func (c *Clock) SetCampus(date time.Time, hour, minute int) {
	y, m, d := date.Date()
	c.Set(time.Date(y, m, d, hour, minute, 0, 0, Campus))
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Today returns the campus calendar date as a UTC midnight value, the form
// booking dates are stored in.
func (c *Clock) Today() time.Time {
	y, m, d := c.Now().In(Campus).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
