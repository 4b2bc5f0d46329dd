package slot

import (
	"fmt"
	"time"
)

// Period is the wall-clock span of one slot, expressed as offsets from
// midnight in campus time.
type Period struct {
	Start time.Duration
	End   time.Duration
}

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

var periods = [Count]Period{
	{hm(8, 0), hm(8, 45)},
	{hm(8, 55), hm(9, 40)},
	{hm(10, 0), hm(10, 45)},
	{hm(10, 55), hm(11, 40)},
	{hm(12, 0), hm(12, 45)},
	{hm(12, 55), hm(13, 40)},
	{hm(14, 0), hm(14, 45)},
	{hm(14, 55), hm(15, 40)},
	{hm(16, 0), hm(16, 45)},
	{hm(16, 55), hm(17, 40)},
	{hm(19, 0), hm(19, 45)},
	{hm(19, 55), hm(20, 40)},
}

// PeriodOf returns the clock span for index.
func PeriodOf(index int) (Period, bool) {
	if index < 0 || index >= Count {
		return Period{}, false
	}
	return periods[index], true
}

// StartOn returns the absolute start of index on the calendar day of date, in
// loc.
func StartOn(date time.Time, index int, loc *time.Location) (time.Time, bool) {
	p, ok := PeriodOf(index)
	if !ok {
		return time.Time{}, false
	}
	return midnight(date, loc).Add(p.Start), true
}

// EndOn returns the absolute end of index on the calendar day of date, in loc.
func EndOn(date time.Time, index int, loc *time.Location) (time.Time, bool) {
	p, ok := PeriodOf(index)
	if !ok {
		return time.Time{}, false
	}
	return midnight(date, loc).Add(p.End), true
}

// Label renders the span as "08:00-08:45".
func Label(index int) string {
	p, ok := PeriodOf(index)
	if !ok {
		return fmt.Sprintf("slot %d", index)
	}
	return clock(p.Start) + "-" + clock(p.End)
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func midnight(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
