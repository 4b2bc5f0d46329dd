// Package semester expands timetable week expressions into calendar dates.
package semester

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WeekType restricts an expanded week list.
type WeekType string

const (
	// WeekTypeFull keeps every week.
	WeekTypeFull WeekType = "full"
	// WeekTypeOdd keeps odd-numbered weeks.
	WeekTypeOdd WeekType = "odd"
	// WeekTypeEven keeps even-numbered weeks.
	WeekTypeEven WeekType = "even"
)

// ErrInvalidWeeks indicates a week expression segment could not be parsed.
var ErrInvalidWeeks = errors.New("semester: invalid week expression")

// DefaultStart is the Monday of week 1 of the current term.
var DefaultStart = time.Date(2025, time.February, 17, 0, 0, 0, 0, time.UTC)

// ParseWeekType recognises the timetable week_type column. ok is false for
// unknown values, in which case WeekTypeFull is returned.
func ParseWeekType(raw string) (WeekType, bool) {
	switch WeekType(strings.ToLower(strings.TrimSpace(raw))) {
	case WeekTypeFull, "":
		return WeekTypeFull, true
	case WeekTypeOdd:
		return WeekTypeOdd, true
	case WeekTypeEven:
		return WeekTypeEven, true
	default:
		return WeekTypeFull, false
	}
}

// ParseWeeks expands "1-16" or "1-3,5,7-16" into an ascending list of week
// numbers without duplicates.
func ParseWeeks(expr string) ([]int, error) {
	seen := make(map[int]struct{})
	var weeks []int
	add := func(w int) {
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		weeks = append(weeks, w)
	}

	for _, segment := range strings.Split(expr, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(segment, "-")
		start, err := parseWeek(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeeks, segment)
		}
		end := start
		if isRange {
			if end, err = parseWeek(hi); err != nil || end < start {
				return nil, fmt.Errorf("%w: %q", ErrInvalidWeeks, segment)
			}
		}
		for w := start; w <= end; w++ {
			add(w)
		}
	}

	sort.Ints(weeks)
	return weeks, nil
}

func parseWeek(raw string) (int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if w < 1 {
		return 0, fmt.Errorf("week %d out of range", w)
	}
	return w, nil
}

// FilterWeeks keeps the weeks matching wt.
func FilterWeeks(weeks []int, wt WeekType) []int {
	out := make([]int, 0, len(weeks))
	for _, w := range weeks {
		switch wt {
		case WeekTypeOdd:
			if w%2 == 1 {
				out = append(out, w)
			}
		case WeekTypeEven:
			if w%2 == 0 {
				out = append(out, w)
			}
		default:
			out = append(out, w)
		}
	}
	return out
}

// Calendar converts (week, weekday) pairs into calendar dates.
type Calendar struct {
	start time.Time
}

// NewCalendar anchors week 1, day 1 at start. A zero start uses DefaultStart.
func NewCalendar(start time.Time) Calendar {
	if start.IsZero() {
		start = DefaultStart
	}
	y, m, d := start.Date()
	return Calendar{start: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Start returns the anchor date.
func (c Calendar) Start() time.Time { return c.start }

// Date returns start + (week-1)*7 + (day-1) days.
func (c Calendar) Date(week, day int) time.Time {
	return c.start.AddDate(0, 0, (week-1)*7+(day-1))
}

// Dates expands every week for the given weekday.
func (c Calendar) Dates(weeks []int, day int) []time.Time {
	out := make([]time.Time, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, c.Date(w, day))
	}
	return out
}
