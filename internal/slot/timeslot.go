package slot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTimeslot is returned for timetable codes whose day digit is
// missing or outside 1..7.
var ErrMalformedTimeslot = errors.New("slot: malformed timeslot")

// eveningMarker flags rows that only cover evening periods; those rows are not
// imported.
const eveningMarker = "11"

var periodMarkers = []struct {
	marker  string
	periods [2]int
}{
	{"01", [2]int{1, 2}},
	{"03", [2]int{3, 4}},
	{"05", [2]int{5, 6}},
	{"07", [2]int{7, 8}},
	{"09", [2]int{9, 10}},
}

// Timeslot is a decoded timetable code.
type Timeslot struct {
	Day     int
	Periods []int
}

// ParseTimeslot decodes a "DPPPP" timetable code: the first character is the
// weekday (1 = Monday) and the remainder is scanned for two-digit period
// markers. A code containing the evening marker yields no periods.
func ParseTimeslot(code string) (Timeslot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Timeslot{}, fmt.Errorf("%w: empty code", ErrMalformedTimeslot)
	}

	day := int(code[0] - '0')
	if day < 1 || day > 7 {
		return Timeslot{}, fmt.Errorf("%w: day %q in %q", ErrMalformedTimeslot, code[:1], code)
	}

	rest := code[1:]
	ts := Timeslot{Day: day}
	if strings.Contains(rest, eveningMarker) {
		return ts, nil
	}
	for _, m := range periodMarkers {
		if strings.Contains(rest, m.marker) {
			ts.Periods = append(ts.Periods, m.periods[0], m.periods[1])
		}
	}
	return ts, nil
}

// TransformSections maps timetable period numbers onto booking slot indices.
// Periods 1-4 shift down by one, 5-10 shift up by one (the lunch slots 4 and 5
// are never produced), everything else is dropped.
func TransformSections(periods []int) Set {
	out := make([]int, 0, len(periods))
	for _, p := range periods {
		switch {
		case p >= 1 && p <= 4:
			out = append(out, p-1)
		case p >= 5 && p <= 10:
			out = append(out, p+1)
		}
	}
	return New(out...)
}
