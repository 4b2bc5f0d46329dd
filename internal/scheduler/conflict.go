// Package scheduler classifies a requested slot set against the occupancy of
// a room on one day.
package scheduler

import "github.com/example/room-booking/internal/slot"

// Occupant is an existing booking or lesson holding slots on the same room
// and date as the candidate.
type Occupant struct {
	ID    string
	Slots slot.Set
}

// OutcomeKind classifies a resolution.
type OutcomeKind int

const (
	// Clear means the candidate overlaps nothing.
	Clear OutcomeKind = iota
	// ConflictWithBooking means at least one existing booking overlaps.
	ConflictWithBooking
	// ConflictWithLesson means a lesson overlaps. It is reported ahead of
	// booking conflicts.
	ConflictWithLesson
)

func (k OutcomeKind) String() string {
	switch k {
	case Clear:
		return "clear"
	case ConflictWithBooking:
		return "conflict_with_booking"
	case ConflictWithLesson:
		return "conflict_with_lesson"
	default:
		return "unknown"
	}
}

// Outcome is the result of Resolve. Slots holds every overlapping index and
// BookingIDs the overlapping bookings, in input order.
type Outcome struct {
	Kind       OutcomeKind
	BookingIDs []string
	Slots      slot.Set
}

// IsClear reports whether the candidate can be accepted.
func (o Outcome) IsClear() bool { return o.Kind == Clear }

// Policy tunes which occupancy layers block a candidate.
type Policy struct {
	BlockOnLessons bool
}

// Overlap is one occupant intersecting the candidate.
type Overlap struct {
	ID    string
	Slots slot.Set
}

// FindOverlaps intersects every occupant individually against candidate.
func FindOverlaps(candidate slot.Set, occupants []Occupant) []Overlap {
	var out []Overlap
	for _, o := range occupants {
		if shared := candidate.Intersect(o.Slots); !shared.IsEmpty() {
			out = append(out, Overlap{ID: o.ID, Slots: shared})
		}
	}
	return out
}

// Resolve checks candidate against lessons (when the policy blocks on them)
// and then against bookings. Callers pass only claim-holding bookings and
// must already have removed the booking being modified. The whole candidate
// is either accepted or rejected.
func Resolve(candidate slot.Set, bookings, lessons []Occupant, policy Policy) Outcome {
	if policy.BlockOnLessons {
		if overlaps := FindOverlaps(candidate, lessons); len(overlaps) > 0 {
			return Outcome{Kind: ConflictWithLesson, Slots: unionOf(overlaps)}
		}
	}

	overlaps := FindOverlaps(candidate, bookings)
	if len(overlaps) == 0 {
		return Outcome{Kind: Clear}
	}

	ids := make([]string, 0, len(overlaps))
	for _, o := range overlaps {
		ids = append(ids, o.ID)
	}
	return Outcome{Kind: ConflictWithBooking, BookingIDs: ids, Slots: unionOf(overlaps)}
}

func unionOf(overlaps []Overlap) slot.Set {
	var out slot.Set
	for _, o := range overlaps {
		out = out.Union(o.Slots)
	}
	return out
}
