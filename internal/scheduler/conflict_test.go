package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/room-booking/internal/slot"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	bookings := []Occupant{
		{ID: "b1", Slots: slot.New(0, 1)},
		{ID: "b2", Slots: slot.New(3, 4)},
		{ID: "ban", Slots: slot.New(8)},
	}
	lessons := []Occupant{{ID: "lesson", Slots: slot.New(6, 7)}}
	blocking := Policy{BlockOnLessons: true}

	tests := []struct {
		name      string
		candidate slot.Set
		policy    Policy
		wantKind  OutcomeKind
		wantIDs   []string
		wantSlots string
	}{
		{name: "free slots", candidate: slot.New(2, 9), policy: blocking, wantKind: Clear},
		{name: "single booking overlap", candidate: slot.New(1, 2), policy: blocking, wantKind: ConflictWithBooking, wantIDs: []string{"b1"}, wantSlots: "1"},
		{name: "multiple bookings", candidate: slot.New(1, 3, 8), policy: blocking, wantKind: ConflictWithBooking, wantIDs: []string{"b1", "b2", "ban"}, wantSlots: "1,3,8"},
		{name: "lesson takes precedence", candidate: slot.New(0, 6), policy: blocking, wantKind: ConflictWithLesson, wantSlots: "6"},
		{name: "lessons ignored when not blocking", candidate: slot.New(6, 7), policy: Policy{}, wantKind: Clear},
		{name: "empty candidate", candidate: nil, policy: blocking, wantKind: Clear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidate, bookings, lessons, tt.policy)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantIDs, got.BookingIDs)
			assert.Equal(t, tt.wantSlots, got.Slots.String())
			assert.Equal(t, tt.wantKind == Clear, got.IsClear())
		})
	}
}

func TestFindOverlapsIntersectsIndividually(t *testing.T) {
	t.Parallel()

	overlaps := FindOverlaps(slot.New(2, 3), []Occupant{
		{ID: "a", Slots: slot.New(3, 4)},
		{ID: "b", Slots: slot.New(5)},
		{ID: "c", Slots: slot.New(1, 2, 3)},
	})

	assert.Equal(t, []Overlap{
		{ID: "a", Slots: slot.New(3)},
		{ID: "c", Slots: slot.New(2, 3)},
	}, overlaps)
}
