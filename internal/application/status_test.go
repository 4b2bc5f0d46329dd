package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusIgnoresCase(t *testing.T) {
	s, ok := ParseStatus(" confirmed ")
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, s)

	_, ok = ParseStatus("Approved")
	assert.False(t, ok)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusMissed, false},
		{StatusConfirmed, StatusDeclined, true},
		{StatusConfirmed, StatusMissed, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusBanned, StatusDeclined, true},
		{StatusBanned, StatusConfirmed, false},
		{StatusDeclined, StatusConfirmed, false},
		{StatusMissed, StatusConfirmed, false},
		{StatusCompleted, StatusDeclined, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	for _, s := range []Status{StatusDeclined, StatusMissed, StatusCompleted} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusBanned} {
		assert.False(t, s.Terminal(), s)
	}
}

func TestHoldsSlotsMatchesClaimStatuses(t *testing.T) {
	assert.True(t, StatusConfirmed.HoldsSlots())
	assert.True(t, StatusBanned.HoldsSlots())
	assert.False(t, StatusPending.HoldsSlots())
	assert.False(t, StatusDeclined.HoldsSlots())
}
