package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/slot"
)

func TestErrorKind(t *testing.T) {
	vErr := &ValidationError{}
	vErr.add("slots", "required")

	cases := map[string]error{
		"":                   nil,
		"unauthorized":       ErrUnauthorized,
		"not_found":          fmt.Errorf("wrap: %w", ErrNotFound),
		"blacklisted":        ErrBlacklisted,
		"duplicate_ban":      ErrDuplicateBan,
		"already_processed":  ErrAlreadyProcessed,
		"invalid_transition": fmt.Errorf("%w: x", ErrInvalidTransition),
		"invalid_code":       ErrInvalidCode,
		"validation":         vErr,
		"conflict":           &ConflictError{Slots: slot.New(1)},
		"transient":          &TransientError{Op: "crawl", Err: errors.New("timeout")},
		"notification":       &NotificationError{Kind: NotifyConfirmed, Err: errors.New("smtp")},
		"unexpected":         errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, ErrorKind(err), "%v", err)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	vErr := &ValidationError{}
	assert.False(t, vErr.HasErrors())

	vErr.add("date", "date is required")
	assert.Equal(t, "validation failed: date: date is required", vErr.Error())

	other := &ValidationError{}
	other.add("slots", "at least one slot is required")
	vErr.merge(other)
	assert.Equal(t, "validation failed", vErr.Error())
	assert.Len(t, vErr.FieldErrors, 2)
}

func TestConflictErrorMessage(t *testing.T) {
	assert.Equal(t, "slots 2,3 are already taken", (&ConflictError{Slots: slot.New(3, 2)}).Error())
	assert.Equal(t, "slots 1,4 overlap a scheduled lesson", (&ConflictError{Slots: slot.New(4, 1), WithLesson: true}).Error())
	assert.Equal(t, "slot 1 overlaps a scheduled lesson", (&ConflictError{Slots: slot.New(1), WithLesson: true}).Error())
	assert.Equal(t, "slot 5 is already taken", (&ConflictError{Slots: slot.New(5)}).Error())
	assert.Equal(t, "slots are already taken", (&ConflictError{}).Error())
}

func TestMapRepoError(t *testing.T) {
	assert.ErrorIs(t, mapRepoError(persistence.ErrNotFound), ErrNotFound)
	assert.ErrorIs(t, mapRepoError(fmt.Errorf("insert: %w", persistence.ErrDuplicate)), ErrAlreadyExists)
	assert.NoError(t, mapRepoError(nil))
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, Notification) error {
	f.calls++
	return errors.New("smtp down")
}

func TestNotifyNeverFails(t *testing.T) {
	n := &failingNotifier{}
	notify(context.Background(), n, defaultLogger(nil), Notification{Kind: NotifyConfirmed, Recipient: "a@campus.edu"})
	notify(context.Background(), n, defaultLogger(nil), Notification{Kind: NotifyConfirmed})
	assert.Equal(t, 1, n.calls)
}
