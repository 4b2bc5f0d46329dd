package application

import (
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/slot"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrBlacklisted is returned when the requester is barred from booking.
	ErrBlacklisted = errors.New("application: requester is blacklisted")
	// ErrDuplicateBan is returned when an identical ban already exists.
	ErrDuplicateBan = errors.New("application: duplicate ban")
	// ErrAlreadyProcessed is returned when a booking is no longer in a state
	// the operation applies to.
	ErrAlreadyProcessed = errors.New("application: booking already processed")
	// ErrInvalidTransition is returned when the status table forbids a change.
	ErrInvalidTransition = errors.New("application: invalid status transition")
	// ErrInvalidCode is returned when a verification code is absent, expired or wrong.
	ErrInvalidCode = errors.New("application: invalid verification code")
	// ErrInvalidToken is returned when an access token cannot be validated.
	ErrInvalidToken = errors.New("application: invalid access token")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 1 {
		for field, msg := range v.FieldErrors {
			return fmt.Sprintf("validation failed: %s: %s", field, msg)
		}
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictError reports an overlap with existing occupancy. Slots lists every
// overlapping index so callers can offer alternatives.
type ConflictError struct {
	Slots      slot.Set
	BookingIDs []string
	WithLesson bool
}

func (e *ConflictError) Error() string {
	if len(e.Slots) == 0 {
		if e.WithLesson {
			return "slots overlap a scheduled lesson"
		}
		return "slots are already taken"
	}
	if len(e.Slots) == 1 {
		if e.WithLesson {
			return fmt.Sprintf("slot %s overlaps a scheduled lesson", e.Slots)
		}
		return fmt.Sprintf("slot %s is already taken", e.Slots)
	}
	if e.WithLesson {
		return fmt.Sprintf("slots %s overlap a scheduled lesson", e.Slots)
	}
	return fmt.Sprintf("slots %s are already taken", e.Slots)
}

// TransientError wraps infrastructure failures that may succeed on retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NotificationError wraps a failed notification. It is logged and never
// returned to callers of booking operations.
type NotificationError struct {
	Kind      NotificationKind
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s (%s): %v", e.Recipient, e.Kind, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
