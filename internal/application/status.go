package application

import "strings"

// Status is a booking lifecycle state.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDeclined  Status = "Declined"
	StatusBanned    Status = "Banned"
	StatusMissed    Status = "Missed"
	StatusCompleted Status = "Completed"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusDeclined},
	StatusConfirmed: {StatusDeclined, StatusMissed, StatusCompleted},
	StatusBanned:    {StatusDeclined},
}

// ParseStatus validates a status name, ignoring case.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusDeclined, StatusBanned, StatusMissed, StatusCompleted} {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	return "", false
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// HoldsSlots reports whether bookings in s reserve their slots.
func (s Status) HoldsSlots() bool {
	return s == StatusConfirmed || s == StatusBanned
}

func statusNames(statuses ...Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
