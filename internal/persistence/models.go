package persistence

import (
	"time"

	"github.com/example/room-booking/internal/slot"
)

// User is a directory entry keyed by e-mail.
type User struct {
	Email string
	Name  string
	Role  string
}

// Room is a bookable room. Equipment is stored comma-joined.
type Room struct {
	ID        int64
	Name      string
	Access    int
	Capacity  int
	Equipment []string
	Location  string
	Info      string
	ImageURL  string
	Deleted   bool
}

// Booking is a stored booking row. Date carries no time component and Slots
// is written in canonical form.
type Booking struct {
	ID        string
	UserEmail string
	RoomID    int64
	Date      time.Time
	Slots     slot.Set
	Purpose   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lesson is imported timetable occupancy, unique per (room, date).
type Lesson struct {
	ID     int64
	RoomID int64
	Date   time.Time
	Slots  slot.Set
}

// IssueReport is a room problem submitted by a user.
type IssueReport struct {
	ID        string
	RoomID    int64
	UserEmail string
	Info      string
	Reviewed  string
	CreatedAt time.Time
}

// BlacklistEntry records a user barred from booking.
type BlacklistEntry struct {
	UserEmail   string
	AddedAt     time.Time
	MissedCount int
}
