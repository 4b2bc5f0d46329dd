package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/slot"
)

var roomCounter uint64

var referenceTime = time.Date(2025, time.March, 3, 10, 0, 0, 0, Campus)

// ReferenceTime is the default clock time: Monday 2025-03-03 10:00 campus
// time.
func ReferenceTime() time.Time { return referenceTime }

// ReferenceDate is the day after ReferenceTime, so bookings on it are in the
// future by default.
func ReferenceDate() time.Time {
	return time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
}

// Common directory entries.
const (
	AdminEmail    = "admin@campus.edu"
	StudentEmail  = "student@campus.edu"
	StaffEmail    = "staff@campus.edu"
	SelectedEmail = "selected@campus.edu"
)

// SeedUsers stores one user per role.
func (h *Harness) SeedUsers(tb testing.TB) {
	tb.Helper()
	for email, role := range map[string]string{
		AdminEmail:    "Admin",
		StudentEmail:  "Student",
		StaffEmail:    "Staff",
		SelectedEmail: "SelectedStaff",
	} {
		h.SeedUser(tb, email, role)
	}
}

// SeedUser stores a directory entry.
func (h *Harness) SeedUser(tb testing.TB, email, role string) {
	tb.Helper()
	if err := h.Repos.Users.UpsertUser(context.Background(), persistence.User{Email: email, Name: email, Role: role}); err != nil {
		tb.Fatalf("seed user %s: %v", email, err)
	}
}

// RoomFixture describes a room to seed. Zero fields get defaults.
type RoomFixture struct {
	Name     string
	Access   int
	Capacity int
}

// SeedRoom stores a room and returns its ID.
func (h *Harness) SeedRoom(tb testing.TB, fixture RoomFixture) int64 {
	tb.Helper()
	if fixture.Name == "" {
		fixture.Name = fmt.Sprintf("Room %d", atomic.AddUint64(&roomCounter, 1))
	}
	if fixture.Capacity == 0 {
		fixture.Capacity = 40
	}
	id, err := h.Repos.Rooms.CreateRoom(context.Background(), persistence.Room{
		Name:     fixture.Name,
		Access:   fixture.Access,
		Capacity: fixture.Capacity,
		Location: "Main building",
	})
	if err != nil {
		tb.Fatalf("seed room %s: %v", fixture.Name, err)
	}
	return id
}

// BookingFixture describes a booking row to seed. Date defaults to
// ReferenceDate and Status to Confirmed.
type BookingFixture struct {
	ID     string
	User   string
	RoomID int64
	Date   time.Time
	Slots  []int
	Status string
}

// SeedBooking stores a booking, claiming its slots when the status holds
// them.
func (h *Harness) SeedBooking(tb testing.TB, fixture BookingFixture) persistence.Booking {
	tb.Helper()
	if fixture.Date.IsZero() {
		fixture.Date = ReferenceDate()
	}
	if fixture.Status == "" {
		fixture.Status = "Confirmed"
	}
	if fixture.User == "" {
		fixture.User = StudentEmail
	}
	booking := persistence.Booking{
		ID:        fixture.ID,
		UserEmail: fixture.User,
		RoomID:    fixture.RoomID,
		Date:      fixture.Date,
		Slots:     slot.New(fixture.Slots...),
		Purpose:   "seeded",
		Status:    fixture.Status,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	err := h.Store.WithTx(context.Background(), func(ctx context.Context, repos persistence.Repositories) error {
		return repos.Bookings.CreateBooking(ctx, booking)
	})
	if err != nil {
		tb.Fatalf("seed booking %s: %v", fixture.ID, err)
	}
	return booking
}

// SeedLesson stores a lesson row for roomID on date.
func (h *Harness) SeedLesson(tb testing.TB, roomID int64, date time.Time, slots ...int) {
	tb.Helper()
	err := h.Repos.Lessons.InsertLesson(context.Background(), persistence.Lesson{
		RoomID: roomID,
		Date:   date,
		Slots:  slot.New(slots...),
	})
	if err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
}

// Booking loads a booking by ID.
func (h *Harness) Booking(tb testing.TB, id string) persistence.Booking {
	tb.Helper()
	b, err := h.Repos.Bookings.GetBooking(context.Background(), id)
	if err != nil {
		tb.Fatalf("load booking %s: %v", id, err)
	}
	return b
}
