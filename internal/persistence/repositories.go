package persistence

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/slot"
)

// ClaimStatuses lists booking statuses whose slots are reserved in the claim
// table. Two bookings in these statuses can never share a (room, date, slot).
var ClaimStatuses = []string{"Confirmed", "Banned"}

// HoldsClaims reports whether status is one of ClaimStatuses.
func HoldsClaims(status string) bool {
	for _, s := range ClaimStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// UserRepository reads and maintains the user directory.
type UserRepository interface {
	GetUser(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpsertUser(ctx context.Context, user User) error
}

// RoomRepository stores the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (int64, error)
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, includeDeleted bool) ([]Room, error)
	SoftDeleteRoom(ctx context.Context, id int64) error
}

// BookingFilter narrows booking queries. Zero fields do not filter.
type BookingFilter struct {
	RoomID    int64
	UserEmail string
	Date      *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
	Statuses  []string
	ExcludeID string
}

// BookingRepository stores bookings and keeps their slot claims in step with
// the booking status. Writes must run inside TxManager.WithTx so the booking
// row and its claims change together.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	// UpdateStatus moves the booking to status only when its current status
	// is one of from. It reports whether a row changed.
	UpdateStatus(ctx context.Context, id string, from []string, to string, at time.Time) (bool, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	CountBookings(ctx context.Context, filter BookingFilter) (int, error)
	FindBan(ctx context.Context, roomID int64, date time.Time, slots slot.Set) (Booking, error)
}

// LessonFilter narrows lesson queries. Zero fields do not filter.
type LessonFilter struct {
	RoomID   int64
	Date     *time.Time
	DateFrom *time.Time
}

// LessonRepository stores imported timetable occupancy.
type LessonRepository interface {
	ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error)
	InsertLesson(ctx context.Context, lesson Lesson) error
	UpdateLessonSlots(ctx context.Context, roomID int64, date time.Time, slots slot.Set) error
	DeleteLesson(ctx context.Context, roomID int64, date time.Time) error
}

// ReportRepository stores room issue reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report IssueReport) error
	GetReport(ctx context.Context, id string) (IssueReport, error)
	ListReports(ctx context.Context, roomID int64, reviewed string) ([]IssueReport, error)
	UpdateReport(ctx context.Context, report IssueReport) error
	DeleteReport(ctx context.Context, id string) error
}

// BlacklistRepository stores barred users.
type BlacklistRepository interface {
	GetEntry(ctx context.Context, email string) (BlacklistEntry, error)
	ListEntries(ctx context.Context) ([]BlacklistEntry, error)
	// UpsertEntry inserts or refreshes the entry and reports whether it was
	// newly created.
	UpsertEntry(ctx context.Context, entry BlacklistEntry) (bool, error)
	DeleteEntry(ctx context.Context, email string) error
}

// Repositories groups every repository bound to one connection or
// transaction.
type Repositories struct {
	Users     UserRepository
	Rooms     RoomRepository
	Bookings  BookingRepository
	Lessons   LessonRepository
	Reports   ReportRepository
	Blacklist BlacklistRepository
}

// TxManager runs fn inside a transaction with transaction-bound repositories.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
