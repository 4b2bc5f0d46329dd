package application

import (
	"strings"
	"time"

	"github.com/example/room-booking/internal/slot"
)

// Role is a user's directory role.
type Role string

const (
	RoleStudent       Role = "Student"
	RoleStaff         Role = "Staff"
	RoleSelectedStaff Role = "SelectedStaff"
	RoleAdmin         Role = "Admin"
)

// ParseRole recognises a stored role; unknown values are treated as students.
func ParseRole(raw string) Role {
	switch Role(strings.TrimSpace(raw)) {
	case RoleStaff:
		return RoleStaff
	case RoleSelectedStaff:
		return RoleSelectedStaff
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStudent
	}
}

// Room access levels.
const (
	AccessOpen       = 0
	AccessStaff      = 1
	AccessRestricted = 2
)

// MaxAccess returns the highest room access level the role may book.
func (r Role) MaxAccess() int {
	switch r {
	case RoleStudent:
		return AccessOpen
	case RoleStaff:
		return AccessStaff
	default:
		return AccessRestricted
	}
}

// Elevated reports whether bookings by this role are confirmed on any room.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSelectedStaff
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal may run administrative operations.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanSee reports whether a room with the given access level is visible.
func (p Principal) CanSee(access int) bool { return access <= p.Role.MaxAccess() }

// User is a directory entry.
type User struct {
	Email string
	Name  string
	Role  Role
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Access    int
	Capacity  int
	Equipment []string
	Location  string
	Info      string
	ImageURL  string
}

// Room is a bookable room.
type Room struct {
	ID        int64
	Name      string
	Access    int
	Capacity  int
	Equipment []string
	Location  string
	Info      string
	ImageURL  string
}

// RoomDetail is a room with its current occupancy and approved reports.
type RoomDetail struct {
	Room
	Bookings []Booking
	Lessons  []Lesson
	Reports  []IssueReport
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    int64
	Input     RoomInput
}

// Booking is a reservation of slots in one room on one day.
type Booking struct {
	ID        string
	UserID    string
	RoomID    int64
	RoomName  string
	Date      time.Time
	Slots     slot.Set
	Purpose   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lesson is imported timetable occupancy.
type Lesson struct {
	RoomID int64
	Date   time.Time
	Slots  slot.Set
}

// CreateBookingParams wraps a booking request.
type CreateBookingParams struct {
	Principal Principal
	RoomID    int64
	Date      time.Time
	Slots     []int
	Purpose   string
}

// ModifyBookingParams overwrites every mutable booking field.
type ModifyBookingParams struct {
	Principal Principal
	BookingID string
	RoomID    int64
	Date      time.Time
	Slots     []int
	Purpose   string
	Status    string
}

// UpdateStatusParams moves a booking to a new status.
type UpdateStatusParams struct {
	Principal Principal
	BookingID string
	Status    string
	Reason    string
}

// BanParams reserves slots for administrative use.
type BanParams struct {
	Principal Principal
	RoomID    int64
	Date      time.Time
	Slots     []int
	Reason    string
}

// DeclinedBooking is a booking displaced by a ban.
type DeclinedBooking struct {
	BookingID string
	UserID    string
	Slots     slot.Set
}

// BanResult reports the new ban and the bookings it displaced.
type BanResult struct {
	BanID         string
	DeclinedCount int
	Declined      []DeclinedBooking
}

// ListBookingsParams filters the administrative booking listing.
type ListBookingsParams struct {
	Principal Principal
	RoomID    int64
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ReviewState is the moderation state of an issue report.
type ReviewState string

const (
	ReviewUnreviewed ReviewState = "Unreviewed"
	ReviewApproved   ReviewState = "Approved"
)

// IssueReport is a room problem submitted by a user.
type IssueReport struct {
	ID        string
	RoomID    int64
	UserID    string
	Info      string
	Review    ReviewState
	CreatedAt time.Time
}

// BlacklistEntry records a user barred from booking.
type BlacklistEntry struct {
	UserID      string
	AddedAt     time.Time
	MissedCount int
}

// SweepResult summarises one missed-booking sweep.
type SweepResult struct {
	Missed      int
	Users       []string
	Blacklisted []string
}

// UserInput captures caller provided directory fields.
type UserInput struct {
	Email string
	Name  string
	Role  string
}

// UpsertUserParams creates or updates a directory entry.
type UpsertUserParams struct {
	Principal Principal
	Input     UserInput
}

// ReportInput captures caller provided report fields.
type ReportInput struct {
	RoomID int64
	Info   string
}

// CreateReportParams wraps a new issue report.
type CreateReportParams struct {
	Principal Principal
	Input     ReportInput
}

// UpdateReportParams edits the text or review state of a report. Nil fields
// are left unchanged.
type UpdateReportParams struct {
	Principal Principal
	ReportID  string
	Info      *string
	Review    *string
}

// LoginResult is returned after a verification code is accepted.
type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
