package application

import (
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

func toBooking(b persistence.Booking) Booking {
	status, ok := ParseStatus(b.Status)
	if !ok {
		status = Status(b.Status)
	}
	return Booking{
		ID:        b.ID,
		UserID:    b.UserEmail,
		RoomID:    b.RoomID,
		Date:      b.Date,
		Slots:     b.Slots,
		Purpose:   b.Purpose,
		Status:    status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func fromBooking(b Booking) persistence.Booking {
	return persistence.Booking{
		ID:        b.ID,
		UserEmail: b.UserID,
		RoomID:    b.RoomID,
		Date:      b.Date,
		Slots:     b.Slots,
		Purpose:   b.Purpose,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toRoom(r persistence.Room) Room {
	return Room{
		ID:        r.ID,
		Name:      r.Name,
		Access:    r.Access,
		Capacity:  r.Capacity,
		Equipment: r.Equipment,
		Location:  r.Location,
		Info:      r.Info,
		ImageURL:  r.ImageURL,
	}
}

func toLesson(l persistence.Lesson) Lesson {
	return Lesson{RoomID: l.RoomID, Date: l.Date, Slots: l.Slots}
}

func toReport(r persistence.IssueReport) IssueReport {
	return IssueReport{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserEmail,
		Info:      r.Info,
		Review:    ReviewState(r.Reviewed),
		CreatedAt: r.CreatedAt,
	}
}

func toUser(u persistence.User) User {
	return User{Email: u.Email, Name: u.Name, Role: ParseRole(u.Role)}
}

// mapRepoError translates storage sentinels into service errors.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	default:
		return err
	}
}
