package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
)

const defaultBanReason = "Reserved by administrator"

// Ban reserves slots of a room for administrative use. Overlapping Pending
// and Confirmed bookings are declined in the same transaction that stores
// the ban; nothing is written if any step fails. Affected users are notified
// after the commit.
func (s *BookingService) Ban(ctx context.Context, params BanParams) (result BanResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Ban",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to ban period", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("ban_id", result.BanID, "declined_count", result.DeclinedCount).InfoContext(ctx, "period banned")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := validateTarget(params.RoomID, params.Date)
	slots := validateSlots(vErr, params.Slots)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var room Room
	room, err = visibleRoom(ctx, s.repos.Rooms, params.Principal, params.RoomID)
	if err != nil {
		return
	}

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		reason = defaultBanReason
	}

	now := s.now()
	ban := Booking{
		ID:        s.idGenerator(),
		UserID:    params.Principal.UserID,
		RoomID:    room.ID,
		RoomName:  room.Name,
		Date:      dateOnly(params.Date),
		Slots:     slots,
		Purpose:   reason,
		Status:    StatusBanned,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var declined []DeclinedBooking
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		declined = nil

		_, err := repos.Bookings.FindBan(ctx, ban.RoomID, ban.Date, ban.Slots)
		switch {
		case err == nil:
			return ErrDuplicateBan
		case !errors.Is(err, persistence.ErrNotFound):
			return err
		}

		existing, err := repos.Bookings.ListBookings(ctx, persistence.BookingFilter{
			RoomID:   ban.RoomID,
			Date:     &ban.Date,
			Statuses: statusNames(StatusPending, StatusConfirmed, StatusBanned),
		})
		if err != nil {
			return err
		}

		var bans, active []scheduler.Occupant
		owners := make(map[string]string, len(existing))
		for _, b := range existing {
			occupant := scheduler.Occupant{ID: b.ID, Slots: b.Slots}
			owners[b.ID] = b.UserEmail
			if b.Status == string(StatusBanned) {
				bans = append(bans, occupant)
			} else {
				active = append(active, occupant)
			}
		}

		if overlaps := scheduler.FindOverlaps(ban.Slots, bans); len(overlaps) > 0 {
			conflict := &ConflictError{}
			for _, o := range overlaps {
				conflict.Slots = conflict.Slots.Union(o.Slots)
				conflict.BookingIDs = append(conflict.BookingIDs, o.ID)
			}
			return conflict
		}

		for _, o := range scheduler.FindOverlaps(ban.Slots, active) {
			changed, err := repos.Bookings.UpdateStatus(ctx, o.ID,
				statusNames(StatusPending, StatusConfirmed), string(StatusDeclined), now)
			if err != nil {
				return err
			}
			if changed {
				declined = append(declined, DeclinedBooking{BookingID: o.ID, UserID: owners[o.ID], Slots: o.Slots})
			}
		}

		return claimConflict(repos.Bookings.CreateBooking(ctx, fromBooking(ban)), ban.Slots)
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	for _, d := range declined {
		notify(ctx, s.notifier, logger, Notification{
			Kind:      NotifyBanned,
			Recipient: d.UserID,
			BookingID: d.BookingID,
			RoomName:  ban.RoomName,
			Date:      ban.Date,
			Slots:     d.Slots,
			Reason:    reason,
		})
	}
	notify(ctx, s.notifier, logger, bookingNotification(NotifyBanPlaced, ban, reason))

	result = BanResult{BanID: ban.ID, DeclinedCount: len(declined), Declined: declined}
	return
}
