package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/slot"
)

const bookingColumns = `id, user_email, room_id, date, slots, purpose, status, created_at, updated_at`

// bookingRepository keeps slot_claims in step with every booking write: a
// booking in a claim-holding status owns one claim row per slot, and the
// (room_id, date, slot) primary key rejects a second owner.
type bookingRepository struct {
	q execer
}

func (r bookingRepository) CreateBooking(ctx context.Context, b persistence.Booking) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserEmail, b.RoomID, formatDate(b.Date), b.Slots.String(), b.Purpose, b.Status,
		formatTimestamp(b.CreatedAt), formatTimestamp(b.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	if persistence.HoldsClaims(b.Status) {
		return r.claim(ctx, b)
	}
	return nil
}

func (r bookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return b, nil
}

func (r bookingRepository) UpdateBooking(ctx context.Context, b persistence.Booking) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bookings
		SET room_id = ?, date = ?, slots = ?, purpose = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		b.RoomID, formatDate(b.Date), b.Slots.String(), b.Purpose, b.Status,
		formatTimestamp(b.UpdatedAt), b.ID,
	)
	if err := expectRow(res, err); err != nil {
		return err
	}
	if err := r.release(ctx, b.ID); err != nil {
		return err
	}
	if persistence.HoldsClaims(b.Status) {
		return r.claim(ctx, b)
	}
	return nil
}

func (r bookingRepository) UpdateStatus(ctx context.Context, id string, from []string, to string, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	args := []any{to, formatTimestamp(at), id}
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status IN (`+placeholders(len(from))+`)`,
		args...,
	)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}
	if n == 0 {
		return false, nil
	}

	if err := r.release(ctx, id); err != nil {
		return false, err
	}
	if persistence.HoldsClaims(to) {
		b, err := r.GetBooking(ctx, id)
		if err != nil {
			return false, err
		}
		if err := r.claim(ctx, b); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r bookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	where, args := bookingWhere(filter)
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings`+where+` ORDER BY date, created_at, id`,
		args...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		bookings = append(bookings, b)
	}
	return bookings, mapError(rows.Err())
}

func (r bookingRepository) CountBookings(ctx context.Context, filter persistence.BookingFilter) (int, error) {
	where, args := bookingWhere(filter)
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (r bookingRepository) FindBan(ctx context.Context, roomID int64, date time.Time, slots slot.Set) (persistence.Booking, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE room_id = ? AND date = ? AND slots = ? AND status = 'Banned'
		LIMIT 1`,
		roomID, formatDate(date), slots.String(),
	)
	b, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return b, nil
}

func (r bookingRepository) claim(ctx context.Context, b persistence.Booking) error {
	for _, s := range b.Slots {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO slot_claims (room_id, date, slot, booking_id) VALUES (?, ?, ?, ?)`,
			b.RoomID, formatDate(b.Date), s, b.ID,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r bookingRepository) release(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM slot_claims WHERE booking_id = ?`, id)
	return mapError(err)
}

func bookingWhere(f persistence.BookingFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.RoomID != 0 {
		clauses = append(clauses, "room_id = ?")
		args = append(args, f.RoomID)
	}
	if f.UserEmail != "" {
		clauses = append(clauses, "user_email = ?")
		args = append(args, f.UserEmail)
	}
	if f.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, formatDate(*f.Date))
	}
	if f.DateFrom != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*f.DateFrom))
	}
	if f.DateTo != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*f.DateTo))
	}
	if len(f.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.ExcludeID != "" {
		clauses = append(clauses, "id <> ?")
		args = append(args, f.ExcludeID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanBooking(s scanner) (persistence.Booking, error) {
	var (
		b                    persistence.Booking
		date, slots          string
		createdAt, updatedAt string
		err                  error
	)
	if err = s.Scan(&b.ID, &b.UserEmail, &b.RoomID, &date, &slots, &b.Purpose, &b.Status, &createdAt, &updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.Date, err = parseDate(date); err != nil {
		return persistence.Booking{}, err
	}
	if b.Slots, err = slot.Parse(slots); err != nil {
		return persistence.Booking{}, err
	}
	if b.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return b, nil
}
