package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
	"github.com/example/room-booking/internal/slot"
)

// CheckInWindow is how far before or after the first slot's start a booking
// may be checked in.
const CheckInWindow = 10 * time.Minute

// BookingServiceConfig wires a BookingService.
type BookingServiceConfig struct {
	Repos       persistence.Repositories
	Tx          persistence.TxManager
	Notifier    Notifier
	Policy      scheduler.Policy
	Location    *time.Location
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// BookingService runs the booking lifecycle: create, modify, cancel, status
// changes, bans and check-in. Every write that reserves slots runs the
// conflict check and the insert in one transaction.
type BookingService struct {
	repos       persistence.Repositories
	tx          persistence.TxManager
	notifier    Notifier
	policy      scheduler.Policy
	loc         *time.Location
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService constructs a booking service.
func NewBookingService(cfg BookingServiceConfig) *BookingService {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "" }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		repos:       cfg.Repos,
		tx:          cfg.Tx,
		notifier:    cfg.Notifier,
		policy:      cfg.Policy,
		loc:         cfg.Location,
		idGenerator: cfg.IDGenerator,
		now:         cfg.Now,
		logger:      defaultLogger(cfg.Logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates and stores a booking request. Open rooms and
// elevated requesters are confirmed immediately; everything else waits for
// approval as Pending.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID, "status", booking.Status).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	vErr.merge(validateTarget(params.RoomID, params.Date))
	slots := validateSlots(vErr, params.Slots)
	purpose := strings.TrimSpace(params.Purpose)
	if purpose == "" {
		vErr.add("purpose", "purpose is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureNotBlacklisted(ctx, params.Principal.UserID); err != nil {
		return
	}

	var room Room
	room, err = visibleRoom(ctx, s.repos.Rooms, params.Principal, params.RoomID)
	if err != nil {
		return
	}

	status := StatusPending
	if room.Access == AccessOpen || params.Principal.Role.Elevated() {
		status = StatusConfirmed
	}

	now := s.now()
	booking = Booking{
		ID:        s.idGenerator(),
		UserID:    params.Principal.UserID,
		RoomID:    room.ID,
		RoomName:  room.Name,
		Date:      dateOnly(params.Date),
		Slots:     slots,
		Purpose:   purpose,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		if err := checkConflicts(ctx, repos, booking.RoomID, booking.Date, booking.Slots, "", s.policy); err != nil {
			return err
		}
		return claimConflict(repos.Bookings.CreateBooking(ctx, fromBooking(booking)), booking.Slots)
	})
	if err != nil {
		err = mapRepoError(err)
		booking = Booking{}
		return
	}

	notify(ctx, s.notifier, logger, bookingNotification(statusNotification(status), booking, ""))
	return
}

// ModifyBooking overwrites a booking's room, date, slots, purpose and status
// for administrators. On conflict the booking is left unchanged.
func (s *BookingService) ModifyBooking(ctx context.Context, params ModifyBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ModifyBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to modify booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking modified")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	vErr.merge(validateTarget(params.RoomID, params.Date))
	slots := validateSlots(vErr, params.Slots)
	purpose := strings.TrimSpace(params.Purpose)
	if purpose == "" {
		vErr.add("purpose", "purpose is required")
	}

	var existing persistence.Booking
	existing, err = s.repos.Bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	current := toBooking(existing)

	status := current.Status
	if strings.TrimSpace(params.Status) != "" {
		parsed, ok := ParseStatus(params.Status)
		if !ok {
			vErr.add("status", "status is invalid")
		} else {
			status = parsed
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if status != current.Status && !CanTransition(current.Status, status) {
		err = fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
		return
	}

	var room Room
	room, err = visibleRoom(ctx, s.repos.Rooms, params.Principal, params.RoomID)
	if err != nil {
		return
	}

	booking = current
	booking.RoomID = room.ID
	booking.RoomName = room.Name
	booking.Date = dateOnly(params.Date)
	booking.Slots = slots
	booking.Purpose = purpose
	booking.Status = status
	booking.UpdatedAt = s.now()

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		if booking.Status.HoldsSlots() {
			lessonsBlock := scheduler.Policy{BlockOnLessons: true}
			if err := checkConflicts(ctx, repos, booking.RoomID, booking.Date, booking.Slots, booking.ID, lessonsBlock); err != nil {
				return err
			}
		}
		return claimConflict(repos.Bookings.UpdateBooking(ctx, fromBooking(booking)), booking.Slots)
	})
	if err != nil {
		err = mapRepoError(err)
		booking = Booking{}
		return
	}

	notify(ctx, s.notifier, logger, bookingNotification(NotifyModified, booking, ""))
	return
}

// CancelBooking lets the owner (or an administrator) withdraw a confirmed
// booking.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	stored, err := s.repos.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return mapRepoError(err)
	}
	booking := toBooking(stored)
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return ErrUnauthorized
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		changed, err := repos.Bookings.UpdateStatus(ctx, bookingID,
			statusNames(StatusConfirmed), string(StatusDeclined), s.now())
		if err != nil {
			return err
		}
		if !changed {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		return mapRepoError(err)
	}

	booking.RoomName = s.roomName(ctx, booking.RoomID)
	notify(ctx, s.notifier, logger, bookingNotification(NotifyCancelledByUser, booking, ""))
	return nil
}

// UpdateStatus applies an administrative status change validated against the
// lifecycle table. Approving a booking re-runs the conflict check.
func (s *BookingService) UpdateStatus(ctx context.Context, params UpdateStatusParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateStatus",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
		"status", params.Status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking status updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	to, ok := ParseStatus(params.Status)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("status", "status is invalid")
		err = vErr
		return
	}

	var stored persistence.Booking
	stored, err = s.repos.Bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	booking = toBooking(stored)
	from := booking.Status

	if from == to || (from.Terminal() && to != from) {
		err = ErrAlreadyProcessed
		return
	}
	if !CanTransition(from, to) {
		err = fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
		return
	}

	now := s.now()
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		if to.HoldsSlots() {
			if err := checkConflicts(ctx, repos, booking.RoomID, booking.Date, booking.Slots, booking.ID, s.policy); err != nil {
				return err
			}
		}
		changed, err := repos.Bookings.UpdateStatus(ctx, booking.ID, statusNames(from), string(to), now)
		if err != nil {
			return claimConflict(err, booking.Slots)
		}
		if !changed {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		err = mapRepoError(err)
		booking = Booking{}
		return
	}

	booking.Status = to
	booking.UpdatedAt = now
	booking.RoomName = s.roomName(ctx, booking.RoomID)
	if from != StatusBanned && (to == StatusConfirmed || to == StatusDeclined) {
		notify(ctx, s.notifier, logger, bookingNotification(statusNotification(to), booking, strings.TrimSpace(params.Reason)))
	}
	return
}

// CheckIn completes a confirmed booking when called within CheckInWindow of
// its first slot's start, in campus time.
func (s *BookingService) CheckIn(ctx context.Context, principal Principal, bookingID string) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CheckIn",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check in", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking checked in")
	}()

	var stored persistence.Booking
	stored, err = s.repos.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	booking = toBooking(stored)
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		err = ErrUnauthorized
		booking = Booking{}
		return
	}

	switch booking.Status {
	case StatusConfirmed:
	case StatusCompleted:
		err = ErrAlreadyProcessed
		return
	default:
		err = fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
		return
	}

	first, _ := booking.Slots.First()
	start, ok := slot.StartOn(booking.Date, first, s.loc)
	now := s.now().In(s.loc)
	if !ok || now.Before(start.Add(-CheckInWindow)) || now.After(start.Add(CheckInWindow)) {
		vErr := &ValidationError{}
		vErr.add("check_in", "check-in is only possible within 10 minutes of the booking start")
		err = vErr
		return
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		changed, err := repos.Bookings.UpdateStatus(ctx, booking.ID,
			statusNames(StatusConfirmed), string(StatusCompleted), now)
		if err != nil {
			return err
		}
		if !changed {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	booking.Status = StatusCompleted
	booking.UpdatedAt = now
	return
}

// GetBooking returns a booking visible to the principal.
func (s *BookingService) GetBooking(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	stored, err := s.repos.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapRepoError(err)
	}
	booking := toBooking(stored)
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return Booking{}, ErrUnauthorized
	}
	booking.RoomName = s.roomName(ctx, booking.RoomID)
	return booking, nil
}

// ListUserBookings returns the principal's bookings ordered by date and first
// slot.
func (s *BookingService) ListUserBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, persistence.BookingFilter{UserEmail: principal.UserID})
}

// ListBookings returns every booking matching the filter for administrators.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if !params.Principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	filter := persistence.BookingFilter{
		RoomID:   params.RoomID,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}
	if params.Status != "" {
		status, ok := ParseStatus(params.Status)
		if !ok {
			vErr := &ValidationError{}
			vErr.add("status", "status is invalid")
			return nil, vErr
		}
		filter.Statuses = statusNames(status)
	}
	return s.list(ctx, filter)
}

func (s *BookingService) list(ctx context.Context, filter persistence.BookingFilter) ([]Booking, error) {
	stored, err := s.repos.Bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	names := s.roomNames(ctx)

	bookings := make([]Booking, 0, len(stored))
	for _, b := range stored {
		booking := toBooking(b)
		booking.RoomName = names[booking.RoomID]
		bookings = append(bookings, booking)
	}
	sortBookings(bookings)
	return bookings, nil
}

func (s *BookingService) ensureNotBlacklisted(ctx context.Context, userID string) error {
	if s.repos.Blacklist == nil {
		return nil
	}
	_, err := s.repos.Blacklist.GetEntry(ctx, userID)
	switch {
	case err == nil:
		return ErrBlacklisted
	case errors.Is(err, persistence.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *BookingService) roomName(ctx context.Context, roomID int64) string {
	room, err := s.repos.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return ""
	}
	return room.Name
}

func (s *BookingService) roomNames(ctx context.Context) map[int64]string {
	names := make(map[int64]string)
	rooms, err := s.repos.Rooms.ListRooms(ctx, true)
	if err != nil {
		return names
	}
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return names
}

// checkConflicts loads the claim-holding bookings and lessons for the day and
// runs the resolver. It returns a *ConflictError on overlap.
func checkConflicts(ctx context.Context, repos persistence.Repositories, roomID int64, date time.Time, candidate slot.Set, excludeID string, policy scheduler.Policy) error {
	existing, err := repos.Bookings.ListBookings(ctx, persistence.BookingFilter{
		RoomID:    roomID,
		Date:      &date,
		Statuses:  persistence.ClaimStatuses,
		ExcludeID: excludeID,
	})
	if err != nil {
		return err
	}
	bookings := make([]scheduler.Occupant, 0, len(existing))
	for _, b := range existing {
		bookings = append(bookings, scheduler.Occupant{ID: b.ID, Slots: b.Slots})
	}

	var lessons []scheduler.Occupant
	if policy.BlockOnLessons {
		stored, err := repos.Lessons.ListLessons(ctx, persistence.LessonFilter{RoomID: roomID, Date: &date})
		if err != nil {
			return err
		}
		for _, l := range stored {
			lessons = append(lessons, scheduler.Occupant{ID: fmt.Sprintf("lesson-%d", l.ID), Slots: l.Slots})
		}
	}

	outcome := scheduler.Resolve(candidate, bookings, lessons, policy)
	switch outcome.Kind {
	case scheduler.ConflictWithLesson:
		return &ConflictError{Slots: outcome.Slots, WithLesson: true}
	case scheduler.ConflictWithBooking:
		return &ConflictError{Slots: outcome.Slots, BookingIDs: outcome.BookingIDs}
	default:
		return nil
	}
}

// claimConflict turns a slot-claim uniqueness failure into a ConflictError;
// it is raised when a concurrent writer claimed the same slots first.
func claimConflict(err error, slots slot.Set) error {
	if err != nil && errors.Is(err, persistence.ErrDuplicate) {
		return &ConflictError{Slots: slots}
	}
	return err
}

func visibleRoom(ctx context.Context, rooms persistence.RoomRepository, principal Principal, roomID int64) (Room, error) {
	stored, err := rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapRepoError(err)
	}
	if stored.Deleted {
		return Room{}, ErrNotFound
	}
	if !principal.CanSee(stored.Access) {
		return Room{}, ErrUnauthorized
	}
	return toRoom(stored), nil
}

func validateTarget(roomID int64, date time.Time) *ValidationError {
	vErr := &ValidationError{}
	if roomID <= 0 {
		vErr.add("room_id", "room is required")
	}
	if date.IsZero() {
		vErr.add("date", "date is required")
	}
	return vErr
}

func validateSlots(vErr *ValidationError, indices []int) slot.Set {
	slots := slot.New(indices...)
	switch {
	case slots.IsEmpty():
		vErr.add("slots", "at least one slot is required")
	case len(slots.OutOfRange()) > 0:
		vErr.add("slots", fmt.Sprintf("slot index must be between 0 and %d", slot.Count-1))
	}
	return slots
}

func bookingNotification(kind NotificationKind, b Booking, reason string) Notification {
	return Notification{
		Kind:      kind,
		Recipient: b.UserID,
		BookingID: b.ID,
		RoomName:  b.RoomName,
		Date:      b.Date,
		Slots:     b.Slots,
		Purpose:   b.Purpose,
		Reason:    reason,
	}
}

func sortBookings(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].Date.Equal(bookings[j].Date) {
			return bookings[i].Date.Before(bookings[j].Date)
		}
		fi, _ := bookings[i].Slots.First()
		fj, _ := bookings[j].Slots.First()
		return fi < fj
	})
}

// dateOnly drops the time of day, keeping the calendar date as written.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
