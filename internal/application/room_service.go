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
)

// RoomServiceConfig wires a RoomService.
type RoomServiceConfig struct {
	Repos    persistence.Repositories
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

// RoomService orchestrates validation, authorization, and persistence for the
// room catalog.
type RoomService struct {
	repos  persistence.Repositories
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(cfg RoomServiceConfig) *RoomService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RoomService{repos: cfg.Repos, loc: cfg.Location, now: cfg.Now, logger: defaultLogger(cfg.Logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	stored := roomFromInput(params.Input)
	stored.ID, err = s.repos.Rooms.CreateRoom(ctx, stored)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = toRoom(stored)
	return
}

// UpdateRoom validates input and overwrites an existing room for
// administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing persistence.Room
	existing, err = s.repos.Rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	if existing.Deleted {
		err = ErrNotFound
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := roomFromInput(params.Input)
	updated.ID = existing.ID
	if err = s.repos.Rooms.UpdateRoom(ctx, updated); err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = toRoom(updated)
	return
}

// DeleteRoom hides a room from the catalog. Existing bookings keep their
// reference to it.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID int64) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)

	if err := s.repos.Rooms.SoftDeleteRoom(ctx, roomID); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

// ListRooms returns the rooms the principal's role may see, ordered by name.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	var raw []persistence.Room
	raw, err = s.repos.Rooms.ListRooms(ctx, false)
	if err != nil {
		return
	}

	rooms = make([]Room, 0, len(raw))
	for _, r := range raw {
		if principal.CanSee(r.Access) {
			rooms = append(rooms, toRoom(r))
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})

	return
}

// GetRoom returns a visible room with its upcoming bookings and lessons and
// its approved issue reports. Occupancy starts at today in campus time.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID int64) (detail RoomDetail, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	detail.Room, err = visibleRoom(ctx, s.repos.Rooms, principal, roomID)
	if err != nil {
		return
	}

	today := dateOnly(s.now().In(s.loc))

	bookings, err := s.repos.Bookings.ListBookings(ctx, persistence.BookingFilter{
		RoomID:   roomID,
		DateFrom: &today,
		Statuses: persistence.ClaimStatuses,
	})
	if err != nil {
		return RoomDetail{}, mapRepoError(err)
	}
	for _, b := range bookings {
		booking := toBooking(b)
		booking.RoomName = detail.Name
		detail.Bookings = append(detail.Bookings, booking)
	}
	sortBookings(detail.Bookings)

	lessons, err := s.repos.Lessons.ListLessons(ctx, persistence.LessonFilter{RoomID: roomID, DateFrom: &today})
	if err != nil {
		return RoomDetail{}, mapRepoError(err)
	}
	for _, l := range lessons {
		detail.Lessons = append(detail.Lessons, toLesson(l))
	}

	reports, err := s.repos.Reports.ListReports(ctx, roomID, string(ReviewApproved))
	if err != nil {
		return RoomDetail{}, mapRepoError(err)
	}
	for _, r := range reports {
		detail.Reports = append(detail.Reports, toReport(r))
	}

	return detail, nil
}

func roomFromInput(input RoomInput) persistence.Room {
	var equipment []string
	for _, item := range input.Equipment {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			equipment = append(equipment, trimmed)
		}
	}
	return persistence.Room{
		Name:      strings.TrimSpace(input.Name),
		Access:    input.Access,
		Capacity:  input.Capacity,
		Equipment: equipment,
		Location:  strings.TrimSpace(input.Location),
		Info:      strings.TrimSpace(input.Info),
		ImageURL:  strings.TrimSpace(input.ImageURL),
	}
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if input.Access < AccessOpen || input.Access > AccessRestricted {
		vErr.add("access", fmt.Sprintf("access must be between %d and %d", AccessOpen, AccessRestricted))
	}
	for _, item := range input.Equipment {
		if strings.Contains(item, ",") {
			vErr.add("equipment", "equipment names must not contain commas")
			break
		}
	}

	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("room", "room violates a storage constraint")
		return vErr
	}
	return err
}
