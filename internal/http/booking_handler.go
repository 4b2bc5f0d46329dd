package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/calendar"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	ModifyBooking(ctx context.Context, params application.ModifyBookingParams) (application.Booking, error)
	CancelBooking(ctx context.Context, principal application.Principal, bookingID string) error
	UpdateStatus(ctx context.Context, params application.UpdateStatusParams) (application.Booking, error)
	CheckIn(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	GetBooking(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error)
	ListUserBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
	Ban(ctx context.Context, params application.BanParams) (application.BanResult, error)
}

type calendarWriter interface {
	Write(w io.Writer, bookings []application.Booking) error
}

type BookingHandler struct {
	service   bookingService
	calendar  calendarWriter
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, cal calendarWriter, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, calendar: cal, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req bookingRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID)
	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		RoomID:    req.RoomID,
		Date:      date,
		Slots:     req.Slots,
		Purpose:   req.Purpose,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID, "status", booking.Status).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

// Modify overwrites a booking. Administrators only.
func (h *BookingHandler) Modify(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req modifyBookingRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "Modify", "booking_id", id)
	booking, err := h.service.ModifyBooking(r.Context(), application.ModifyBookingParams{
		Principal: principal,
		BookingID: id,
		RoomID:    req.RoomID,
		Date:      date,
		Slots:     req.Slots,
		Purpose:   req.Purpose,
		Status:    req.Status,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking modification failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking modified")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "Cancel", "booking_id", id)
	if err := h.service.CancelBooking(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// UpdateStatus applies an administrative status change.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "UpdateStatus", "booking_id", id, "status", req.Status)
	booking, err := h.service.UpdateStatus(r.Context(), application.UpdateStatusParams{
		Principal: principal,
		BookingID: id,
		Status:    req.Status,
		Reason:    req.Reason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "CheckIn", "booking_id", id)
	booking, err := h.service.CheckIn(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking checked in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	booking, err := h.service.GetBooking(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "booking_id", id).ErrorContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// Mine lists the caller's bookings ordered by date and first slot.
func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.ListUserBookings(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Mine").ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// MineCalendar exports the caller's confirmed bookings as iCalendar.
func (h *BookingHandler) MineCalendar(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	logger := h.log(r.Context(), "MineCalendar")
	bookings, err := h.service.ListUserBookings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.ics"`)
	w.WriteHeader(http.StatusOK)
	if err := h.calendar.Write(w, bookings); err != nil {
		logger.ErrorContext(r.Context(), "calendar export failed", "error", err)
	}
}

// List returns all bookings for administrators. Query parameters room_id,
// status, from and to narrow the result.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := application.ListBookingsParams{Principal: principal, Status: q.Get("status")}
	if raw := q.Get("room_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
			return
		}
		params.RoomID = id
	}
	var err error
	if params.DateFrom, err = optionalDate(q.Get("from")); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if params.DateTo, err = optionalDate(q.Get("to")); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List")
	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// Ban reserves slots for administrative use and declines overlapping
// bookings.
func (h *BookingHandler) Ban(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req banRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Ban", "room_id", req.RoomID)
	result, err := h.service.Ban(r.Context(), application.BanParams{
		Principal: principal,
		RoomID:    req.RoomID,
		Date:      date,
		Slots:     req.Slots,
		Reason:    req.Reason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "ban failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := banResponse{BanID: result.BanID, DeclinedCount: result.DeclinedCount, Declined: make([]declinedDTO, 0, len(result.Declined))}
	for _, d := range result.Declined {
		resp.Declined = append(resp.Declined, declinedDTO{BookingID: d.BookingID, UserID: d.UserID, Slots: d.Slots.Values()})
	}
	logger.With("ban_id", result.BanID, "declined_count", result.DeclinedCount).InfoContext(r.Context(), "period banned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resp)
}

type bookingRequest struct {
	RoomID  int64  `json:"room_id" validate:"required,gt=0"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Slots   []int  `json:"slots" validate:"required,min=1"`
	Purpose string `json:"purpose" validate:"max=500"`
}

type modifyBookingRequest struct {
	RoomID  int64  `json:"room_id" validate:"required,gt=0"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Slots   []int  `json:"slots" validate:"required,min=1"`
	Purpose string `json:"purpose" validate:"required,max=500"`
	Status  string `json:"status" validate:"omitempty,oneof=Pending Confirmed Declined Banned Missed Completed"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type banRequest struct {
	RoomID int64  `json:"room_id" validate:"required,gt=0"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Slots  []int  `json:"slots" validate:"required,min=1"`
	Reason string `json:"reason" validate:"max=500"`
}

type bookingDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	RoomID    int64  `json:"room_id"`
	RoomName  string `json:"room_name,omitempty"`
	Date      string `json:"date"`
	Slots     []int  `json:"slots"`
	Time      string `json:"time"`
	Purpose   string `json:"purpose"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type declinedDTO struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	Slots     []int  `json:"slots"`
}

type banResponse struct {
	BanID         string        `json:"ban_id"`
	DeclinedCount int           `json:"declined_count"`
	Declined      []declinedDTO `json:"declined"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:       b.ID,
		UserID:   b.UserID,
		RoomID:   b.RoomID,
		RoomName: b.RoomName,
		Date:     b.Date.Format(dateLayout),
		Slots:    b.Slots.Values(),
		Time:     b.Slots.String(),
		Purpose:  b.Purpose,
		Status:   string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		dto.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}
