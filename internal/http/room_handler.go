package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type roomService interface {
	CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (application.Room, error)
	DeleteRoom(ctx context.Context, principal application.Principal, roomID int64) error
	ListRooms(ctx context.Context, principal application.Principal) ([]application.Room, error)
	GetRoom(ctx context.Context, principal application.Principal, roomID int64) (application.RoomDetail, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req roomRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Create")

	room, err := h.service.CreateRoom(r.Context(), application.CreateRoomParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	var req roomRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Update", "room_id", roomID)

	room, err := h.service.UpdateRoom(r.Context(), application.UpdateRoomParams{
		Principal: principal,
		RoomID:    roomID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Delete", "room_id", roomID)
	if err := h.service.DeleteRoom(r.Context(), principal, roomID); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	logger := h.log(r.Context(), "List")
	rooms, err := h.service.ListRooms(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: out})
}

// Get returns a room with its upcoming occupancy and approved reports.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetRoom(r.Context(), principal, roomID)
	if err != nil {
		h.log(r.Context(), "Get", "room_id", roomID).ErrorContext(r.Context(), "room lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := roomDetailResponse{
		Room:     toRoomDTO(detail.Room),
		Bookings: make([]bookingDTO, 0, len(detail.Bookings)),
		Lessons:  make([]lessonDTO, 0, len(detail.Lessons)),
		Reports:  make([]reportDTO, 0, len(detail.Reports)),
	}
	for _, b := range detail.Bookings {
		resp.Bookings = append(resp.Bookings, toBookingDTO(b))
	}
	for _, l := range detail.Lessons {
		resp.Lessons = append(resp.Lessons, lessonDTO{Date: l.Date.Format(dateLayout), Slots: l.Slots.Values()})
	}
	for _, rep := range detail.Reports {
		resp.Reports = append(resp.Reports, toReportDTO(rep))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *RoomHandler) roomID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return 0, false
	}
	return id, true
}

type roomRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Access    int      `json:"access" validate:"gte=0,lte=2"`
	Capacity  int      `json:"capacity" validate:"gt=0"`
	Equipment []string `json:"equipment"`
	Location  string   `json:"location" validate:"max=200"`
	Info      string   `json:"info"`
	ImageURL  string   `json:"image_url" validate:"omitempty,url"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		Name:      r.Name,
		Access:    r.Access,
		Capacity:  r.Capacity,
		Equipment: r.Equipment,
		Location:  r.Location,
		Info:      r.Info,
		ImageURL:  r.ImageURL,
	}
}

type roomDTO struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Access    int      `json:"access"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
	Location  string   `json:"location,omitempty"`
	Info      string   `json:"info,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
}

type lessonDTO struct {
	Date  string `json:"date"`
	Slots []int  `json:"slots"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type roomDetailResponse struct {
	Room     roomDTO      `json:"room"`
	Bookings []bookingDTO `json:"bookings"`
	Lessons  []lessonDTO  `json:"lessons"`
	Reports  []reportDTO  `json:"reports"`
}

func toRoomDTO(room application.Room) roomDTO {
	equipment := room.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return roomDTO{
		ID:        room.ID,
		Name:      room.Name,
		Access:    room.Access,
		Capacity:  room.Capacity,
		Equipment: equipment,
		Location:  room.Location,
		Info:      room.Info,
		ImageURL:  room.ImageURL,
	}
}
