package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/room-booking/internal/application"
)

type reportService interface {
	CreateReport(ctx context.Context, params application.CreateReportParams) (application.IssueReport, error)
	ListReports(ctx context.Context, principal application.Principal, roomID int64, review string) ([]application.IssueReport, error)
	UpdateReport(ctx context.Context, params application.UpdateReportParams) (application.IssueReport, error)
	DeleteReport(ctx context.Context, principal application.Principal, reportID string) error
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID)
	report, err := h.service.CreateReport(r.Context(), application.CreateReportParams{
		Principal: principal,
		Input:     application.ReportInput{RoomID: req.RoomID, Info: req.Info},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "report creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("report_id", report.ID).InfoContext(r.Context(), "report created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reportResponse{Report: toReportDTO(report)})
}

// List returns reports for administrators, filtered by room_id and review.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var roomID int64
	if raw := r.URL.Query().Get("room_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
			return
		}
		roomID = id
	}

	reports, err := h.service.ListReports(r.Context(), principal, roomID, r.URL.Query().Get("review"))
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "report list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]reportDTO, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportDTO(rep))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReportsResponse{Reports: out})
}

// Update edits the text or review state of a report.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req updateReportRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "Update", "report_id", id)
	report, err := h.service.UpdateReport(r.Context(), application.UpdateReportParams{
		Principal: principal,
		ReportID:  id,
		Info:      req.Info,
		Review:    req.Review,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "report update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Report: toReportDTO(report)})
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "Delete", "report_id", id)
	if err := h.service.DeleteReport(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "report delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type reportRequest struct {
	RoomID int64  `json:"room_id" validate:"required,gt=0"`
	Info   string `json:"info" validate:"required,max=2000"`
}

type updateReportRequest struct {
	Info   *string `json:"info" validate:"omitempty,max=2000"`
	Review *string `json:"review" validate:"omitempty,oneof=Unreviewed Approved"`
}

type reportDTO struct {
	ID        string `json:"id"`
	RoomID    int64  `json:"room_id"`
	UserID    string `json:"user_id"`
	Info      string `json:"info"`
	Review    string `json:"review"`
	CreatedAt string `json:"created_at"`
}

type reportResponse struct {
	Report reportDTO `json:"report"`
}

type listReportsResponse struct {
	Reports []reportDTO `json:"reports"`
}

func toReportDTO(r application.IssueReport) reportDTO {
	return reportDTO{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		Info:      r.Info,
		Review:    string(r.Review),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
