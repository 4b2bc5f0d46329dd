package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-booking/internal/application"
)

type blacklistService interface {
	Sweep(ctx context.Context) (application.SweepResult, error)
	Reset(ctx context.Context, principal application.Principal, userID string) error
	List(ctx context.Context, principal application.Principal) ([]application.BlacklistEntry, error)
}

type BlacklistHandler struct {
	service   blacklistService
	responder responder
	logger    *slog.Logger
}

func NewBlacklistHandler(service blacklistService, logger *slog.Logger) *BlacklistHandler {
	base := defaultLogger(logger)
	return &BlacklistHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BlacklistHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BlacklistHandler", operation, attrs...)
}

func (h *BlacklistHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	entries, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "blacklist list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]blacklistEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, blacklistEntryDTO{UserID: e.UserID, AddedAt: e.AddedAt.UTC().Format(time.RFC3339), MissedCount: e.MissedCount})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBlacklistResponse{Entries: out})
}

// Reset lifts a user's blacklist entry.
func (h *BlacklistHandler) Reset(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}

	email := r.PathValue("email")
	logger := h.log(r.Context(), "Reset", "user_id", email)
	if err := h.service.Reset(r.Context(), principal, email); err != nil {
		logger.ErrorContext(r.Context(), "blacklist reset failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "blacklist entry reset")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Sweep runs the missed-booking sweep on demand.
func (h *BlacklistHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.IsAdmin() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	logger := h.log(r.Context(), "Sweep")
	result, err := h.service.Sweep(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "sweep failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := sweepResponse{Missed: result.Missed, Users: result.Users, Blacklisted: result.Blacklisted}
	if resp.Users == nil {
		resp.Users = []string{}
	}
	if resp.Blacklisted == nil {
		resp.Blacklisted = []string{}
	}
	logger.InfoContext(r.Context(), "sweep completed", "missed", result.Missed)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type blacklistEntryDTO struct {
	UserID      string `json:"user_id"`
	AddedAt     string `json:"added_at"`
	MissedCount int    `json:"missed_count"`
}

type listBlacklistResponse struct {
	Entries []blacklistEntryDTO `json:"entries"`
}

type sweepResponse struct {
	Missed      int      `json:"missed"`
	Users       []string `json:"users"`
	Blacklisted []string `json:"blacklisted"`
}
