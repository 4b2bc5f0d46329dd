package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type authService interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (application.LoginResult, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// RequestCode mails a verification code to a registered address.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req requestCodeRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger := h.log(r.Context(), "RequestCode", "email", email)

	if err := h.service.RequestCode(r.Context(), email); err != nil {
		logger.ErrorContext(r.Context(), "verification code request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "verification code sent")
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

// Verify exchanges a verification code for an access token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req verifyCodeRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger := h.log(r.Context(), "Verify", "email", email)

	result, err := h.service.VerifyCode(r.Context(), email, req.Code)
	if err != nil {
		logger.ErrorContext(r.Context(), "verification rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("role", result.User.Role).InfoContext(r.Context(), "user signed in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserDTO(result.User),
	})
}

// Me echoes the principal behind the access token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.responder.requirePrincipal(w, r)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, principalDTO{UserID: principal.UserID, Role: string(principal.Role)})
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type loginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	User      userDTO `json:"user"`
}

type principalDTO struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}
