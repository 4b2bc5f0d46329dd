package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
)

type fakeValidator struct {
	principal application.Principal
	err       error
	seen      string
}

func (f *fakeValidator) ValidateToken(_ context.Context, token string) (application.Principal, error) {
	f.seen = token
	return f.principal, f.err
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRequireAuth(t *testing.T) {
	t.Run("attaches the principal", func(t *testing.T) {
		v := &fakeValidator{principal: application.Principal{UserID: "u@campus.edu", Role: application.RoleStaff}}
		var got application.Principal
		h := RequireAuth(v, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer  tok-1 ")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "tok-1", v.seen)
		assert.Equal(t, application.RoleStaff, got.Role)
	})

	t.Run("rejects missing and invalid tokens", func(t *testing.T) {
		cases := []struct {
			name   string
			header string
			err    error
			status int
		}{
			{name: "missing", status: http.StatusUnauthorized},
			{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
			{name: "invalid", header: "Bearer bad", err: application.ErrInvalidToken, status: http.StatusUnauthorized},
			{name: "validator failure", header: "Bearer tok", err: errors.New("boom"), status: http.StatusInternalServerError},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				v := &fakeValidator{err: tc.err}
				h := RequireAuth(v, discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					t.Fatal("next handler must not run")
				}))
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				assert.Equal(t, tc.status, rec.Code)
			})
		}
	})
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var logged bool
	h := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logged = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, logged)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestRecovererReturns500(t *testing.T) {
	h := Recoverer(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleServiceErrorMapping(t *testing.T) {
	r := newResponder(discardLogger())
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{application.ErrUnauthorized, http.StatusForbidden, "AUTH_FORBIDDEN"},
		{application.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{application.ErrBlacklisted, http.StatusForbidden, "BOOKING_BLACKLISTED"},
		{application.ErrDuplicateBan, http.StatusConflict, "BAN_DUPLICATE"},
		{application.ErrAlreadyProcessed, http.StatusConflict, "BOOKING_ALREADY_PROCESSED"},
		{application.ErrInvalidTransition, http.StatusConflict, "BOOKING_INVALID_TRANSITION"},
		{application.ErrInvalidCode, http.StatusUnauthorized, "AUTH_INVALID_CODE"},
		{application.ErrInvalidToken, http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{&application.ConflictError{}, http.StatusConflict, "BOOKING_CONFLICT"},
		{&application.ValidationError{FieldErrors: map[string]string{"slots": "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{&application.TransientError{Op: "db", Err: errors.New("down")}, http.StatusServiceUnavailable, ""},
		{errors.New("other"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.handleServiceError(context.Background(), rec, tc.err)
		require.Equal(t, tc.status, rec.Code, tc.err.Error())
		if tc.code != "" {
			assert.Contains(t, rec.Body.String(), tc.code)
		}
	}
}
