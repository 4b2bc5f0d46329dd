package http

import (
	"net/http"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Rooms     *RoomHandler
	Bookings  *BookingHandler
	Blacklist *BlacklistHandler
	Reports   *ReportHandler
	// Authenticate guards every route except the login endpoints.
	Authenticate func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.Authenticate == nil {
			return h
		}
		return cfg.Authenticate(h)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if cfg.Auth != nil {
		mux.HandleFunc("POST /auth/code", cfg.Auth.RequestCode)
		mux.HandleFunc("POST /auth/verify", cfg.Auth.Verify)
		mux.Handle("GET /auth/me", protect(cfg.Auth.Me))
	}

	if cfg.Rooms != nil {
		mux.Handle("GET /rooms", protect(cfg.Rooms.List))
		mux.Handle("POST /rooms", protect(cfg.Rooms.Create))
		mux.Handle("GET /rooms/{id}", protect(cfg.Rooms.Get))
		mux.Handle("PUT /rooms/{id}", protect(cfg.Rooms.Update))
		mux.Handle("DELETE /rooms/{id}", protect(cfg.Rooms.Delete))
	}

	if cfg.Bookings != nil {
		mux.Handle("POST /bookings", protect(cfg.Bookings.Create))
		mux.Handle("GET /bookings", protect(cfg.Bookings.List))
		mux.Handle("GET /bookings/mine", protect(cfg.Bookings.Mine))
		mux.Handle("GET /bookings/mine.ics", protect(cfg.Bookings.MineCalendar))
		mux.Handle("GET /bookings/{id}", protect(cfg.Bookings.Get))
		mux.Handle("PUT /bookings/{id}", protect(cfg.Bookings.Modify))
		mux.Handle("POST /bookings/{id}/cancel", protect(cfg.Bookings.Cancel))
		mux.Handle("PUT /bookings/{id}/status", protect(cfg.Bookings.UpdateStatus))
		mux.Handle("POST /bookings/{id}/checkin", protect(cfg.Bookings.CheckIn))
		mux.Handle("POST /bans", protect(cfg.Bookings.Ban))
	}

	if cfg.Blacklist != nil {
		mux.Handle("GET /blacklist", protect(cfg.Blacklist.List))
		mux.Handle("DELETE /blacklist/{email}", protect(cfg.Blacklist.Reset))
		mux.Handle("POST /blacklist/sweep", protect(cfg.Blacklist.Sweep))
	}

	if cfg.Reports != nil {
		mux.Handle("POST /reports", protect(cfg.Reports.Create))
		mux.Handle("GET /reports", protect(cfg.Reports.List))
		mux.Handle("PATCH /reports/{id}", protect(cfg.Reports.Update))
		mux.Handle("DELETE /reports/{id}", protect(cfg.Reports.Delete))
	}

	if cfg.Users != nil {
		mux.Handle("GET /users", protect(cfg.Users.List))
		mux.Handle("PUT /users", protect(cfg.Users.Upsert))
		mux.Handle("GET /users/{email}", protect(cfg.Users.Get))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
