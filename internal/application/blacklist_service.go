package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Blacklist defaults.
const (
	DefaultMissedThreshold = 3
	DefaultMissedWindow    = 30 * 24 * time.Hour
)

// BlacklistServiceConfig wires a BlacklistService.
type BlacklistServiceConfig struct {
	Repos     persistence.Repositories
	Tx        persistence.TxManager
	Threshold int
	Window    time.Duration
	Location  *time.Location
	Now       func() time.Time
	Logger    *slog.Logger
}

// BlacklistService marks no-shows and bars users who miss too many bookings.
type BlacklistService struct {
	repos     persistence.Repositories
	tx        persistence.TxManager
	threshold int
	window    time.Duration
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewBlacklistService constructs a blacklist service.
func NewBlacklistService(cfg BlacklistServiceConfig) *BlacklistService {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultMissedThreshold
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultMissedWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &BlacklistService{
		repos:     cfg.Repos,
		tx:        cfg.Tx,
		threshold: cfg.Threshold,
		window:    cfg.Window,
		loc:       cfg.Location,
		now:       cfg.Now,
		logger:    defaultLogger(cfg.Logger),
	}
}

func (s *BlacklistService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BlacklistService", operation, attrs...)
}

// Sweep marks every Confirmed booking dated today or earlier (campus time) as
// Missed, then counts each affected user's Missed bookings in the trailing
// window and upserts a blacklist entry for users at or over the threshold.
// Re-running the sweep refreshes entries rather than duplicating them.
func (s *BlacklistService) Sweep(ctx context.Context) (result SweepResult, err error) {
	if s == nil {
		err = fmt.Errorf("BlacklistService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Sweep")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "missed sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "missed sweep completed",
			"missed", result.Missed,
			"users", len(result.Users),
			"blacklisted", len(result.Blacklisted),
		)
	}()

	now := s.now()
	today := dateOnly(now.In(s.loc))
	windowStart := dateOnly(today.Add(-s.window))

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		result = SweepResult{}

		due, err := repos.Bookings.ListBookings(ctx, persistence.BookingFilter{
			DateTo:   &today,
			Statuses: statusNames(StatusConfirmed),
		})
		if err != nil {
			return err
		}

		users := make(map[string]struct{})
		for _, b := range due {
			changed, err := repos.Bookings.UpdateStatus(ctx, b.ID,
				statusNames(StatusConfirmed), string(StatusMissed), now)
			if err != nil {
				return err
			}
			if changed {
				result.Missed++
				users[b.UserEmail] = struct{}{}
			}
		}

		for user := range users {
			result.Users = append(result.Users, user)
		}
		sort.Strings(result.Users)

		for _, user := range result.Users {
			count, err := repos.Bookings.CountBookings(ctx, persistence.BookingFilter{
				UserEmail: user,
				Statuses:  statusNames(StatusMissed),
				DateFrom:  &windowStart,
				DateTo:    &today,
			})
			if err != nil {
				return err
			}
			if count < s.threshold {
				continue
			}
			if _, err := repos.Blacklist.UpsertEntry(ctx, persistence.BlacklistEntry{
				UserEmail:   user,
				AddedAt:     now,
				MissedCount: count,
			}); err != nil {
				return err
			}
			result.Blacklisted = append(result.Blacklisted, user)
		}
		return nil
	})
	return
}

// Reset removes a user's blacklist entry, restoring booking eligibility.
func (s *BlacklistService) Reset(ctx context.Context, principal Principal, userID string) (err error) {
	if s == nil {
		return fmt.Errorf("BlacklistService is nil")
	}

	logger := s.loggerWith(ctx, "Reset", "principal_id", principal.UserID, "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reset blacklist entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "blacklist entry reset")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	return mapRepoError(s.repos.Blacklist.DeleteEntry(ctx, userID))
}

// List returns every blacklist entry for administrators.
func (s *BlacklistService) List(ctx context.Context, principal Principal) ([]BlacklistEntry, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	stored, err := s.repos.Blacklist.ListEntries(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	entries := make([]BlacklistEntry, 0, len(stored))
	for _, e := range stored {
		entries = append(entries, BlacklistEntry{UserID: e.UserEmail, AddedAt: e.AddedAt, MissedCount: e.MissedCount})
	}
	return entries, nil
}
