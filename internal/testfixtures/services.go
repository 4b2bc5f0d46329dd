package testfixtures

import (
	"context"
	"sync"
	"testing"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/scheduler"
)

// RecordingNotifier captures notifications instead of sending them. Err, when
// set, is returned from every Notify call after recording.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []application.Notification
	Err  error
}

// Notify records n.
func (r *RecordingNotifier) Notify(_ context.Context, n application.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.Err
}

// Sent returns a copy of the recorded notifications.
func (r *RecordingNotifier) Sent() []application.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]application.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// Kinds returns the kinds of the recorded notifications in order.
func (r *RecordingNotifier) Kinds() []application.NotificationKind {
	var kinds []application.NotificationKind
	for _, n := range r.Sent() {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// Reset forgets recorded notifications.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}

// ServiceFactory builds application services over one Harness with a shared
// clock, ID generator and notifier.
type ServiceFactory struct {
	Harness     *Harness
	Clock       *Clock
	IDGenerator *IDGenerator
	Notifier    *RecordingNotifier
	Policy      scheduler.Policy
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory opens a fresh harness, seeds one user per role and
// returns a factory with lesson blocking enabled.
func NewServiceFactory(tb testing.TB, opts ...ServiceFactoryOption) *ServiceFactory {
	tb.Helper()
	factory := &ServiceFactory{
		Harness:     NewHarness(tb),
		Clock:       NewClock(ReferenceTime()),
		IDGenerator: NewIDGenerator("bk"),
		Notifier:    &RecordingNotifier{},
		Policy:      scheduler.Policy{BlockOnLessons: true},
	}
	for _, opt := range opts {
		opt(factory)
	}
	factory.Harness.SeedUsers(tb)
	return factory
}

// WithPolicy overrides the conflict policy used for booking creation.
func WithPolicy(policy scheduler.Policy) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Policy = policy }
}

// WithClock overrides the factory clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

// BookingService builds a booking service.
func (f *ServiceFactory) BookingService() *application.BookingService {
	return application.NewBookingService(application.BookingServiceConfig{
		Repos:       f.Harness.Repos,
		Tx:          f.Harness.Store,
		Notifier:    f.Notifier,
		Policy:      f.Policy,
		Location:    Campus,
		IDGenerator: f.IDGenerator.NextFunc(),
		Now:         f.Clock.NowFunc(),
	})
}

// BlacklistService builds a blacklist service with the default threshold
// and window.
func (f *ServiceFactory) BlacklistService() *application.BlacklistService {
	return application.NewBlacklistService(application.BlacklistServiceConfig{
		Repos:    f.Harness.Repos,
		Tx:       f.Harness.Store,
		Location: Campus,
		Now:      f.Clock.NowFunc(),
	})
}

// RoomService builds a room service.
func (f *ServiceFactory) RoomService() *application.RoomService {
	return application.NewRoomService(application.RoomServiceConfig{
		Repos:    f.Harness.Repos,
		Location: Campus,
		Now:      f.Clock.NowFunc(),
	})
}

// ReportService builds a report service.
func (f *ServiceFactory) ReportService() *application.ReportService {
	return application.NewReportService(application.ReportServiceConfig{
		Repos:       f.Harness.Repos,
		IDGenerator: NewIDGenerator("rp").NextFunc(),
		Now:         f.Clock.NowFunc(),
	})
}

// UserService builds a user service.
func (f *ServiceFactory) UserService() *application.UserService {
	return application.NewUserService(f.Harness.Repos.Users, nil)
}

// AuthService builds an auth service signing with secret. Codes come from
// codes in order.
func (f *ServiceFactory) AuthService(secret string, codes ...string) *application.AuthService {
	var mu sync.Mutex
	return application.NewAuthService(application.AuthServiceConfig{
		Users:    f.Harness.Repos.Users,
		Notifier: f.Notifier,
		Secret:   []byte(secret),
		CodeGenerator: func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(codes) == 0 {
				return application.GenerateCode()
			}
			code := codes[0]
			codes = codes[1:]
			return code, nil
		},
		Now: f.Clock.NowFunc(),
	})
}

// Admin, Student, Staff and Selected are principals for the seeded users.
var (
	Admin    = application.Principal{UserID: AdminEmail, Role: application.RoleAdmin}
	Student  = application.Principal{UserID: StudentEmail, Role: application.RoleStudent}
	Staff    = application.Principal{UserID: StaffEmail, Role: application.RoleStaff}
	Selected = application.Principal{UserID: SelectedEmail, Role: application.RoleSelectedStaff}
)
