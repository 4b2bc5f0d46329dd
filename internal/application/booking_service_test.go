package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
	"github.com/example/room-booking/internal/slot"
	"github.com/example/room-booking/internal/testfixtures"
)

func createParams(principal application.Principal, roomID int64, slots ...int) application.CreateBookingParams {
	return application.CreateBookingParams{
		Principal: principal,
		RoomID:    roomID,
		Date:      testfixtures.ReferenceDate(),
		Slots:     slots,
		Purpose:   "study group",
	}
}

func requireConflict(t *testing.T, err error) *application.ConflictError {
	t.Helper()
	var conflict *application.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	return conflict
}

func TestCreateBookingStatusByRoomAndRole(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()

	open := f.Harness.SeedRoom(t, testfixtures.RoomFixture{Access: application.AccessOpen})
	staffRoom := f.Harness.SeedRoom(t, testfixtures.RoomFixture{Access: application.AccessStaff})
	restricted := f.Harness.SeedRoom(t, testfixtures.RoomFixture{Access: application.AccessRestricted})

	b, err := svc.CreateBooking(ctx, createParams(testfixtures.Student, open, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, application.StatusConfirmed, b.Status)
	assert.Equal(t, "1,3", b.Slots.String())

	b, err = svc.CreateBooking(ctx, createParams(testfixtures.Staff, staffRoom, 1))
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, b.Status)

	b, err = svc.CreateBooking(ctx, createParams(testfixtures.Selected, restricted, 1))
	require.NoError(t, err)
	assert.Equal(t, application.StatusConfirmed, b.Status)

	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Student, staffRoom, 5))
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	assert.Equal(t, []application.NotificationKind{
		application.NotifyConfirmed,
		application.NotifyPending,
		application.NotifyConfirmed,
	}, f.Notifier.Kinds())
}

func TestCreateBookingSurvivesNotifierFailure(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	f.Notifier.Err = errors.New("smtp: connection refused")
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})

	b, err := f.BookingService().CreateBooking(context.Background(), createParams(testfixtures.Student, room, 2))
	require.NoError(t, err)
	assert.Equal(t, application.StatusConfirmed, b.Status)

	stored := f.Harness.Booking(t, b.ID)
	assert.Equal(t, "Confirmed", stored.Status)
	assert.Equal(t, "2", stored.Slots.String())
	assert.Equal(t, []application.NotificationKind{application.NotifyConfirmed}, f.Notifier.Kinds())
}

func TestCreateBookingValidation(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})

	_, err := svc.CreateBooking(context.Background(), application.CreateBookingParams{
		Principal: testfixtures.Student,
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{12},
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "slots")
	assert.Contains(t, vErr.FieldErrors, "purpose")

	_, err = svc.CreateBooking(context.Background(), createParams(testfixtures.Student, 9999, 1))
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestCreateBookingRejectsBlacklistedUser(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	_, err := f.Harness.Repos.Blacklist.UpsertEntry(context.Background(), persistence.BlacklistEntry{
		UserEmail:   testfixtures.StudentEmail,
		AddedAt:     testfixtures.ReferenceTime(),
		MissedCount: 3,
	})
	require.NoError(t, err)

	_, err = f.BookingService().CreateBooking(context.Background(), createParams(testfixtures.Student, room, 1))
	assert.ErrorIs(t, err, application.ErrBlacklisted)
}

func TestCreateBookingConflicts(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "existing", RoomID: room, Slots: []int{3, 4}})
	f.Harness.SeedLesson(t, room, testfixtures.ReferenceDate(), 8, 9)

	_, err := svc.CreateBooking(ctx, createParams(testfixtures.Staff, room, 2, 3, 4, 5))
	conflict := requireConflict(t, err)
	assert.Equal(t, "3,4", conflict.Slots.String())
	assert.Equal(t, []string{"existing"}, conflict.BookingIDs)

	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Staff, room, 9))
	conflict = requireConflict(t, err)
	assert.True(t, conflict.WithLesson)

	b, err := svc.CreateBooking(ctx, createParams(testfixtures.Staff, room, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, application.StatusConfirmed, b.Status)
}

func TestCreateBookingIgnoresLessonsWhenPolicyAllows(t *testing.T) {
	f := testfixtures.NewServiceFactory(t, testfixtures.WithPolicy(scheduler.Policy{BlockOnLessons: false}))
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedLesson(t, room, testfixtures.ReferenceDate(), 1)

	_, err := f.BookingService().CreateBooking(context.Background(), createParams(testfixtures.Student, room, 1))
	assert.NoError(t, err)
}

func TestBanDeclinesOverlappingBookings(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "confirmed", RoomID: room, Slots: []int{3, 4}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "pending", User: testfixtures.StaffEmail, RoomID: room, Slots: []int{2}, Status: "Pending"})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "elsewhere", RoomID: room, Slots: []int{7}})

	result, err := svc.Ban(ctx, application.BanParams{
		Principal: testfixtures.Admin,
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeclinedCount)
	assert.Equal(t, "Declined", f.Harness.Booking(t, "confirmed").Status)
	assert.Equal(t, "Declined", f.Harness.Booking(t, "pending").Status)
	assert.Equal(t, "Confirmed", f.Harness.Booking(t, "elsewhere").Status)

	ban := f.Harness.Booking(t, result.BanID)
	assert.Equal(t, "Banned", ban.Status)
	assert.Equal(t, "2,3", ban.Slots.String())
	assert.Equal(t, "Reserved by administrator", ban.Purpose)

	kinds := f.Notifier.Kinds()
	assert.Equal(t, application.NotifyBanPlaced, kinds[len(kinds)-1])
	assert.ElementsMatch(t,
		[]application.NotificationKind{application.NotifyBanned, application.NotifyBanned, application.NotifyBanPlaced},
		kinds)

	// The declined booking released slot 4, the ban still holds 3.
	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Student, room, 3))
	assert.Equal(t, "3", requireConflict(t, err).Slots.String())
	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Student, room, 4))
	assert.NoError(t, err)
}

func TestBanSingleConfirmedOverlap(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{3, 4}})

	result, err := f.BookingService().Ban(context.Background(), application.BanParams{
		Principal: testfixtures.Admin,
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{2, 3},
		Reason:    "exam",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeclinedCount)
	require.Len(t, result.Declined, 1)
	assert.Equal(t, testfixtures.StudentEmail, result.Declined[0].UserID)

	sent := f.Notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "exam", sent[0].Reason)
	assert.Equal(t, testfixtures.StudentEmail, sent[0].Recipient)
	assert.Equal(t, testfixtures.AdminEmail, sent[1].Recipient)
}

// failingCreates makes every booking insert fail.
type failingCreates struct {
	persistence.BookingRepository
	err error
}

func (r failingCreates) CreateBooking(context.Context, persistence.Booking) error { return r.err }

// failingInsertTx runs transactions whose booking inserts fail.
type failingInsertTx struct {
	inner persistence.TxManager
	err   error
}

func (tx failingInsertTx) WithTx(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	return tx.inner.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		repos.Bookings = failingCreates{BookingRepository: repos.Bookings, err: tx.err}
		return fn(ctx, repos)
	})
}

func TestBanRollsBackDeclinesWhenInsertFails(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{3, 4}})

	diskFull := errors.New("disk full")
	svc := application.NewBookingService(application.BookingServiceConfig{
		Repos:       f.Harness.Repos,
		Tx:          failingInsertTx{inner: f.Harness.Store, err: diskFull},
		Notifier:    f.Notifier,
		Policy:      f.Policy,
		Location:    testfixtures.Campus,
		IDGenerator: f.IDGenerator.NextFunc(),
		Now:         f.Clock.NowFunc(),
	})

	_, err := svc.Ban(ctx, application.BanParams{
		Principal: testfixtures.Admin,
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{2, 3},
	})
	require.ErrorIs(t, err, diskFull)

	assert.Equal(t, "Confirmed", f.Harness.Booking(t, "b1").Status)
	bans, err := f.Harness.Repos.Bookings.CountBookings(ctx, persistence.BookingFilter{
		RoomID:   room,
		Statuses: []string{"Banned"},
	})
	require.NoError(t, err)
	assert.Zero(t, bans)
	assert.Empty(t, f.Notifier.Sent())

	// b1 still holds its claims.
	_, err = f.BookingService().CreateBooking(ctx, createParams(testfixtures.Staff, room, 4))
	assert.Equal(t, "4", requireConflict(t, err).Slots.String())
}

func TestBanRejectsDuplicateAndOverlappingBans(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})

	params := application.BanParams{Principal: testfixtures.Admin, RoomID: room, Date: testfixtures.ReferenceDate(), Slots: []int{2, 3}}
	_, err := svc.Ban(ctx, params)
	require.NoError(t, err)

	_, err = svc.Ban(ctx, params)
	assert.ErrorIs(t, err, application.ErrDuplicateBan)

	params.Slots = []int{3, 5}
	_, err = svc.Ban(ctx, params)
	assert.Equal(t, "3", requireConflict(t, err).Slots.String())

	params.Principal = testfixtures.Staff
	_, err = svc.Ban(ctx, params)
	assert.ErrorIs(t, err, application.ErrUnauthorized)
}

func TestModifyBooking(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b2", RoomID: room, Slots: []int{5}})

	params := application.ModifyBookingParams{
		Principal: testfixtures.Admin,
		BookingID: "b1",
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{1, 2},
		Purpose:   "extended",
	}
	b, err := svc.ModifyBooking(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "1,2", b.Slots.String())
	assert.Equal(t, "extended", f.Harness.Booking(t, "b1").Purpose)

	params.Slots = []int{2, 5}
	_, err = svc.ModifyBooking(ctx, params)
	requireConflict(t, err)
	assert.Equal(t, "1,2", f.Harness.Booking(t, "b1").Slots.String())

	params.Slots = []int{1}
	params.Status = "Pending"
	_, err = svc.ModifyBooking(ctx, params)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	params.Principal = testfixtures.Student
	_, err = svc.ModifyBooking(ctx, params)
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	assert.Contains(t, f.Notifier.Kinds(), application.NotifyModified)
}

func TestModifyToDeclinedSkipsConflictCheck(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b2", RoomID: room, Slots: []int{5}})
	f.Harness.SeedLesson(t, room, testfixtures.ReferenceDate(), 7)

	b, err := svc.ModifyBooking(ctx, application.ModifyBookingParams{
		Principal: testfixtures.Admin,
		BookingID: "b1",
		RoomID:    room,
		Date:      testfixtures.ReferenceDate(),
		Slots:     []int{5, 7},
		Purpose:   "moved and declined",
		Status:    "Declined",
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusDeclined, b.Status)

	stored := f.Harness.Booking(t, "b1")
	assert.Equal(t, "Declined", stored.Status)
	assert.Equal(t, "5,7", stored.Slots.String())
	assert.Equal(t, "Confirmed", f.Harness.Booking(t, "b2").Status)

	// Declined bookings hold no slots, so slot 1 is free again.
	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Staff, room, 1))
	assert.NoError(t, err)
}

func TestCancelBooking(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{1}})

	assert.ErrorIs(t, svc.CancelBooking(ctx, testfixtures.Staff, "b1"), application.ErrUnauthorized)
	require.NoError(t, svc.CancelBooking(ctx, testfixtures.Student, "b1"))
	assert.Equal(t, "Declined", f.Harness.Booking(t, "b1").Status)
	assert.ErrorIs(t, svc.CancelBooking(ctx, testfixtures.Student, "b1"), application.ErrAlreadyProcessed)
	assert.ErrorIs(t, svc.CancelBooking(ctx, testfixtures.Student, "missing"), application.ErrNotFound)

	assert.Equal(t, []application.NotificationKind{application.NotifyCancelledByUser}, f.Notifier.Kinds())
}

func TestUpdateStatusApprovalRechecksConflicts(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{Access: application.AccessStaff})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "p1", User: testfixtures.StaffEmail, RoomID: room, Slots: []int{1, 2}, Status: "Pending"})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "p2", User: testfixtures.StaffEmail, RoomID: room, Slots: []int{2, 3}, Status: "Pending"})

	b, err := svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p1", Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusConfirmed, b.Status)

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p2", Status: "Confirmed"})
	assert.Equal(t, "2", requireConflict(t, err).Slots.String())
	assert.Equal(t, "Pending", f.Harness.Booking(t, "p2").Status)

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p2", Status: "Declined", Reason: "overlap"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p2", Status: "Confirmed"})
	assert.ErrorIs(t, err, application.ErrAlreadyProcessed)

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p1", Status: "Pending"})
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: "p1", Status: "Lost"})
	var vErr *application.ValidationError
	assert.ErrorAs(t, err, &vErr)

	sent := f.Notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, application.NotifyConfirmed, sent[0].Kind)
	assert.Equal(t, application.NotifyDeclined, sent[1].Kind)
	assert.Equal(t, "overlap", sent[1].Reason)
}

func TestLiftBanReleasesSlots(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})

	result, err := svc.Ban(ctx, application.BanParams{Principal: testfixtures.Admin, RoomID: room, Date: testfixtures.ReferenceDate(), Slots: []int{6}})
	require.NoError(t, err)
	f.Notifier.Reset()

	_, err = svc.UpdateStatus(ctx, application.UpdateStatusParams{Principal: testfixtures.Admin, BookingID: result.BanID, Status: "Declined"})
	require.NoError(t, err)
	assert.Empty(t, f.Notifier.Sent())

	_, err = svc.CreateBooking(ctx, createParams(testfixtures.Student, room, 6))
	assert.NoError(t, err)
}

func TestCheckInWindow(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	// Slot 2 starts at 10:00.
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{2, 3}})

	f.Clock.SetCampus(testfixtures.ReferenceDate(), 9, 49)
	_, err := svc.CheckIn(ctx, testfixtures.Student, "b1")
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "check_in")

	f.Clock.SetCampus(testfixtures.ReferenceDate(), 10, 11)
	_, err = svc.CheckIn(ctx, testfixtures.Student, "b1")
	require.ErrorAs(t, err, &vErr)

	_, err = svc.CheckIn(ctx, testfixtures.Staff, "b1")
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	f.Clock.SetCampus(testfixtures.ReferenceDate(), 10, 9)
	b, err := svc.CheckIn(ctx, testfixtures.Student, "b1")
	require.NoError(t, err)
	assert.Equal(t, application.StatusCompleted, b.Status)
	assert.Equal(t, "Completed", f.Harness.Booking(t, "b1").Status)

	_, err = svc.CheckIn(ctx, testfixtures.Student, "b1")
	assert.ErrorIs(t, err, application.ErrAlreadyProcessed)
}

func TestListUserBookingsOrdersByDateThenSlot(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{Name: "A101"})
	day := testfixtures.ReferenceDate()
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "late", RoomID: room, Date: day.AddDate(0, 0, 1), Slots: []int{0}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "afternoon", RoomID: room, Date: day, Slots: []int{7}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "morning", RoomID: room, Date: day, Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "other", User: testfixtures.StaffEmail, RoomID: room, Date: day, Slots: []int{4}})

	bookings, err := f.BookingService().ListUserBookings(context.Background(), testfixtures.Student)
	require.NoError(t, err)

	var ids []string
	for _, b := range bookings {
		ids = append(ids, b.ID)
		assert.Equal(t, "A101", b.RoomName)
	}
	assert.Equal(t, []string{"morning", "afternoon", "late"}, ids)

	_, err = f.BookingService().ListBookings(context.Background(), application.ListBookingsParams{Principal: testfixtures.Student})
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	all, err := f.BookingService().ListBookings(context.Background(), application.ListBookingsParams{Principal: testfixtures.Admin, Status: "confirmed"})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// Concurrent writers for the same slots must never both succeed.
func TestConcurrentCreatesKeepClaimsDisjoint(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.BookingService()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), createParams(testfixtures.Student, room, i%2+3, 4))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			var conflict *application.ConflictError
			assert.True(t, errors.As(err, &conflict), "unexpected error %v", err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)

	held, err := f.Harness.Repos.Bookings.ListBookings(context.Background(), persistence.BookingFilter{
		RoomID:   room,
		Statuses: persistence.ClaimStatuses,
	})
	require.NoError(t, err)
	var union slot.Set
	for _, b := range held {
		assert.False(t, union.Overlaps(b.Slots))
		union = union.Union(b.Slots)
	}
}

func TestGetBookingVisibility(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "b1", RoomID: room, Slots: []int{1}})
	svc := f.BookingService()

	_, err := svc.GetBooking(context.Background(), testfixtures.Staff, "b1")
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	b, err := svc.GetBooking(context.Background(), testfixtures.Admin, "b1")
	require.NoError(t, err)
	assert.Equal(t, time.March, b.Date.Month())
}
