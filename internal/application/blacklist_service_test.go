package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

func TestSweepBlacklistsAtThreshold(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	ctx := context.Background()
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	today := f.Clock.Today()

	// Two past no-shows and one today.
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "m1", RoomID: room, Date: today.AddDate(0, 0, -2), Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "m2", RoomID: room, Date: today.AddDate(0, 0, -1), Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "m3", RoomID: room, Date: today, Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "future", RoomID: room, Date: today.AddDate(0, 0, 1), Slots: []int{1}})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "staff", User: testfixtures.StaffEmail, RoomID: room, Date: today, Slots: []int{5}})

	svc := f.BlacklistService()
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Missed)
	assert.Equal(t, []string{testfixtures.StaffEmail, testfixtures.StudentEmail}, result.Users)
	assert.Equal(t, []string{testfixtures.StudentEmail}, result.Blacklisted)
	assert.Equal(t, "Confirmed", f.Harness.Booking(t, "future").Status)
	assert.Equal(t, "Missed", f.Harness.Booking(t, "m1").Status)

	entry, err := f.Harness.Repos.Blacklist.GetEntry(ctx, testfixtures.StudentEmail)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.MissedCount)

	_, err = f.BookingService().CreateBooking(ctx, createParams(testfixtures.Student, room, 9))
	assert.ErrorIs(t, err, application.ErrBlacklisted)

	// A fourth miss refreshes the same entry.
	f.Clock.Advance(24 * time.Hour)
	result, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Missed)

	entries, err := svc.List(ctx, testfixtures.Admin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].MissedCount)

	// Rerunning with nothing due changes nothing.
	result, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Missed)
	assert.Empty(t, result.Blacklisted)
}

func TestSweepIgnoresMissesOutsideWindow(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	room := f.Harness.SeedRoom(t, testfixtures.RoomFixture{})
	today := f.Clock.Today()

	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "old1", RoomID: room, Date: today.AddDate(0, 0, -45), Slots: []int{1}, Status: "Missed"})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "old2", RoomID: room, Date: today.AddDate(0, 0, -40), Slots: []int{1}, Status: "Missed"})
	f.Harness.SeedBooking(t, testfixtures.BookingFixture{ID: "now", RoomID: room, Date: today, Slots: []int{1}})

	result, err := f.BlacklistService().Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Missed)
	assert.Empty(t, result.Blacklisted)
}

func TestBlacklistResetRequiresAdmin(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	ctx := context.Background()
	svc := f.BlacklistService()

	assert.ErrorIs(t, svc.Reset(ctx, testfixtures.Admin, testfixtures.StudentEmail), application.ErrNotFound)

	_, err := f.Harness.Repos.Blacklist.UpsertEntry(ctx, blacklistEntry(testfixtures.StudentEmail))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Reset(ctx, testfixtures.Student, testfixtures.StudentEmail), application.ErrUnauthorized)
	_, err = svc.List(ctx, testfixtures.Student)
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	require.NoError(t, svc.Reset(ctx, testfixtures.Admin, testfixtures.StudentEmail))
	entries, err := svc.List(ctx, testfixtures.Admin)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func blacklistEntry(email string) persistence.BlacklistEntry {
	return persistence.BlacklistEntry{UserEmail: email, AddedAt: testfixtures.ReferenceTime(), MissedCount: 3}
}
