package testfixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
)

func TestServiceFactoryBuildsWiredBookingService(t *testing.T) {
	factory := NewServiceFactory(t)
	roomID := factory.Harness.SeedRoom(t, RoomFixture{})

	booking, err := factory.BookingService().CreateBooking(context.Background(), application.CreateBookingParams{
		Principal: Student,
		RoomID:    roomID,
		Date:      ReferenceDate(),
		Slots:     []int{1, 2},
		Purpose:   "revision",
	})
	require.NoError(t, err)

	assert.Equal(t, "bk-1", booking.ID)
	assert.True(t, booking.CreatedAt.Equal(factory.Clock.Now()))
	assert.Equal(t, []application.NotificationKind{application.NotifyConfirmed}, factory.Notifier.Kinds())
	assert.Equal(t, "Confirmed", factory.Harness.Booking(t, booking.ID).Status)
}
