package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/slot"
)

var campus = time.FixedZone("CST", 8*60*60)

func fixedNow() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestBuildOneEventPerConfirmedSlot(t *testing.T) {
	e := NewExporter(campus, fixedNow)
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	cal := e.Build([]application.Booking{
		{ID: "bk-1", RoomName: "Room 101", Date: date, Slots: slot.New(2, 3), Purpose: "seminar", Status: application.StatusConfirmed},
		{ID: "bk-2", RoomName: "Room 102", Date: date, Slots: slot.New(5), Status: application.StatusPending},
		{ID: "bk-3", RoomName: "Room 103", Date: date, Slots: slot.New(6), Status: application.StatusDeclined},
	})

	events := cal.Events()
	require.Len(t, events, 2)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 3, 4, 10, 0, 0, 0, campus)))
	assert.True(t, end.Equal(time.Date(2025, 3, 4, 10, 45, 0, 0, campus)))
	assert.Equal(t, "bk-1-2@room-booking", events[0].Id())
	assert.Equal(t, "bk-1-3@room-booking", events[1].Id())
}

func TestWriteSerializesCalendar(t *testing.T) {
	e := NewExporter(campus, fixedNow)
	var buf bytes.Buffer

	require.NoError(t, e.Write(&buf, []application.Booking{{
		ID:       "bk-1",
		RoomName: "Room 101",
		Date:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Slots:    slot.New(0),
		Purpose:  "seminar",
		Status:   application.StatusConfirmed,
	}}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "DTSTART:20250304T000000Z")
	assert.Contains(t, out, "DTEND:20250304T004500Z")
	assert.Contains(t, out, "LOCATION:Room 101")
	assert.Contains(t, out, "Purpose: seminar")
}

func TestWriteEmptyCalendar(t *testing.T) {
	e := NewExporter(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, nil))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
}
