// Package calendar renders bookings as iCalendar documents.
package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/slot"
)

const (
	productID = "-//Room Booking//Reservation Calendar//EN"
	summary   = "Room Booking"
)

// ContentType is the media type of an exported calendar.
const ContentType = "text/calendar; charset=utf-8"

// Exporter turns Confirmed bookings into VEVENTs, one per booked period.
type Exporter struct {
	loc *time.Location
	now func() time.Time
}

// NewExporter builds an Exporter that interprets slot times in loc.
func NewExporter(loc *time.Location, now func() time.Time) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Exporter{loc: loc, now: now}
}

// Build returns a calendar holding the Confirmed bookings. Other statuses are
// skipped.
func (e *Exporter) Build(bookings []application.Booking) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	for _, b := range bookings {
		if b.Status != application.StatusConfirmed {
			continue
		}
		for _, index := range b.Slots {
			start, ok := slot.StartOn(b.Date, index, e.loc)
			if !ok {
				continue
			}
			end, _ := slot.EndOn(b.Date, index, e.loc)

			event := cal.AddEvent(fmt.Sprintf("%s-%d@room-booking", b.ID, index))
			event.SetDtStampTime(stamp)
			event.SetStartAt(start)
			event.SetEndAt(end)
			event.SetSummary(summary)
			event.SetDescription("Purpose: " + b.Purpose)
			event.SetLocation(b.RoomName)
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return cal
}

// Write serializes the calendar for bookings to w.
func (e *Exporter) Write(w io.Writer, bookings []application.Booking) error {
	if _, err := io.WriteString(w, e.Build(bookings).Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}
