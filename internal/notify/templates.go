package notify

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/slot"
)

var subjects = map[application.NotificationKind]string{
	application.NotifyConfirmed:        "Room Booking Confirmation",
	application.NotifyPending:          "Room Booking Pending Approval",
	application.NotifyBanPlaced:        "Prohibited Time Period Set Successfully",
	application.NotifyBanned:           "Room Booking Cancelled Due to Time Restriction",
	application.NotifyDeclined:         "Room Booking Declined",
	application.NotifyModified:         "Room Booking Modification Notice",
	application.NotifyCancelledByUser:  "Room Booking Cancellation Confirmation",
	application.NotifyVerificationCode: "Your Verification Code",
}

const details = `Booking Details:
Room: {{.RoomName}}
Date: {{.Date}}
Time: {{.Time}}
Purpose: {{.Purpose}}
`

var bodies = map[application.NotificationKind]string{
	application.NotifyConfirmed: `Dear User,

Your room booking has been successfully confirmed.

` + details + `{{if .CalendarURL}}
Add to your calendar: {{.CalendarURL}}
{{end}}`,
	application.NotifyPending: `Dear User,

Your room booking request has been received and is waiting for administrator approval.

` + details,
	application.NotifyDeclined: `Dear User,

We regret to inform you that your room booking has been declined.

` + details + `{{if .Reason}}
Reason: {{.Reason}}
{{end}}`,
	application.NotifyModified: `Dear User,

An administrator has modified your room booking. The booking now reads:

` + details,
	application.NotifyCancelledByUser: `Dear User,

Your room booking has been cancelled as requested.

` + details,
	application.NotifyBanned: `Dear User,

Your room booking has been cancelled because the administrator reserved this time period.

` + details + `Affected time: {{.Time}}
Reason: {{.Reason}}
`,
	application.NotifyBanPlaced: `Dear Administrator,

The prohibited time period has been set.

Room: {{.RoomName}}
Date: {{.Date}}
Time: {{.Time}}
Reason: {{.Reason}}
`,
	application.NotifyVerificationCode: `Your verification code is: {{.Code}}
`,
}

// view is the data every template renders from.
type view struct {
	RoomName    string
	Date        string
	Time        string
	Purpose     string
	Reason      string
	Code        string
	CalendarURL string
}

// Renderer turns notifications into subject and plain-text body.
type Renderer struct {
	templates map[application.NotificationKind]*template.Template
	loc       *time.Location
}

// NewRenderer parses the built-in templates. loc is the campus zone used for
// calendar links.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &Renderer{templates: make(map[application.NotificationKind]*template.Template, len(bodies)), loc: loc}
	for kind, body := range bodies {
		t, err := template.New(string(kind)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

// Render returns the subject and body for n.
func (r *Renderer) Render(n application.Notification) (subject, body string, err error) {
	t, ok := r.templates[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %q", n.Kind)
	}
	subject = subjects[n.Kind]

	v := view{
		RoomName: n.RoomName,
		Time:     timeLabels(n.Slots),
		Purpose:  n.Purpose,
		Reason:   n.Reason,
		Code:     n.Code,
	}
	if !n.Date.IsZero() {
		v.Date = n.Date.Format("2006-01-02")
	}
	if n.Kind == application.NotifyConfirmed {
		v.CalendarURL = r.calendarURL(n)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return subject, buf.String(), nil
}

// calendarURL builds an Outlook compose link spanning the booked slots.
func (r *Renderer) calendarURL(n application.Notification) string {
	first, ok := n.Slots.First()
	if !ok || n.Date.IsZero() {
		return ""
	}
	start, _ := slot.StartOn(n.Date, first, r.loc)
	end, _ := slot.EndOn(n.Date, n.Slots[len(n.Slots)-1], r.loc)

	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("startdt", start.Format("2006-01-02T15:04:05"))
	q.Set("enddt", end.Format("2006-01-02T15:04:05"))
	q.Set("subject", n.RoomName)
	q.Set("body", n.Purpose)
	q.Set("location", n.RoomName)
	return "https://outlook.office.com/calendar/0/deeplink/compose?" + q.Encode()
}

func timeLabels(s slot.Set) string {
	labels := make([]string, 0, len(s))
	for _, i := range s {
		labels = append(labels, slot.Label(i))
	}
	return strings.Join(labels, ", ")
}
