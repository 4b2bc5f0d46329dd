package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/slot"
)

// NotificationKind selects the message template.
type NotificationKind string

const (
	NotifyConfirmed        NotificationKind = "Confirmed"
	NotifyPending          NotificationKind = "Pending"
	NotifyDeclined         NotificationKind = "Declined"
	NotifyModified         NotificationKind = "Modify"
	NotifyCancelledByUser  NotificationKind = "CancelByUser"
	NotifyBanned           NotificationKind = "Banned"
	NotifyBanPlaced        NotificationKind = "Ban"
	NotifyVerificationCode NotificationKind = "VerificationCode"
)

// Notification is one outbound message.
type Notification struct {
	Kind      NotificationKind
	Recipient string
	BookingID string
	RoomName  string
	Date      time.Time
	Slots     slot.Set
	Purpose   string
	Reason    string
	Code      string
}

// Notifier delivers notifications, typically by e-mail.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// notify delivers n and logs a NotificationError on failure. The caller's
// operation is never failed by a notification.
func notify(ctx context.Context, notifier Notifier, logger *slog.Logger, n Notification) {
	if notifier == nil || n.Recipient == "" {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		nErr := &NotificationError{Kind: n.Kind, Recipient: n.Recipient, Err: err}
		logger.WarnContext(ctx, "notification failed", "error", nErr, "error_kind", ErrorKind(nErr))
	}
}

func statusNotification(status Status) NotificationKind {
	switch status {
	case StatusConfirmed:
		return NotifyConfirmed
	case StatusPending:
		return NotifyPending
	default:
		return NotifyDeclined
	}
}
