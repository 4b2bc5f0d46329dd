package notify

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/application"
)

// LogNotifier writes rendered notifications to a logger instead of sending
// them. It backs local development and the dry-run mode.
type LogNotifier struct {
	renderer *Renderer
	logger   *slog.Logger
}

var _ application.Notifier = (*LogNotifier)(nil)

// NewLogNotifier builds a LogNotifier using renderer.
func NewLogNotifier(renderer *Renderer, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{renderer: renderer, logger: logger.With("component", "log_notifier")}
}

// Notify logs the rendered message.
func (l *LogNotifier) Notify(ctx context.Context, n application.Notification) error {
	subject, body, err := l.renderer.Render(n)
	if err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"recipient", n.Recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}
