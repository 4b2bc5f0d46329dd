package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/example/room-booking/internal/application"
)

// Crawl defaults.
const (
	DefaultAttempts = 5
	DefaultBackoff  = 10 * time.Second
)

// RetryConfig configures the crawl retry loop. Delays are fixed.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// Retrier runs an operation until it succeeds or attempts run out.
type Retrier struct {
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewRetrier creates a retrier, filling zero config fields with defaults.
func NewRetrier(config RetryConfig, logger *slog.Logger) *Retrier {
	if config.Attempts <= 0 {
		config.Attempts = DefaultAttempts
	}
	if config.Backoff < 0 {
		config.Backoff = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{config: config, sleep: sleepContext, logger: logger}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to Attempts times. The final failure is wrapped in an
// *application.TransientError naming op.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.Attempts; attempt++ {
		if attempt > 1 {
			if err := r.sleep(ctx, r.config.Backoff); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		r.logger.WarnContext(ctx, "attempt failed", "op", op, "attempt", attempt, "max_attempts", r.config.Attempts, "error", lastErr)
	}
	return &application.TransientError{
		Op:  op,
		Err: fmt.Errorf("failed after %d attempts: %w", r.config.Attempts, lastErr),
	}
}

// Crawler runs the external scraper that fills the schedule directory.
type Crawler struct {
	Command []string
	Dir     string
	Env     []string
}

// Enabled reports whether a crawl command is configured.
func (c Crawler) Enabled() bool { return len(c.Command) > 0 }

// Run executes the crawler once. A non-zero exit is an error carrying the
// command's stderr.
func (c Crawler) Run(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("crawler: %w: %s", err, msg)
		}
		return fmt.Errorf("crawler: %w", err)
	}
	return nil
}
