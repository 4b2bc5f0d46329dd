package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/calendar"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/importer"
	"github.com/example/room-booking/internal/jobs"
	"github.com/example/room-booking/internal/notify"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlstore"
	"github.com/example/room-booking/internal/scheduler"
)

const smtpTimeout = 15 * time.Second

// app holds the wired server: storage, HTTP handler and background jobs.
type app struct {
	store   *sqlstore.Store
	handler http.Handler
	jobs    *jobs.Scheduler
}

func (a *app) Close() error { return a.store.Close() }

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	a, err := wire(ctx, cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg config.Config, store *sqlstore.Store, logger *slog.Logger) (*app, error) {
	repos := store.Repositories()
	now := time.Now

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	userService := application.NewUserService(repos.Users, logger)
	if err := userService.EnsureAdmin(ctx, cfg.BootstrapAdmin, "Administrator"); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	authService := application.NewAuthService(application.AuthServiceConfig{
		Users:    repos.Users,
		Notifier: notifier,
		Secret:   []byte(cfg.JWTSecret),
		CodeTTL:  cfg.CodeTTL,
		TokenTTL: cfg.TokenTTL,
		Now:      now,
		Logger:   logger,
	})
	bookingService := application.NewBookingService(application.BookingServiceConfig{
		Repos:       repos,
		Tx:          store,
		Notifier:    notifier,
		Policy:      scheduler.Policy{BlockOnLessons: cfg.LessonBlocking},
		Location:    cfg.Location,
		IDGenerator: bookingID,
		Now:         now,
		Logger:      logger,
	})
	blacklistService := application.NewBlacklistService(application.BlacklistServiceConfig{
		Repos:     repos,
		Tx:        store,
		Threshold: cfg.MissedThreshold,
		Window:    cfg.MissedWindow,
		Location:  cfg.Location,
		Now:       now,
		Logger:    logger,
	})
	roomService := application.NewRoomService(application.RoomServiceConfig{
		Repos:    repos,
		Location: cfg.Location,
		Now:      now,
		Logger:   logger,
	})
	reportService := application.NewReportService(application.ReportServiceConfig{
		Repos:       repos,
		IDGenerator: uuid.NewString,
		Now:         now,
		Logger:      logger,
	})

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, calendar.NewExporter(cfg.Location, now), logger),
		Blacklist:    httptransport.NewBlacklistHandler(blacklistService, logger),
		Reports:      httptransport.NewReportHandler(reportService, logger),
		Authenticate: httptransport.RequireAuth(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.Recoverer(logger),
			httptransport.RequestLogger(logger),
		},
	})

	runner := jobs.New(cfg.Location, logger)
	if err := runner.Add(jobs.NewSweepJob(blacklistService, cfg.SweepCron)); err != nil {
		return nil, err
	}
	if err := runner.Add(jobs.NewImportJob(newPipeline(cfg, store, logger), cfg.ImportCron)); err != nil {
		return nil, err
	}

	return &app{store: store, handler: handler, jobs: runner}, nil
}

// newNotifier sends mail when an SMTP relay is configured and otherwise
// writes rendered messages to the log.
func newNotifier(cfg config.Config, logger *slog.Logger) (application.Notifier, error) {
	if cfg.SMTP.Host == "" {
		renderer, err := notify.NewRenderer(cfg.Location)
		if err != nil {
			return nil, err
		}
		logger.Warn("BOOKING_SMTP_HOST is empty, notifications are logged only")
		return notify.NewLogNotifier(renderer, logger), nil
	}
	return notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  smtpTimeout,
	}, cfg.Location, logger)
}

func newPipeline(cfg config.Config, tx persistence.TxManager, logger *slog.Logger) *importer.Pipeline {
	return &importer.Pipeline{
		Crawler:   importer.Crawler{Command: cfg.CrawlerCommand},
		Retrier:   importer.NewRetrier(importer.RetryConfig{Attempts: cfg.CrawlerAttempts, Backoff: cfg.CrawlerBackoff}, logger),
		Converter: importer.NewConverter(cfg.Calendar(), logger),
		Syncer:    importer.NewSyncer(tx, logger),
		SourceDir: cfg.ImportDir,
		Output:    cfg.ImportOutput,
		Logger:    logger,
	}
}

// bookingID returns a time-ordered UUID so IDs sort by creation.
func bookingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
