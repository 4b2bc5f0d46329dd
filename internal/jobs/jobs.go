// Package jobs runs the periodic background work: the missed-booking sweep
// and the lesson import.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/importer"
)

// ErrUnknownJob is returned by RunNow for a name that was never added.
var ErrUnknownJob = errors.New("jobs: unknown job")

// Job is one scheduled unit of work. An empty Spec leaves the job
// registered for RunNow but off the schedule.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler triggers jobs from cron expressions. A job is skipped while its
// previous run is still going, and no two jobs ever run at the same time.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu sync.Mutex // held for the duration of every run

	jobsMu sync.RWMutex
	jobs   map[string]Job

	baseMu sync.RWMutex
	base   context.Context
}

// New builds a Scheduler that evaluates specs in loc.
func New(loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		jobs:   make(map[string]Job),
		base:   context.Background(),
	}
}

// Add registers job. The spec is validated even when the scheduler has not
// started yet.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("jobs: name and run func are required")
	}
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("jobs: %q already registered", job.Name)
	}
	s.jobs[job.Name] = job

	if job.Spec == "" {
		s.logger.Info("job not scheduled", "job", job.Name)
		return nil
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { _ = s.run(s.context(), job) }); err != nil {
		delete(s.jobs, job.Name)
		return fmt.Errorf("jobs: schedule %q (%s): %w", job.Name, job.Spec, err)
	}
	s.logger.Info("job scheduled", "job", job.Name, "spec", job.Spec)
	return nil
}

// Start begins firing scheduled jobs. Cancelling ctx stops the scheduler and
// cancels runs in flight.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseMu.Lock()
	s.base = ctx
	s.baseMu.Unlock()

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the schedule and returns a context that is done once running
// jobs have returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunNow executes the named job synchronously, waiting for any other run to
// finish first.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.jobsMu.RLock()
	job, ok := s.jobs[name]
	s.jobsMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, job)
}

// Scheduled reports how many jobs are on the cron schedule.
func (s *Scheduler) Scheduled() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) context() context.Context {
	s.baseMu.RLock()
	defer s.baseMu.RUnlock()
	return s.base
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	logger := s.logger.With("job", job.Name)
	started := time.Now()
	err := job.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "job failed",
			"error", err,
			"error_kind", application.ErrorKind(err),
			"duration", time.Since(started),
		)
		return err
	}
	logger.InfoContext(ctx, "job finished", "duration", time.Since(started))
	return nil
}

// Sweeper is the blacklist sweep dependency.
type Sweeper interface {
	Sweep(ctx context.Context) (application.SweepResult, error)
}

// Importer is the lesson import dependency.
type Importer interface {
	Run(ctx context.Context) (importer.SyncResult, error)
}

// Job names.
const (
	SweepJob  = "missed-sweep"
	ImportJob = "lesson-import"
)

// NewSweepJob wraps the missed-booking sweep.
func NewSweepJob(s Sweeper, spec string) Job {
	return Job{
		Name:    SweepJob,
		Spec:    spec,
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := s.Sweep(ctx)
			return err
		},
	}
}

// NewImportJob wraps the crawl, convert and sync pipeline.
func NewImportJob(i Importer, spec string) Job {
	return Job{
		Name:    ImportJob,
		Spec:    spec,
		Timeout: 30 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := i.Run(ctx)
			return err
		},
	}
}

// cronLogger forwards cron's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
