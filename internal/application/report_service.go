package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// ReportServiceConfig wires a ReportService.
type ReportServiceConfig struct {
	Repos       persistence.Repositories
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// ReportService collects and moderates room issue reports. Reports by
// administrators are published immediately; others wait for review.
type ReportService struct {
	repos       persistence.Repositories
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReportService constructs a report service.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "" }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ReportService{
		repos:       cfg.Repos,
		idGenerator: cfg.IDGenerator,
		now:         cfg.Now,
		logger:      defaultLogger(cfg.Logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// CreateReport stores a new report against a room the principal can see.
func (s *ReportService) CreateReport(ctx context.Context, params CreateReportParams) (report IssueReport, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateReport",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("report_id", report.ID, "review", report.Review).InfoContext(ctx, "report created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	info := strings.TrimSpace(params.Input.Info)
	vErr := &ValidationError{}
	if params.Input.RoomID <= 0 {
		vErr.add("room_id", "room is required")
	}
	if info == "" {
		vErr.add("info", "report text is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = visibleRoom(ctx, s.repos.Rooms, params.Principal, params.Input.RoomID); err != nil {
		return
	}

	review := ReviewUnreviewed
	if params.Principal.IsAdmin() {
		review = ReviewApproved
	}

	report = IssueReport{
		ID:        s.idGenerator(),
		RoomID:    params.Input.RoomID,
		UserID:    params.Principal.UserID,
		Info:      info,
		Review:    review,
		CreatedAt: s.now(),
	}
	err = mapRepoError(s.repos.Reports.CreateReport(ctx, persistence.IssueReport{
		ID:        report.ID,
		RoomID:    report.RoomID,
		UserEmail: report.UserID,
		Info:      report.Info,
		Reviewed:  string(report.Review),
		CreatedAt: report.CreatedAt,
	}))
	return
}

// ListReports returns reports for administrators, newest first. A zero
// roomID lists every room; an empty review lists every state.
func (s *ReportService) ListReports(ctx context.Context, principal Principal, roomID int64, review string) ([]IssueReport, error) {
	if s == nil {
		return nil, fmt.Errorf("ReportService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if review != "" {
		if _, ok := parseReviewState(review); !ok {
			vErr := &ValidationError{}
			vErr.add("review", "review state is invalid")
			return nil, vErr
		}
	}

	stored, err := s.repos.Reports.ListReports(ctx, roomID, review)
	if err != nil {
		return nil, mapRepoError(err)
	}
	reports := make([]IssueReport, 0, len(stored))
	for _, r := range stored {
		reports = append(reports, toReport(r))
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].CreatedAt.After(reports[j].CreatedAt) })
	return reports, nil
}

// UpdateReport edits the text or review state of a report for
// administrators.
func (s *ReportService) UpdateReport(ctx context.Context, params UpdateReportParams) (report IssueReport, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateReport",
		"principal_id", params.Principal.UserID,
		"report_id", params.ReportID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("review", report.Review).InfoContext(ctx, "report updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	stored, err := s.repos.Reports.GetReport(ctx, params.ReportID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := &ValidationError{}
	if params.Info != nil {
		if info := strings.TrimSpace(*params.Info); info == "" {
			vErr.add("info", "report text is required")
		} else {
			stored.Info = info
		}
	}
	if params.Review != nil {
		if state, ok := parseReviewState(*params.Review); !ok {
			vErr.add("review", "review state is invalid")
		} else {
			stored.Reviewed = string(state)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.repos.Reports.UpdateReport(ctx, stored); err != nil {
		err = mapRepoError(err)
		return
	}
	report = toReport(stored)
	return
}

// DeleteReport removes a report for administrators.
func (s *ReportService) DeleteReport(ctx context.Context, principal Principal, reportID string) error {
	if s == nil {
		return fmt.Errorf("ReportService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteReport", "principal_id", principal.UserID, "report_id", reportID)
	if err := s.repos.Reports.DeleteReport(ctx, reportID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete report", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "report deleted")
	return nil
}

func parseReviewState(raw string) (ReviewState, bool) {
	switch ReviewState(strings.TrimSpace(raw)) {
	case ReviewUnreviewed:
		return ReviewUnreviewed, true
	case ReviewApproved:
		return ReviewApproved, true
	default:
		return "", false
	}
}
