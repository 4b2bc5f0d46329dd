package sqlstore

import (
	"context"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

const reportColumns = `id, room_id, user_email, info, reviewed, created_at`

type reportRepository struct {
	q execer
}

func (r reportRepository) CreateReport(ctx context.Context, report persistence.IssueReport) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO room_issue_reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.RoomID, report.UserEmail, report.Info, report.Reviewed,
		formatTimestamp(report.CreatedAt),
	)
	return mapError(err)
}

func (r reportRepository) GetReport(ctx context.Context, id string) (persistence.IssueReport, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM room_issue_reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if err != nil {
		return persistence.IssueReport{}, mapError(err)
	}
	return report, nil
}

func (r reportRepository) ListReports(ctx context.Context, roomID int64, reviewed string) ([]persistence.IssueReport, error) {
	var (
		clauses []string
		args    []any
	)
	if roomID != 0 {
		clauses = append(clauses, "room_id = ?")
		args = append(args, roomID)
	}
	if reviewed != "" {
		clauses = append(clauses, "reviewed = ?")
		args = append(args, reviewed)
	}
	query := `SELECT ` + reportColumns + ` FROM room_issue_reports`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reports []persistence.IssueReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, mapError(err)
		}
		reports = append(reports, report)
	}
	return reports, mapError(rows.Err())
}

func (r reportRepository) UpdateReport(ctx context.Context, report persistence.IssueReport) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE room_issue_reports SET info = ?, reviewed = ? WHERE id = ?`,
		report.Info, report.Reviewed, report.ID,
	)
	return expectRow(res, err)
}

func (r reportRepository) DeleteReport(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM room_issue_reports WHERE id = ?`, id)
	return expectRow(res, err)
}

func scanReport(s scanner) (persistence.IssueReport, error) {
	var (
		report    persistence.IssueReport
		createdAt string
		err       error
	)
	if err = s.Scan(&report.ID, &report.RoomID, &report.UserEmail, &report.Info, &report.Reviewed, &createdAt); err != nil {
		return persistence.IssueReport{}, err
	}
	if report.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.IssueReport{}, err
	}
	return report, nil
}
