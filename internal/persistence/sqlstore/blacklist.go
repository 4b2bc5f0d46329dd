package sqlstore

import (
	"context"
	"errors"

	"github.com/example/room-booking/internal/persistence"
)

type blacklistRepository struct {
	q execer
}

func (r blacklistRepository) GetEntry(ctx context.Context, email string) (persistence.BlacklistEntry, error) {
	var (
		entry   persistence.BlacklistEntry
		addedAt string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT user_email, added_at, missed_count FROM user_blacklist WHERE user_email = ?`, email,
	).Scan(&entry.UserEmail, &addedAt, &entry.MissedCount)
	if err != nil {
		return persistence.BlacklistEntry{}, mapError(err)
	}
	if entry.AddedAt, err = parseTimestamp(addedAt); err != nil {
		return persistence.BlacklistEntry{}, err
	}
	return entry, nil
}

func (r blacklistRepository) ListEntries(ctx context.Context) ([]persistence.BlacklistEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT user_email, added_at, missed_count FROM user_blacklist ORDER BY added_at, user_email`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []persistence.BlacklistEntry
	for rows.Next() {
		var (
			entry   persistence.BlacklistEntry
			addedAt string
		)
		if err := rows.Scan(&entry.UserEmail, &addedAt, &entry.MissedCount); err != nil {
			return nil, mapError(err)
		}
		if entry.AddedAt, err = parseTimestamp(addedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, mapError(rows.Err())
}

func (r blacklistRepository) UpsertEntry(ctx context.Context, entry persistence.BlacklistEntry) (bool, error) {
	_, err := r.GetEntry(ctx, entry.UserEmail)
	switch {
	case err == nil:
		_, err = r.q.ExecContext(ctx,
			`UPDATE user_blacklist SET added_at = ?, missed_count = ? WHERE user_email = ?`,
			formatTimestamp(entry.AddedAt), entry.MissedCount, entry.UserEmail,
		)
		return false, mapError(err)
	case errors.Is(err, persistence.ErrNotFound):
		_, err = r.q.ExecContext(ctx,
			`INSERT INTO user_blacklist (user_email, added_at, missed_count) VALUES (?, ?, ?)`,
			entry.UserEmail, formatTimestamp(entry.AddedAt), entry.MissedCount,
		)
		if err != nil {
			return false, mapError(err)
		}
		return true, nil
	default:
		return false, err
	}
}

func (r blacklistRepository) DeleteEntry(ctx context.Context, email string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM user_blacklist WHERE user_email = ?`, email)
	return expectRow(res, err)
}
