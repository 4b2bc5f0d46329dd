package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/slot"
)

type lessonRepository struct {
	q execer
}

func (r lessonRepository) ListLessons(ctx context.Context, filter persistence.LessonFilter) ([]persistence.Lesson, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != 0 {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, formatDate(*filter.Date))
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*filter.DateFrom))
	}
	query := `SELECT id, room_id, date, slots FROM lessons`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date, room_id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var lessons []persistence.Lesson
	for rows.Next() {
		var (
			l           persistence.Lesson
			date, slots string
		)
		if err := rows.Scan(&l.ID, &l.RoomID, &date, &slots); err != nil {
			return nil, mapError(err)
		}
		if l.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if l.Slots, err = slot.Parse(slots); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, mapError(rows.Err())
}

func (r lessonRepository) InsertLesson(ctx context.Context, lesson persistence.Lesson) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO lessons (room_id, date, slots) VALUES (?, ?, ?)`,
		lesson.RoomID, formatDate(lesson.Date), lesson.Slots.String(),
	)
	return mapError(err)
}

func (r lessonRepository) UpdateLessonSlots(ctx context.Context, roomID int64, date time.Time, slots slot.Set) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE lessons SET slots = ? WHERE room_id = ? AND date = ?`,
		slots.String(), roomID, formatDate(date),
	)
	return expectRow(res, err)
}

func (r lessonRepository) DeleteLesson(ctx context.Context, roomID int64, date time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM lessons WHERE room_id = ? AND date = ?`,
		roomID, formatDate(date),
	)
	return expectRow(res, err)
}
