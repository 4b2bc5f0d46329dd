package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/room-booking/internal/persistence"
)

// Plan is the set of writes that turns the stored lessons into a fresh
// schedule.
type Plan struct {
	Inserts []persistence.Lesson
	Updates []persistence.Lesson
	Deletes []Key
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff compares stored lessons with fresh by canonical slot string. Keys only
// in fresh are inserted, keys in both with different slots are updated and
// keys only in stored are deleted.
func Diff(stored []persistence.Lesson, fresh Schedule) Plan {
	existing := make(map[Key]string, len(stored))
	for _, l := range stored {
		existing[Key{RoomID: l.RoomID, Date: l.Date}] = l.Slots.String()
	}

	var plan Plan
	for _, k := range fresh.Keys() {
		slots := fresh[k]
		current, ok := existing[k]
		switch {
		case !ok:
			plan.Inserts = append(plan.Inserts, persistence.Lesson{RoomID: k.RoomID, Date: k.Date, Slots: slots})
		case current != slots.String():
			plan.Updates = append(plan.Updates, persistence.Lesson{RoomID: k.RoomID, Date: k.Date, Slots: slots})
		}
	}

	for k := range existing {
		if _, ok := fresh[k]; !ok {
			plan.Deletes = append(plan.Deletes, k)
		}
	}
	sortKeys(plan.Deletes)
	return plan
}

// SyncResult counts the writes of one reconciliation.
type SyncResult struct {
	Inserted int
	Updated  int
	Deleted  int
}

// Syncer reconciles the lessons table with a schedule in one transaction.
type Syncer struct {
	tx     persistence.TxManager
	logger *slog.Logger
}

// NewSyncer constructs a Syncer.
func NewSyncer(tx persistence.TxManager, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{tx: tx, logger: logger}
}

// Sync makes the stored lessons equal fresh. Nothing is written on error.
func (s *Syncer) Sync(ctx context.Context, fresh Schedule) (result SyncResult, err error) {
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		stored, err := repos.Lessons.ListLessons(ctx, persistence.LessonFilter{})
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		plan := Diff(stored, fresh)

		for _, l := range plan.Inserts {
			if err := repos.Lessons.InsertLesson(ctx, l); err != nil {
				return fmt.Errorf("insert lesson %d %s: %w", l.RoomID, l.Date.Format(dateLayout), err)
			}
		}
		for _, l := range plan.Updates {
			if err := repos.Lessons.UpdateLessonSlots(ctx, l.RoomID, l.Date, l.Slots); err != nil {
				return fmt.Errorf("update lesson %d %s: %w", l.RoomID, l.Date.Format(dateLayout), err)
			}
		}
		for _, k := range plan.Deletes {
			if err := repos.Lessons.DeleteLesson(ctx, k.RoomID, k.Date); err != nil {
				return fmt.Errorf("delete lesson %d %s: %w", k.RoomID, k.Date.Format(dateLayout), err)
			}
		}

		result = SyncResult{Inserted: len(plan.Inserts), Updated: len(plan.Updates), Deleted: len(plan.Deletes)}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "lesson sync failed", "error", err)
		return SyncResult{}, err
	}
	s.logger.InfoContext(ctx, "lesson sync completed",
		"inserted", result.Inserted,
		"updated", result.Updated,
		"deleted", result.Deleted,
	)
	return result, nil
}
