package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(db *sql.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func insertEvent(ctx context.Context, exec execer, e models.ReviewEvent) (int64, error) {
	res, err := exec.ExecContext(ctx, `
INSERT INTO review_log (item_id, deck_id, reviewed_at, quality, previous_interval, new_interval, previous_ease_factor, new_ease_factor)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, e.ItemID, e.DeckID, e.Timestamp, e.Quality, e.PreviousInterval, e.NewInterval, e.PreviousEaseFactor, e.NewEaseFactor)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Record applies one durable review in a single transaction: the rescheduled
// item, its log entry, the day's counters with the lifetime totals and, when
// set, the new streak. Nothing is written if any step fails.
func (r *reviewLogRepository) Record(ctx context.Context, rec models.ReviewRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("recording review: item_id=%d, quality=%d, day=%s", rec.Item.ID, rec.Event.Quality, rec.Day)

	var id int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateItem(ctx, tx, rec.Item); err != nil {
			log.Error("failed to update item: %v", err)
			return err
		}
		var err error
		if id, err = insertEvent(ctx, tx, rec.Event); err != nil {
			log.Error("failed to insert review event: %v", err)
			return err
		}
		if err := recordDaily(ctx, tx, rec.Day, rec.Correct); err != nil {
			log.Error("failed to update daily stats: %v", err)
			return err
		}
		if rec.Streak != nil {
			if err := saveStreak(ctx, tx, *rec.Streak); err != nil {
				log.Error("failed to save streak: %v", err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// List returns events oldest first.
func (r *reviewLogRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing review log: item_id=%d, deck_id=%d", filter.ItemID, filter.DeckID)

	q := sqlBuilder.Select(
		"id", "item_id", "deck_id", "reviewed_at", "quality",
		"previous_interval", "new_interval", "previous_ease_factor", "new_ease_factor",
	).From("review_log")
	if filter.ItemID != 0 {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemID})
	}
	if filter.DeckID != 0 {
		q = q.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if !filter.Since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"reviewed_at": filter.Since})
	}
	q = q.OrderBy("reviewed_at ASC", "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list review log: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.ReviewEvent
	for rows.Next() {
		var e models.ReviewEvent
		if err := rows.Scan(&e.ID, &e.ItemID, &e.DeckID, &e.Timestamp, &e.Quality,
			&e.PreviousInterval, &e.NewInterval, &e.PreviousEaseFactor, &e.NewEaseFactor); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
