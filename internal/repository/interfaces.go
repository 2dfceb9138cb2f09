package repository

import (
	"context"

	"github.com/vytor/flashdeck/internal/models"
)

// Get methods return sql.ErrNoRows when the row does not exist.

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id int64) error
}

// ItemRepository handles item data access
type ItemRepository interface {
	Get(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	Count(ctx context.Context, filter models.ItemFilter) (int, error)
	Insert(ctx context.Context, item models.Item) (int64, error)
	InsertBatch(ctx context.Context, items []models.Item) ([]int64, error)
	Update(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id int64) error
}

// ReviewLogRepository stores the append-only review log
type ReviewLogRepository interface {
	// Record applies a durable review atomically and returns the log entry id.
	Record(ctx context.Context, rec models.ReviewRecord) (int64, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewEvent, error)
}

// StatsRepository handles streak, totals and per-day counters
type StatsRepository interface {
	Streak(ctx context.Context) (models.StreakState, error)
	Totals(ctx context.Context) (models.ReviewTotals, error)
	DailyStats(ctx context.Context, from, to models.Date) ([]models.DailyStat, error)
}
