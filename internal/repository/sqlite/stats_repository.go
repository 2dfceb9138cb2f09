package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Streak(ctx context.Context) (models.StreakState, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var s models.StreakState
	err := r.db.QueryRowContext(ctx, `SELECT current_streak, longest_streak, last_study_date FROM progress WHERE id = 1`).
		Scan(&s.CurrentStreak, &s.LongestStreak, &s.LastStudyDate)
	if err != nil {
		log.Error("failed to load streak: %v", err)
	}
	return s, err
}

func saveStreak(ctx context.Context, exec execer, s models.StreakState) error {
	_, err := exec.ExecContext(ctx, `
UPDATE progress SET current_streak = ?, longest_streak = ?, last_study_date = ? WHERE id = 1
`, s.CurrentStreak, s.LongestStreak, s.LastStudyDate)
	return err
}

func (r *statsRepository) Totals(ctx context.Context) (models.ReviewTotals, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var t models.ReviewTotals
	err := r.db.QueryRowContext(ctx, `SELECT total_reviews, total_correct FROM progress WHERE id = 1`).
		Scan(&t.TotalReviews, &t.TotalCorrect)
	if err != nil {
		log.Error("failed to load totals: %v", err)
	}
	return t, err
}

// recordDaily bumps the day's counters and the lifetime totals.
func recordDaily(ctx context.Context, exec execer, day models.Date, correct bool) error {
	inc := 0
	if correct {
		inc = 1
	}
	if _, err := exec.ExecContext(ctx, `
INSERT INTO daily_stats (day, reviews, correct) VALUES (?, 1, ?)
ON CONFLICT(day) DO UPDATE SET reviews = reviews + 1, correct = correct + excluded.correct
`, day, inc); err != nil {
		return err
	}
	_, err := exec.ExecContext(ctx, `
UPDATE progress SET total_reviews = total_reviews + 1, total_correct = total_correct + ? WHERE id = 1
`, inc)
	return err
}

// DailyStats returns the days with activity in [from, to], oldest first.
// A zero bound leaves that side open.
func (r *statsRepository) DailyStats(ctx context.Context, from, to models.Date) ([]models.DailyStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	q := sqlBuilder.Select("day", "reviews", "correct").From("daily_stats").OrderBy("day ASC")
	if !from.IsZero() {
		q = q.Where(squirrel.GtOrEq{"day": from.String()})
	}
	if !to.IsZero() {
		q = q.Where(squirrel.LtOrEq{"day": to.String()})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query daily stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.DailyStat
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.Day, &s.Reviews, &s.Correct); err != nil {
			log.Error("failed to scan daily stat: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
