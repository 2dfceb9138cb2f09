package services

import (
	"context"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/srs"
)

// defaultStatsDays is the window of DailyStats when no range is given.
const defaultStatsDays = 30

// Leech is an item that keeps failing, with its failure count.
type Leech struct {
	models.Item
	Failures int `json:"failures"`
}

// StatsService handles statistics and reporting
type StatsService interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Leeches(ctx context.Context, deckID int64) ([]Leech, error)
	DailyStats(ctx context.Context, from, to models.Date) ([]models.DailyStat, error)
}

type statsService struct {
	itemRepo   repository.ItemRepository
	reviewRepo repository.ReviewLogRepository
	statsRepo  repository.StatsRepository
	clock      Clock
	dailyGoal  int
}

// NewStatsService creates a new StatsService. dailyGoal is the number of
// durable reviews per day the dashboard measures progress against.
func NewStatsService(itemRepo repository.ItemRepository, reviewRepo repository.ReviewLogRepository, statsRepo repository.StatsRepository, clock Clock, dailyGoal int) StatsService {
	if dailyGoal < 1 {
		dailyGoal = srs.DefaultDailyGoal
	}
	return &statsService{
		itemRepo:   itemRepo,
		reviewRepo: reviewRepo,
		statsRepo:  statsRepo,
		clock:      clock,
		dailyGoal:  dailyGoal,
	}
}

func (s *statsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building dashboard")

	today := s.clock.Today()

	streak, err := s.statsRepo.Streak(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	totals, err := s.statsRepo.Totals(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	days, err := s.statsRepo.DailyStats(ctx, today, today)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	items, err := s.itemRepo.List(ctx, models.ItemFilter{})
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	events, err := s.reviewRepo.List(ctx, models.ReviewFilter{})
	if err != nil {
		log.Error("failed to load review log: %v", err)
		return nil, errors.NewInternalError(err)
	}

	d := &models.Dashboard{
		Streak:     streak,
		Totals:     totals,
		Accuracy:   totals.Accuracy(),
		Today:      models.DailyStat{Day: today},
		DueCount:   srs.CountDue(items, 0, today),
		ItemCount:  len(items),
		LeechCount: len(srs.LeechItems(events, items)),
		DailyGoal:  s.dailyGoal,
	}
	if len(days) > 0 {
		d.Today = days[0]
	}
	d.GoalPercent, d.GoalMet = srs.GoalProgress(d.Today.Reviews, s.dailyGoal)
	return d, nil
}

// Leeches lists leech items, optionally limited to one deck, in creation order.
func (s *statsService) Leeches(ctx context.Context, deckID int64) ([]Leech, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing leeches: deck_id=%d", deckID)

	items, err := s.itemRepo.List(ctx, models.ItemFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	events, err := s.reviewRepo.List(ctx, models.ReviewFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to load review log: %v", err)
		return nil, errors.NewInternalError(err)
	}

	failures := srs.FailureCounts(events)
	leeches := srs.LeechItems(events, items)
	out := make([]Leech, 0, len(leeches))
	for _, it := range leeches {
		out = append(out, Leech{Item: it, Failures: failures[it.ID]})
	}
	return out, nil
}

// DailyStats returns per-day counters in [from, to]. Without bounds it
// covers the last 30 days up to today.
func (s *statsService) DailyStats(ctx context.Context, from, to models.Date) ([]models.DailyStat, error) {
	log := logger.FromContext(ctx)

	if to.IsZero() {
		to = s.clock.Today()
	}
	if from.IsZero() {
		from = to.AddDays(-(defaultStatsDays - 1))
	}
	if from.After(to) {
		return nil, errors.NewValidationError("from", "must not be after to")
	}

	stats, err := s.statsRepo.DailyStats(ctx, from, to)
	if err != nil {
		log.Error("failed to load daily stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}
