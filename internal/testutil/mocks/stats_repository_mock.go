package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Streak(ctx context.Context) (models.StreakState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StreakState), args.Error(1)
}

func (m *MockStatsRepository) Totals(ctx context.Context) (models.ReviewTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ReviewTotals), args.Error(1)
}

func (m *MockStatsRepository) DailyStats(ctx context.Context, from, to models.Date) ([]models.DailyStat, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyStat), args.Error(1)
}
