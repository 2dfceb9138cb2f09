package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

type StatsRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.StatsRepository
	log   repository.ReviewLogRepository
	items repository.ItemRepository
	item  models.Item
}

func (s *StatsRepositorySuite) SetupTest() {
	ctx := context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewStatsRepository(s.db)
	s.log = sqlite.NewReviewLogRepository(s.db)
	s.items = sqlite.NewItemRepository(s.db)

	deckID, err := sqlite.NewDeckRepository(s.db).Insert(ctx, models.Deck{Name: "d", CreatedAt: created, UpdatedAt: created})
	s.Require().NoError(err)
	itemID, err := s.items.Insert(ctx, models.Item{DeckID: deckID, Front: "f", Back: "b", MemoryState: models.NewMemoryState(), CreatedAt: created, UpdatedAt: created})
	s.Require().NoError(err)
	it, err := s.items.Get(ctx, itemID)
	s.Require().NoError(err)
	s.item = *it
}

func (s *StatsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

// review builds a record for s.item rated q at the given time.
func (s *StatsRepositorySuite) review(q int, at time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		Item: s.item,
		Event: models.ReviewEvent{
			ItemID: s.item.ID, DeckID: s.item.DeckID, Quality: q, Timestamp: at,
			PreviousEaseFactor: 2.5, NewEaseFactor: 2.5, NewInterval: 1,
		},
		Day:     models.DateOf(at),
		Correct: q >= 3,
	}
}

func (s *StatsRepositorySuite) TestStreakStartsEmpty() {
	st, err := s.repo.Streak(context.Background())
	s.Require().NoError(err)

	s.Assert().Equal(models.StreakState{}, st)
}

func (s *StatsRepositorySuite) TestRecordSavesStreak() {
	ctx := context.Background()
	want := models.StreakState{CurrentStreak: 3, LongestStreak: 7, LastStudyDate: models.NewDate(2024, time.March, 10)}

	rec := s.review(4, created)
	rec.Streak = &want
	_, err := s.log.Record(ctx, rec)
	s.Require().NoError(err)

	got, err := s.repo.Streak(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(want, got)

	// A nil streak leaves the stored one alone.
	_, err = s.log.Record(ctx, s.review(4, created.Add(time.Hour)))
	s.Require().NoError(err)
	got, err = s.repo.Streak(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(want, got)
}

func (s *StatsRepositorySuite) TestRecordCountsDays() {
	ctx := context.Background()
	t1 := time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)

	for _, rec := range []models.ReviewRecord{s.review(5, t1), s.review(1, t2), s.review(3, t2.Add(time.Minute))} {
		_, err := s.log.Record(ctx, rec)
		s.Require().NoError(err)
	}

	totals, err := s.repo.Totals(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.ReviewTotals{TotalReviews: 3, TotalCorrect: 2}, totals)

	d1, d2 := models.DateOf(t1), models.DateOf(t2)
	all, err := s.repo.DailyStats(ctx, models.Date{}, models.Date{})
	s.Require().NoError(err)
	s.Assert().Equal([]models.DailyStat{
		{Day: d1, Reviews: 1, Correct: 1},
		{Day: d2, Reviews: 2, Correct: 1},
	}, all)

	onlyLast, err := s.repo.DailyStats(ctx, d2, d2)
	s.Require().NoError(err)
	s.Assert().Len(onlyLast, 1)
}

func (s *StatsRepositorySuite) TestRecordWritesItemState() {
	ctx := context.Background()
	rec := s.review(5, created)
	rec.Item.MemoryState = models.MemoryState{
		Repetitions: 3, EaseFactor: 2.6, Interval: 16,
		NextReviewDate: models.NewDate(2024, time.March, 17), Status: models.StatusReview,
	}

	id, err := s.log.Record(ctx, rec)
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	got, err := s.items.Get(ctx, s.item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(rec.Item.MemoryState, got.MemoryState)
}

func (s *StatsRepositorySuite) TestRecordRollsBackWhenLogInsertFails() {
	ctx := context.Background()
	before := s.item.MemoryState

	// quality is CHECKed to 1..5, so the log insert fails after the item update.
	rec := s.review(9, created)
	rec.Item.MemoryState = models.MemoryState{Repetitions: 3, EaseFactor: 2.6, Interval: 16, Status: models.StatusReview}
	rec.Streak = &models.StreakState{CurrentStreak: 1, LongestStreak: 1, LastStudyDate: rec.Day}

	_, err := s.log.Record(ctx, rec)
	s.Require().Error(err)

	got, err := s.items.Get(ctx, s.item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(before, got.MemoryState)

	events, err := s.log.List(ctx, models.ReviewFilter{ItemID: s.item.ID})
	s.Require().NoError(err)
	s.Assert().Empty(events)

	totals, err := s.repo.Totals(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.ReviewTotals{}, totals)

	days, err := s.repo.DailyStats(ctx, models.Date{}, models.Date{})
	s.Require().NoError(err)
	s.Assert().Empty(days)

	st, err := s.repo.Streak(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.StreakState{}, st)
}

func (s *StatsRepositorySuite) TestRecordMissingItem() {
	rec := s.review(4, created)
	rec.Item.ID = 404

	_, err := s.log.Record(context.Background(), rec)

	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *StatsRepositorySuite) TestReviewLogOrderAndFilter() {
	ctx := context.Background()
	for i, q := range []int{1, 4, 2} {
		_, err := s.log.Record(ctx, s.review(q, created.Add(time.Duration(i)*time.Hour)))
		s.Require().NoError(err)
	}

	events, err := s.log.List(ctx, models.ReviewFilter{ItemID: s.item.ID})
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Assert().Equal([]int{1, 4, 2}, []int{events[0].Quality, events[1].Quality, events[2].Quality})
	s.Assert().True(created.Equal(events[0].Timestamp))

	recent, err := s.log.List(ctx, models.ReviewFilter{Since: created.Add(time.Hour)})
	s.Require().NoError(err)
	s.Assert().Len(recent, 2)
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}
