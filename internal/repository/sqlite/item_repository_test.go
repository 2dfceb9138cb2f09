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

type ItemRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	repo   repository.ItemRepository
	deckID int64
}

func (s *ItemRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewItemRepository(s.db)

	id, err := sqlite.NewDeckRepository(s.db).Insert(context.Background(), models.Deck{Name: "deck", CreatedAt: created, UpdatedAt: created})
	s.Require().NoError(err)
	s.deckID = id
}

func (s *ItemRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ItemRepositorySuite) newItem(front string, tags ...string) models.Item {
	return models.Item{
		DeckID:      s.deckID,
		Front:       front,
		Back:        front + " back",
		Tags:        tags,
		MemoryState: models.NewMemoryState(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func (s *ItemRepositorySuite) TestInsertAndGetRoundTrip() {
	ctx := context.Background()
	it := s.newItem("Paris", "geo", "eu")
	it.Hint = "city of light"
	it.Favorite = true

	id, err := s.repo.Insert(ctx, it)
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal("Paris", got.Front)
	s.Assert().Equal("Paris back", got.Back)
	s.Assert().Equal([]string{"geo", "eu"}, got.Tags)
	s.Assert().Equal("city of light", got.Hint)
	s.Assert().True(got.Favorite)
	s.Assert().Equal(models.StatusNew, got.Status)
	s.Assert().Equal(models.DefaultEaseFactor, got.EaseFactor)
	s.Assert().True(got.NextReviewDate.IsZero())
}

func (s *ItemRepositorySuite) TestUpdateMemoryState() {
	ctx := context.Background()
	id, err := s.repo.Insert(ctx, s.newItem("q"))
	s.Require().NoError(err)

	it, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	it.MemoryState = models.MemoryState{
		Repetitions:    2,
		EaseFactor:     2.36,
		Interval:       6,
		NextReviewDate: models.NewDate(2024, time.March, 16),
		Status:         models.StatusReview,
	}
	it.UpdatedAt = created.Add(time.Hour)
	s.Require().NoError(s.repo.Update(ctx, *it))

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(it.MemoryState, got.MemoryState)
	s.Assert().Empty(got.Tags)
}

func (s *ItemRepositorySuite) TestListFilters() {
	ctx := context.Background()
	a := s.newItem("a", "verbs")
	b := s.newItem("b", "nouns")
	b.Favorite = true
	c := s.newItem("c", "verbs", "irregular")
	c.Status = models.StatusSuspended
	_, err := s.repo.InsertBatch(ctx, []models.Item{a, b, c})
	s.Require().NoError(err)

	yes := true
	tests := []struct {
		name     string
		filter   models.ItemFilter
		expected []string
	}{
		{name: "all in creation order", filter: models.ItemFilter{}, expected: []string{"a", "b", "c"}},
		{name: "deck", filter: models.ItemFilter{DeckID: s.deckID}, expected: []string{"a", "b", "c"}},
		{name: "other deck", filter: models.ItemFilter{DeckID: s.deckID + 1}, expected: nil},
		{name: "status", filter: models.ItemFilter{Status: models.StatusSuspended}, expected: []string{"c"}},
		{name: "favorite", filter: models.ItemFilter{Favorite: &yes}, expected: []string{"b"}},
		{name: "tag", filter: models.ItemFilter{Tag: "verbs"}, expected: []string{"a", "c"}},
		{name: "limit and offset", filter: models.ItemFilter{Limit: 1, Offset: 1}, expected: []string{"b"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			items, err := s.repo.List(ctx, tt.filter)
			s.Require().NoError(err)

			var fronts []string
			for _, it := range items {
				fronts = append(fronts, it.Front)
			}
			s.Assert().Equal(tt.expected, fronts)
		})
	}

	n, err := s.repo.Count(ctx, models.ItemFilter{Tag: "verbs"})
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
}

func (s *ItemRepositorySuite) TestInsertBatchIsAtomic() {
	ctx := context.Background()
	bad := s.newItem("bad")
	bad.DeckID = 9999

	_, err := s.repo.InsertBatch(ctx, []models.Item{s.newItem("ok"), bad})
	s.Require().Error(err)

	n, err := s.repo.Count(ctx, models.ItemFilter{})
	s.Require().NoError(err)
	s.Assert().Zero(n, "failed batch leaves nothing behind")
}

func (s *ItemRepositorySuite) TestDelete() {
	ctx := context.Background()
	id, err := s.repo.Insert(ctx, s.newItem("x"))
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, id))
	s.Assert().ErrorIs(s.repo.Delete(ctx, id), sql.ErrNoRows)
}

func TestItemRepositorySuite(t *testing.T) {
	suite.Run(t, new(ItemRepositorySuite))
}
