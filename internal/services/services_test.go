package services_test

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/testutil"
)

var (
	now   = time.Date(2024, time.March, 10, 18, 30, 0, 0, time.UTC)
	today = models.NewDate(2024, time.March, 10)
	clock = services.Clock{Now: testutil.FixedClock(now), Location: time.UTC}
)

// fixedRand always picks the same slot and never reorders.
type fixedRand struct{ n int }

func (f fixedRand) Intn(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func (fixedRand) Shuffle(int, func(i, j int)) {}

func newItem(id, deckID int64, status models.Status) models.Item {
	st := models.NewMemoryState()
	st.Status = status
	if status == models.StatusReview || status == models.StatusLearning {
		st.NextReviewDate = today
		st.Interval = 1
	}
	return models.Item{ID: id, DeckID: deckID, Front: "front", Back: "back", Tags: []string{}, MemoryState: st}
}
