package srs

import (
	"sort"

	"github.com/vytor/flashdeck/internal/models"
)

// DefaultNewItemCap is the number of new items served per session when the
// caller has no setting of its own.
const DefaultNewItemCap = 20

// Rand is the randomness the core needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// inDeck keeps non-suspended items of deckID; deckID 0 selects every deck.
func inDeck(items []models.Item, deckID int64) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if deckID != 0 && it.DeckID != deckID {
			continue
		}
		if it.Status == models.StatusSuspended {
			continue
		}
		out = append(out, it)
	}
	return out
}

func isOverdue(it models.Item, today models.Date) bool {
	return it.Status == models.StatusReview && !it.NextReviewDate.IsZero() && !it.NextReviewDate.After(today)
}

func byNextReview(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NextReviewDate.Before(items[j].NextReviewDate)
	})
}

// DueItems returns the items to present in a study session: overdue review
// items (earliest first), then learning items (earliest first, undated first),
// then at most newItemCap new items in collection order.
func DueItems(items []models.Item, deckID int64, newItemCap int, today models.Date) []models.Item {
	if newItemCap < 0 {
		newItemCap = 0
	}

	var overdue, learning, fresh []models.Item
	for _, it := range inDeck(items, deckID) {
		switch it.Status {
		case models.StatusReview:
			if isOverdue(it, today) {
				overdue = append(overdue, it)
			}
		case models.StatusLearning:
			learning = append(learning, it)
		case models.StatusNew:
			if len(fresh) < newItemCap {
				fresh = append(fresh, it)
			}
		}
	}
	byNextReview(overdue)
	byNextReview(learning)

	out := make([]models.Item, 0, len(overdue)+len(learning)+len(fresh))
	out = append(out, overdue...)
	out = append(out, learning...)
	return append(out, fresh...)
}

// CramItems returns every non-suspended item in random order, ignoring the schedule.
func CramItems(items []models.Item, deckID int64, rng Rand) []models.Item {
	out := inDeck(items, deckID)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// CountDue is the badge count: overdue review items, learning items and all
// new items. The new-item cap is deliberately not applied so the badge shows
// the full backlog.
func CountDue(items []models.Item, deckID int64, today models.Date) int {
	n := 0
	for _, it := range inDeck(items, deckID) {
		switch it.Status {
		case models.StatusNew, models.StatusLearning:
			n++
		case models.StatusReview:
			if isOverdue(it, today) {
				n++
			}
		}
	}
	return n
}
