package srs

import "github.com/vytor/flashdeck/internal/models"

// LeechThreshold is the number of failed reviews (quality <= 2) after which
// an item is a leech. Failures are counted over the whole history.
const LeechThreshold = 8

func isFailure(e models.ReviewEvent) bool {
	return e.Quality <= int(QualityWrong)
}

// FailureCounts returns the number of failed reviews per item.
func FailureCounts(log []models.ReviewEvent) map[int64]int {
	counts := make(map[int64]int)
	for _, e := range log {
		if isFailure(e) {
			counts[e.ItemID]++
		}
	}
	return counts
}

// LeechItems returns the items of items that are leeches according to log,
// in collection order.
func LeechItems(log []models.ReviewEvent, items []models.Item) []models.Item {
	counts := FailureCounts(log)
	var out []models.Item
	for _, it := range items {
		if counts[it.ID] >= LeechThreshold {
			out = append(out, it)
		}
	}
	return out
}

// IsLeech is the single-item form of LeechItems.
func IsLeech(log []models.ReviewEvent, itemID int64) bool {
	failures := 0
	for _, e := range log {
		if e.ItemID == itemID && isFailure(e) {
			failures++
			if failures >= LeechThreshold {
				return true
			}
		}
	}
	return false
}
