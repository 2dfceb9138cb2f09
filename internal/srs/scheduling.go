package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// Quality is the user-facing recall rating, 1 (forgot) to 5 (easy).
type Quality int

const (
	QualityForgot Quality = iota + 1
	QualityWrong
	QualityHard
	QualityGood
	QualityEasy
)

// internalQuality maps the 1..5 rating onto the 0..5 SM-2 scale.
// The lowest rating skips 1 so it is penalized harder than a linear map would.
var internalQuality = [...]int{QualityForgot: 0, QualityWrong: 2, QualityHard: 3, QualityGood: 4, QualityEasy: 5}

func (q Quality) IsValid() bool {
	return q >= QualityForgot && q <= QualityEasy
}

// Internal returns the SM-2 quality (0..5). q must be valid.
func (q Quality) Internal() int {
	return internalQuality[q]
}

// Passed reports whether the rating counts as a successful recall.
func (q Quality) Passed() bool {
	return q.IsValid() && q.Internal() >= 3
}

// Compute returns the memory state after a review of the given quality.
// today is the caller's local calendar date; nothing here reads the clock.
func Compute(quality Quality, repetitions int, easeFactor float64, interval int, today models.Date) (models.MemoryState, error) {
	if !quality.IsValid() {
		return models.MemoryState{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, int(quality))
	}

	q := float64(5 - quality.Internal())
	ef := easeFactor + (0.1 - q*(0.08+q*0.02))
	if ef < models.MinEaseFactor {
		ef = models.MinEaseFactor
	}

	next := models.MemoryState{EaseFactor: math.Round(ef*100) / 100}
	if quality.Passed() {
		switch repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Ceil(float64(interval) * ef))
		}
		next.Repetitions = repetitions + 1
		next.Status = models.StatusReview
	} else {
		next.Repetitions = 0
		next.Interval = 1
		next.Status = models.StatusLearning
	}
	next.NextReviewDate = today.AddDays(next.Interval)
	return next, nil
}

// Review applies a rating to item and returns the updated copy together with
// the log entry describing the transition. The input item is not modified.
func Review(item models.Item, quality Quality, today models.Date, at time.Time) (models.Item, models.ReviewEvent, error) {
	if item.Status == models.StatusSuspended {
		return item, models.ReviewEvent{}, fmt.Errorf("%w: item %d", ErrItemSuspended, item.ID)
	}

	next, err := Compute(quality, item.Repetitions, item.EaseFactor, item.Interval, today)
	if err != nil {
		return item, models.ReviewEvent{}, err
	}

	event := models.ReviewEvent{
		ItemID:             item.ID,
		DeckID:             item.DeckID,
		Timestamp:          at,
		Quality:            int(quality),
		PreviousInterval:   item.Interval,
		NewInterval:        next.Interval,
		PreviousEaseFactor: item.EaseFactor,
		NewEaseFactor:      next.EaseFactor,
	}

	updated := item
	updated.Tags = append([]string(nil), item.Tags...)
	updated.MemoryState = next
	updated.UpdatedAt = at
	return updated, event, nil
}
