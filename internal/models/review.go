package models

import "time"

// ReviewEvent is an append-only log entry written once per durable review.
type ReviewEvent struct {
	ID                 int64     `json:"id"`
	ItemID             int64     `json:"item_id"`
	DeckID             int64     `json:"deck_id"`
	Timestamp          time.Time `json:"timestamp"`
	Quality            int       `json:"quality"`
	PreviousInterval   int       `json:"previous_interval"`
	NewInterval        int       `json:"new_interval"`
	PreviousEaseFactor float64   `json:"previous_ease_factor"`
	NewEaseFactor      float64   `json:"new_ease_factor"`
}

// ReviewRecord is everything one durable review writes. Streak is nil when
// the review leaves the streak unchanged.
type ReviewRecord struct {
	Item    Item
	Event   ReviewEvent
	Day     Date
	Correct bool
	Streak  *StreakState
}

type ReviewFilter struct {
	ItemID int64
	DeckID int64
	Since  time.Time
	Limit  int
}

// StreakState tracks consecutive study days.
type StreakState struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	LastStudyDate Date `json:"last_study_date"`
}

// DailyStat aggregates durable reviews for one calendar day.
type DailyStat struct {
	Day     Date `json:"day"`
	Reviews int  `json:"reviews"`
	Correct int  `json:"correct"`
}

type ReviewTotals struct {
	TotalReviews int `json:"total_reviews"`
	TotalCorrect int `json:"total_correct"`
}

// Accuracy returns the share of correct reviews as a percentage.
func (t ReviewTotals) Accuracy() float64 {
	if t.TotalReviews == 0 {
		return 0
	}
	return 100 * float64(t.TotalCorrect) / float64(t.TotalReviews)
}

type Dashboard struct {
	Streak     StreakState  `json:"streak"`
	Totals     ReviewTotals `json:"totals"`
	Accuracy   float64      `json:"accuracy"`
	Today      DailyStat    `json:"today"`
	DueCount   int          `json:"due_count"`
	ItemCount  int          `json:"item_count"`
	LeechCount int          `json:"leech_count"`
	// DailyGoal is the target number of durable reviews per day.
	DailyGoal   int  `json:"daily_goal"`
	GoalPercent int  `json:"goal_percent"`
	GoalMet     bool `json:"goal_met"`
}
