package srs

import (
	"math"

	"github.com/vytor/flashdeck/internal/models"
)

// DefaultDailyGoal is the number of durable reviews per day aimed for when
// the caller has no setting of its own.
const DefaultDailyGoal = 20

// UpdateStreak records study activity on today. Calling it again on the same
// day changes nothing; a gap of exactly one day extends the streak and any
// other gap restarts it at 1.
func UpdateStreak(state models.StreakState, today models.Date) models.StreakState {
	next := state
	switch {
	case state.LastStudyDate.IsZero():
		next.CurrentStreak = 1
	case state.LastStudyDate.Equal(today):
	case today.DaysSince(state.LastStudyDate) == 1:
		next.CurrentStreak = state.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}
	next.LastStudyDate = today
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	return next
}

// GoalProgress reports how far reviews is towards goal as a whole percentage
// capped at 100. A goal below 1 counts as DefaultDailyGoal.
func GoalProgress(reviews, goal int) (percent int, met bool) {
	if goal < 1 {
		goal = DefaultDailyGoal
	}
	percent = int(math.Round(100 * float64(reviews) / float64(goal)))
	if percent > 100 {
		percent = 100
	}
	return percent, reviews >= goal
}
