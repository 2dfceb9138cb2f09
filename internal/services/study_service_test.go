package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/srs"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

type studyMocks struct {
	items   *mocks.MockItemRepository
	decks   *mocks.MockDeckRepository
	reviews *mocks.MockReviewLogRepository
	stats   *mocks.MockStatsRepository
}

func newStudyService(t *testing.T, newCap int) (services.StudyService, studyMocks) {
	return newStudyServiceWith(t, clock, services.StudySettings{NewItemCap: newCap, SpeedRoundTime: 30 * time.Second})
}

func newStudyServiceWith(t *testing.T, c services.Clock, settings services.StudySettings) (services.StudyService, studyMocks) {
	m := studyMocks{
		items:   new(mocks.MockItemRepository),
		decks:   new(mocks.MockDeckRepository),
		reviews: new(mocks.MockReviewLogRepository),
		stats:   new(mocks.MockStatsRepository),
	}
	t.Cleanup(func() {
		m.items.AssertExpectations(t)
		m.decks.AssertExpectations(t)
		m.reviews.AssertExpectations(t)
		m.stats.AssertExpectations(t)
	})
	return services.NewStudyService(m.items, m.decks, m.reviews, m.stats, c, fixedRand{}, settings), m
}

// expectDurable expects one durable review of it, stored in a single Record
// call carrying streakAfter (nil when the streak does not change).
func expectDurable(m studyMocks, it models.Item, correct bool, streak models.StreakState, streakAfter *models.StreakState) {
	m.items.On("Get", mock.Anything, it.ID).Return(&it, nil).Once()
	m.stats.On("Streak", mock.Anything).Return(streak, nil).Once()
	m.reviews.On("Record", mock.Anything, mock.MatchedBy(func(r models.ReviewRecord) bool {
		return r.Item.ID == it.ID && r.Event.ItemID == it.ID && r.Day == today && r.Correct == correct &&
			assert.ObjectsAreEqual(streakAfter, r.Streak)
	})).Return(int64(1), nil).Once()
}

func TestStudyService_StartSession_DueOrderAndCap(t *testing.T) {
	svc, m := newStudyService(t, 1)
	items := []models.Item{
		newItem(1, 1, models.StatusNew),
		newItem(2, 1, models.StatusNew),
		newItem(3, 1, models.StatusReview),
		newItem(4, 1, models.StatusSuspended),
	}
	m.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
	m.items.On("List", mock.Anything, models.ItemFilter{DeckID: 1}).Return(items, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{DeckID: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, 2, view.Total, "one review item plus one capped new item")
	require.NotNil(t, view.Current)
	assert.Equal(t, int64(3), view.Current.Item.ID)
	assert.False(t, view.Done)
}

func TestStudyService_StartSession_UnknownDeck(t *testing.T) {
	svc, m := newStudyService(t, 20)
	m.decks.On("Get", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)

	_, err := svc.StartSession(context.Background(), services.StudyRequest{DeckID: 9})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestStudyService_Rate_RecordsDurableReview(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	expectDurable(m, it, true, models.StreakState{}, &models.StreakState{CurrentStreak: 1, LongestStreak: 1, LastStudyDate: today})

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	res, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityHard))
	require.NoError(t, err)

	assert.True(t, res.Outcome.Durable)
	require.NotNil(t, res.Item)
	assert.Equal(t, models.StatusReview, res.Item.Status)
	assert.Equal(t, 1, res.Item.Interval)
	assert.True(t, res.Item.NextReviewDate.Equal(today.AddDays(1)))
	assert.True(t, res.Next.Done)
}

func TestStudyService_Rate_ReStudyIsNotRecorded(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	// Already studied today: the streak is left alone.
	expectDurable(m, it, false, models.StreakState{CurrentStreak: 2, LongestStreak: 2, LastStudyDate: today}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	first, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityForgot))
	require.NoError(t, err)
	assert.True(t, first.Outcome.Requeued)
	require.NotNil(t, first.Next.Current)
	assert.True(t, first.Next.Current.ReStudy)
	assert.Equal(t, models.StatusLearning, first.Next.Current.Item.Status, "re-study copy carries the new schedule")

	second, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityGood))
	require.NoError(t, err)
	assert.False(t, second.Outcome.Durable)
	assert.Nil(t, second.Item)
	assert.True(t, second.Next.Done)
}

func TestStudyService_Rate_CramTouchesNothing(t *testing.T) {
	svc, m := newStudyService(t, 20)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{newItem(1, 1, models.StatusReview)}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{Cram: true})
	require.NoError(t, err)

	res, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityForgot))
	require.NoError(t, err)
	assert.False(t, res.Outcome.Durable)
	assert.False(t, res.Outcome.Requeued)
}

func TestStudyService_Rate_Errors(t *testing.T) {
	svc, m := newStudyService(t, 20)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)
	assert.True(t, view.Done)

	tests := []struct {
		name         string
		sessionID    string
		quality      int
		expectedCode string
	}{
		{name: "unknown session", sessionID: "nope", quality: 3, expectedCode: apperrors.ErrCodeNotFound},
		{name: "quality too high", sessionID: view.SessionID, quality: 6, expectedCode: apperrors.ErrCodeValidation},
		{name: "quality zero", sessionID: view.SessionID, quality: 0, expectedCode: apperrors.ErrCodeValidation},
		{name: "finished session", sessionID: view.SessionID, quality: 3, expectedCode: apperrors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Rate(context.Background(), tt.sessionID, tt.quality)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.expectedCode, appErr.Code)
		})
	}
}

func TestStudyService_Rate_SuspendedMidSession(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	suspended := it
	suspended.Status = models.StatusSuspended
	m.items.On("Get", mock.Anything, int64(1)).Return(&suspended, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), view.SessionID, 4)
	assert.ErrorIs(t, err, srs.ErrItemSuspended)

	again, err := svc.GetSession(context.Background(), view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Position, "a failed rating does not advance the session")
}

func TestStudyService_Summary(t *testing.T) {
	svc, m := newStudyService(t, 20)
	a, b := newItem(1, 1, models.StatusNew), newItem(2, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{a, b}, nil)
	expectDurable(m, a, true, models.StreakState{LastStudyDate: today, CurrentStreak: 1, LongestStreak: 1}, nil)
	expectDurable(m, b, true, models.StreakState{LastStudyDate: today, CurrentStreak: 1, LongestStreak: 1}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)
	for _, q := range []int{5, 3} {
		_, err := svc.Rate(context.Background(), view.SessionID, q)
		require.NoError(t, err)
	}

	sum, err := svc.Summary(context.Background(), view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Reviewed)
	assert.Equal(t, 2, sum.Correct)
	assert.InDelta(t, 4.0, sum.AverageRating, 1e-9)
	assert.Equal(t, 0, sum.ElapsedSeconds)
}

func TestStudyService_Rate_RetryAfterFailedRecordSchedulesOnce(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusReview)
	it.Repetitions = 2
	it.Interval = 6
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	// The failed attempt rolled back, so the store still holds the pre-review state.
	m.items.On("Get", mock.Anything, int64(1)).Return(&it, nil).Twice()
	m.stats.On("Streak", mock.Anything).Return(models.StreakState{CurrentStreak: 1, LongestStreak: 1, LastStudyDate: today}, nil).Twice()

	var recorded []models.ReviewRecord
	capture := func(args mock.Arguments) { recorded = append(recorded, args.Get(1).(models.ReviewRecord)) }
	m.reviews.On("Record", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("disk I/O error")).Run(capture).Once()
	m.reviews.On("Record", mock.Anything, mock.Anything).Return(int64(7), nil).Run(capture).Once()

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), view.SessionID, int(srs.QualityEasy))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)

	again, err := svc.GetSession(context.Background(), view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Position, "a failed write does not advance the session")

	res, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityEasy))
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, 3, res.Item.Repetitions)
	assert.Equal(t, 16, res.Item.Interval)

	require.Len(t, recorded, 2)
	for _, rec := range recorded {
		assert.Equal(t, 3, rec.Item.Repetitions)
		assert.Equal(t, 16, rec.Item.Interval)
		assert.Equal(t, 6, rec.Event.PreviousInterval)
		assert.Nil(t, rec.Streak)
	}
	assert.True(t, res.Next.Done)
}

func TestStudyService_Rate_RecordedItemGone(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	m.items.On("Get", mock.Anything, int64(1)).Return(&it, nil).Once()
	m.stats.On("Streak", mock.Anything).Return(models.StreakState{}, nil).Once()
	m.reviews.On("Record", mock.Anything, mock.Anything).Return(int64(0), sql.ErrNoRows).Once()

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), view.SessionID, 4)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestStudyService_Reversed_RecordsItemOnce(t *testing.T) {
	svc, m := newStudyService(t, 20)
	it := newItem(1, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{it}, nil)
	expectDurable(m, it, true, models.StreakState{CurrentStreak: 1, LongestStreak: 1, LastStudyDate: today}, nil)

	reversed := true
	view, err := svc.StartSession(context.Background(), services.StudyRequest{Reversed: &reversed})
	require.NoError(t, err)
	assert.True(t, view.Reversed)
	assert.Equal(t, 2, view.Total)

	first, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityGood))
	require.NoError(t, err)
	assert.True(t, first.Outcome.Durable)
	require.NotNil(t, first.Next.Current)
	assert.True(t, first.Next.Current.Reversed)
	assert.Equal(t, models.StatusReview, first.Next.Current.Item.Status, "the twin shows the rescheduled item")

	second, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityGood))
	require.NoError(t, err)
	assert.False(t, second.Outcome.Durable)
	assert.Nil(t, second.Item)
	assert.True(t, second.Next.Done)
}

func TestStudyService_Reversed_DefaultFromSettings(t *testing.T) {
	svc, m := newStudyServiceWith(t, clock, services.StudySettings{NewItemCap: 20, Reversed: true})
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{newItem(1, 1, models.StatusNew), newItem(2, 1, models.StatusNew)}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)
	assert.True(t, view.Reversed)
	assert.Equal(t, 4, view.Total)

	off := false
	view, err = svc.StartSession(context.Background(), services.StudyRequest{Reversed: &off})
	require.NoError(t, err)
	assert.False(t, view.Reversed)
	assert.Equal(t, 2, view.Total)
}

func TestStudyService_SpeedRound_LateRatingCountsAsForgot(t *testing.T) {
	cur := now
	c := services.Clock{Now: func() time.Time { return cur }, Location: time.UTC}
	svc, m := newStudyServiceWith(t, c, services.StudySettings{NewItemCap: 20, SpeedRoundTime: 30 * time.Second})
	a, b := newItem(1, 1, models.StatusNew), newItem(2, 1, models.StatusNew)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{a, b}, nil)
	streak := models.StreakState{CurrentStreak: 1, LongestStreak: 1, LastStudyDate: today}
	expectDurable(m, a, true, streak, nil)
	expectDurable(m, b, false, streak, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{Speed: true})
	require.NoError(t, err)
	assert.Equal(t, 30, view.TimeLimitSeconds)
	require.NotNil(t, view.Deadline)
	assert.True(t, now.Add(30*time.Second).Equal(*view.Deadline))

	cur = now.Add(10 * time.Second)
	onTime, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityGood))
	require.NoError(t, err)
	assert.False(t, onTime.TimedOut)
	assert.Equal(t, srs.QualityGood, onTime.Outcome.Quality)
	require.NotNil(t, onTime.Next.Deadline)
	assert.True(t, cur.Add(30*time.Second).Equal(*onTime.Next.Deadline), "the timer restarts for the next card")

	cur = cur.Add(31 * time.Second)
	late, err := svc.Rate(context.Background(), view.SessionID, int(srs.QualityEasy))
	require.NoError(t, err)
	assert.True(t, late.TimedOut)
	assert.Equal(t, srs.QualityForgot, late.Outcome.Quality)
	assert.True(t, late.Outcome.Requeued)
	require.NotNil(t, late.Item)
	assert.Equal(t, models.StatusLearning, late.Item.Status)
}

func TestStudyService_NormalSessionHasNoTimeLimit(t *testing.T) {
	svc, m := newStudyService(t, 20)
	m.items.On("List", mock.Anything, models.ItemFilter{}).Return([]models.Item{newItem(1, 1, models.StatusNew)}, nil)

	view, err := svc.StartSession(context.Background(), services.StudyRequest{})
	require.NoError(t, err)

	assert.Zero(t, view.TimeLimitSeconds)
	assert.Nil(t, view.Deadline)
}
