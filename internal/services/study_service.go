package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/srs"
)

// StudyRequest starts a session over one deck, or all decks when DeckID is 0.
type StudyRequest struct {
	DeckID int64 `json:"deck_id"`
	Cram   bool  `json:"cram"`
	// Reversed overrides the configured default when set.
	Reversed *bool `json:"reversed,omitempty"`
	// Speed limits the time per card; a rating given after the limit counts
	// as forgot.
	Speed bool `json:"speed"`
}

// StudySettings are the defaults applied to every session.
type StudySettings struct {
	// NewItemCap limits new items per session.
	NewItemCap int
	Reversed   bool
	// SpeedRoundTime is the per-card limit of speed rounds.
	SpeedRoundTime time.Duration
}

// StudyView is the state of a session as shown to the learner.
type StudyView struct {
	SessionID string     `json:"session_id"`
	DeckID    int64      `json:"deck_id"`
	Cram      bool       `json:"cram"`
	Reversed  bool       `json:"reversed"`
	Position  int        `json:"position"`
	Total     int        `json:"total"`
	Remaining int        `json:"remaining"`
	Current   *srs.Entry `json:"current,omitempty"`
	Done      bool       `json:"done"`
	// Set for speed rounds only.
	TimeLimitSeconds int        `json:"time_limit_seconds,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

// RateResult reports what a rating did. Item is the rescheduled item when
// the rating was durable.
type RateResult struct {
	Outcome srs.Outcome  `json:"outcome"`
	Item    *models.Item `json:"item,omitempty"`
	// TimedOut is set when a speed round rating arrived too late and was
	// recorded as forgot.
	TimedOut bool      `json:"timed_out,omitempty"`
	Next     StudyView `json:"next"`
}

type StudySummary struct {
	srs.Summary
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// StudyService runs study and cram sessions and records durable reviews
type StudyService interface {
	StartSession(ctx context.Context, req StudyRequest) (*StudyView, error)
	GetSession(ctx context.Context, id string) (*StudyView, error)
	Rate(ctx context.Context, id string, quality int) (*RateResult, error)
	Summary(ctx context.Context, id string) (*StudySummary, error)
}

type studySession struct {
	mu        sync.Mutex
	deckID    int64
	session   *srs.Session
	startedAt time.Time
	reversed  bool
	timeLimit time.Duration
	// shownAt is when the current entry became current.
	shownAt time.Time
}

type studyService struct {
	itemRepo   repository.ItemRepository
	deckRepo   repository.DeckRepository
	reviewRepo repository.ReviewLogRepository
	statsRepo  repository.StatsRepository
	clock      Clock
	rng        srs.Rand
	settings   StudySettings
	sessions   *sessionStore[*studySession]
}

// NewStudyService creates a new StudyService
func NewStudyService(
	itemRepo repository.ItemRepository,
	deckRepo repository.DeckRepository,
	reviewRepo repository.ReviewLogRepository,
	statsRepo repository.StatsRepository,
	clock Clock,
	rng srs.Rand,
	settings StudySettings,
) StudyService {
	return &studyService{
		itemRepo:   itemRepo,
		deckRepo:   deckRepo,
		reviewRepo: reviewRepo,
		statsRepo:  statsRepo,
		clock:      clock,
		rng:        rng,
		settings:   settings,
		sessions:   newSessionStore[*studySession](),
	}
}

func (s *studyService) StartSession(ctx context.Context, req StudyRequest) (*StudyView, error) {
	log := logger.FromContext(ctx)
	reversed := s.settings.Reversed
	if req.Reversed != nil {
		reversed = *req.Reversed
	}
	log.Debug("starting study session: deck_id=%d, cram=%t, reversed=%t, speed=%t", req.DeckID, req.Cram, reversed, req.Speed)

	if req.DeckID != 0 {
		if _, err := s.deckRepo.Get(ctx, req.DeckID); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NewNotFoundError("deck", req.DeckID)
			}
			log.Error("failed to get deck: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}

	items, err := s.itemRepo.List(ctx, models.ItemFilter{DeckID: req.DeckID})
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var queue []models.Item
	if req.Cram {
		queue = srs.CramItems(items, req.DeckID, s.rng)
	} else {
		queue = srs.DueItems(items, req.DeckID, s.settings.NewItemCap, s.clock.Today())
	}

	sess := &studySession{
		deckID:    req.DeckID,
		startedAt: s.clock.Now(),
		reversed:  reversed,
	}
	if reversed {
		sess.session = srs.NewReversedSession(queue, req.Cram, s.rng)
	} else {
		sess.session = srs.NewSession(queue, req.Cram)
	}
	if req.Speed {
		sess.timeLimit = s.settings.SpeedRoundTime
	}
	sess.shownAt = sess.startedAt
	id := s.sessions.add(sess, sess.startedAt)
	log.Info("study session %s started with %d entries", id, sess.session.Len())

	view := sess.view(id)
	return &view, nil
}

func (st *studySession) view(id string) StudyView {
	v := StudyView{
		SessionID: id,
		DeckID:    st.deckID,
		Cram:      st.session.Cram(),
		Reversed:  st.reversed,
		Position:  st.session.Position(),
		Total:     st.session.Len(),
		Remaining: st.session.Remaining(),
		Done:      st.session.Done(),
	}
	if e, ok := st.session.Current(); ok {
		v.Current = &e
	}
	if st.timeLimit > 0 {
		v.TimeLimitSeconds = int(st.timeLimit.Seconds())
		if !v.Done {
			deadline := st.shownAt.Add(st.timeLimit)
			v.Deadline = &deadline
		}
	}
	return v
}

func (s *studyService) lookup(id string) (*studySession, error) {
	sess, ok := s.sessions.get(id)
	if !ok {
		return nil, errors.NewNotFoundError("study session", id)
	}
	return sess, nil
}

func (s *studyService) GetSession(ctx context.Context, id string) (*StudyView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	view := sess.view(id)
	return &view, nil
}

// Rate grades the current entry. The first rating of an item in a normal
// session reschedules it, appends to the review log and updates daily stats,
// totals and the streak in one transaction; the session only advances once
// that has been stored. In a speed round a rating given after the time limit
// counts as forgot.
func (s *studyService) Rate(ctx context.Context, id string, quality int) (*RateResult, error) {
	log := logger.FromContext(ctx).WithField("session", id)

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	q := srs.Quality(quality)
	if !q.IsValid() {
		return nil, errors.FromCore(srs.ErrInvalidQuality)
	}
	entry, ok := sess.session.Current()
	if !ok {
		return nil, errors.FromCore(srs.ErrNoSessionItem)
	}

	now := s.clock.Now()
	timedOut := sess.timeLimit > 0 && now.Sub(sess.shownAt) > sess.timeLimit
	if timedOut {
		log.Debug("item %d answered after %s, counting as forgot", entry.Item.ID, now.Sub(sess.shownAt))
		q = srs.QualityForgot
	}

	var updated *models.Item
	if sess.session.Durable(entry) {
		updated, err = s.record(ctx, entry.Item.ID, q)
		if err != nil {
			return nil, err
		}
	}

	out, err := sess.session.Rate(q, s.rng)
	if err != nil {
		return nil, errors.FromCore(err)
	}
	if updated != nil {
		sess.session.Replace(*updated)
	}
	sess.shownAt = now
	log.Debug("rated item %d: quality=%d, durable=%t, requeued=%t", entry.Item.ID, int(q), out.Durable, out.Requeued)

	return &RateResult{Outcome: out, Item: updated, TimedOut: timedOut, Next: sess.view(id)}, nil
}

// record persists one durable review. The item, its log entry, the daily
// counters and the streak are written together or not at all, so a failed
// attempt can be retried without scheduling the item twice.
func (s *studyService) record(ctx context.Context, itemID int64, q srs.Quality) (*models.Item, error) {
	log := logger.FromContext(ctx)

	it, err := s.itemRepo.Get(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("item", itemID)
		}
		log.Error("failed to get item: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.clock.Now()
	today := s.clock.Today()
	updated, event, err := srs.Review(*it, q, today, now.UTC())
	if err != nil {
		return nil, errors.FromCore(err)
	}

	streak, err := s.statsRepo.Streak(ctx)
	if err != nil {
		log.Error("failed to load streak: %v", err)
		return nil, errors.NewInternalError(err)
	}
	rec := models.ReviewRecord{Item: updated, Event: event, Day: today, Correct: q.Passed()}
	if next := srs.UpdateStreak(streak, today); next != streak {
		rec.Streak = &next
	}

	if _, err := s.reviewRepo.Record(ctx, rec); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("item", itemID)
		}
		log.Error("failed to record review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rec.Streak != nil {
		log.Info("streak is now %d days", rec.Streak.CurrentStreak)
	}

	log.Debug("item %d rescheduled: interval=%d, next=%s", updated.ID, updated.Interval, updated.NextReviewDate)
	return &updated, nil
}

func (s *studyService) Summary(ctx context.Context, id string) (*StudySummary, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return &StudySummary{
		Summary:        sess.session.Summary(),
		ElapsedSeconds: int(s.clock.Now().Sub(sess.startedAt).Seconds()),
	}, nil
}
