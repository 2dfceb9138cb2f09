package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"math"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/quiz"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/srs"
)

type QuizRequest struct {
	DeckID int64                 `json:"deck_id"`
	Count  int                   `json:"count"`
	Types  []models.QuestionType `json:"types"`
}

// QuestionView hides the answer key until the question is answered.
type QuestionView struct {
	Index     int                 `json:"index"`
	Type      models.QuestionType `json:"type"`
	ItemID    int64               `json:"item_id"`
	Prompt    string              `json:"prompt"`
	Options   []string            `json:"options,omitempty"`
	Statement string              `json:"statement,omitempty"`
	Answer    *AnswerResult       `json:"answer,omitempty"`
}

type AnswerResult struct {
	Given         string  `json:"given"`
	Correct       bool    `json:"correct"`
	Similarity    float64 `json:"similarity"`
	CorrectAnswer string  `json:"correct_answer"`
	IsTrue        *bool   `json:"is_true,omitempty"`
}

type QuizView struct {
	QuizID    string         `json:"quiz_id"`
	DeckID    int64          `json:"deck_id"`
	Questions []QuestionView `json:"questions"`
}

type QuizResults struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	// Percent is correct over answered questions, rounded.
	Percent int `json:"percent"`
}

type MatchRequest struct {
	DeckID int64 `json:"deck_id"`
}

// MatchCard is one entry of a match column, addressed by Position.
type MatchCard struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
	Matched  bool   `json:"matched"`
}

type MatchView struct {
	MatchID        string      `json:"match_id"`
	DeckID         int64       `json:"deck_id"`
	Fronts         []MatchCard `json:"fronts"`
	Backs          []MatchCard `json:"backs"`
	Pairs          int         `json:"pairs"`
	Matched        int         `json:"matched"`
	Errors         int         `json:"errors"`
	Done           bool        `json:"done"`
	ElapsedSeconds int         `json:"elapsed_seconds"`
}

// PairResult reports one pairing attempt.
type PairResult struct {
	Correct bool      `json:"correct"`
	ItemID  int64     `json:"item_id,omitempty"`
	Match   MatchView `json:"match"`
}

// QuizService builds quizzes and match games and grades answers
type QuizService interface {
	StartQuiz(ctx context.Context, req QuizRequest) (*QuizView, error)
	GetQuiz(ctx context.Context, id string) (*QuizView, error)
	Answer(ctx context.Context, id string, index int, answer string) (*AnswerResult, error)
	Results(ctx context.Context, id string) (*QuizResults, error)
	StartMatch(ctx context.Context, req MatchRequest) (*MatchView, error)
	GetMatch(ctx context.Context, id string) (*MatchView, error)
	Pair(ctx context.Context, id string, front, back int) (*PairResult, error)
}

type quizSession struct {
	mu        sync.Mutex
	deckID    int64
	questions []models.QuizQuestion
	answers   []*AnswerResult
}

type matchGame struct {
	mu         sync.Mutex
	deckID     int64
	match      *quiz.Match
	startedAt  time.Time
	finishedAt time.Time
}

type quizService struct {
	itemRepo     repository.ItemRepository
	deckRepo     repository.DeckRepository
	clock        Clock
	rng          srs.Rand
	defaultCount int
	sessions     *sessionStore[*quizSession]
	matches      *sessionStore[*matchGame]
}

// NewQuizService creates a new QuizService. defaultCount applies when a
// request does not ask for a number of questions.
func NewQuizService(itemRepo repository.ItemRepository, deckRepo repository.DeckRepository, clock Clock, rng srs.Rand, defaultCount int) QuizService {
	return &quizService{
		itemRepo:     itemRepo,
		deckRepo:     deckRepo,
		clock:        clock,
		rng:          rng,
		defaultCount: defaultCount,
		sessions:     newSessionStore[*quizSession](),
		matches:      newSessionStore[*matchGame](),
	}
}

func (s *quizService) StartQuiz(ctx context.Context, req QuizRequest) (*QuizView, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting quiz: deck_id=%d, count=%d, types=%v", req.DeckID, req.Count, req.Types)

	items, err := s.deckItems(ctx, req.DeckID)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = s.defaultCount
	}
	questions, err := quiz.Generate(items, count, req.Types, s.rng)
	if err != nil {
		return nil, errors.FromCore(err)
	}

	qs := &quizSession{
		deckID:    req.DeckID,
		questions: questions,
		answers:   make([]*AnswerResult, len(questions)),
	}
	id := s.sessions.add(qs, s.clock.Now())
	log.Info("quiz %s started with %d questions", id, len(questions))

	view := qs.view(id)
	return &view, nil
}

// deckItems lists the items of deckID, or of every deck when it is 0.
func (s *quizService) deckItems(ctx context.Context, deckID int64) ([]models.Item, error) {
	log := logger.FromContext(ctx)

	if deckID != 0 {
		if _, err := s.deckRepo.Get(ctx, deckID); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NewNotFoundError("deck", deckID)
			}
			log.Error("failed to get deck: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}

	items, err := s.itemRepo.List(ctx, models.ItemFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (qs *quizSession) view(id string) QuizView {
	v := QuizView{QuizID: id, DeckID: qs.deckID, Questions: make([]QuestionView, len(qs.questions))}
	for i, q := range qs.questions {
		v.Questions[i] = QuestionView{
			Index:     i,
			Type:      q.Type,
			ItemID:    q.ItemID,
			Prompt:    q.Prompt,
			Options:   q.Options,
			Statement: q.Statement,
			Answer:    qs.answers[i],
		}
	}
	return v
}

func (s *quizService) lookup(id string) (*quizSession, error) {
	qs, ok := s.sessions.get(id)
	if !ok {
		return nil, errors.NewNotFoundError("quiz", id)
	}
	return qs, nil
}

func (s *quizService) GetQuiz(ctx context.Context, id string) (*QuizView, error) {
	qs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()

	view := qs.view(id)
	return &view, nil
}

// Answer grades question index. Each question accepts one answer.
func (s *quizService) Answer(ctx context.Context, id string, index int, answer string) (*AnswerResult, error) {
	log := logger.FromContext(ctx).WithField("quiz", id)

	qs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if index < 0 || index >= len(qs.questions) {
		return nil, errors.FromCore(quiz.ErrQuestionIndex)
	}
	if qs.answers[index] != nil {
		return nil, errors.NewConflictError("question already answered")
	}

	q := qs.questions[index]
	res, err := quiz.Grade(q, answer)
	if err != nil {
		return nil, errors.FromCore(err)
	}

	ar := &AnswerResult{
		Given:         answer,
		Correct:       res.Correct,
		Similarity:    res.Similarity,
		CorrectAnswer: q.CorrectAnswer,
	}
	if q.Type == models.QuestionTrueFalse {
		isTrue := q.IsTrue
		ar.IsTrue = &isTrue
	}
	qs.answers[index] = ar
	log.Debug("question %d answered: correct=%t", index, res.Correct)
	return ar, nil
}

func (s *quizService) Results(ctx context.Context, id string) (*QuizResults, error) {
	qs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()

	r := QuizResults{Total: len(qs.questions)}
	for _, a := range qs.answers {
		if a == nil {
			continue
		}
		r.Answered++
		if a.Correct {
			r.Correct++
		}
	}
	if r.Answered > 0 {
		r.Percent = int(math.Round(100 * float64(r.Correct) / float64(r.Answered)))
	}
	return &r, nil
}

// StartMatch deals a match game of up to six random non-suspended items.
func (s *quizService) StartMatch(ctx context.Context, req MatchRequest) (*MatchView, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting match game: deck_id=%d", req.DeckID)

	items, err := s.deckItems(ctx, req.DeckID)
	if err != nil {
		return nil, err
	}
	m, err := quiz.NewMatch(items, s.rng)
	if err != nil {
		return nil, errors.FromCore(err)
	}

	g := &matchGame{deckID: req.DeckID, match: m, startedAt: s.clock.Now()}
	id := s.matches.add(g, g.startedAt)
	log.Info("match game %s started with %d pairs", id, m.Len())

	view := g.view(id, g.startedAt)
	return &view, nil
}

func (g *matchGame) view(id string, now time.Time) MatchView {
	m := g.match
	v := MatchView{
		MatchID: id,
		DeckID:  g.deckID,
		Fronts:  make([]MatchCard, m.Len()),
		Backs:   make([]MatchCard, m.Len()),
		Pairs:   m.Len(),
		Matched: m.Matched(),
		Errors:  m.Errors(),
		Done:    m.Done(),
	}
	for i := 0; i < m.Len(); i++ {
		text, matched := m.Front(i)
		v.Fronts[i] = MatchCard{Position: i, Text: text, Matched: matched}
		text, matched = m.Back(i)
		v.Backs[i] = MatchCard{Position: i, Text: text, Matched: matched}
	}
	end := now
	if !g.finishedAt.IsZero() {
		end = g.finishedAt
	}
	v.ElapsedSeconds = int(end.Sub(g.startedAt).Seconds())
	return v
}

func (s *quizService) lookupMatch(id string) (*matchGame, error) {
	g, ok := s.matches.get(id)
	if !ok {
		return nil, errors.NewNotFoundError("match game", id)
	}
	return g, nil
}

func (s *quizService) GetMatch(ctx context.Context, id string) (*MatchView, error) {
	g, err := s.lookupMatch(id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	view := g.view(id, s.clock.Now())
	return &view, nil
}

// Pair tries front position front against back position back. Wrong pairs
// count as errors; the clock stops once every pair is matched.
func (s *quizService) Pair(ctx context.Context, id string, front, back int) (*PairResult, error) {
	log := logger.FromContext(ctx).WithField("match", id)

	g, err := s.lookupMatch(id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	itemID, ok, err := g.match.Try(front, back)
	if err != nil {
		return nil, errors.FromCore(err)
	}
	now := s.clock.Now()
	if g.match.Done() && g.finishedAt.IsZero() {
		g.finishedAt = now
		log.Info("match game finished with %d errors", g.match.Errors())
	}
	log.Debug("pair front=%d back=%d: correct=%t", front, back, ok)

	return &PairResult{Correct: ok, ItemID: itemID, Match: g.view(id, now)}, nil
}
