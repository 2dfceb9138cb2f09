package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/srs"
	"github.com/vytor/flashdeck/internal/worker"
)

// DeckInput is the user-editable part of a deck.
type DeckInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// DeckService handles deck-related business logic
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.DeckSummary, error)
	GetDeck(ctx context.Context, id int64) (*models.DeckSummary, error)
	CreateDeck(ctx context.Context, input DeckInput) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	QueueImport(ctx context.Context, deckID int64, drafts []models.ItemDraft) error
}

type deckService struct {
	deckRepo repository.DeckRepository
	itemRepo repository.ItemRepository
	jobQueue jobs.JobQueue
	clock    Clock
}

// NewDeckService creates a new DeckService
func NewDeckService(deckRepo repository.DeckRepository, itemRepo repository.ItemRepository, jobQueue jobs.JobQueue, clock Clock) DeckService {
	return &deckService{
		deckRepo: deckRepo,
		itemRepo: itemRepo,
		jobQueue: jobQueue,
		clock:    clock,
	}
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.DeckSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks")

	decks, err := s.deckRepo.List(ctx)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	items, err := s.itemRepo.List(ctx, models.ItemFilter{})
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	today := s.clock.Today()
	out := make([]models.DeckSummary, 0, len(decks))
	for _, d := range decks {
		out = append(out, summarize(d, items, today))
	}
	return out, nil
}

func summarize(d models.Deck, items []models.Item, today models.Date) models.DeckSummary {
	n := 0
	for _, it := range items {
		if it.DeckID == d.ID {
			n++
		}
	}
	return models.DeckSummary{Deck: d, ItemCount: n, DueCount: srs.CountDue(items, d.ID, today)}
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.DeckSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: id=%d", id)

	d, err := s.deckRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", id)
		}
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	items, err := s.itemRepo.List(ctx, models.ItemFilter{DeckID: id})
	if err != nil {
		log.Error("failed to list deck items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	sum := summarize(*d, items, s.clock.Today())
	return &sum, nil
}

func (s *deckService) CreateDeck(ctx context.Context, input DeckInput) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	now := s.clock.Now().UTC()
	d := models.Deck{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Color:       input.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.deckRepo.Insert(ctx, d)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	d.ID = id
	log.Info("deck created: id=%d, name=%s", id, name)
	return &d, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if err := s.deckRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", id)
		}
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deck deleted: id=%d", id)
	return nil
}

// QueueImport hands drafts to the import workers. Incomplete drafts are
// skipped by the import itself.
func (s *deckService) QueueImport(ctx context.Context, deckID int64, drafts []models.ItemDraft) error {
	log := logger.FromContext(ctx)

	if len(drafts) == 0 {
		return errors.NewValidationError("items", "cannot be empty")
	}
	if _, err := s.deckRepo.Get(ctx, deckID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", deckID)
		}
		log.Error("failed to get deck: %v", err)
		return errors.NewInternalError(err)
	}

	if err := s.jobQueue.EnqueueImport(deckID, drafts); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			log.Warn("import queue is full")
			return errors.NewConflictError("import queue is full, try again later")
		}
		log.Error("failed to enqueue import: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("queued import of %d items into deck %d", len(drafts), deckID)
	return nil
}
