package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/srs"
)

// ItemDetail is an item with its failure history.
type ItemDetail struct {
	models.Item
	Failures int  `json:"failures"`
	Leech    bool `json:"leech"`
}

// ItemService handles item-related business logic
type ItemService interface {
	GetItem(ctx context.Context, id int64) (*ItemDetail, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	CreateItem(ctx context.Context, deckID int64, draft models.ItemDraft) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, draft models.ItemDraft) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ToggleSuspend(ctx context.Context, id int64) (*models.Item, error)
	ToggleFavorite(ctx context.Context, id int64) (*models.Item, error)
	ImportItems(ctx context.Context, deckID int64, drafts []models.ItemDraft) (int, error)
}

type itemService struct {
	itemRepo   repository.ItemRepository
	deckRepo   repository.DeckRepository
	reviewRepo repository.ReviewLogRepository
	clock      Clock
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo repository.ItemRepository, deckRepo repository.DeckRepository, reviewRepo repository.ReviewLogRepository, clock Clock) ItemService {
	return &itemService{
		itemRepo:   itemRepo,
		deckRepo:   deckRepo,
		reviewRepo: reviewRepo,
		clock:      clock,
	}
}

func validateDraft(d models.ItemDraft) *errors.AppError {
	if strings.TrimSpace(d.Front) == "" {
		return errors.NewValidationError("front", "cannot be empty")
	}
	if strings.TrimSpace(d.Back) == "" {
		return errors.NewValidationError("back", "cannot be empty")
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *itemService) load(ctx context.Context, id int64) (*models.Item, error) {
	it, err := s.itemRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("item", id)
		}
		logger.FromContext(ctx).Error("failed to get item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return it, nil
}

func (s *itemService) save(ctx context.Context, it *models.Item) error {
	it.UpdatedAt = s.clock.Now().UTC()
	if err := s.itemRepo.Update(ctx, *it); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("item", it.ID)
		}
		logger.FromContext(ctx).Error("failed to update item: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *itemService) requireDeck(ctx context.Context, deckID int64) error {
	if _, err := s.deckRepo.Get(ctx, deckID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", deckID)
		}
		logger.FromContext(ctx).Error("failed to get deck: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *itemService) GetItem(ctx context.Context, id int64) (*ItemDetail, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting item: id=%d", id)

	it, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.reviewRepo.List(ctx, models.ReviewFilter{ItemID: id})
	if err != nil {
		log.Error("failed to load review log: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &ItemDetail{
		Item:     *it,
		Failures: srs.FailureCounts(events)[id],
		Leech:    srs.IsLeech(events, id),
	}, nil
}

func (s *itemService) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing items: deck_id=%d", filter.DeckID)

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errors.NewValidationError("status", "unknown status "+string(filter.Status))
	}
	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (s *itemService) newItem(deckID int64, d models.ItemDraft) models.Item {
	now := s.clock.Now().UTC()
	return models.Item{
		DeckID:      deckID,
		Front:       strings.TrimSpace(d.Front),
		Back:        strings.TrimSpace(d.Back),
		Tags:        cleanTags(d.Tags),
		Hint:        strings.TrimSpace(d.Hint),
		MemoryState: models.NewMemoryState(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *itemService) CreateItem(ctx context.Context, deckID int64, draft models.ItemDraft) (*models.Item, error) {
	log := logger.FromContext(ctx)

	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}

	it := s.newItem(deckID, draft)
	id, err := s.itemRepo.Insert(ctx, it)
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	it.ID = id
	log.Debug("item created: id=%d, deck_id=%d", id, deckID)
	return &it, nil
}

// UpdateItem edits the texts, tags and hint; the memory state is untouched.
func (s *itemService) UpdateItem(ctx context.Context, id int64, draft models.ItemDraft) (*models.Item, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	it, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	it.Front = strings.TrimSpace(draft.Front)
	it.Back = strings.TrimSpace(draft.Back)
	it.Tags = cleanTags(draft.Tags)
	it.Hint = strings.TrimSpace(draft.Hint)
	if err := s.save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("item", id)
		}
		log.Error("failed to delete item: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("item deleted: id=%d", id)
	return nil
}

// ToggleSuspend suspends an item, or resumes a suspended one as new. Resumed
// items restart their repetitions and lose their due date; the ease factor is
// kept.
func (s *itemService) ToggleSuspend(ctx context.Context, id int64) (*models.Item, error) {
	it, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if it.Status == models.StatusSuspended {
		it.Status = models.StatusNew
		it.Repetitions = 0
		it.Interval = 0
		it.NextReviewDate = models.Date{}
	} else {
		it.Status = models.StatusSuspended
	}
	if err := s.save(ctx, it); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("item %d is now %s", id, it.Status)
	return it, nil
}

func (s *itemService) ToggleFavorite(ctx context.Context, id int64) (*models.Item, error) {
	it, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Favorite = !it.Favorite
	if err := s.save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// ImportItems stores every draft that has both a front and a back and
// returns how many were stored.
func (s *itemService) ImportItems(ctx context.Context, deckID int64, drafts []models.ItemDraft) (int, error) {
	log := logger.FromContext(ctx)

	if err := s.requireDeck(ctx, deckID); err != nil {
		return 0, err
	}

	items := make([]models.Item, 0, len(drafts))
	for _, d := range drafts {
		if validateDraft(d) != nil {
			continue
		}
		items = append(items, s.newItem(deckID, d))
	}
	if skipped := len(drafts) - len(items); skipped > 0 {
		log.Warn("skipping %d incomplete drafts", skipped)
	}
	if len(items) == 0 {
		return 0, nil
	}

	ids, err := s.itemRepo.InsertBatch(ctx, items)
	if err != nil {
		log.Error("failed to import items: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("imported %d items into deck %d", len(ids), deckID)
	return len(ids), nil
}
