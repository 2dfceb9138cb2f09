package worker

import (
	"context"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

// ItemImporter stores a batch of drafts in a deck. It lives here so the
// worker package does not import services.
type ItemImporter interface {
	ImportItems(ctx context.Context, deckID int64, drafts []models.ItemDraft) (int, error)
}

// ImportItemsJob stores a bulk upload in the background.
type ImportItemsJob struct {
	Importer ItemImporter
	DeckID   int64
	Drafts   []models.ItemDraft
}

func (j *ImportItemsJob) Name() string { return "import_items" }

func (j *ImportItemsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"deck_id": j.DeckID,
		"items":   len(j.Drafts),
	})
	log.Info("starting background import")

	n, err := j.Importer.ImportItems(ctx, j.DeckID, j.Drafts)
	if err != nil {
		log.Error("import failed: %v", err)
		return err
	}
	log.Info("imported %d items", n)
	return nil
}
