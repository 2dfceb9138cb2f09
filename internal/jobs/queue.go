package jobs

import "github.com/vytor/flashdeck/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(deckID int64, drafts []models.ItemDraft) error
}
