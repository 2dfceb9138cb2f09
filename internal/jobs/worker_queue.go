package jobs

import (
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool *worker.Pool
	importer   worker.ItemImporter
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, importer worker.ItemImporter) *WorkerQueue {
	return &WorkerQueue{importPool: importPool, importer: importer}
}

func (q *WorkerQueue) EnqueueImport(deckID int64, drafts []models.ItemDraft) error {
	return q.importPool.Submit(&worker.ImportItemsJob{
		Importer: q.importer,
		DeckID:   deckID,
		Drafts:   drafts,
	})
}
