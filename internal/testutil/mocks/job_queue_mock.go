package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(deckID int64, drafts []models.ItemDraft) error {
	args := m.Called(deckID, drafts)
	return args.Error(0)
}
