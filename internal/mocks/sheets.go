package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
)

// MockSheetsStore fakes the spreadsheet collaborator: every call "creates"
// a new document and remembers what was written to it.
type MockSheetsStore struct {
	mu      sync.Mutex
	counter int
	Created map[string][][]string
}

// NewMockSheetsStore creates a mock spreadsheet store
func NewMockSheetsStore() *MockSheetsStore {
	logger.Info("Using MOCK spreadsheet store for local development")

	return &MockSheetsStore{
		Created: make(map[string][][]string),
	}
}

// CreateRecord stores the rows in memory and returns a synthetic id.
func (m *MockSheetsStore) CreateRecord(_ context.Context, values [][]string, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := fmt.Sprintf("mock-sheet-%d", m.counter)
	m.Created[id] = values
	logger.Info("Mock spreadsheet created", "id", id, "name", name, "rows", len(values))
	return id, nil
}
