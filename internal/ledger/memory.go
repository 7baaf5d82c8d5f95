package ledger

import (
	"context"
	"sync"

	"storegg/internal/models"
)

// MemoryPersister keeps ledgers in process memory. Used for local runs and tests.
type MemoryPersister struct {
	mu      sync.RWMutex
	ledgers map[string][]models.Product
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{ledgers: make(map[string][]models.Product)}
}

func (m *MemoryPersister) Load(_ context.Context, owner string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.ledgers[owner]), nil
}

func (m *MemoryPersister) Save(_ context.Context, owner string, items []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[owner] = clone(items)
	return nil
}
