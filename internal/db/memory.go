package db

import (
	"context"
	"fmt"
	"sync"

	"storegg/internal/models"
)

type memoryAuthDB struct {
	mu      sync.Mutex
	nextID  int
	players map[string]models.Player
}

// NewMemoryAuthDB keeps players in process memory; they are gone on restart.
func NewMemoryAuthDB() AuthDB {
	return &memoryAuthDB{players: make(map[string]models.Player)}
}

func (m *memoryAuthDB) GetPlayerAuthData(_ context.Context, username string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[username]
	if !ok {
		return 0, "", ErrPlayerNotFound
	}
	return p.ID, p.PasswordHash, nil
}

func (m *memoryAuthDB) CreatePlayer(_ context.Context, username, passwordHash string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[username]; ok {
		return 0, fmt.Errorf("failed to create player '%s': already exists", username)
	}
	m.nextID++
	m.players[username] = models.Player{ID: m.nextID, Username: username, PasswordHash: passwordHash}
	return m.nextID, nil
}
