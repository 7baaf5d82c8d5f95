// Package ledger keeps the set of products a player owns.
//
// A Ledger is a value: Add and Remove return a new Ledger and never touch the
// receiver, so a command can be evaluated against a state without committing it.
package ledger

import (
	"context"

	"storegg/internal/models"
)

// Persister is the durable key-value collaborator behind a player's ledger.
// The storage format is up to the implementation.
type Persister interface {
	Load(ctx context.Context, owner string) ([]models.Product, error)
	Save(ctx context.Context, owner string, items []models.Product) error
}

// Ledger holds owned products in insertion order.
type Ledger struct {
	items []models.Product
}

func New(items []models.Product) Ledger {
	return Ledger{items: clone(items)}
}

// Add appends p. Duplicates are kept; callers decide whether to allow them.
func (l Ledger) Add(p models.Product) Ledger {
	items := make([]models.Product, 0, len(l.items)+1)
	items = append(items, l.items...)
	items = append(items, p)
	return Ledger{items: items}
}

// Remove drops the first entry with the given id; other copies of a duplicate
// purchase stay owned, so selling one copy refunds exactly one price. The
// second return value reports whether anything was removed; a miss returns l
// unchanged.
func (l Ledger) Remove(id int) (Ledger, bool) {
	idx := l.index(id)
	if idx < 0 {
		return l, false
	}
	items := make([]models.Product, 0, len(l.items)-1)
	items = append(items, l.items[:idx]...)
	items = append(items, l.items[idx+1:]...)
	return Ledger{items: items}, true
}

func (l Ledger) Contains(id int) bool {
	return l.index(id) >= 0
}

// Get returns the first owned entry with the given id.
func (l Ledger) Get(id int) (models.Product, bool) {
	idx := l.index(id)
	if idx < 0 {
		return models.Product{}, false
	}
	return l.items[idx], true
}

func (l Ledger) List() []models.Product {
	return clone(l.items)
}

func (l Ledger) Len() int {
	return len(l.items)
}

func (l Ledger) index(id int) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func clone(items []models.Product) []models.Product {
	out := make([]models.Product, len(items))
	copy(out, items)
	return out
}
