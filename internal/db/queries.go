package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storegg/internal/ledger"
	"storegg/internal/models"
)

type authDBImplementation struct {
	db *sql.DB
}

func NewAuthDB(dbConn *sql.DB) AuthDB {
	return &authDBImplementation{
		db: dbConn,
	}
}

func (a *authDBImplementation) GetPlayerAuthData(ctx context.Context, username string) (int, string, error) {
	var (
		id           int
		passwordHash string
	)
	err := a.db.QueryRowContext(ctx, "SELECT id, password_hash FROM players WHERE username=$1", username).
		Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrPlayerNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to get auth data for '%s': %w", username, err)
	}
	return id, passwordHash, nil
}

func (a *authDBImplementation) CreatePlayer(ctx context.Context, username, passwordHash string) (int, error) {
	var id int
	err := a.db.QueryRowContext(ctx,
		"INSERT INTO players (username, password_hash) VALUES ($1, $2) RETURNING id",
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create player '%s': %w", username, err)
	}
	return id, nil
}

type ledgerDBImplementation struct {
	db *sql.DB
}

// NewLedgerDB stores each player's ledger as one JSONB document keyed by owner.
func NewLedgerDB(dbConn *sql.DB) ledger.Persister {
	return &ledgerDBImplementation{
		db: dbConn,
	}
}

func (l *ledgerDBImplementation) Load(ctx context.Context, owner string) ([]models.Product, error) {
	var raw []byte
	err := l.db.QueryRowContext(ctx, "SELECT items FROM ledgers WHERE owner=$1", owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for '%s': %w", owner, err)
	}
	return decodeLedger(raw)
}

func (l *ledgerDBImplementation) Save(ctx context.Context, owner string, items []models.Product) error {
	raw, err := encodeLedger(items)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, `
INSERT INTO ledgers (owner, items, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (owner) DO UPDATE SET items = EXCLUDED.items, updated_at = now()
`, owner, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save ledger for '%s': %w", owner, err)
	}
	return nil
}

func encodeLedger(items []models.Product) ([]byte, error) {
	if items == nil {
		items = []models.Product{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}
	return raw, nil
}

func decodeLedger(raw []byte) ([]models.Product, error) {
	var items []models.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}
	return items, nil
}
