package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DatabaseHost)
	assert.Equal(t, "https://fakestoreapi.com/products", cfg.CatalogURL)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, int64(500), cfg.StartingBalance)
	assert.False(t, cfg.StrictFunds)
	assert.Equal(t, BackendPostgres, cfg.LedgerBackend)
	assert.Equal(t, 10*time.Minute, cfg.RateLimitIdle)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STARTING_BALANCE", "1000")
	t.Setenv("STRICT_FUNDS", "true")
	t.Setenv("LEDGER_BACKEND", "memory")
	t.Setenv("CATALOG_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.StartingBalance)
	assert.True(t, cfg.StrictFunds)
	assert.Equal(t, BackendMemory, cfg.LedgerBackend)
	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "floppy")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{DatabaseHost: "db", DatabasePort: "5433", DatabaseUser: "u", DatabasePassword: "p", DatabaseName: "n"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
