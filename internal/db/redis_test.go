package db

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storegg/internal/models"
)

func TestRedisLedgerStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	owner := "test-" + t.Name()
	t.Cleanup(func() { client.Del(ctx, ledgerKeyPrefix+owner) })

	store := NewRedisLedgerStore(client)
	items, err := store.Load(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, store.Save(ctx, owner, []models.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95")},
	}))
	items, err = store.Load(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("109.95")))
}
