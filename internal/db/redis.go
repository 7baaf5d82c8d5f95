package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storegg/internal/ledger"
	"storegg/internal/models"
)

const ledgerKeyPrefix = "storegg:ledger:"

func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

type redisLedgerStore struct {
	client redis.Cmdable
}

func NewRedisLedgerStore(client redis.Cmdable) ledger.Persister {
	return &redisLedgerStore{client: client}
}

func (r *redisLedgerStore) Load(ctx context.Context, owner string) ([]models.Product, error) {
	raw, err := r.client.Get(ctx, ledgerKeyPrefix+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for '%s': %w", owner, err)
	}
	return decodeLedger(raw)
}

func (r *redisLedgerStore) Save(ctx context.Context, owner string, items []models.Product) error {
	raw, err := encodeLedger(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, ledgerKeyPrefix+owner, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save ledger for '%s': %w", owner, err)
	}
	return nil
}
