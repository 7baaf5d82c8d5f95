// Package catalog fetches the product list from the remote store API and keeps
// it for the lifetime of the process.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"storegg/internal/models"
)

const (
	DefaultURL = "https://fakestoreapi.com/products"
	// MaxBodyBytes caps how much of the catalog response is read.
	MaxBodyBytes = 4 << 20
)

var (
	ErrNotArray        = errors.New("catalog payload is not an array")
	ErrInvalidPayload  = errors.New("catalog payload is not valid JSON")
	ErrPayloadTooLarge = errors.New("catalog payload is too large")
)

// Source produces catalog products.
type Source interface {
	Fetch(ctx context.Context) ([]models.Product, error)
}

// Fetcher reads the catalog with a single unauthenticated GET.
type Fetcher struct {
	client  *http.Client
	url     string
	maxBody int64
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		maxBody: MaxBodyBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrPayloadTooLarge, f.maxBody)
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidPayload
	}
	if !gjson.ParseBytes(body).IsArray() {
		return nil, ErrNotArray
	}

	var products []models.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return products, nil
}
