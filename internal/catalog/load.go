package catalog

import (
	"context"

	"go.uber.org/zap"

	"storegg/internal/metrics"
	"storegg/internal/models"
	"storegg/pkg"
)

// Load fetches once and appends the result to store. Failures are logged and
// leave store as it was; there is no retry.
func Load(ctx context.Context, src Source, store *Store, log pkg.Logger) {
	products, err := src.Fetch(ctx)
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("error").Inc()
		log.Error("failed to fetch catalog", zap.Error(err))
		return
	}

	accepted := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Price.IsNegative() {
			log.Warn("skipping product with negative price", zap.Int("productID", p.ID), zap.String("price", p.Price.String()))
			continue
		}
		accepted = append(accepted, p)
	}

	store.Append(accepted...)
	metrics.CatalogFetches.WithLabelValues("ok").Inc()
	metrics.CatalogSize.Set(float64(store.Len()))
	log.Info("catalog loaded", zap.Int("products", len(accepted)), zap.Int("total", store.Len()))
}
