// Package metrics exposes the storefront's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storegg"

var (
	// Transactions counts buy and sell commands by result: bought, sold, skipped, rejected.
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Buy and sell commands by result.",
	}, []string{"result"})

	Rewards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rewards_total",
		Help:      "Mini-game prizes by tier.",
	}, []string{"tier"})

	RewardCoins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reward_coins_total",
		Help:      "Coins granted by the mini-game.",
	})

	CatalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Catalog fetch attempts by result.",
	}, []string{"result"})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Products currently in the catalog.",
	})

	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "player_sessions",
		Help:      "Player sessions held in memory.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
