// Package metrics holds the prometheus collectors the server exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application collectors. A nil *Metrics records nothing.
type Metrics struct {
	predictionsPlaced  *prometheus.CounterVec
	predictionsSettled *prometheus.CounterVec
	coinsAwarded       prometheus.Counter
	settlementSkipped  *prometheus.CounterVec
	providerRequests   *prometheus.CounterVec
	shopPurchases      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		predictionsPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_predictions_placed_total",
			Help: "Wagers accepted, by kind.",
		}, []string{"kind"}),
		predictionsSettled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_predictions_settled_total",
			Help: "Wagers settled, by verdict.",
		}, []string{"verdict"}),
		coinsAwarded: f.NewCounter(prometheus.CounterOpts{
			Name: "matchday_coins_awarded_total",
			Help: "Coins credited by settlement.",
		}),
		settlementSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_settlement_skipped_total",
			Help: "Pending wagers left pending, by reason.",
		}, []string{"reason"}),
		providerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_provider_requests_total",
			Help: "Calls to external sports data providers.",
		}, []string{"provider", "outcome"}),
		shopPurchases: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_shop_purchases_total",
			Help: "Cosmetics bought, by category.",
		}, []string{"category"}),
	}
}

func (m *Metrics) PredictionPlaced(kind string) {
	if m == nil {
		return
	}
	m.predictionsPlaced.WithLabelValues(kind).Inc()
}

func (m *Metrics) PredictionSettled(verdict string, coins int64) {
	if m == nil {
		return
	}
	m.predictionsSettled.WithLabelValues(verdict).Inc()
	if coins > 0 {
		m.coinsAwarded.Add(float64(coins))
	}
}

func (m *Metrics) SettlementSkipped(reason string) {
	if m == nil {
		return
	}
	m.settlementSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ShopPurchase(category string) {
	if m == nil {
		return
	}
	m.shopPurchases.WithLabelValues(category).Inc()
}
