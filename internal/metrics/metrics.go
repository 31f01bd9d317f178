// Package metrics provides Prometheus metrics for the card appraiser.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appraiser_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Resolution Metrics
	ResolveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_resolve_requests_total",
			Help: "Identity resolution requests by game",
		},
		[]string{"game"},
	)

	ResolveCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "appraiser_resolve_candidates",
			Help:    "Number of candidates returned per resolution",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
	)

	// Upstream Provider Metrics
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appraiser_provider_request_duration_seconds",
			Help:    "Upstream catalog/pricing call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_provider_errors_total",
			Help: "Upstream provider failures that contributed zero results",
		},
		[]string{"provider"},
	)

	// Pricing Metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_quotes_total",
			Help: "Price quote outcomes",
		},
		[]string{"outcome"}, // "priced" or "no_price"
	)

	PricingQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appraiser_pricing_quota_remaining",
			Help: "Remaining pricing API requests for today",
		},
	)

	// Exchange Rate Metrics
	FXRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appraiser_fx_refreshes_total",
			Help: "Exchange rate snapshot refresh attempts",
		},
		[]string{"result"}, // "ok", "error", "fallback"
	)

	FXSnapshotAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appraiser_fx_snapshot_age_seconds",
			Help: "Age of the cached exchange rate snapshot",
		},
	)
)
