// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	RefreshCyclesTotal   *prometheus.CounterVec
	RefreshCycleDuration *prometheus.HistogramVec
	TokensTracked        prometheus.Gauge
	TokenUpserts         prometheus.Counter
	SourceErrors         *prometheus.CounterVec

	// Engine metrics
	EngineCyclesTotal   *prometheus.CounterVec
	EngineCycleDuration *prometheus.HistogramVec
	PositionsOpened     prometheus.Counter
	PositionsClosed     *prometheus.CounterVec
	OpenPositions       prometheus.Gauge
	RealizedPnL         prometheus.Gauge
	TotalInvested       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_trade_bot"
	}

	return &Metrics{
		RefreshCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feeds",
			Name:      "refresh_cycles_total",
			Help:      "Total number of feed refresh cycles by status",
		}, []string{"status"}),
		RefreshCycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feeds",
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Feed refresh cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		TokensTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feeds",
			Name:      "tokens_tracked",
			Help:      "Number of token snapshots in the table",
		}),
		TokenUpserts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feeds",
			Name:      "token_upserts_total",
			Help:      "Total number of snapshot upserts from discovery",
		}),
		SourceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feeds",
			Name:      "source_errors_total",
			Help:      "Total number of upstream source errors by source",
		}, []string{"source"}),

		EngineCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycles_total",
			Help:      "Total number of trading cycles by status",
		}, []string{"status"}),
		EngineCycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Trading cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		PositionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "positions_opened_total",
			Help:      "Total number of positions opened",
		}),
		PositionsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "positions_closed_total",
			Help:      "Total number of positions closed by reason",
		}, []string{"reason"}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "open_positions",
			Help:      "Number of currently open positions",
		}),
		RealizedPnL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "realized_pnl_usdc",
			Help:      "Cumulative realized PnL in USDC",
		}),
		TotalInvested: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "total_invested_usdc",
			Help:      "Cumulative amount invested in USDC",
		}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefreshCycle records one feed refresh cycle.
func RecordRefreshCycle(status string, durationSeconds float64) {
	DefaultMetrics.RefreshCyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshCycleDuration.WithLabelValues(status).Observe(durationSeconds)
}

// UpdateTokensTracked updates the table size gauge.
func UpdateTokensTracked(n int) {
	DefaultMetrics.TokensTracked.Set(float64(n))
}

// RecordTokenUpsert records one snapshot upsert from discovery.
func RecordTokenUpsert() {
	DefaultMetrics.TokenUpserts.Inc()
}

// RecordSourceError records one upstream source failure.
func RecordSourceError(source string) {
	DefaultMetrics.SourceErrors.WithLabelValues(source).Inc()
}

// RecordEngineCycle records one trading cycle.
func RecordEngineCycle(status string, durationSeconds float64) {
	DefaultMetrics.EngineCyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.EngineCycleDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordPositionOpened records one opened position.
func RecordPositionOpened() {
	DefaultMetrics.PositionsOpened.Inc()
}

// RecordPositionClosed records one closed position with its exit reason.
func RecordPositionClosed(reason string) {
	DefaultMetrics.PositionsClosed.WithLabelValues(reason).Inc()
}

// UpdateEngineState updates the engine gauges.
func UpdateEngineState(openPositions int, totalInvested, realizedPnL float64) {
	DefaultMetrics.OpenPositions.Set(float64(openPositions))
	DefaultMetrics.TotalInvested.Set(totalInvested)
	DefaultMetrics.RealizedPnL.Set(realizedPnL)
}
