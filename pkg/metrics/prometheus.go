package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	requests    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	forecastMid *prometheus.GaugeVec
	lastQuote   *prometheus.GaugeVec
	modelSwaps  prometheus.Counter
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		requests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_requests_total",
				Help: "Total number of requests per endpoint",
			},
			[]string{"endpoint"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		forecastMid: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_forecast_mid_price",
				Help: "Last forecast median (p50) per security",
			},
			[]string{"security_id"},
		),
		lastQuote: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_last_quote_price",
				Help: "Last live quote price per symbol",
			},
			[]string{"symbol"},
		),
		modelSwaps: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fincast_model_swaps_total",
				Help: "Number of active-model promotions after transfer learning",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRequest counts a request against an endpoint.
func (r *Recorder) RecordRequest(endpoint string) {
	r.requests.WithLabelValues(endpoint).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordModelSwap counts one active-model promotion.
func (r *Recorder) RecordModelSwap() {
	r.modelSwaps.Inc()
}

// RecordForecastMid records the 1-day median forecast for a security.
func (r *Recorder) RecordForecastMid(securityID string, p50 float64) {
	r.forecastMid.WithLabelValues(securityID).Set(p50)
}

// RecordQuote records the last live price for a symbol.
func (r *Recorder) RecordQuote(symbol string, price float64) {
	r.lastQuote.WithLabelValues(symbol).Set(price)
}
