// Package metrics exposes Prometheus counters for the signal pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation outcomes.
const (
	OutcomeEmitted          = "emitted"
	OutcomeNoOpportunity    = "no_opportunity"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeUpstream         = "upstream_unavailable"
	OutcomeQuotaBlocked     = "quota_blocked"
	OutcomeRiskRejected     = "risk_rejected"
	OutcomeLowConfidence    = "low_confidence"
)

// Recorder aggregates the pipeline's Prometheus collectors.
type Recorder struct {
	registry     *prometheus.Registry
	evaluations  *prometheus.CounterVec
	signals      *prometheus.CounterVec
	scanDuration prometheus.Histogram
	quotaUsed    prometheus.Gauge
}

// NewRecorder registers the pipeline collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fnosignals_evaluations_total",
			Help: "Instrument evaluations by outcome.",
		}, []string{"instrument", "outcome"}),
		signals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fnosignals_signals_total",
			Help: "Signals emitted by instrument and direction.",
		}, []string{"instrument", "signal_type"}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fnosignals_scan_duration_seconds",
			Help:    "Full-universe scan duration.",
			Buckets: prometheus.DefBuckets,
		}),
		quotaUsed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fnosignals_daily_quota_used",
			Help: "Signals counted against today's quota.",
		}),
	}
}

// Evaluation records one instrument evaluation outcome.
func (r *Recorder) Evaluation(instrument, outcome string) {
	r.evaluations.WithLabelValues(instrument, outcome).Inc()
}

// Signal records one emitted signal.
func (r *Recorder) Signal(instrument, signalType string) {
	r.signals.WithLabelValues(instrument, signalType).Inc()
}

// ScanDuration records the elapsed time of one scan.
func (r *Recorder) ScanDuration(d time.Duration) {
	r.scanDuration.Observe(d.Seconds())
}

// QuotaUsed records the current quota usage.
func (r *Recorder) QuotaUsed(n int64) {
	r.quotaUsed.Set(float64(n))
}

// Handler returns the metrics HTTP handler for the recorder's
// registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics endpoint on addr. It blocks until the server
// fails.
func (r *Recorder) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return http.ListenAndServe(addr, mux)
}
