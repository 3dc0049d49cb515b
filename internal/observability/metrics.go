package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the batch pipeline.
// A nil *Metrics is valid; every record method becomes a no-op so the
// synthesis packages can run uninstrumented in tests.
type Metrics struct {
	ProviderAttempts *prometheus.CounterVec
	RateLimitWaits   prometheus.Counter
	Fallbacks        *prometheus.CounterVec
	Files            *prometheus.CounterVec
	WordDuration     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Synthesis attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		RateLimitWaits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_waits_total",
			Help:      "Sleeps taken because a provider answered with a rate limit.",
		}),
		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Phrases served by a fallback provider, by provider.",
		}, []string{"provider"}),
		Files: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_files_total",
			Help:      "Output files by result: generated, skipped, failed.",
		}, []string{"result"}),
		WordDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "word_synthesis_seconds",
			Help:      "Wall time to synthesize one word-list entry.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

func (m *Metrics) RecordAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordRateLimitWait() {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
}

func (m *Metrics) RecordFallback(provider string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordFile(result string) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWordDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.WordDuration.Observe(d.Seconds())
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
