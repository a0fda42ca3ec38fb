package metrics

import "github.com/prometheus/client_golang/prometheus"

// Symptom extractor Prometheus metrics.
var (
	ExtractorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "extractor_requests_total",
			Help:      "Total number of symptom extraction requests",
		},
		[]string{"model", "status"},
	)

	ExtractorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "symptodex",
			Name:      "extractor_request_duration_seconds",
			Help:      "Symptom extraction request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	ExtractorTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "extractor_tokens_total",
			Help:      "Total extraction tokens consumed",
		},
		[]string{"model", "type"}, // "prompt" / "completion"
	)

	ExtractorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "extractor_errors_total",
			Help:      "Total symptom extraction errors",
		},
		[]string{"model", "error_type"},
	)

	ExtractorBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "symptodex",
			Name:      "extractor_breaker_state",
			Help:      "Extractor circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var extractorMetricsRegistered bool

// RegisterExtractorMetrics registers Prometheus extractor metrics. Must be called once from main.
func RegisterExtractorMetrics() {
	if extractorMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractorRequestsTotal)
	prometheus.MustRegister(ExtractorRequestDuration)
	prometheus.MustRegister(ExtractorTokensTotal)
	prometheus.MustRegister(ExtractorErrorsTotal)
	prometheus.MustRegister(ExtractorBreakerState)
	extractorMetricsRegistered = true
}
