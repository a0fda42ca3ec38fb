package metrics

import "github.com/prometheus/client_golang/prometheus"

// Diagnosis engine Prometheus metrics.
var (
	DiagnosisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "diagnosis_requests_total",
			Help:      "Total number of diagnosis requests",
		},
		[]string{"outcome"}, // "matched" / "empty" / "error"
	)

	DiagnosisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "symptodex",
			Name:      "diagnosis_duration_seconds",
			Help:      "Diagnosis scoring duration in seconds (excluding extraction)",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
		},
	)

	DiagnosisTopConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "symptodex",
			Name:      "diagnosis_top_confidence_percent",
			Help:      "Confidence of the best returned condition",
			Buckets:   []float64{40, 50, 60, 70, 80, 90, 100},
		},
	)

	ModelRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "model_rebuilds_total",
			Help:      "Vector space model builds",
		},
		[]string{"status"}, // "ok" / "error"
	)

	ModelVocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "symptodex",
			Name:      "model_vocabulary_size",
			Help:      "Number of features in the published model",
		},
	)

	ModelConditions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "symptodex",
			Name:      "model_conditions",
			Help:      "Number of conditions in the published model",
		},
	)

	DiagnosisCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "symptodex",
			Name:      "diagnosis_cache_total",
			Help:      "Diagnosis cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var diagMetricsRegistered bool

// RegisterDiagnosisMetrics registers Prometheus diagnosis metrics. Must be called once from main.
func RegisterDiagnosisMetrics() {
	if diagMetricsRegistered {
		return
	}
	prometheus.MustRegister(DiagnosisRequestsTotal)
	prometheus.MustRegister(DiagnosisDuration)
	prometheus.MustRegister(DiagnosisTopConfidence)
	prometheus.MustRegister(ModelRebuildsTotal)
	prometheus.MustRegister(ModelVocabularySize)
	prometheus.MustRegister(ModelConditions)
	prometheus.MustRegister(DiagnosisCacheTotal)
	diagMetricsRegistered = true
}
