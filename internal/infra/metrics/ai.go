package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		classifierVerdictsTotal,
		classifierCallsLatencyMs,
		classifierFallbacksTotal,
	)
}

var (
	classifierVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_verdicts_total",
			Help: "Verdicts produced, by source (model/keyword_fallback) and label.",
		},
		[]string{"source", "label"},
	)

	classifierCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_latency_ms",
			Help:    "Classifier upstream call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 15000},
		},
		[]string{"provider", "success"},
	)

	classifierFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_fallbacks_total",
			Help: "Times the keyword heuristic replaced the model, by cause.",
		},
		[]string{"cause"}, // transport, empty, schema
	)
)

func ObserveVerdict(source, label string) {
	classifierVerdictsTotal.WithLabelValues(norm(source), norm(label)).Inc()
}

func ObserveClassifierCall(provider string, latencyMs int64, success bool) {
	classifierCallsLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncClassifierFallback(cause string) {
	classifierFallbacksTotal.WithLabelValues(norm(cause)).Inc()
}
