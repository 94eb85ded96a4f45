// Package metrics exposes Prometheus instrumentation for the classifier and
// router. All collectors are registered via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntentClassificationCounter counts classified prompts by resulting intent.
	IntentClassificationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebs_intent_classifications_total",
			Help: "Number of intent classifications by resulting intent",
		},
		[]string{"intent"},
	)

	// ClassifierLatency tracks classification latency in seconds.
	ClassifierLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ebs_intent_classification_duration_seconds",
			Help:    "Intent classification latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RoutingDecisionCounter counts routing outcomes: selected, ambiguous,
	// below_threshold, no_candidates.
	RoutingDecisionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebs_routing_decisions_total",
			Help: "Number of routing decisions by outcome",
		},
		[]string{"outcome"},
	)

	// RoutingLatency tracks route call latency in seconds.
	RoutingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ebs_routing_duration_seconds",
			Help:    "Score-based routing latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TopCandidateScore observes the winning final_score per route call.
	TopCandidateScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ebs_routing_top_score",
			Help:    "Final score of the rank-1 candidate",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.05},
		},
	)

	// CatalogReloadCounter counts catalog snapshot reloads by status.
	CatalogReloadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebs_catalog_reloads_total",
			Help: "Number of catalog snapshot reloads",
		},
		[]string{"status"},
	)

	// CatalogControlsGauge reports the number of controls in the live snapshot.
	CatalogControlsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ebs_catalog_controls",
			Help: "Controls in the currently published catalog snapshot",
		},
	)

	// GuardRejectionCounter counts prompts rejected or flagged by the guard chain.
	GuardRejectionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebs_guard_events_total",
			Help: "Prompt guard events by provider and action",
		},
		[]string{"provider", "action"},
	)
)

// RecordIntentClassification records one classification outcome.
func RecordIntentClassification(intent string, seconds float64) {
	IntentClassificationCounter.WithLabelValues(intent).Inc()
	ClassifierLatency.Observe(seconds)
}

// RecordRoutingDecision records one routing outcome with its latency.
func RecordRoutingDecision(outcome string, seconds float64) {
	RoutingDecisionCounter.WithLabelValues(outcome).Inc()
	RoutingLatency.Observe(seconds)
}

// RecordCatalogReload records a catalog reload attempt.
func RecordCatalogReload(status string, controls int) {
	CatalogReloadCounter.WithLabelValues(status).Inc()
	if status == "success" {
		CatalogControlsGauge.Set(float64(controls))
	}
}
