package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	goldenLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loansight_golden_lookup_total",
		Help: "Golden knowledge base lookups by outcome (hit/miss)",
	}, []string{"outcome"})

	intentResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loansight_intent_total",
		Help: "Intent classifications by source (llm/fallback)",
	}, []string{"source"})

	routingDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loansight_routing_total",
		Help: "Query routing decisions by category",
	}, []string{"category"})

	retrievalLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loansight_retrieval_latency_ms",
		Help:    "Latency of case retrieval in milliseconds",
		Buckets: []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 800, 1200},
	})

	retrievalResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loansight_retrieval_results",
		Help:    "Number of cases returned per retrieval",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	sandboxRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loansight_sandbox_rejection_total",
		Help: "Synthesized snippets rejected before or during execution",
	}, []string{"reason"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(goldenLookups, intentResults, routingDecisions, retrievalLatency, retrievalResults, sandboxRejections)
	})
}

// IncGoldenLookup records a curated-answer lookup outcome (hit/miss).
func IncGoldenLookup(outcome string) {
	ensureRegistered()
	goldenLookups.WithLabelValues(outcome).Inc()
}

// IncIntent records where the intent classification came from (llm/fallback).
func IncIntent(source string) {
	ensureRegistered()
	intentResults.WithLabelValues(source).Inc()
}

// IncRouting records a routing decision category.
func IncRouting(category string) {
	ensureRegistered()
	routingDecisions.WithLabelValues(category).Inc()
}

// ObserveRetrieval records latency and result size for a retrieval.
func ObserveRetrieval(start time.Time, results int) {
	ensureRegistered()
	retrievalLatency.Observe(float64(time.Since(start).Milliseconds()))
	retrievalResults.Observe(float64(results))
}

// IncSandboxRejection records a rejected snippet by reason (denylist/binding/runtime/unset/timeout).
func IncSandboxRejection(reason string) {
	ensureRegistered()
	sandboxRejections.WithLabelValues(reason).Inc()
}
