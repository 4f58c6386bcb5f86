package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnsTotal counts answered conversation turns by response source.
	// Labels: source (redirect, validation, follow_up, clarification, cache, search, fallback)
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvrelay",
		Name:      "turns_total",
		Help:      "Conversation turns answered, by response source",
	}, []string{"source"})

	// followUpsTotal counts resolved follow-ups by type.
	followUpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvrelay",
		Name:      "followups_total",
		Help:      "Follow-up utterances answered from stored results, by type",
	}, []string{"type"})

	// responseCacheTotal counts response cache lookups by result (hit, miss).
	responseCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvrelay",
		Name:      "response_cache_total",
		Help:      "Response cache lookups by result",
	}, []string{"result"})

	searchDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dvrelay",
		Name:      "search_duration_seconds",
		Help:      "External search latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"})

	// fallbackTotal counts fallback generations by outcome (generated, canned).
	fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvrelay",
		Name:      "fallback_total",
		Help:      "Fallback responses by outcome",
	}, []string{"outcome"})

	// geocodeTotal counts geocoding lookups by outcome (cached, resolved, failed).
	geocodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvrelay",
		Name:      "geocode_total",
		Help:      "Geocoding lookups by outcome",
	}, []string{"outcome"})
)

// RecordTurn records an answered turn.
func RecordTurn(source string) {
	turnsTotal.WithLabelValues(source).Inc()
}

// RecordFollowUp records a follow-up answered from stored results.
func RecordFollowUp(followUpType string) {
	followUpsTotal.WithLabelValues(followUpType).Inc()
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	responseCacheTotal.WithLabelValues(result).Inc()
}

// RecordSearch records the latency of an external search call.
func RecordSearch(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	searchDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFallback records how a fallback response was produced.
func RecordFallback(outcome string) {
	fallbackTotal.WithLabelValues(outcome).Inc()
}

// RecordGeocode records a geocoding lookup outcome.
func RecordGeocode(outcome string) {
	geocodeTotal.WithLabelValues(outcome).Inc()
}
