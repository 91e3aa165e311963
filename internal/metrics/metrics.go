package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnsTotal counts handled messages by the step they were handled at.
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guidechat",
		Subsystem: "dialogue",
		Name:      "turns_total",
		Help:      "Messages handled, by dialogue step",
	}, []string{"step"})

	// extractionMissesTotal counts extractor runs that found nothing.
	// Labels: extractor (budget, area, location, amenities, university)
	extractionMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guidechat",
		Subsystem: "extractor",
		Name:      "misses_total",
		Help:      "Extractor runs that produced no value",
	}, []string{"extractor"})

	// upstreamFailuresTotal counts failed calls to reference or search services.
	// Labels: upstream (provinces, wards, amenities, search)
	upstreamFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guidechat",
		Subsystem: "upstream",
		Name:      "failures_total",
		Help:      "Failed upstream calls by upstream",
	}, []string{"upstream"})

	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "guidechat",
		Subsystem: "search",
		Name:      "results",
		Help:      "Number of properties returned per search",
		Buckets:   []float64{0, 1, 2, 5, 8, 10, 20, 50},
	})
)

// RecordTurn records a handled message at the given step.
func RecordTurn(step string) {
	turnsTotal.WithLabelValues(step).Inc()
}

// RecordExtractionMiss records an extractor returning a zero value.
func RecordExtractionMiss(extractor string) {
	extractionMissesTotal.WithLabelValues(extractor).Inc()
}

// RecordUpstreamFailure records a failed upstream call.
func RecordUpstreamFailure(upstream string) {
	upstreamFailuresTotal.WithLabelValues(upstream).Inc()
}

// ObserveSearchResults records the size of a search result set.
func ObserveSearchResults(n int) {
	searchResults.Observe(float64(n))
}
