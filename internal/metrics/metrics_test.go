package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues("budget_input"))
	RecordTurn("budget_input")
	RecordTurn("budget_input")
	assert.Equal(t, before+2, testutil.ToFloat64(turnsTotal.WithLabelValues("budget_input")))

	before = testutil.ToFloat64(extractionMissesTotal.WithLabelValues("area"))
	RecordExtractionMiss("area")
	assert.Equal(t, before+1, testutil.ToFloat64(extractionMissesTotal.WithLabelValues("area")))

	before = testutil.ToFloat64(upstreamFailuresTotal.WithLabelValues("search"))
	RecordUpstreamFailure("search")
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamFailuresTotal.WithLabelValues("search")))
}

func TestObserveSearchResults(t *testing.T) {
	ObserveSearchResults(3)
	assert.Equal(t, 1, testutil.CollectAndCount(searchResults))
}
