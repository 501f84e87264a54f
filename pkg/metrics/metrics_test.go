package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordScan("live", 2*time.Second)
	m.RecordGraphRequest("users", true)
	m.RecordGraphRequest("secureScores", false)
	m.RecordGraphRequest("secureScores", false)
	m.RecordIssues("High", 2)
	m.RecordIssues("Low", 0)
	m.RecordFix()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scansTotal.WithLabelValues("live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.graphRequests.WithLabelValues("users", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.graphRequests.WithLabelValues("secureScores", OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.issuesFound.WithLabelValues("High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issuesFixed))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordScan("demo", time.Second)
		m.RecordGraphRequest("users", true)
		m.RecordIssues("High", 1)
		m.RecordFix()
	})
}
