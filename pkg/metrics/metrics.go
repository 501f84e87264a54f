// Package metrics exposes prometheus collectors for scans, Graph calls and fixes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "entra_atlas"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	scansTotal    *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	graphRequests *prometheus.CounterVec
	issuesFound   *prometheus.CounterVec
	issuesFixed   prometheus.Counter
}

// New registers the collectors on reg. A nil reg falls back to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of completed scans",
		}, []string{"source"}), // source: live, demo
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of scan generation in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		graphRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_requests_total",
			Help:      "Total number of Graph API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		issuesFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_detected_total",
			Help:      "Total number of detected security issues by severity",
		}, []string{"severity"}),
		issuesFixed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_fixed_total",
			Help:      "Total number of issues marked fixed",
		}),
	}
}

func (m *Metrics) RecordScan(source string, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(source).Inc()
	m.scanDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordGraphRequest(endpoint string, success bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	m.graphRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) RecordIssues(severity string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.issuesFound.WithLabelValues(severity).Add(float64(count))
}

func (m *Metrics) RecordFix() {
	if m == nil {
		return
	}
	m.issuesFixed.Inc()
}
