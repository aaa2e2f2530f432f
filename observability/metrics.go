package observability

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upgrade transaction results.
const (
	ResultSuccess  = "success"
	ResultReadOnly = "read_only"
	ResultFailure  = "failure"
)

var (
	// UpgradeTransactionsTotal counts framework upgrade transactions by result
	UpgradeTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_upgrade_transactions_total",
			Help: "Total number of framework upgrade transactions by result",
		},
		[]string{"result"}, // success, read_only, failure
	)

	// UpgradeDuration tracks the time an upgrade transaction holds the project lock
	UpgradeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sdproj_upgrade_duration_seconds",
			Help:    "Framework upgrade transaction duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to 26s
		},
	)

	// ReferenceChangesTotal counts references added or removed by upgrades
	ReferenceChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_reference_changes_total",
			Help: "Total number of reference changes by action",
		},
		[]string{"action"}, // add, remove
	)

	// PropertyWritesTotal counts property writes that changed the store
	PropertyWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_property_writes_total",
			Help: "Total number of property writes by storage location",
		},
		[]string{"location"},
	)

	// ReparseRequestsTotal counts reparse requests by trigger
	ReparseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_reparse_requests_total",
			Help: "Total number of reparse requests by trigger",
		},
		[]string{"trigger"}, // references, code, both
	)

	// ProjectSavesTotal counts project file saves by status
	ProjectSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_project_saves_total",
			Help: "Total number of project saves by status",
		},
		[]string{"status"}, // success, failure
	)

	// ProjectFileEventsTotal counts external changes seen by the project watcher
	ProjectFileEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdproj_project_file_events_total",
			Help: "Total number of project file events by operation",
		},
		[]string{"op"},
	)
)

// ReparseTrigger names the label used by ReparseRequestsTotal.
func ReparseTrigger(referencesChanged, codeChanged bool) string {
	switch {
	case referencesChanged && codeChanged:
		return "both"
	case referencesChanged:
		return "references"
	default:
		return "code"
	}
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts an HTTP server exposing Prometheus metrics
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	return http.ListenAndServe(addr, mux)
}

// WriteMetrics writes every sdproj metric family in the Prometheus text format
func WriteMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "sdproj_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return err
		}
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}

// GetHistogramCount returns the number of observations recorded by a histogram
func GetHistogramCount(h prometheus.Histogram) (uint64, error) {
	var pb dto.Metric
	if err := h.Write(&pb); err != nil {
		return 0, err
	}
	if pb.Histogram != nil {
		return pb.Histogram.GetSampleCount(), nil
	}
	return 0, nil
}
