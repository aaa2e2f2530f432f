package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsHandler(t *testing.T) {
	UpgradeTransactionsTotal.WithLabelValues(ResultSuccess).Inc()
	ReferenceChangesTotal.WithLabelValues("add").Inc()
	PropertyWritesTotal.WithLabelValues("Base").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	MetricsHandler().ServeHTTP(w, req)

	resp := w.Result()
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}

	body := w.Body.String()
	for _, metric := range []string{
		"sdproj_upgrade_transactions_total",
		"sdproj_reference_changes_total",
		"sdproj_property_writes_total",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("Metrics output missing: %s", metric)
		}
	}
}

func TestGetCounterValue(t *testing.T) {
	before, err := GetCounterValue(ReparseRequestsTotal, "both")
	if err != nil {
		t.Fatalf("GetCounterValue() failed: %v", err)
	}

	ReparseRequestsTotal.WithLabelValues(ReparseTrigger(true, true)).Inc()
	ReparseRequestsTotal.WithLabelValues(ReparseTrigger(true, true)).Inc()

	after, err := GetCounterValue(ReparseRequestsTotal, "both")
	if err != nil {
		t.Fatalf("GetCounterValue() failed: %v", err)
	}
	if after-before != 2 {
		t.Errorf("counter delta = %v, want 2", after-before)
	}

	if _, err := GetCounterValue(ReparseRequestsTotal, "a", "b"); err == nil {
		t.Error("wrong label cardinality should fail")
	}
}

func TestGetHistogramCount(t *testing.T) {
	before, err := GetHistogramCount(UpgradeDuration)
	if err != nil {
		t.Fatalf("GetHistogramCount() failed: %v", err)
	}
	UpgradeDuration.Observe(0.002)

	after, _ := GetHistogramCount(UpgradeDuration)
	if after != before+1 {
		t.Errorf("sample count = %d, want %d", after, before+1)
	}
}

func TestReparseTrigger(t *testing.T) {
	tests := []struct {
		refs, code bool
		want       string
	}{
		{true, true, "both"},
		{true, false, "references"},
		{false, true, "code"},
	}
	for _, tt := range tests {
		if got := ReparseTrigger(tt.refs, tt.code); got != tt.want {
			t.Errorf("ReparseTrigger(%v, %v) = %q, want %q", tt.refs, tt.code, got, tt.want)
		}
	}
}

func TestWriteMetrics(t *testing.T) {
	ProjectSavesTotal.WithLabelValues("success").Inc()

	buf := &bytes.Buffer{}
	if err := WriteMetrics(buf, prometheus.DefaultGatherer); err != nil {
		t.Fatalf("WriteMetrics() failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "sdproj_project_saves_total") {
		t.Errorf("output missing sdproj_project_saves_total:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE") {
		t.Error("output missing TYPE comments")
	}
	if strings.Contains(out, "go_goroutines") {
		t.Error("runtime collectors should be filtered out")
	}
}
