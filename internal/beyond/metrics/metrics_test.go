package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/beyondtyping/beyond/internal/beyond/engine"
	"github.com/beyondtyping/beyond/internal/beyond/metrics"
)

var _ engine.Recorder = (*metrics.Recorder)(nil)

func TestRecorder_Counters(t *testing.T) {
	r := metrics.New()

	r.ObserveClassification("resolved", time.Millisecond)
	r.ObserveClassification("resolved", time.Millisecond)
	r.ObserveClassification("unresolved", time.Millisecond)
	r.ObserveResolution("rules", "utility_time")
	r.ObserveClarification("abandoned")
	r.ObserveHandler("utility.time", true, 2*time.Millisecond)
	r.ObserveHandler("utility.time", false, 2*time.Millisecond)
	r.ObserveCycle("dispatched")
	r.SetClassifierAvailable(true)

	const want = `
# HELP beyond_classifier_predictions_total Classifier predictions by status
# TYPE beyond_classifier_predictions_total counter
beyond_classifier_predictions_total{status="resolved"} 2
beyond_classifier_predictions_total{status="unresolved"} 1
# HELP beyond_handler_calls_total Action handler invocations by handler and success
# TYPE beyond_handler_calls_total counter
beyond_handler_calls_total{handler="utility.time",success="false"} 1
beyond_handler_calls_total{handler="utility.time",success="true"} 1
# HELP beyond_classifier_available 1 when an intent model is loaded
# TYPE beyond_classifier_available gauge
beyond_classifier_available 1
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(want),
		"beyond_classifier_predictions_total", "beyond_handler_calls_total", "beyond_classifier_available")
	if err != nil {
		t.Error(err)
	}

	n, err := testutil.GatherAndCount(r.Registry(), "beyond_pipeline_cycles_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cycles series = %d, want 1", n)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.New()
	r.ObserveCycle("unresolved")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `beyond_pipeline_cycles_total{kind="unresolved"} 1`) {
		t.Errorf("metrics output missing cycle counter:\n%s", body)
	}
}
