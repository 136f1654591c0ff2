package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestObserveTick(t *testing.T) {
	r := NewRegistry()
	r.ObserveTick(time.Millisecond, 0.5)
	r.ObserveTick(2*time.Millisecond, 0.25)

	if got := counterValue(t, r.TicksTotal); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := gaugeValue(t, r.Alpha); got != 0.25 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
	var m dto.Metric
	if err := r.TickDuration.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("samples = %d", m.GetHistogram().GetSampleCount())
	}
}

func TestObserveReseedAndGraph(t *testing.T) {
	r := NewRegistry()
	r.ObserveReseed(nil)
	r.ObserveReseed(nil)
	r.ObserveReseed(errors.New("bad"))
	r.ObserveGraph(5, 3)

	if got := counterValue(t, r.ReseedsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success = %v", got)
	}
	if got := counterValue(t, r.ReseedsTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected = %v", got)
	}
	if gaugeValue(t, r.Nodes) != 5 || gaugeValue(t, r.Links) != 3 {
		t.Error("graph gauges not set")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/api/graph", "200", 10*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/graph", "200", 20*time.Millisecond)

	c, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/graph", "200")
	if err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.ObserveTick(time.Millisecond, 1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"notegraph_ticks_total 1", "notegraph_alpha 1", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("missing %q in output", name)
		}
	}
}
