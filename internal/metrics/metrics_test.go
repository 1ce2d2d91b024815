package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"launchdash/internal/metrics"
)

func TestPrometheusRecorderObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "aggregate_outcomes", true, 2*time.Millisecond)
	rec.Observe(ctx, "aggregate_outcomes", false, time.Millisecond)
	rec.Observe(ctx, "aggregate_outcomes", true, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	body := scrape(t, reg)
	for _, want := range []string{
		`launchdash_operations_total{operation="aggregate_outcomes",status="error"} 1`,
		`launchdash_operations_total{operation="aggregate_outcomes",status="success"} 2`,
		`launchdash_operation_duration_seconds_count{operation="aggregate_outcomes"} 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in exposition:\n%s", want, body)
		}
	}
	if strings.Contains(body, `operation=""`) {
		t.Fatalf("empty operation should be ignored")
	}
}

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestRecorderRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := metrics.NewPrometheusRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := metrics.NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := metrics.NewRegistry()
	rec, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "filter_payload_outcomes", true, time.Millisecond)

	body := scrape(t, reg)
	if !strings.Contains(body, `launchdash_operation_duration_seconds_count{operation="filter_payload_outcomes"} 1`) {
		t.Fatalf("histogram missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("runtime collector missing")
	}
}

func TestNoop(t *testing.T) {
	var r metrics.Recorder = metrics.Noop{}
	r.Observe(context.Background(), "x", true, time.Second)
}
