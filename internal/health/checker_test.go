package health_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ErlanBelekov/companydesk/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestChecker(deps ...health.Dependency) (*health.Checker, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return health.NewChecker(slog.Default(), reg, deps...), reg
}

func TestLiveness_AlwaysUp(t *testing.T) {
	c, _ := newTestChecker(health.Dependency{Name: "postgres", Pinger: &mockPinger{err: errors.New("db down")}})

	result := c.Liveness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	if result.Checks != nil {
		t.Fatalf("expected no checks, got %v", result.Checks)
	}
}

func TestReadiness_AllUp(t *testing.T) {
	c, reg := newTestChecker(
		health.Dependency{Name: "postgres", Pinger: &mockPinger{}},
		health.Dependency{Name: "redis", Pinger: &mockPinger{}},
	)

	result := c.Readiness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	for _, name := range []string{"postgres", "redis"} {
		if got := result.Checks[name].Status; got != "up" {
			t.Errorf("%s: expected up, got %q", name, got)
		}
		if g := testGauge(t, reg, name); g != 1 {
			t.Errorf("%s: expected gauge 1, got %f", name, g)
		}
	}
}

func TestReadiness_OneDown_MarksServiceDown(t *testing.T) {
	c, reg := newTestChecker(
		health.Dependency{Name: "postgres", Pinger: &mockPinger{}},
		health.Dependency{Name: "redis", Pinger: &mockPinger{err: errors.New("connection refused")}},
	)

	result := c.Readiness(context.Background())
	if result.Status != "down" {
		t.Fatalf("expected status down, got %s", result.Status)
	}
	if result.Checks["postgres"].Status != "up" {
		t.Errorf("expected postgres up, got %s", result.Checks["postgres"].Status)
	}
	rd := result.Checks["redis"]
	if rd.Status != "down" || rd.Error == "" {
		t.Fatalf("expected redis down with error, got %+v", rd)
	}

	if g := testGauge(t, reg, "redis"); g != 0 {
		t.Fatalf("expected gauge 0, got %f", g)
	}
	n, err := testutil.GatherAndCount(reg, "companydesk_health_check_up")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 gauge series, got %d", n)
	}
}

func testGauge(t *testing.T, reg *prometheus.Registry, depLabel string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "companydesk_health_check_up" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "dependency" && lp.GetValue() == depLabel {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric companydesk_health_check_up{dependency=%q} not found", depLabel)
	return 0
}
