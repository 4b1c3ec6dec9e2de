package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loom-ui/loom/internal/config"
	"github.com/loom-ui/loom/pkg/engine"
)

func testConfig(metrics bool) *config.Resolved {
	return &config.Resolved{
		AppName: "demo",
		Host:    config.DefaultHost,
		Port:    config.DefaultPort,
		Metrics: metrics,
	}
}

func testRoot(t *testing.T) RootFunc {
	return func() *engine.Definition { return counterDef(t) }
}

func TestIndexPage(t *testing.T) {
	srv := New(testConfig(false), testRoot(t), WithLogger(quietLogger()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "loom preview") {
		t.Error("index page missing title")
	}
	if !strings.Contains(body, "demo") {
		t.Error("index page missing app name")
	}
	if !strings.Contains(body, `"/ws"`) {
		t.Error("index page missing websocket endpoint")
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig(false), testRoot(t), WithLogger(quietLogger()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("healthz = %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New(testConfig(true), testRoot(t), WithLogger(quietLogger()))

	// A session drives the counters the endpoint exposes.
	sess, err := NewSession(srv.root(), &captureWriter{}, quietLogger(), srv.metrics)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer sess.Close()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "loom_engine_mounts_total") {
		t.Error("metrics output missing engine counters")
	}
}

func TestMetricsDisabled(t *testing.T) {
	srv := New(testConfig(false), testRoot(t), WithLogger(quietLogger()))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when metrics disabled", rec.Code)
	}
}
