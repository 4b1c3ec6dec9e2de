package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Host != DefaultHost || r.Port != DefaultPort {
		t.Errorf("defaults = %s:%d, want %s:%d", r.Host, r.Port, DefaultHost, DefaultPort)
	}
	if r.AppName != filepath.Base(dir) {
		t.Errorf("AppName = %q, want directory basename", r.AppName)
	}
	if r.Debug || r.Metrics {
		t.Error("debug/metrics should default off")
	}
}

func TestResolveFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
app:
  name: demo
preview:
  host: 0.0.0.0
  port: 8080
  debug: true
  metrics: true
`)

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.AppName != "demo" {
		t.Errorf("AppName = %q, want demo", r.AppName)
	}
	if got := r.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr = %q, want 0.0.0.0:8080", got)
	}
	if !r.Debug || !r.Metrics {
		t.Error("debug/metrics not loaded")
	}
}

func TestResolveRejectsBadPort(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "preview:\n  port: 70000\n")

	if _, err := Resolve(dir); err == nil {
		t.Fatal("expected port range error")
	}
}

func TestLoadOptionalParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "preview: [not a mapping\n")

	if _, err := LoadOptional(dir); err == nil {
		t.Fatal("expected parse error")
	}
}
