package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionSingleLine(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "loom ") || strings.Count(got, "\n") != 1 {
		t.Errorf("output = %q, want a single loom-prefixed line", got)
	}
	if !strings.Contains(got, "commit") || !strings.Contains(got, "built") {
		t.Errorf("output = %q, missing build fields", got)
	}
}

func TestVersionJSON(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var b buildInfo
	if err := json.Unmarshal(out.Bytes(), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if b.Version == "" || b.Go == "" || !strings.Contains(b.Platform, "/") {
		t.Errorf("decoded build info incomplete: %+v", b)
	}
}
