package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"qasmgen/internal/version"
)

func TestRenderVersionJSON(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123"}
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true, showDate: true}); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if payload.Tool != "qasmgen" || payload.Version != "1.2.3" || payload.Target != exportTarget {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.GitCommit != "abc123" || payload.BuildDate != "unknown" || payload.GitMessage != "" {
		t.Fatalf("unexpected optional fields %+v", payload)
	}
}

func TestRenderVersionPretty(t *testing.T) {
	withoutColor(t)
	orig := version.Version
	version.Version = "0.3.1"
	t.Cleanup(func() { version.Version = orig })

	var buf bytes.Buffer
	renderVersionPretty(&buf, collectVersionInfo(), versionOptions{showMessage: true})
	out := buf.String()
	if !strings.HasPrefix(out, "qasmgen 0.3.1 (OpenQASM 2.0)\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "message: unknown") || strings.Contains(out, "commit:") {
		t.Fatalf("unexpected detail lines:\n%s", out)
	}
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cases := []struct {
		value string
		tty   bool
		want  bool
	}{
		{"on", false, true},
		{"off", true, false},
		{"auto", true, true},
		{"auto", false, false},
	}
	for _, tc := range cases {
		got, err := colorEnabled(tc.value, tc.tty)
		if err != nil || got != tc.want {
			t.Errorf("colorEnabled(%q, %v) = %v, %v", tc.value, tc.tty, got, err)
		}
	}
	if _, err := colorEnabled("sometimes", true); err == nil {
		t.Fatalf("expected error for invalid value")
	}
}

func TestParseProgressView(t *testing.T) {
	for in, want := range map[string]progressView{"": progressAuto, "AUTO": progressAuto, " on ": progressOn, "off": progressOff} {
		got, err := parseProgressView(in)
		if err != nil || got != want {
			t.Errorf("parseProgressView(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseProgressView("fancy"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestShowProgress(t *testing.T) {
	cases := []struct {
		opts exportOptions
		tty  bool
		want bool
	}{
		{exportOptions{ui: progressAuto}, true, true},
		{exportOptions{ui: progressAuto}, false, false},
		{exportOptions{ui: progressOn}, false, true},
		{exportOptions{ui: progressOff}, true, false},
		{exportOptions{ui: progressOn, watch: true}, true, false},
		{exportOptions{ui: progressOn, quiet: true}, true, false},
	}
	for _, tc := range cases {
		if got := tc.opts.showProgress(tc.tty); got != tc.want {
			t.Errorf("showProgress(%+v, tty=%v) = %v, want %v", tc.opts, tc.tty, got, tc.want)
		}
	}
}
