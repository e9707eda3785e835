package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"qasmgen/internal/driver"
	"qasmgen/internal/trace"
)

type tracedEvent struct {
	Kind     string `json:"kind"`
	Scope    string `json:"scope"`
	SpanID   uint64 `json:"span_id"`
	ParentID uint64 `json:"parent_id"`
	Name     string `json:"name"`
}

func TestSetupTracingParentsBatchUnderCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeCircuit(t, filepath.Join(dir, "bell.toml"), bellTOML)
	tracePath := filepath.Join(dir, "run.ndjson")

	root := &cobra.Command{Use: "qasmgen"}
	registerRootFlags(root)
	sub := &cobra.Command{Use: "export"}
	root.AddCommand(sub)
	if err := root.PersistentFlags().Set("trace", tracePath); err != nil {
		t.Fatal(err)
	}
	sub.SetContext(context.Background())

	cleanup, err := setupTracing(sub)
	if err != nil {
		t.Fatalf("setupTracing: %v", err)
	}
	if trace.CurrentSpan(sub.Context()) == 0 {
		t.Fatalf("command span missing from context")
	}
	if _, err := driver.ExportFiles(sub.Context(), &driver.ExportRequest{Files: []string{in}, DryRun: true}); err != nil {
		t.Fatal(err)
	}
	cleanup()

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var events []tracedEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev tracedEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad trace line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}

	var driverSpan uint64
	batchParent := ^uint64(0)
	driverEnded := false
	for _, ev := range events {
		switch {
		case ev.Kind == "begin" && ev.Scope == "driver":
			driverSpan = ev.SpanID
			if ev.Name != "qasmgen export" {
				t.Fatalf("driver span name = %q", ev.Name)
			}
		case ev.Kind == "begin" && ev.Scope == "batch":
			batchParent = ev.ParentID
		case ev.Kind == "end" && ev.Scope == "driver":
			driverEnded = true
		}
	}
	if driverSpan == 0 || batchParent != driverSpan || !driverEnded {
		t.Fatalf("driver=%d batch parent=%d ended=%v in %+v", driverSpan, batchParent, driverEnded, events)
	}
}

func TestTraceConfigDefaults(t *testing.T) {
	root := &cobra.Command{Use: "qasmgen"}
	registerRootFlags(root)
	cfg, err := traceConfig(root)
	if err != nil || cfg.Level != trace.LevelOff {
		t.Fatalf("tracing should be off by default: %+v %v", cfg, err)
	}

	if err := root.PersistentFlags().Set("trace-mode", "sideways"); err != nil {
		t.Fatal(err)
	}
	if _, err := traceConfig(root); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}
