package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"qasmgen/internal/circuitfile"
	"qasmgen/internal/observ"
	"qasmgen/internal/qasm"
	"qasmgen/internal/trace"
)

const bellTOML = `qubits = 2
[[gate]]
name = "H"
targets = [0]
[[gate]]
name = "CNOT"
controls = [0]
targets = [1]
`

const bellQASM = "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[2];\nh q[0];\ncx q[0],q[1];\n"

const unsupportedYAML = `qubits: 1
gates:
  - name: U3
    targets: [0]
    params: [0.1, 0.2, 0.3]
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) statuses(file string) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Status
	for _, e := range s.events {
		if e.File == file {
			out = append(out, e.Status)
		}
	}
	return out
}

func TestExportFilesWritesPrograms(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.toml"), bellTOML)
	b := writeFile(t, filepath.Join(dir, "nested", "b.toml"), bellTOML)

	sink := &recordingSink{}
	timer := observ.NewTimer()
	var traceBuf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&traceBuf, trace.LevelDetail, trace.FormatText))

	res, err := ExportFiles(ctx, &ExportRequest{Files: []string{a, b}, Jobs: 2, Progress: sink, Timer: timer})
	if err != nil {
		t.Fatalf("ExportFiles: %v", err)
	}
	if res.Failed() != 0 || res.Err() != nil {
		t.Fatalf("unexpected failures: %v", res.Err())
	}
	for _, f := range res.Files {
		data, err := os.ReadFile(f.Output)
		if err != nil {
			t.Fatalf("output missing: %v", err)
		}
		if string(data) != bellQASM || f.Program != bellQASM || f.Gates != 2 {
			t.Fatalf("unexpected output for %s:\n%s", f.Input, data)
		}
	}
	if res.Files[1].Output != filepath.Join(dir, "nested", "b.qasm") {
		t.Fatalf("output should sit next to input, got %s", res.Files[1].Output)
	}

	got := sink.statuses(a)
	if len(got) == 0 || got[0] != StatusQueued || got[len(got)-1] != StatusDone {
		t.Fatalf("unexpected status sequence for %s: %v", a, got)
	}
	if phases := timer.Report().Phases; len(phases) != 3 {
		t.Fatalf("expected load/export/write phases, got %+v", phases)
	}
	if !strings.Contains(traceBuf.String(), "batch export") {
		t.Fatalf("batch span missing from trace:\n%s", traceBuf.String())
	}
}

func TestExportFilesCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.toml"), bellTOML)
	bad := writeFile(t, filepath.Join(dir, "bad.yaml"), unsupportedYAML)
	out := filepath.Join(dir, "out")

	res, err := ExportFiles(context.Background(), &ExportRequest{Files: []string{bad, good}, OutDir: out})
	if err != nil {
		t.Fatalf("without FailFast the batch itself should succeed: %v", err)
	}
	if res.Failed() != 1 {
		t.Fatalf("expected one failure, got %d", res.Failed())
	}
	if !errors.Is(res.Files[0].Err, qasm.ErrUnsupportedGate) {
		t.Fatalf("expected unsupported gate error, got %v", res.Files[0].Err)
	}
	if _, err := os.Stat(filepath.Join(out, "bad.qasm")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed export must not produce a file")
	}
	if _, err := os.Stat(filepath.Join(out, "good.qasm")); err != nil {
		t.Fatalf("good file not written: %v", err)
	}
}

func TestExportFilesFailFast(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "bad.yaml"), unsupportedYAML)
	good := writeFile(t, filepath.Join(dir, "good.toml"), bellTOML)

	_, err := ExportFiles(context.Background(), &ExportRequest{Files: []string{bad, good}, Jobs: 1, FailFast: true, DryRun: true})
	if !errors.Is(err, qasm.ErrUnsupportedGate) {
		t.Fatalf("expected unsupported gate error, got %v", err)
	}
}

func TestExportFilesFailFastEndsEveryFile(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, filepath.Join(dir, "a_bad.yaml"), unsupportedYAML)}
	for i := 0; i < 20; i++ {
		files = append(files, writeFile(t, filepath.Join(dir, "good"+strconv.Itoa(i)+".toml"), bellTOML))
	}

	sink := &recordingSink{}
	res, err := ExportFiles(context.Background(), &ExportRequest{Files: files, Jobs: 1, FailFast: true, DryRun: true, Progress: sink})
	if !errors.Is(err, qasm.ErrUnsupportedGate) {
		t.Fatalf("expected unsupported gate error, got %v", err)
	}
	errored := 0
	for _, f := range files {
		got := sink.statuses(f)
		if len(got) == 0 {
			t.Fatalf("%s: no events", f)
		}
		switch last := got[len(got)-1]; last {
		case StatusError:
			errored++
		case StatusDone:
		default:
			t.Fatalf("%s: last status %q is not terminal", f, last)
		}
	}
	if errored != res.Failed() {
		t.Fatalf("error events = %d, failed results = %d", errored, res.Failed())
	}
}

func TestExportFilesDryRun(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.toml"), bellTOML)
	res, err := ExportFiles(context.Background(), &ExportRequest{Files: []string{a}, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Files[0].Program != bellQASM {
		t.Fatalf("dry run should still export")
	}
	if _, err := os.Stat(res.Files[0].Output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not write")
	}
}

func TestExportFilesRejectsCollisions(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "x", "c.toml"), bellTOML)
	b := writeFile(t, filepath.Join(dir, "y", "c.toml"), bellTOML)
	_, err := ExportFiles(context.Background(), &ExportRequest{Files: []string{a, b}, OutDir: filepath.Join(dir, "out")})
	if !errors.Is(err, ErrOutputCollision) {
		t.Fatalf("expected ErrOutputCollision, got %v", err)
	}
}

func TestExportFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.toml"), bellTOML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := ExportFiles(ctx, &ExportRequest{Files: []string{a}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Failed() != 1 {
		t.Fatalf("cancelled file should be reported as failed")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.toml"), bellTOML)
	writeFile(t, filepath.Join(dir, "sub", "b.yml"), unsupportedYAML)
	writeFile(t, filepath.Join(dir, "sub", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden", "c.toml"), bellTOML)

	files, err := ExpandInputs([]string{dir, a}, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, filepath.Join(dir, "sub", "b.yml")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("ExpandInputs = %v, want %v", files, want)
	}

	files, err = ExpandInputs([]string{dir}, "*.yml")
	if err != nil || len(files) != 1 {
		t.Fatalf("pattern filter failed: %v %v", files, err)
	}
	if _, err := ExpandInputs([]string{filepath.Join(dir, "sub", "notes.txt")}, ""); !errors.Is(err, circuitfile.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat for explicit non-circuit file, got %v", err)
	}
}

func TestLoadAndExport(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.toml"), bellTOML)
	program, c, err := LoadAndExport(a)
	if err != nil || program != bellQASM || c.Len() != 2 {
		t.Fatalf("LoadAndExport = %q, %v", program, err)
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath(filepath.Join("a", "b.circuit.toml"), ""); got != filepath.Join("a", "b.circuit.qasm") {
		t.Fatalf("OutputPath = %s", got)
	}
	if got := OutputPath("b.yaml", "out"); got != filepath.Join("out", "b.qasm") {
		t.Fatalf("OutputPath with dir = %s", got)
	}
}
