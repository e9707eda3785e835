package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindQasmgenTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[export]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := findQasmgenToml(nested)
	if err != nil || !ok {
		t.Fatalf("findQasmgenToml: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("found %s, want %s", got, want)
	}
}

func TestLoadProjectManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[export]
inputs = ["circuits", "extra/bell.toml"]
out_dir = "build/qasm"
jobs = 4
pattern = "*.toml"
`)
	m, ok, err := loadProjectManifest(root)
	if err != nil || !ok {
		t.Fatalf("loadProjectManifest: ok=%v err=%v", ok, err)
	}
	if m.Config.Export.Jobs != 4 || m.Config.Export.Pattern != "*.toml" {
		t.Fatalf("unexpected config: %+v", m.Config)
	}
	if got := m.outDir(); got != filepath.Join(root, "build", "qasm") {
		t.Fatalf("outDir = %s", got)
	}
	inputs := m.inputs()
	if len(inputs) != 2 || inputs[0] != filepath.Join(root, "circuits") || inputs[1] != filepath.Join(root, "extra", "bell.toml") {
		t.Fatalf("inputs = %v", inputs)
	}
}

func TestManifestDefaults(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[export]\n")
	m, _, err := loadProjectManifest(root)
	if err != nil {
		t.Fatal(err)
	}
	if m.outDir() != "" {
		t.Fatalf("out_dir not set, outDir = %q", m.outDir())
	}
	if in := m.inputs(); len(in) != 1 || in[0] != m.Root {
		t.Fatalf("inputs should default to manifest root, got %v", in)
	}
}

func TestManifestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing export", "title = 'x'\n", "unknown key"},
		{"empty table missing", "", "missing [export]"},
		{"bad jobs", "[export]\njobs = 0\n", "jobs must be positive"},
		{"empty out_dir", "[export]\nout_dir = ' '\n", "out_dir must not be empty"},
		{"bad pattern", "[export]\npattern = '['\n", "invalid [export].pattern"},
		{"empty input", "[export]\ninputs = ['']\n", "empty path"},
		{"unknown key", "[export]\nthreads = 2\n", "unknown key export.threads"},
		{"syntax", "[export\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeManifest(t, root, tc.content)
			_, found, err := loadProjectManifest(root)
			if !found {
				t.Fatalf("manifest should be found")
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}
