package version

import (
	"os"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func TestCurrentDefaultsToDev(t *testing.T) {
	withVersion(t, "  ")
	if got := Current(); got != "dev" {
		t.Fatalf("Current() = %q, want dev", got)
	}
	withVersion(t, " 1.2.3 ")
	if got := Current(); got != "1.2.3" {
		t.Fatalf("Current() = %q, want 1.2.3", got)
	}
}

func TestColoredWithoutColorIsPlain(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	cases := []string{"0.1.0-dev", "1.2.3", "2.0.0-rc.1", "nightly"}
	for _, v := range cases {
		withVersion(t, v)
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	if os.Getenv("NO_COLOR") != "" {
		t.Skip("NO_COLOR is set")
	}
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	withVersion(t, "1.2.3")
	if got := Colored(); got == "1.2.3" {
		t.Fatalf("expected colored output, got %q", got)
	}
}

func BenchmarkColored(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Colored()
	}
}
