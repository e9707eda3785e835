package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"qasmgen/internal/circuitfile"
)

// QASMExt is the extension of exported programs.
const QASMExt = ".qasm"

// ErrOutputCollision is returned when two inputs would be written to the same
// output file.
var ErrOutputCollision = errors.New("output path collision")

// IsCircuitFile reports whether path has a circuit file extension.
func IsCircuitFile(path string) bool {
	return slices.Contains(circuitfile.Extensions, strings.ToLower(filepath.Ext(path)))
}

// ListCircuitFiles returns the sorted circuit files below dir. When pattern is
// non-empty only base names matching it are kept.
func ListCircuitFiles(dir, pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsCircuitFile(path) {
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandInputs turns command-line arguments (files or directories) into a
// sorted, de-duplicated list of circuit files.
func ExpandInputs(args []string, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !IsCircuitFile(arg) {
				return nil, fmt.Errorf("%s: %w", arg, circuitfile.ErrUnknownFormat)
			}
			add(arg)
			continue
		}
		files, err := ListCircuitFiles(arg, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(out)
	return out, nil
}

// OutputPath returns where the program for input is written: next to the
// input, or inside outDir when set.
func OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + QASMExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

func checkCollisions(files []string, outDir string) error {
	owners := make(map[string]string, len(files))
	for _, f := range files {
		out := OutputPath(f, outDir)
		if prev, ok := owners[out]; ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrOutputCollision, prev, f, out)
		}
		owners[out] = f
	}
	return nil
}

// writeAtomic replaces path with data via a temporary file in the same
// directory, so readers never observe a partially written program.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
