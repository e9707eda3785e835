package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "qasmgen.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
	meta   toml.MetaData
}

type projectConfig struct {
	Export exportConfig `toml:"export"`
}

type exportConfig struct {
	Inputs  []string `toml:"inputs"`
	OutDir  string   `toml:"out_dir"`
	Jobs    int      `toml:"jobs"`
	Pattern string   `toml:"pattern"`
}

func findQasmgenToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findQasmgenToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, meta, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
		meta:   meta,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, toml.MetaData, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, meta, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, meta, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("export") {
		return projectConfig{}, meta, fmt.Errorf("%s: missing [export]", path)
	}
	if meta.IsDefined("export", "out_dir") && strings.TrimSpace(cfg.Export.OutDir) == "" {
		return projectConfig{}, meta, fmt.Errorf("%s: [export].out_dir must not be empty", path)
	}
	if meta.IsDefined("export", "jobs") && cfg.Export.Jobs < 1 {
		return projectConfig{}, meta, fmt.Errorf("%s: [export].jobs must be positive, got %d", path, cfg.Export.Jobs)
	}
	if meta.IsDefined("export", "pattern") {
		if _, err := filepath.Match(cfg.Export.Pattern, ""); err != nil {
			return projectConfig{}, meta, fmt.Errorf("%s: invalid [export].pattern %q: %w", path, cfg.Export.Pattern, err)
		}
	}
	for _, in := range cfg.Export.Inputs {
		if strings.TrimSpace(in) == "" {
			return projectConfig{}, meta, fmt.Errorf("%s: [export].inputs contains an empty path", path)
		}
	}
	return cfg, meta, nil
}

// resolve turns a manifest-relative path into one usable from the working
// directory.
func (m *projectManifest) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// inputs returns the configured inputs, or the manifest directory when none
// are listed.
func (m *projectManifest) inputs() []string {
	if len(m.Config.Export.Inputs) == 0 {
		return []string{m.Root}
	}
	out := make([]string, 0, len(m.Config.Export.Inputs))
	for _, in := range m.Config.Export.Inputs {
		out = append(out, m.resolve(in))
	}
	return out
}

func (m *projectManifest) outDir() string {
	if !m.meta.IsDefined("export", "out_dir") {
		return ""
	}
	return m.resolve(m.Config.Export.OutDir)
}
