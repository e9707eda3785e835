package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"qasmgen/internal/trace"
)

// Config controls a Watcher.
type Config struct {
	// Paths are files or directories; directories are watched recursively.
	Paths []string
	// Extensions selects the files that trigger a change (e.g. ".toml").
	Extensions []string
	// Debounce is the quiet period before changes are delivered (default 100ms).
	Debounce time.Duration
}

// Watcher reports batches of changed circuit files.
type Watcher struct {
	fsw   *fsnotify.Watcher
	cfg   Config
	dirs  []string            // watched recursively
	files map[string]struct{} // watched through their parent directory
}

// New creates a Watcher and registers cfg.Paths with it.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, cfg: cfg, files: make(map[string]struct{})}
	for _, p := range cfg.Paths {
		if err := w.add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if !info.IsDir() {
		// Editors replace files on save; watching the directory survives that.
		w.files[path] = struct{}{}
		return w.fsw.Add(filepath.Dir(path))
	}
	w.dirs = append(w.dirs, path)
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", p, err)
		}
		return nil
	})
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	if !slices.ContainsFunc(w.dirs, func(dir string) bool { return within(dir, name) }) {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.cfg.Extensions, strings.ToLower(filepath.Ext(base)))
}

// Watch blocks until ctx is done, calling onChange with the sorted set of
// files changed during each debounce window. Newly created directories are
// added to the watch set.
func (w *Watcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	tracer := trace.FromContext(ctx)
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.add(ev.Name); err != nil {
						trace.Error(tracer, trace.ScopeDriver, "watch", err, trace.CurrentSpan(ctx))
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			trace.Point(tracer, trace.ScopeFile, "change:"+ev.Name, ev.Op.String(), trace.CurrentSpan(ctx))
			pending[filepath.Clean(ev.Name)] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				if _, err := os.Stat(p); err == nil {
					paths = append(paths, p)
				}
			}
			clear(pending)
			sort.Strings(paths)
			if len(paths) > 0 {
				onChange(paths)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			trace.Error(tracer, trace.ScopeDriver, "watch", err, trace.CurrentSpan(ctx))
		}
	}
}
