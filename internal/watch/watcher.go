// SPDX-License-Identifier: MPL-2.0

// Package watch restages pseudo-packages when their sources change.
//
// A Watcher registers the source trees below a project root with fsnotify,
// filters events through doublestar patterns and invokes a callback once the
// tree has been quiet for the debounce period. Events that arrive while the
// callback runs are collected and delivered in the next batch.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")
	// ErrNothingToWatch is returned when none of the configured directories exist.
	ErrNothingToWatch = errors.New("watch: no source directory exists")

	defaultIgnores = []string{
		"**/.git/**",
		"**/__pycache__/**",
		"**/.ipynb_checkpoints/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the project root; Dirs, Patterns and the paths passed to
		// OnChange are relative to it.
		Root string
		// Dirs are watched recursively. Missing directories are skipped.
		Dirs []string
		// Patterns select the files that trigger a callback. Empty matches
		// every non-ignored file.
		Patterns []string
		// Ignore extends DefaultIgnores.
		Ignore   []string
		Debounce time.Duration
		Logger   *log.Logger
		// OnChange receives the sorted, deduplicated changed paths. Errors are
		// logged and do not stop the watcher.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors the source trees of one project.
	Watcher struct {
		cfg      Config
		root     string
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every directory below cfg.Dirs.
func New(cfg Config) (*Watcher, error) {
	for _, group := range [][]string{cfg.Patterns, cfg.Ignore} {
		for _, pat := range group {
			if !doublestar.ValidatePattern(pat) {
				return nil, fmt.Errorf("watch: invalid pattern %q: %w", pat, doublestar.ErrBadPattern)
			}
		}
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		root:     root,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.register(); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}
	return w, nil
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// WatchedDirs lists the registered directories relative to Root.
func (w *Watcher) WatchedDirs() []string {
	list := w.fsw.WatchList()
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, w.rel(p))
	}
	slices.Sort(out)
	return out
}

// Run processes events until ctx is canceled, which returns nil. It may be
// called once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel := w.rel(evt.Name)
			if w.ignored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addIfDir(evt.Name)
			}
			if !w.matches(rel) {
				continue
			}
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("sources changed", "count", len(changed))
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("restage failed", "err", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) register() error {
	found := 0
	for _, dir := range w.cfg.Dirs {
		top := filepath.Join(w.root, dir)
		info, err := os.Stat(top)
		if err != nil || !info.IsDir() {
			w.logger.Warn("source directory not found, not watching", "dir", dir)
			continue
		}
		found++
		err = filepath.WalkDir(top, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if rel := w.rel(path); w.ignored(rel) || w.ignored(rel+"/") {
				return filepath.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if found == 0 {
		return ErrNothingToWatch
	}
	return nil
}

func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if rel := w.rel(path); w.ignored(rel + "/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	return false
}
