// SPDX-License-Identifier: MPL-2.0

// Package watch turns filesystem activity under the project roots into
// debounced rescan requests.
//
// Structural events (create, remove, rename) anywhere below a watched root
// count as changes; plain writes count only for the files named in
// Config.Files, such as the project descriptor. Events within the debounce
// window are coalesced so the callback fires once with every changed path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/maps"
)

const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are always applied, matched against paths relative to
// their root.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories (or single files) watched recursively.
		// Missing roots are skipped; SetRoots can add them later.
		Roots []string
		// Files are watched for writes as well as structural changes.
		// Their parent directories are watched without recursion.
		Files []string
		// Ignore are extra doublestar patterns, relative to the root that
		// holds the path, whose events never count.
		Ignore []string
		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values mean 500ms.
		Debounce time.Duration
		// OnChange receives the deduplicated, sorted changed paths. A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics. A nil logger discards them.
		Logger *log.Logger
	}

	// Watcher monitors the project roots. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		logger   *log.Logger
		ignores  []string
		debounce time.Duration
		files    map[string]bool
		fileDirs map[string]bool
		started  atomic.Bool

		mu sync.Mutex
		// roots are the cleaned absolute roots, outermost first.
		roots []string
		// watched maps every path registered for a root to that root.
		watched map[string]string
	}
)

// New creates a Watcher and registers every non-ignored directory under the
// configured roots.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		logger:   logger,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		files:    make(map[string]bool),
		fileDirs: make(map[string]bool),
		watched:  make(map[string]string),
	}

	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.closeQuietly()
			return nil, fmt.Errorf("watch: resolve %q: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if err := fsw.Add(dir); err != nil {
			w.closeQuietly()
			return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
		w.fileDirs[dir] = true
	}

	if err := w.SetRoots(cfg.Roots); err != nil {
		w.closeQuietly()
		return nil, err
	}
	return w, nil
}

// SetRoots replaces the watched roots. Directories that belonged only to
// dropped roots are unregistered; new roots are walked and registered.
func (w *Watcher) SetRoots(roots []string) error {
	next, err := outermost(roots)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for path, root := range w.watched {
		if slices.Contains(next, root) {
			continue
		}
		delete(w.watched, path)
		if w.fileDirs[path] {
			continue
		}
		if err := w.fsw.Remove(path); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			w.logger.Debug("unwatch failed", "path", path, "error", err)
		}
	}

	for _, root := range next {
		if slices.Contains(w.roots, root) {
			continue
		}
		if err := w.addTree(root, root); err != nil {
			return err
		}
	}
	w.roots = next
	w.logger.Debug("watching roots", "roots", len(next), "paths", len(w.watched))
	return nil
}

// WatchedPaths returns the registered paths in sorted order.
func (w *Watcher) WatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := append(maps.Keys(w.watched), maps.Keys(w.fileDirs)...)
	slices.Sort(paths)
	return slices.Compact(paths)
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation because it is scheduled by
	// time.AfterFunc; it checks ctx first. A callback still running when the
	// next window closes makes fire reschedule itself instead of overlapping.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("callback still running, deferring changes")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := maps.Keys(pending)
		clear(pending)
		mu.Unlock()
		slices.Sort(changed)

		w.logger.Debug("changes detected", "paths", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("change callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// relevant reports whether evt should count as a change.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if w.files[evt.Name] {
		return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) ||
			evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename)
	}
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
		return false
	}
	root, ok := w.rootOf(evt.Name)
	if !ok {
		return false
	}
	return !w.isIgnored(root, evt.Name)
}

// rootOf returns the watched root holding path.
func (w *Watcher) rootOf(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// addTree registers start and every non-ignored directory below it for
// root. Callers hold w.mu.
func (w *Watcher) addTree(start, root string) error {
	info, err := os.Stat(start)
	if err != nil {
		w.logger.Debug("skipping missing root", "root", start, "error", err)
		return nil
	}
	if !info.IsDir() {
		if err := w.fsw.Add(start); err != nil {
			return fmt.Errorf("watch: add file root %q: %w", start, err)
		}
		w.watched[start] = root
		return nil
	}

	walkErr := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped rather than aborting the walk.
			w.logger.Warn("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isIgnored(root, path) {
			return filepath.SkipDir
		}
		if _, ok := w.watched[path]; ok {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		w.watched[path] = root
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk %q: %w", start, walkErr)
	}
	return nil
}

// maybeAddDir registers a directory created after the initial walk, along
// with anything already created inside it.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	root, ok := w.rootOf(path)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.addTree(path, root); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

// isIgnored matches path, relative to root, against the ignore patterns.
// Directories are also tried with a trailing slash so "**/gen/**" skips gen.
func (w *Watcher) isIgnored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matchIgnore(pat, rel) || matchIgnore(pat, rel+"/") {
			return true
		}
	}
	return false
}

func (w *Watcher) closeQuietly() {
	if err := w.fsw.Close(); err != nil {
		w.logger.Debug("close fsnotify after init failure", "error", err)
	}
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchIgnore(pattern, rel string) bool {
	matched, err := doublestar.Match(pattern, rel)
	return err == nil && matched
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}
	return nil
}

// outermost cleans roots and drops those nested in another root.
func outermost(roots []string) ([]string, error) {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", r, err)
		}
		cleaned = append(cleaned, abs)
	}
	slices.Sort(cleaned)
	cleaned = slices.Compact(cleaned)

	var out []string
	for _, r := range cleaned {
		nested := slices.ContainsFunc(out, func(o string) bool {
			return strings.HasPrefix(r, o+string(filepath.Separator)) || o == string(filepath.Separator)
		})
		if !nested {
			out = append(out, r)
		}
	}
	return out, nil
}

func isFatal(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
