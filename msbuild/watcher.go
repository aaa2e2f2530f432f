package msbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maxwhale/SharpDevelop/observability"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// ChangeOp is the kind of external change seen on a project file.
type ChangeOp int

// Change operations.
const (
	ChangeWrite ChangeOp = iota
	ChangeCreate
	ChangeRemove
	ChangeRename
)

func (op ChangeOp) String() string {
	switch op {
	case ChangeCreate:
		return "create"
	case ChangeRemove:
		return "remove"
	case ChangeRename:
		return "rename"
	default:
		return "write"
	}
}

// Change is a debounced external change of a watched project file.
type Change struct {
	Path string
	Op   ChangeOp
}

// Watcher reports external edits of project files. It watches the parent
// directories so that editors replacing the file are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   observability.Logger
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher creates a watcher. A zero debounce uses DefaultDebounce.
func NewWatcher(logger observability.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fw,
		logger:   logger,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

func (w *Watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

// Run delivers debounced changes to handler until ctx is done or the
// watcher is closed. Changes to one file within the debounce window are
// coalesced into the last one.
func (w *Watcher) Run(ctx context.Context, handler func(Change)) error {
	pending := make(map[string]ChangeOp)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path, op := range pending {
			handler(Change{Path: path, Op: op})
		}
		clear(pending)
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				flush()
				return nil
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.watched(path) {
				continue
			}
			op := convertOp(event.Op)
			observability.ProjectFileEventsTotal.WithLabelValues(op.String()).Inc()
			w.logger.Verbose("Project file event {Op} on {Path}", op.String(), path)
			pending[path] = op

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error: {Error}", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func convertOp(op fsnotify.Op) ChangeOp {
	switch {
	case op.Has(fsnotify.Create):
		return ChangeCreate
	case op.Has(fsnotify.Remove):
		return ChangeRemove
	case op.Has(fsnotify.Rename):
		return ChangeRename
	default:
		return ChangeWrite
	}
}
