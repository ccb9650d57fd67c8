package matchdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gematrix/internal/logging"
)

// ErrWatcherClosed is returned by Start once the watcher has been stopped.
var ErrWatcherClosed = errors.New("watcher closed")

// DefaultDebounce is how long a file must stay quiet before a reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Database whenever its local CSV file changes.
// It watches the file's directory so editors that save by rename still
// trigger a reload.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	db          *Database
	src         *FileSource
	path        string // cleaned absolute path of the CSV
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onReload    func(records int, err error)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool // fsnotify handle released; the watcher cannot start again

	stats WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events          int
	Reloads         int
	Failures        int
	Errors          int
	LastEventTime   time.Time
	LastEventType   string
	LastRecordCount int
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithReloadHook registers fn to run after every reload attempt.
func WithReloadHook(fn func(records int, err error)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher that reloads db from src.
func NewWatcher(db *Database, src *FileSource, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(src.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", src.Path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		db:          db,
		src:         src,
		path:        filepath.Clean(abs),
		dir:         filepath.Dir(abs),
		debounceMap: make(map[string]time.Time),
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It does not block. A watcher that failed to start
// or was stopped cannot be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.closed = true
		w.mu.Unlock()
		_ = w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logging.Watcher("watching %s", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for its loop to exit and releases the
// fsnotify handle, also when Start was never called.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatcher).Error("error closing watcher: %v", err)
	}
	logging.Watcher("stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watcher("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatcher).Error("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	default:
		return
	}
	logging.WatcherDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType

	// A removed or renamed-away file keeps serving the last good index
	// until it reappears.
	if eventType == "delete" || eventType == "rename" {
		return
	}
	w.debounceMap[w.path] = time.Now()
}

func (w *Watcher) processDebouncedEvents(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	due := false
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			delete(w.debounceMap, path)
			due = true
		}
	}
	w.mu.Unlock()

	if due {
		w.reload(ctx)
	}
}

func (w *Watcher) reload(ctx context.Context) {
	logging.Watcher("reloading %s", w.path)
	records, err := w.db.Load(ctx, w.src, nil)

	w.mu.Lock()
	if err != nil {
		w.stats.Failures++
	} else {
		w.stats.Reloads++
		w.stats.LastRecordCount = records
	}
	hook := w.onReload
	w.mu.Unlock()

	if err != nil {
		logging.Get(logging.CategoryWatcher).Warn("reload failed, keeping previous index: %v", err)
	}
	if hook != nil {
		hook(records, err)
	}
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the watcher is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
