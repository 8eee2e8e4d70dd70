package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor or exporter emits per save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so files replaced by rename are still seen.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	onChange func(path string)
	logger   *zap.Logger
	debounce time.Duration
	pending  map[string]*pendingChange
	gen      uint64
	inflight sync.WaitGroup
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// pendingChange is a debounced notification. Only the timer whose gen matches
// the current entry may fire.
type pendingChange struct {
	timer *time.Timer
	gen   uint64
}

// New creates a watcher for paths. onChange runs on the watcher goroutine.
func New(paths []string, onChange func(path string), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]struct{}, len(paths)),
		onChange: onChange,
		logger:   logger,
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingChange),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, p := range paths {
		w.files[abs(p)] = struct{}{}
	}
	return w, nil
}

// SetDebounce changes the debounce window. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Start begins watching. It returns once the directories are registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dirs := map[string]struct{}{}
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
		w.logger.Info("watching directory", zap.String("dir", d))
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop closes the watcher and waits for the event loop and any running
// onChange callback to return.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
	w.inflight.Wait()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	path := abs(ev.Name)
	if _, ok := w.files[path]; !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	w.gen++
	gen, op := w.gen, ev.Op
	w.pending[path] = &pendingChange{
		gen:   gen,
		timer: time.AfterFunc(w.debounce, func() { w.fire(path, gen, op) }),
	}
}

// fire runs onChange for path unless a newer event superseded gen or the
// watcher stopped meanwhile.
func (w *Watcher) fire(path string, gen uint64, op fsnotify.Op) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || p.gen != gen || !w.running {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	w.logger.Info("source changed", zap.String("path", path), zap.String("op", op.String()))
	w.onChange(path)
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
