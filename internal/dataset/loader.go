package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Loader memoizes tables by path. A cached table is reused until the file's
// modification time or size changes, or until it is invalidated explicitly.
type Loader struct {
	opt    ReadOptions
	cache  *lru.Cache[string, *Table]
	logger *zap.Logger

	// read and stat are swapped in tests.
	read func(path string, opt ReadOptions) (*Table, error)
	stat func(path string) (os.FileInfo, error)

	hits   atomic.Int64
	misses atomic.Int64
}

// LoaderStats reports cache activity.
type LoaderStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// NewLoader creates a loader holding at most size tables.
func NewLoader(size int, opt ReadOptions, logger *zap.Logger) (*Loader, error) {
	if size <= 0 {
		size = 16
	}
	if _, err := LookupEncoding(opt.Encoding); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *Table](size)
	if err != nil {
		return nil, fmt.Errorf("create table cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		opt:    opt,
		cache:  cache,
		logger: logger,
		read:   ReadCSV,
		stat:   os.Stat,
	}, nil
}

// Load returns the table for path, reading the file only when it is not
// cached or has changed on disk since it was cached.
func (l *Loader) Load(path string) (*Table, error) {
	key := cacheKey(path)
	info, err := l.stat(path)
	if err != nil {
		l.cache.Remove(key)
		return nil, fmt.Errorf("open csv: %w", err)
	}
	fp := fingerprint(key, info)
	if t, ok := l.cache.Get(key); ok && t.Fingerprint == fp {
		l.hits.Add(1)
		return t, nil
	}
	l.misses.Add(1)

	start := time.Now()
	t, err := l.read(path, l.opt)
	if err != nil {
		l.cache.Remove(key)
		return nil, err
	}
	t.Fingerprint = fp
	l.cache.Add(key, t)
	l.logger.Info("loaded table",
		zap.String("path", path),
		zap.Int("rows", len(t.Rows)),
		zap.Int("columns", len(t.Header)),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// Invalidate drops the cached table for path.
func (l *Loader) Invalidate(path string) {
	if l.cache.Remove(cacheKey(path)) {
		l.logger.Debug("invalidated table", zap.String("path", path))
	}
}

// Purge drops every cached table.
func (l *Loader) Purge() {
	l.cache.Purge()
}

// Stats returns a snapshot of cache activity.
func (l *Loader) Stats() LoaderStats {
	return LoaderStats{Hits: l.hits.Load(), Misses: l.misses.Load(), Entries: l.cache.Len()}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func fingerprint(key string, info os.FileInfo) string {
	return fmt.Sprintf("%s@%d:%d", key, info.ModTime().UnixNano(), info.Size())
}
