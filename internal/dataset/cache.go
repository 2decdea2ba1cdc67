package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"edudash/pkg/contracts/domain"
)

// CacheEntry is one loaded dataset together with the file state it was
// read from. Entries are replaced wholesale and never mutated.
type CacheEntry struct {
	Dataset  *domain.Dataset
	ModTime  time.Time
	Size     int64
	CachedAt time.Time
}

// CacheStats is a snapshot of the cache counters
type CacheStats struct {
	Entries  int      `json:"entries"`
	Hits     int64    `json:"hits"`
	Misses   int64    `json:"misses"`
	Loads    int64    `json:"loads"`
	Stale    int64    `json:"stale"`
	HitRatio float64  `json:"hit_ratio"`
	Keys     []string `json:"keys"`
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithModTimeCheck makes Get reload a file whose size or modification
// time changed since it was cached.
func WithModTimeCheck(enabled bool) CacheOption {
	return func(c *Cache) {
		c.checkModTime = enabled
	}
}

// WithLookupHook registers a callback invoked after each Get with
// whether it was served from the cache.
func WithLookupHook(hook func(ctx context.Context, hit bool)) CacheOption {
	return func(c *Cache) {
		c.onLookup = hook
	}
}

// WithLogger sets the cache logger
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger.With(slog.String("component", "dataset_cache"))
	}
}

// Cache is a read-through dataset cache keyed by absolute file path.
// Concurrent misses on the same path share a single parse.
type Cache struct {
	loader       *Loader
	entries      map[string]CacheEntry
	mutex        sync.RWMutex
	group        singleflight.Group
	checkModTime bool
	onLookup     func(ctx context.Context, hit bool)
	logger       *slog.Logger

	hitCount   int64
	missCount  int64
	loadCount  int64
	staleCount int64
}

// NewCache creates a cache backed by loader
func NewCache(loader *Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:  loader,
		entries: make(map[string]CacheEntry),
		logger:  slog.Default().With(slog.String("component", "dataset_cache")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key normalizes path into the cache key
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// Get returns the dataset for path, loading it on a miss
func (c *Cache) Get(ctx context.Context, path string) (*domain.Dataset, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}

	var info os.FileInfo
	if c.checkModTime {
		info, err = os.Stat(key)
		if err != nil {
			if os.IsNotExist(err) {
				c.Invalidate(key)
				return nil, &DataUnavailableError{Expected: key, Searched: []string{key}, Err: err}
			}
			return nil, fmt.Errorf("failed to stat data file: %w", err)
		}
	}

	if ds, ok := c.lookup(key, info); ok {
		c.record(ctx, true)
		return ds, nil
	}
	c.record(ctx, false)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// another flight may have filled the entry since the lookup above
		if ds, _, fresh := c.peek(key, info); fresh {
			return ds, nil
		}
		return c.load(context.WithoutCancel(ctx), key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) lookup(key string, info os.FileInfo) (*domain.Dataset, bool) {
	ds, present, fresh := c.peek(key, info)
	if present && !fresh {
		c.mutex.Lock()
		c.staleCount++
		c.mutex.Unlock()
		c.logger.Info("Cached dataset is stale",
			slog.String("path", key),
			slog.Time("file_mod_time", info.ModTime()))
	}
	return ds, fresh
}

// peek reports whether key is cached and, when info is given, whether the
// entry still matches the file on disk.
func (c *Cache) peek(key string, info os.FileInfo) (*domain.Dataset, bool, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()
	if !ok {
		return nil, false, false
	}
	if info != nil && (!info.ModTime().Equal(entry.ModTime) || info.Size() != entry.Size) {
		return nil, true, false
	}
	return entry.Dataset, true, true
}

func (c *Cache) load(ctx context.Context, key string) (*domain.Dataset, error) {
	// stat before reading so a concurrent write shows up as stale next time
	info, statErr := os.Stat(key)

	ds, err := c.loader.LoadFile(ctx, key)
	if err != nil {
		return nil, err
	}

	entry := CacheEntry{Dataset: ds, CachedAt: time.Now()}
	if statErr == nil {
		entry.ModTime = info.ModTime()
		entry.Size = info.Size()
	}

	c.mutex.Lock()
	c.entries[key] = entry
	c.loadCount++
	c.mutex.Unlock()

	return ds, nil
}

func (c *Cache) record(ctx context.Context, hit bool) {
	c.mutex.Lock()
	if hit {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.mutex.Unlock()

	if c.onLookup != nil {
		c.onLookup(ctx, hit)
	}
}

// Invalidate drops the entry for path
func (c *Cache) Invalidate(path string) {
	key, err := Key(path)
	if err != nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
	c.group.Forget(key)
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key := range c.entries {
		c.group.Forget(key)
	}
	c.entries = make(map[string]CacheEntry)
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.hitCount + c.missCount
	ratio := float64(0)
	if total > 0 {
		ratio = float64(c.hitCount) / float64(total)
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return CacheStats{
		Entries:  len(c.entries),
		Hits:     c.hitCount,
		Misses:   c.missCount,
		Loads:    c.loadCount,
		Stale:    c.staleCount,
		HitRatio: ratio,
		Keys:     keys,
	}
}
