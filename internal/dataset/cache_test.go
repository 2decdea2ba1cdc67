package dataset

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudash/pkg/contracts/domain"
)

func TestCacheHitAndMiss(t *testing.T) {
	path := writeFile(t, t.TempDir(), "datos.csv", scenarioCSV)

	var lookups []bool
	cache := NewCache(NewLoader(nil), WithLookupHook(func(_ context.Context, hit bool) {
		lookups = append(lookups, hit)
	}))

	first, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []bool{false, true}, lookups)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Loads)
	assert.Equal(t, 0.5, stats.HitRatio)

	key, err := Key(path)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, stats.Keys)
}

func TestCacheKeyIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "datos.csv", scenarioCSV)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cache := NewCache(NewLoader(nil))
	a, err := cache.Get(context.Background(), "datos.csv")
	require.NoError(t, err)
	b, err := cache.Get(context.Background(), "./datos.csv")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int64(1), cache.Stats().Loads)
}

func TestCacheConcurrentMissesShareOneLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "datos.csv", scenarioCSV)
	cache := NewCache(NewLoader(nil))

	const workers = 16
	results := make([]*domain.Dataset, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(context.Background(), path)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), cache.Stats().Loads)
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	path := writeFile(t, t.TempDir(), "datos.csv", scenarioCSV)
	cache := NewCache(NewLoader(nil))
	ctx := context.Background()

	first, err := cache.Get(ctx, path)
	require.NoError(t, err)

	cache.Invalidate(path)
	assert.Equal(t, 0, cache.Stats().Entries)

	second, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Records, second.Records)

	cache.Clear()
	stats := cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(2), stats.Loads)
}

func TestCacheModTimeCheck(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datos.csv", scenarioCSV)
	ctx := context.Background()

	cache := NewCache(NewLoader(nil), WithModTimeCheck(true))
	first, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Len())

	// rewrite with one row less and a different mtime
	lines := scenarioCSV[:len(scenarioCSV)-len("2024-I;B;Tarde;2do;Sci;S3;Mar;20;15;5;0;85;7.5\n")]
	writeFile(t, dir, "datos.csv", lines)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len())
	assert.Equal(t, int64(1), cache.Stats().Stale)

	// unchanged file is served from cache
	third, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Same(t, second, third)
}

func TestCacheWithoutModTimeCheckKeepsEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datos.csv", scenarioCSV)
	ctx := context.Background()

	cache := NewCache(NewLoader(nil))
	first, err := cache.Get(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "datos.csv", testHeader+"\n")
	second, err := cache.Get(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCacheMissingFile(t *testing.T) {
	for _, check := range []bool{false, true} {
		cache := NewCache(NewLoader(nil), WithModTimeCheck(check))
		_, err := cache.Get(context.Background(), "/nonexistent/datos.csv")
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.Equal(t, 0, cache.Stats().Entries)
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datos.csv", "Periodo,Sede\n")
	cache := NewCache(NewLoader(nil))

	_, err := cache.Get(context.Background(), path)
	require.ErrorIs(t, err, ErrSchemaMismatch)

	writeFile(t, dir, "datos.csv", scenarioCSV)
	ds, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}
