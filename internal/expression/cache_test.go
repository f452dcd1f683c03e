package expression

import (
	"testing"
	"time"

	"github.com/axobase/egde/internal/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvDigestIsCoarseAndStable(t *testing.T) {
	a := Environment{Balance: 101, StarvationDays: 1, ThrivingDays: 1, Stress: 0.1, Mode: "normal"}
	b := Environment{Balance: 109, StarvationDays: 0, ThrivingDays: 2, Stress: 0.2, Mode: "normal"}
	assert.Equal(t, envDigest(a), envDigest(b), "same bucket ⇒ same digest")

	c := Environment{Balance: 250, StarvationDays: 1, ThrivingDays: 1, Stress: 0.1, Mode: "normal"}
	assert.NotEqual(t, envDigest(a), envDigest(c))
}

func TestCacheGetOrComputeCachesOnSecondCall(t *testing.T) {
	cache := NewCache(10, time.Minute)
	g := simpleGenome()
	env := Environment{Balance: 200}
	key := Key("abcdef0123456789", env)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	first := cache.GetOrCompute(key, Input{Genome: g, Environment: env, AgeDays: 40})
	second, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, first.TotalMetabolicCost, second.TotalMetabolicCost)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCacheEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	cache := NewCache(2, time.Minute)
	cache.Put("k1", Result{})
	cache.Put("k2", Result{})
	cache.Put("k3", Result{})

	_, ok := cache.Get("k1")
	assert.False(t, ok, "k1 should have been evicted")
	_, ok = cache.Get("k2")
	assert.True(t, ok)
	_, ok = cache.Get("k3")
	assert.True(t, ok)
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	cache := NewCache(10, time.Millisecond)
	cache.Put("k1", Result{})
	time.Sleep(5 * time.Millisecond)
	_, ok := cache.Get("k1")
	assert.False(t, ok)
}

func TestCacheInvalidateByGenomeHashPrefix(t *testing.T) {
	cache := NewCache(10, time.Minute)
	cache.Put("aaaa1111", Result{})
	cache.Put("aaaa2222", Result{})
	cache.Put("bbbb3333", Result{})

	removed := cache.Invalidate(InvalidateFilter{GenomeHashPrefix: "aaaa"})
	assert.Equal(t, 2, removed)

	_, ok := cache.Get("bbbb3333")
	assert.True(t, ok)
}

func TestCacheCleanupRemovesExpiredEntriesOnly(t *testing.T) {
	cache := NewCache(10, time.Hour)
	cache.Put("fresh", Result{})
	cache.items["stale"] = cache.order.PushBack(&entry{key: "stale", timestamp: time.Now().Add(-2 * time.Hour), ttl: time.Hour})

	removed := cache.Cleanup()
	assert.Equal(t, 1, removed)
	_, ok := cache.Get("fresh")
	assert.True(t, ok)
}

func TestBatchGetOrComputeDeduplicatesIdenticalKeys(t *testing.T) {
	cache := NewCache(10, time.Minute)
	g := simpleGenome()
	env := Environment{Balance: 200}
	key := Key("0123456789abcdef", env)

	inputs := map[string]Input{
		key: {Genome: g, Environment: env, AgeDays: 10},
	}
	results := cache.BatchGetOrCompute(inputs)
	require.Contains(t, results, key)
	assert.Equal(t, 1, cache.Stats().Size)
}

func TestKeyTruncatesGenomeHashTo16Chars(t *testing.T) {
	g := genome.CreateGenesisGenome("L")
	hash := g.Hash()
	key := Key(hash, Environment{})
	assert.Len(t, key, 16+8)
}
