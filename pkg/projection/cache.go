package projection

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/atomic"

	"github.com/jzeiders/gqlshape/pkg/naming"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

const cacheShards = 16

type memoKey struct {
	fragment string
	parent   string
}

type memoEntry struct {
	once        sync.Once
	result      typetree.Result
	assignments []naming.Assignment
	err         error
}

type cacheShard struct {
	mu      sync.Mutex
	entries map[memoKey]*memoEntry
}

// memoCache holds one projection per (fragment, parent type). Entries are
// computed once and read-only afterwards; shards are picked by fragment name.
type memoCache struct {
	shards [cacheShards]cacheShard
	hits   atomic.Int64
	misses atomic.Int64
}

func newMemoCache() *memoCache {
	c := &memoCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[memoKey]*memoEntry)
	}
	return c
}

// get returns the entry for key, running compute exactly once per key.
// compute runs outside the shard lock, so it may recurse into the cache for
// other keys.
func (c *memoCache) get(key memoKey, compute func() (typetree.Result, []naming.Assignment, error)) *memoEntry {
	shard := &c.shards[xxhash.Sum64String(key.fragment)%cacheShards]

	shard.mu.Lock()
	entry, ok := shard.entries[key]
	if !ok {
		entry = &memoEntry{}
		shard.entries[key] = entry
	}
	shard.mu.Unlock()

	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}

	entry.once.Do(func() {
		entry.result, entry.assignments, entry.err = compute()
	})
	return entry
}

func (c *memoCache) stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
