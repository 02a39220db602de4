package metacache

import (
	"sync"

	"github.com/oskari/fictc/internal/compiler"
)

// MemoryCache is an in-process Cache, adapted from the teacher's
// ModuleResolver.modules map guarded by a sync.RWMutex — the same
// "concurrent readers, exclusive writer" shape, generalized from
// *analyzer.Module values to Entry values.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(path, contentHash string) (compiler.ModuleMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || entry.ContentHash != contentHash {
		return compiler.ModuleMetadata{}, false
	}
	return entry.Metadata, true
}

func (c *MemoryCache) Put(path, contentHash string, metadata compiler.ModuleMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = Entry{ContentHash: contentHash, Metadata: metadata}
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
