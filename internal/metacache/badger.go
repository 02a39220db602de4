package metacache

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/oskari/fictc/internal/compiler"
)

// BadgerCache is a persistent, cross-process Cache backed by badger/v4,
// grounded on the pack's storage/badger package (OpenInMemory/
// OpenWithPath over badger.DefaultOptions), generalized from an
// arbitrary key-value store to JSON-serialized Entry values keyed by
// file path.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (creating if absent) a persistent cache rooted
// at dir.
func OpenBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening module metadata cache at %s: %w", dir, err)
	}
	return &BadgerCache{db: db}, nil
}

// OpenBadgerCacheInMemory opens an ephemeral, process-lifetime cache
// that keeps nothing on disk.
func OpenBadgerCacheInMemory() (*BadgerCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory module metadata cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(path, contentHash string) (compiler.ModuleMetadata, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil || entry.ContentHash != contentHash {
		return compiler.ModuleMetadata{}, false
	}
	return entry.Metadata, true
}

func (c *BadgerCache) Put(path, contentHash string, metadata compiler.ModuleMetadata) error {
	entry := Entry{ContentHash: contentHash, Metadata: metadata}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry for %s: %w", path, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
