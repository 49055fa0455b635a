package cachestore

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/teranos/specgraph/errors"
)

// DefaultMemoryEntries bounds a memory store when no size is configured.
const DefaultMemoryEntries = 4096

type memoryEntry struct {
	batch Batch
	stamp time.Time
}

// MemoryStore keeps snapshots in a bounded LRU. Evicted snapshots are
// absent, which only costs a re-parse.
type MemoryStore struct {
	cache *lru.Cache[string, memoryEntry]
}

// NewMemoryStore returns a store holding at most size snapshots.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	cache, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, errors.Wrap(err, "create memory cache")
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Stat(key string) (time.Time, bool, error) {
	e, ok := s.cache.Peek(key)
	if !ok {
		return time.Time{}, false, nil
	}
	return e.stamp, true, nil
}

func (s *MemoryStore) Read(key string) (Batch, error) {
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, errors.Markf(errors.ErrNotFound, "no snapshot for %s", key)
	}
	return copyBatch(e.batch), nil
}

func (s *MemoryStore) Write(key string, stamp time.Time, batch Batch) error {
	s.cache.Add(key, memoryEntry{batch: copyBatch(batch), stamp: stamp})
	return nil
}

// Len returns the number of cached snapshots.
func (s *MemoryStore) Len() int { return s.cache.Len() }

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
