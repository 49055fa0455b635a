package cachestore

import (
	"time"
)

// Tiered serves snapshots from memory and falls back to a persistent store.
// Memory entries carry the stamp the backing store reports so both tiers
// agree on staleness.
type Tiered struct {
	memory  *MemoryStore
	backing Store
}

// NewTiered layers memory over backing.
func NewTiered(memory *MemoryStore, backing Store) *Tiered {
	return &Tiered{memory: memory, backing: backing}
}

func (t *Tiered) Stat(key string) (time.Time, bool, error) {
	if stamp, ok, _ := t.memory.Stat(key); ok {
		return stamp, true, nil
	}
	return t.backing.Stat(key)
}

func (t *Tiered) Read(key string) (Batch, error) {
	if _, ok, _ := t.memory.Stat(key); ok {
		return t.memory.Read(key)
	}
	batch, err := t.backing.Read(key)
	if err != nil {
		return nil, err
	}
	if stamp, ok, err := t.backing.Stat(key); err == nil && ok {
		t.memory.Write(key, stamp, batch)
	}
	return batch, nil
}

func (t *Tiered) Write(key string, stamp time.Time, batch Batch) error {
	if err := t.backing.Write(key, stamp, batch); err != nil {
		return err
	}
	if stored, ok, err := t.backing.Stat(key); err == nil && ok {
		stamp = stored
	}
	return t.memory.Write(key, stamp, batch)
}

func (t *Tiered) Close() error {
	t.memory.Close()
	return t.backing.Close()
}
