// Package cachestore persists per-directory snapshots of decoded items.
//
// A snapshot is a Batch keyed by item identifier together with a stamp the
// loader derives from the source modification times. Stores keep the stamp
// as given; they never substitute their own clock. The loader compares the
// stamp returned by Stat with the directory and file modification times to
// decide whether a directory must be parsed again.
// A snapshot that exists but cannot be read is reported as
// errors.ErrCorruptCache; a missing one is simply absent.
package cachestore

import (
	"time"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Batch maps item identifiers to their records.
type Batch map[string]map[string]any

// Store holds one snapshot per key.
type Store interface {
	// Stat returns the stamp written with the snapshot and whether it
	// exists.
	Stat(key string) (time.Time, bool, error)
	// Read returns the snapshot.
	Read(key string) (Batch, error)
	// Write replaces the snapshot and its stamp.
	Write(key string, stamp time.Time, batch Batch) error
	Close() error
}

func copyBatch(b Batch) Batch {
	if b == nil {
		return nil
	}
	out := make(Batch, len(b))
	for uid, record := range b {
		out[uid] = copyValue(record).(map[string]any)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = copyValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = copyValue(vv)
		}
		return out
	}
	return v
}
