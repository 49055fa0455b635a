package cachestore

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/teranos/specgraph/errors"
)

// SQLiteFile and BadgerDir name the database locations inside the cache
// directory.
const (
	SQLiteFile = "spec-cache.db"
	BadgerDir  = "badger"
)

// Options select and configure a backend.
type Options struct {
	Backend       string
	Directory     string
	MemoryEntries int
	Logger        *zap.SugaredLogger
}

// Open returns the configured backend. An empty backend selects the file
// store.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Directory), nil
	case BackendMemory:
		s, err := NewMemoryStore(opts.MemoryEntries)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, errors.Wrapf(err, "create cache directory %s", opts.Directory)
		}
		s, err := OpenSQLiteStore(filepath.Join(opts.Directory, SQLiteFile), opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := OpenBadgerStore(filepath.Join(opts.Directory, BadgerDir), false, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Markf(errors.ErrInvalidConfig, "unknown cache backend '%s'", opts.Backend)
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendBadger, BackendMemory}
}
