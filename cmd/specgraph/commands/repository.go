package commands

import (
	"time"

	"github.com/teranos/specgraph/am"
	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
	"github.com/teranos/specgraph/spec"
	"github.com/teranos/specgraph/spec/cachestore"
)

// loadConfig loads and validates the configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// openStore opens the configured cache backend
func openStore(cfg *am.Config) (cachestore.Store, error) {
	opts := cfg.ToCacheOptions()
	opts.Logger = logger.ComponentLogger("cachestore")
	store, err := cachestore.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s cache", opts.Backend)
	}
	return store, nil
}

// openRepository loads the configured repository. The returned store must
// be closed by the caller.
func openRepository() (*spec.Repository, cachestore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	repo, err := spec.New(cfg.ToRepositoryConfig(), store, spec.WithLogger(logger.ComponentLogger("spec")))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return repo, store, nil
}

// lookupItem loads the repository and resolves uid
func lookupItem(uid string) (*spec.Item, func(), error) {
	repo, store, err := openRepository()
	if err != nil {
		return nil, nil, err
	}
	item, err := repo.Item(uid)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return item, func() { store.Close() }, nil
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
