package am

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/spec/cachestore"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Spec.Paths) == 0 {
		return errors.Markf(errors.ErrInvalidConfig, "spec.paths must name at least one root directory")
	}
	for _, p := range c.Spec.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.Markf(errors.ErrInvalidConfig, "spec.paths contains an empty entry")
		}
	}

	// Extension is optional (defaults to .yml) but must look like a suffix
	if c.Spec.Extension != "" && !strings.HasPrefix(c.Spec.Extension, ".") {
		return errors.Markf(errors.ErrInvalidConfig, "spec.extension must start with '.', got %q", c.Spec.Extension)
	}

	for _, pattern := range c.Spec.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Markf(errors.ErrInvalidConfig, "spec.exclude pattern %q is malformed", pattern)
		}
	}

	if c.Cache.Backend != "" && !slices.Contains(cachestore.Backends(), c.Cache.Backend) {
		return errors.Markf(errors.ErrInvalidConfig, "cache.backend must be one of %s, got %q",
			strings.Join(cachestore.Backends(), ", "), c.Cache.Backend)
	}
	if c.Cache.Backend != cachestore.BackendMemory && c.Cache.Directory == "" {
		return errors.Markf(errors.ErrInvalidConfig, "cache.directory cannot be empty for backend %q", c.Cache.Backend)
	}

	// Zero means "use default", negative is invalid
	if c.Cache.MemoryEntries < 0 {
		return errors.Markf(errors.ErrInvalidConfig, "cache.memory_entries must be >= 0, got %d", c.Cache.MemoryEntries)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.Markf(errors.ErrInvalidConfig, "watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
