package am

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teranos/specgraph/spec"
	"github.com/teranos/specgraph/spec/cachestore"
)

// Default values
const (
	DefaultCacheDirectory = "cache"
	DefaultCacheBackend   = cachestore.BackendFile
	DefaultMemoryEntries  = cachestore.DefaultMemoryEntries
	DefaultDebounceMS     = 300
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("spec.paths", []string{"spec"})
	v.SetDefault("spec.type_root_uid", "")
	v.SetDefault("spec.extension", spec.DefaultExtension)
	v.SetDefault("spec.exclude", []string{})
	v.SetDefault("spec.enabled", []string{})

	v.SetDefault("cache.directory", DefaultCacheDirectory)
	v.SetDefault("cache.backend", DefaultCacheBackend)
	v.SetDefault("cache.memory_entries", DefaultMemoryEntries)

	v.SetDefault("log.json", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// BindEnvVars explicitly binds the most used settings to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("cache.directory", EnvPrefix+"_CACHE_DIRECTORY")
	v.BindEnv("cache.backend", EnvPrefix+"_CACHE_BACKEND")
	v.BindEnv("spec.type_root_uid", EnvPrefix+"_SPEC_TYPE_ROOT_UID")
}

// ToRepositoryConfig converts the configuration into a repository configuration
func (c *Config) ToRepositoryConfig() spec.Config {
	return spec.Config{
		Paths:          c.Spec.Paths,
		CacheDirectory: c.Cache.Directory,
		TypeRootUID:    c.Spec.TypeRootUID,
		Extension:      c.Spec.Extension,
		Exclude:        c.Spec.Exclude,
	}
}

// ToCacheOptions converts the configuration into cache store options
func (c *Config) ToCacheOptions() cachestore.Options {
	return cachestore.Options{
		Backend:       c.Cache.Backend,
		Directory:     c.Cache.Directory,
		MemoryEntries: c.Cache.MemoryEntries,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Spec: {Paths: %v, TypeRoot: %q}, Cache: {Directory: %s, Backend: %s}}",
		c.Spec.Paths, c.Spec.TypeRootUID, c.Cache.Directory, c.Cache.Backend)
}
