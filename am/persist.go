package am

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/specgraph/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Don't fail config save over a stale backup
		fmt.Fprintf(os.Stderr, "Failed to delete old backup %s: %v\n", back3, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// DefaultConfig returns the configuration SetDefaults produces
func DefaultConfig() Config {
	return Config{
		Spec: SpecConfig{
			Paths:     []string{"spec"},
			Extension: ".yml",
			Exclude:   []string{},
			Enabled:   []string{},
		},
		Cache: CacheConfig{
			Directory:     DefaultCacheDirectory,
			Backend:       DefaultCacheBackend,
			MemoryEntries: DefaultMemoryEntries,
		},
		Watch: WatchConfig{DebounceMS: DefaultDebounceMS},
	}
}

// fileConfig mirrors Config with TOML tags for writing
type fileConfig struct {
	Spec struct {
		Paths       []string `toml:"paths"`
		TypeRootUID string   `toml:"type_root_uid"`
		Extension   string   `toml:"extension"`
		Exclude     []string `toml:"exclude"`
		Enabled     []string `toml:"enabled"`
	} `toml:"spec"`
	Cache struct {
		Directory     string `toml:"directory"`
		Backend       string `toml:"backend"`
		MemoryEntries int    `toml:"memory_entries"`
	} `toml:"cache"`
	Log struct {
		JSON bool `toml:"json"`
	} `toml:"log"`
	Watch struct {
		DebounceMS int `toml:"debounce_ms"`
	} `toml:"watch"`
}

// Save writes the configuration as TOML, rotating backups of an existing file
func Save(cfg Config, configPath string) error {
	var fc fileConfig
	fc.Spec.Paths = cfg.Spec.Paths
	fc.Spec.TypeRootUID = cfg.Spec.TypeRootUID
	fc.Spec.Extension = cfg.Spec.Extension
	fc.Spec.Exclude = cfg.Spec.Exclude
	fc.Spec.Enabled = cfg.Spec.Enabled
	fc.Cache.Directory = cfg.Cache.Directory
	fc.Cache.Backend = cfg.Cache.Backend
	fc.Cache.MemoryEntries = cfg.Cache.MemoryEntries
	fc.Log.JSON = cfg.Log.JSON
	fc.Watch.DebounceMS = cfg.Watch.DebounceMS

	data, err := toml.Marshal(fc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", configPath)
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// WriteDefault writes the default configuration to configPath
func WriteDefault(configPath string) error {
	return Save(DefaultConfig(), configPath)
}
