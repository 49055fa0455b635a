package am

// Config represents the specgraph configuration
type Config struct {
	Spec  SpecConfig  `mapstructure:"spec"`
	Cache CacheConfig `mapstructure:"cache"`
	Log   LogConfig   `mapstructure:"log"`
	Watch WatchConfig `mapstructure:"watch"`
}

// SpecConfig configures where specification items are loaded from
type SpecConfig struct {
	Paths       []string `mapstructure:"paths"`         // Ordered root directories
	TypeRootUID string   `mapstructure:"type_root_uid"` // Root of the type hierarchy (empty = no type resolution)
	Extension   string   `mapstructure:"extension"`     // Item file suffix (default: .yml)
	Exclude     []string `mapstructure:"exclude"`       // Doublestar globs relative to each root
	Enabled     []string `mapstructure:"enabled"`       // Default active feature set for enabled-by evaluation
}

// CacheConfig configures the per-directory snapshot cache
type CacheConfig struct {
	Directory     string `mapstructure:"directory"`      // Cache directory, skipped while walking roots (default: cache)
	Backend       string `mapstructure:"backend"`        // file, sqlite, badger or memory (default: file)
	MemoryEntries int    `mapstructure:"memory_entries"` // LRU size of the in-memory tier (default: 4096)
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // Structured JSON logs instead of console output
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"` // Quiet period before reloading (default: 300)
}

// Configuration file names and locations
const (
	ConfigFileName = "specgraph.toml"
	UserConfigDir  = ".specgraph"
	SystemConfig   = "/etc/specgraph/specgraph.toml"
	EnvPrefix      = "SPECGRAPH"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
