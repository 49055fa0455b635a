package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/specgraph/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/specgraph/specgraph.toml
	SourceUser        ConfigSource = "user"        // ~/.specgraph/specgraph.toml
	SourceProject     ConfigSource = "project"     // project specgraph.toml
	SourceEnvironment ConfigSource = "environment" // SPECGRAPH_* env vars
	SourceFlag        ConfigSource = "flag"        // command line
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"` // File path or env var name
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Settings []SettingInfo `json:"settings"` // All settings with sources
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource // The type of config source (default, system, user, etc.)
	Path   string       // File path or environment variable name
}

// GetConfigIntrospection returns every effective setting with its source.
// Keys in flagKeys were set on the command line.
func GetConfigIntrospection(flagKeys ...string) (*ConfigIntrospection, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	v := GetViper()

	flags := make(map[string]bool, len(flagKeys))
	for _, k := range flagKeys {
		flags[k] = true
	}

	keys := v.AllKeys()
	sort.Strings(keys)

	introspection := &ConfigIntrospection{Settings: make([]SettingInfo, 0, len(keys))}
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := ConfigSources[key]; ok {
			info = si
		}
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if os.Getenv(envKey) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}
		if flags[key] {
			info = SourceInfo{Source: SourceFlag, Path: "--" + key}
		}
		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return introspection, nil
}
