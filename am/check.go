package am

import (
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/teranos/specgraph/errors"
)

// UnknownKeys lists the keys in a config file that no setting reads,
// e.g. misspelled keys that viper would silently ignore.
func UnknownKeys(configPath string) ([]string, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(configPath, &fc)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to parse %s", configPath),
			"check the TOML syntax of the configuration file")
	}

	var keys []string
	for _, key := range md.Undecoded() {
		keys = append(keys, key.String())
	}
	slices.Sort(keys)
	return keys, nil
}

// CheckFiles returns the unknown keys of every existing config file in the
// cascade, by path.
func CheckFiles() (map[string][]string, error) {
	result := map[string][]string{}
	for _, file := range configFiles() {
		if !fileExists(file.Path) {
			continue
		}
		keys, err := UnknownKeys(file.Path)
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			result[file.Path] = keys
		}
	}
	return result, nil
}
