package commands

import (
	"github.com/spf13/pflag"

	"github.com/teranos/specgraph/am"
	"github.com/teranos/specgraph/errors"
)

// flagKeys maps persistent flags to configuration keys
var flagKeys = map[string]string{
	"paths":     "spec.paths",
	"cache-dir": "cache.directory",
	"type-root": "spec.type_root_uid",
	"backend":   "cache.backend",
	"json":      "log.json",
}

// BindFlags binds the persistent configuration flags to the am viper
// instance so they take precedence over files and environment variables.
func BindFlags(flags *pflag.FlagSet) error {
	v := am.GetViper()
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "flag --%s", name)
		}
	}
	return nil
}

// changedFlagKeys returns the configuration keys set on the command line
func changedFlagKeys(flags *pflag.FlagSet) []string {
	var keys []string
	for name, key := range flagKeys {
		if flags.Changed(name) {
			keys = append(keys, key)
		}
	}
	return keys
}
