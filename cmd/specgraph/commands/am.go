package commands

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/specgraph/am"
	"github.com/teranos/specgraph/display"
	"github.com/teranos/specgraph/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage specgraph configuration",
	Long: `Manage specgraph configuration

Display and manage specgraph configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (SPECGRAPH_* prefix)
3. Project config (./specgraph.toml, searched up the directory tree)
4. User config (~/.specgraph/specgraph.toml)
5. System config (/etc/specgraph/specgraph.toml)
6. Default values

Examples:
  specgraph am show                    # Show current configuration
  specgraph am show --format json      # Show configuration in JSON format
  specgraph am get cache.backend       # Get specific config value
  specgraph am validate                # Validate current configuration
  specgraph am where                   # Show where each value comes from
  specgraph am init                    # Write a default specgraph.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current specgraph configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., spec.paths, cache.backend)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long: `Validate that the current specgraph configuration is valid and that
no configuration file contains unknown keys`,
	RunE: runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration values come from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to ./specgraph.toml or the given path.
An existing file is kept as a rotating backup (.back1 to .back3).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var configFormat string

func init() {
	// Add flags
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	// Add subcommands
	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	// Settings keep the viper key names in every format
	settings := am.GetViper().AllSettings()

	switch configFormat {
	case "json":
		if err := display.WriteJSON(cmd.OutOrStdout(), settings, false); err != nil {
			return err
		}

	case "yaml":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# specgraph configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# specgraph configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	if err := cfg.Validate(); err != nil {
		pterm.Warning.Printf("Configuration is invalid: %v\n", err)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	// Check if key exists in configuration
	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	unknown, err := am.CheckFiles()
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		paths := make([]string, 0, len(unknown))
		for path := range unknown {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			for _, key := range unknown[path] {
				pterm.Warning.Printf("%s: unknown key %s\n", path, key)
			}
		}
		return errors.WithHint(errors.Mark(errors.Newf("%d configuration files contain unknown keys", len(unknown)), errors.ErrInvalidConfig),
			"remove or correct the listed keys")
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection(changedFlagKeys(cmd.Root().PersistentFlags())...)
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Printf("  2. [SYSTEM]   %s\n", am.SystemConfig)
	fmt.Printf("  3. [USER]     %s\n", filepath.Join("~", am.UserConfigDir, am.ConfigFileName))
	fmt.Printf("  4. [PROJECT]  ./%s (searches up directories)\n", am.ConfigFileName)
	fmt.Printf("  5. [ENV]      %s_* environment variables\n", am.EnvPrefix)
	fmt.Println("  6. [FLAG]     Command line flags")
	fmt.Println()

	rows := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		rows = append(rows, []string{s.Key, formatValue(s.Value), string(s.Source), s.SourcePath})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileName
	if len(args) == 1 {
		path = args[0]
	}
	if err := am.WriteDefault(path); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote default configuration to %s\n", path)
	return nil
}
