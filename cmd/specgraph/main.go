package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/am"
	"github.com/teranos/specgraph/cmd/specgraph/commands"
	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "specgraph",
	Short: "specgraph - Specification item repository",
	Long: `specgraph - Load, navigate and query specification item trees.

Specification items are YAML files below one or more root directories.
Items link to parent items with role labels; the repository resolves the
links in both directions, classifies items through the refinement chain
and evaluates enabled-by expressions.

Available commands:
  load    - Load the repository and report cache usage
  show    - Show an item with its links
  enabled - Evaluate an item's enabled-by expression
  expr    - Render an item's enabled-by expression
  subst   - Substitute ${...} references in the context of an item
  graph   - Export the link graph as JSON
  watch   - Reload the repository whenever item files change
  am      - Manage specgraph configuration

Examples:
  specgraph load                        # Load and summarize
  specgraph show /req/login             # Show one item
  specgraph expr /req/login -n c        # Render as C preprocessor condition
  specgraph enabled /req/login -e SMP   # Evaluate with SMP active`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Root().PersistentFlags()

		if configPath, _ := flags.GetString("config"); configPath != "" {
			am.UseConfigFile(configPath)
		}
		if err := commands.BindFlags(flags); err != nil {
			return errors.Wrap(err, "failed to bind flags")
		}

		verbosity, _ := flags.GetCount("verbose")
		jsonOutput, _ := flags.GetBool("json")
		if !jsonOutput {
			jsonOutput = am.GetViper().GetBool("log.json")
		}
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	flags.Bool("json", false, "Emit logs as JSON")
	flags.String("config", "", "Configuration file (replaces the project specgraph.toml search)")
	flags.StringSlice("paths", nil, "Specification root directories")
	flags.String("cache-dir", "", "Cache directory")
	flags.String("type-root", "", "UID of the type root item")
	flags.String("backend", "", "Cache backend: file, sqlite, badger or memory")

	// Add commands
	rootCmd.AddCommand(commands.LoadCmd)
	rootCmd.AddCommand(commands.ShowCmd)
	rootCmd.AddCommand(commands.EnabledCmd)
	rootCmd.AddCommand(commands.ExprCmd)
	rootCmd.AddCommand(commands.SubstCmd)
	rootCmd.AddCommand(commands.GraphCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
