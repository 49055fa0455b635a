package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/display"
	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/graph"
	"github.com/teranos/specgraph/logger"
)

// GraphCmd exports the link graph
var GraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the link graph as JSON",
	Long: `Export all items as nodes and all declared links as edges from the
declaring item to its parent, in the node/link format of force-directed
graph viewers.

Examples:
  specgraph graph > graph.json
  specgraph graph -o graph.json --compact`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

var graphOutput string

func init() {
	GraphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write to file instead of stdout")
	GraphCmd.Flags().Bool("compact", false, "Do not indent the JSON output (default when piped)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	repo, store, err := openRepository()
	if err != nil {
		return err
	}
	defer store.Close()

	g := graph.NewBuilder(logger.ComponentLogger("graph")).Build(repo)

	compact := display.ShouldCompact(cmd)
	if graphOutput == "" {
		return display.WriteJSON(cmd.OutOrStdout(), g, compact)
	}

	f, err := os.Create(graphOutput)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", graphOutput)
	}
	defer f.Close()
	return display.WriteJSON(f, g, compact)
}
