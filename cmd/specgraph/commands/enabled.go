package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/am"
	"github.com/teranos/specgraph/enabledby"
	"github.com/teranos/specgraph/errors"
)

// EnabledCmd evaluates the enabled-by expression of an item
var EnabledCmd = &cobra.Command{
	Use:   "enabled <uid>",
	Short: "Evaluate an item's enabled-by expression",
	Long: `Evaluate the enabled-by expression of an item against a set of active
features. Without --enable the spec.enabled configuration is used.

Examples:
  specgraph enabled /req/smp -e SMP -e RISCV`,
	Args: cobra.ExactArgs(1),
	RunE: runEnabled,
}

var enabledFeatures []string

func init() {
	EnabledCmd.Flags().StringSliceVarP(&enabledFeatures, "enable", "e", nil, "Active feature (repeatable)")
}

func runEnabled(cmd *cobra.Command, args []string) error {
	item, done, err := lookupItem(args[0])
	if err != nil {
		return err
	}
	defer done()

	active := enabledFeatures
	if !cmd.Flags().Changed("enable") {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		active = cfg.Spec.Enabled
	}

	enabled, err := item.IsEnabled(enabledby.NewSet(active...))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), enabled)
	return nil
}
