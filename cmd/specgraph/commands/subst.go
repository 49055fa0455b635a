package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/spec"
)

// SubstCmd substitutes ${...} references in the context of an item
var SubstCmd = &cobra.Command{
	Use:   "subst <uid> <text>",
	Short: "Substitute ${...} references in the context of an item",
	Long: `Replace every ${identifier:key-path} in text with the referenced value.
Identifiers are resolved relative to the item; '.' is the item itself.
The braces may be omitted when no identifier character follows.
'$$' produces a literal '$'; any other '$' is an error.

Examples:
  specgraph subst /req/login 'See ${../parent:/title}'
  specgraph subst /req/login --recursive '${.:/text}'`,
	Args: cobra.ExactArgs(2),
	RunE: runSubst,
}

var substRecursive bool

func init() {
	SubstCmd.Flags().BoolVarP(&substRecursive, "recursive", "r", false, "Substitute references inside substituted values")
}

func runSubst(cmd *cobra.Command, args []string) error {
	item, done, err := lookupItem(args[0])
	if err != nil {
		return err
	}
	defer done()

	mapper := spec.NewItemMapper(item, substRecursive)
	out, err := mapper.Substitute(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
