package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/enabledby"
	"github.com/teranos/specgraph/errors"
)

// ExprCmd renders the enabled-by expression of an item
var ExprCmd = &cobra.Command{
	Use:   "expr <uid>",
	Short: "Render an item's enabled-by expression",
	Long: `Render the enabled-by expression of an item as a C preprocessor
condition or a Python expression.

Examples:
  specgraph expr /req/smp -n c        # defined(SMP) && !defined(UP)
  specgraph expr /req/smp -n python   # SMP and not UP
  specgraph expr /req/smp --symbols   # SMP UP`,
	Args: cobra.ExactArgs(1),
	RunE: runExpr,
}

var (
	exprNotation string
	exprSymbols  bool
)

var notations = map[string]enabledby.Notation{
	"c":      enabledby.CPreprocessor,
	"python": enabledby.Python,
}

func init() {
	ExprCmd.Flags().StringVarP(&exprNotation, "notation", "n", "c", "Output notation: c, python")
	ExprCmd.Flags().BoolVar(&exprSymbols, "symbols", false, "List the referenced symbols instead")
}

func runExpr(cmd *cobra.Command, args []string) error {
	notation, ok := notations[exprNotation]
	if !ok {
		return errors.Newf("unsupported notation: %s (supported: c, python)", exprNotation)
	}

	item, done, err := lookupItem(args[0])
	if err != nil {
		return err
	}
	defer done()

	expr, err := item.EnabledBy()
	if err != nil {
		return err
	}
	if exprSymbols {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(enabledby.Symbols(expr), " "))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), enabledby.Render(expr, notation))
	return nil
}
