package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/specgraph/display"
	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/spec"
)

// ShowCmd shows one item
var ShowCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Show an item with its links",
	Long: `Show the attributes of an item together with its parents and children.

With --key only the value at the key path is printed. Key paths are
relative to the item root, e.g. /links[0]/role.

Examples:
  specgraph show /req/login
  specgraph show /req/login --format yaml
  specgraph show /req/login --key /links[0]/uid`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	showFormat string
	showKey    string
)

func init() {
	ShowCmd.Flags().StringVarP(&showFormat, "format", "f", "table", "Output format: table, yaml, json")
	ShowCmd.Flags().StringVarP(&showKey, "key", "k", "", "Print only the value at this key path")
}

func runShow(cmd *cobra.Command, args []string) error {
	item, done, err := lookupItem(args[0])
	if err != nil {
		return err
	}
	defer done()

	var value any = item.Data()
	if showKey != "" {
		if value, err = item.GetByKeyPath(showKey, "/"); err != nil {
			return err
		}
	}

	switch showFormat {
	case "json":
		return display.WriteJSON(cmd.OutOrStdout(), value, false)
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return errors.Wrap(err, "failed to marshal item to YAML")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	case "table":
		if showKey != "" {
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		}
		return renderItem(item)
	default:
		return errors.Newf("unsupported format: %s (supported: table, yaml, json)", showFormat)
	}
	return nil
}

func renderItem(item *spec.Item) error {
	pterm.DefaultSection.Println(item.UID())

	data := item.Data()
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != spec.KeyLinks {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	rows := pterm.TableData{{"Attribute", "Value"}}
	for _, k := range keys {
		rows = append(rows, []string{k, formatValue(data[k])})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return errors.Wrap(err, "failed to render attributes")
	}

	links := pterm.TableData{{"Direction", "Role", "Item"}}
	for link := range item.LinksToParents() {
		links = append(links, []string{"parent", link.Role(), link.Item().UID()})
	}
	for link := range item.LinksToChildren() {
		links = append(links, []string{"child", link.Role(), link.Item().UID()})
	}
	if len(links) == 1 {
		pterm.Info.Println("No links")
		return nil
	}
	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(links).Render(); err != nil {
		return errors.Wrap(err, "failed to render links")
	}
	return nil
}

// formatValue prints scalars as-is and collections as flow YAML
func formatValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		var b strings.Builder
		enc := yaml.NewEncoder(&b)
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		setFlowStyle(node)
		if err := enc.Encode(node); err != nil {
			return fmt.Sprint(v)
		}
		enc.Close()
		return strings.TrimSpace(b.String())
	case nil:
		return "null"
	}
	return fmt.Sprint(v)
}

func setFlowStyle(n *yaml.Node) {
	n.Style |= yaml.FlowStyle
	for _, c := range n.Content {
		setFlowStyle(c)
	}
}
