package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/display"
	"github.com/teranos/specgraph/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show specgraph version information",
	Long:  `Display version, build time, commit hash, snapshot format and platform information for the specgraph binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		info := version.Get()

		if jsonOutput {
			if err := display.WriteJSON(cmd.OutOrStdout(), info, false); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting JSON: %v\n", err)
			}
		} else {
			fmt.Println(info.String())
			fmt.Printf("Platform: %s\n", info.Platform)
			fmt.Printf("Go: %s\n", info.GoVersion)
		}
	},
}
