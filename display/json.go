// Package display formats command output.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/teranos/specgraph/errors"
)

// ShouldCompact reports whether JSON output should be compact: when the
// --compact flag is set, or when stdout is not a terminal and the flag was
// not given explicitly.
func ShouldCompact(cmd *cobra.Command) bool {
	if cmd != nil && cmd.Flags().Lookup("compact") != nil && cmd.Flags().Changed("compact") {
		compact, _ := cmd.Flags().GetBool("compact")
		return compact
	}
	return !isatty.IsTerminal(os.Stdout.Fd())
}

// MarshalJSON marshals compact JSON for pipes and indented JSON for people
func MarshalJSON(v interface{}, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON marshals v and writes it to w followed by a newline
func WriteJSON(w io.Writer, v interface{}, compact bool) error {
	data, err := MarshalJSON(v, compact)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
