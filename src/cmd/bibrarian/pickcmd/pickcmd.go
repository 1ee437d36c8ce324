// Package pickcmd runs the key-selection handshake from the editor's side:
// it spawns the interactive picker with a fresh key file path, waits for it
// to exit, and prints whatever keys were written. Editor integrations that
// cannot manage temp files themselves shell out to this command instead.
package pickcmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bibrarian/src/internal/editor"
	"bibrarian/src/internal/keys"
)

// New returns the pick command.
func New() *cobra.Command {
	var tool, delim string
	cmd := &cobra.Command{
		Use:   "pick [-- tool-args...]",
		Short: "Run the interactive picker and print the selected keys",
		Long: "Runs the picker tool with a unique key file path appended as '-k <path>',\n" +
			"waits for it to exit, and prints the emitted keys to stdout. A picker\n" +
			"that exits cleanly without writing the file selected nothing; pick then\n" +
			"prints nothing and exits 0.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tool == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve picker tool: %w", err)
				}
				tool = exe
			}
			p := &editor.Picker{Tool: tool, Args: args}
			content, err := p.Pick(cmd.Context())
			if errors.Is(err, editor.ErrNoSelection) {
				return nil
			}
			if err != nil {
				return err
			}
			// The key file uses the picker's configured delimiter; output is
			// normalized to one key per line.
			for _, k := range keys.Split(string(content), delim) {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tool, "tool", "", "picker executable (default: this binary)")
	cmd.Flags().StringVar(&delim, "delimiter", keys.DefaultDelimiter, "delimiter the picker uses in the key file")
	return cmd
}
