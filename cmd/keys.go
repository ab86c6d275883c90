package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keysim/internal/input"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the characters the interception backend can type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			chars := input.SupportedCharacters()
			fmt.Fprintf(out, "%d characters (US layout):\n", len(chars))
			for _, r := range chars {
				key, err := input.KeyInfo(r)
				if err != nil {
					return err
				}
				mod := ""
				if key.Shift {
					mod = " +shift"
				}
				fmt.Fprintf(out, "  %-6q scan 0x%02X%s\n", r, key.ScanCode, mod)
			}
			return nil
		},
	}
}
