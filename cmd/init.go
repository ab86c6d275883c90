package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keysim/internal/config"
)

const sampleText = "Hello from keysim!"

func newInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default text-mode configuration",
		Long: `Write a default text-mode configuration.

Without --path the file goes to the per-user location that 'keysim run'
falls back to when no payload flags are given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return fmt.Errorf("locating default config: %w", err)
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Save(path, config.NewText(sampleText)); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
