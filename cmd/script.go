package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keysim/internal/config"
	"keysim/internal/payload"
)

func newScriptCmd() *cobra.Command {
	var (
		file     string
		targetOS string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print the script that rebuilds a file, without typing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewFile(file, config.TargetOS(targetOS), output)
			plan, err := payload.BuildPlan(cfg)
			if err != nil {
				return err
			}
			for _, task := range plan.Tasks {
				fmt.Fprint(cmd.OutOrStdout(), task.Payload)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "file to encode")
	cmd.Flags().StringVar(&targetOS, "target-os", string(config.TargetLinux), "target shell (linux, windows)")
	cmd.Flags().StringVar(&output, "output", "", "output file name on the target (default: base name of --file)")
	cmd.MarkFlagRequired("file")
	return cmd
}
