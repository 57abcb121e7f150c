package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/config"
)

func newInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Long: `Creates a .uilint.yaml in the current directory with every rule
enabled at its default options. Use --output to choose another location.

Examples:
  uilint init                   # Creates .uilint.yaml
  uilint init -o web/.uilint.yaml
  uilint init --force           # Overwrite an existing file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteSample(output, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FileNames[0], "Output file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
