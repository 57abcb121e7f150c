package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/linter"
)

func newComponentsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "components [paths...]",
		Short: "List detected components and their props",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			l, err := linter.New(cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer l.Close()

			result, err := l.Inspect(cmd.Context(), pathsOrCurrent(args))
			if err != nil {
				return err
			}
			if err := newReporter(cmd, cfg, l).Components(result); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return nil
		},
	}
}
