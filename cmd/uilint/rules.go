package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/rules"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List available rules and their configured severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return newReporter(cmd, cfg, nil).Rules(cfg, rules.All())
		},
	}
}
