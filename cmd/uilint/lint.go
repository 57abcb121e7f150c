package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/linter"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var maxWarnings int

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint files and directories",
		Long: `Lint files and directories with the rules enabled in the config.
Directories are walked using the files.include and files.exclude globs.

Exits 1 when any error is reported, when a file could not be analyzed, or
when the warning count exceeds --max-warnings.`,
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

			result, err := l.Lint(cmd.Context(), pathsOrCurrent(args))
			if err != nil {
				return err
			}
			if err := newReporter(cmd, cfg, l).Diagnostics(result); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			errorCount, warningCount := result.Counts()
			if errorCount > 0 || len(result.Failed()) > 0 {
				return errProblems
			}
			if maxWarnings >= 0 && warningCount > maxWarnings {
				return errProblems
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxWarnings, "max-warnings", -1, "Fail when more warnings are reported (-1 disables)")
	return cmd
}
