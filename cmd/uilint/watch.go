package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/linter"
	"github.com/gnana997/uilint/pkg/report"
	"github.com/gnana997/uilint/pkg/watch"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		debounce   time.Duration
		components bool
		initial    bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-lint files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			l, err := linter.New(cfg, logger)
			if err != nil {
				return err
			}
			defer l.Close()

			root := pathsOrCurrent(args)[0]
			mode := linter.ModeLint
			if components {
				mode = linter.ModeInspect
			}
			out := &lockedReporter{r: newReporter(cmd, cfg, l)}
			emit := func(result *linter.Result) {
				err := out.do(func(r *report.Reporter) error {
					if mode == linter.ModeInspect {
						return r.Components(result)
					}
					return r.Diagnostics(result)
				})
				if err != nil {
					logger.Error("failed to write report", "error", err)
				}
			}

			ctx := cmd.Context()
			if initial {
				result, err := runMode(cmd, l, mode, root)
				if err != nil {
					return err
				}
				emit(result)
			}

			w, err := watch.New(root, l, emit, watch.Options{Debounce: debounce, Mode: mode}, logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", root)
			select {
			case <-ctx.Done():
			case <-w.Done():
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file is re-linted")
	cmd.Flags().BoolVar(&components, "components", false, "Report components instead of diagnostics")
	cmd.Flags().BoolVar(&initial, "initial", true, "Analyze the whole tree before watching")
	return cmd
}

func runMode(cmd *cobra.Command, l *linter.Linter, mode linter.Mode, root string) (*linter.Result, error) {
	if mode == linter.ModeInspect {
		return l.Inspect(cmd.Context(), []string{root})
	}
	return l.Lint(cmd.Context(), []string{root})
}
