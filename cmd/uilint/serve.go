package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/linter"
	"github.com/gnana997/uilint/pkg/mcp"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		root    string
		callLog string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lint tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
lint_source, lint_path, list_components and list_rules tools.

Paths passed to lint_path and list_components must stay inside --root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			var log *mcp.CallLog
			if callLog != "" {
				log, err = mcp.OpenCallLog(callLog)
				if err != nil {
					return err
				}
				defer log.Close()
			}

			srv := mcp.NewServer(l, mcp.Options{Version: version, Root: absRoot, CallLog: log}, logger)
			return srv.ServeStdio()
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Directory path arguments are confined to")
	cmd.Flags().StringVar(&callLog, "call-log", "", "Append a JSONL record of every tool call to this file")
	return cmd
}
