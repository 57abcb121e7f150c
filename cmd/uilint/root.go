package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/report"
	"github.com/gnana997/uilint/pkg/util"
)

// errProblems signals that the run completed but found problems; main maps
// it to exit code 1 without printing it.
var errProblems = errors.New("problems found")

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	format     string
	noColor    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "uilint",
		Short: "Static analysis for React components",
		Long: `uilint finds React components in JavaScript and TypeScript sources,
resolves their declared, used and default props, and reports rule
violations.

Examples:
  uilint lint .                   # Lint the current directory
  uilint lint -f json src/        # JSON output
  uilint components src/App.jsx   # Summarize detected components
  uilint watch src/               # Re-lint on change
  uilint serve --root .           # MCP server over stdio
  uilint init                     # Write .uilint.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML, TOML, or JSON)")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format (text, json, table)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLintCmd(opts),
		newComponentsCmd(opts),
		newRulesCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newInitCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig resolves the config file from the working directory and
// applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, path, err := config.Resolve(".", o.configPath)
	if err != nil {
		return nil, err
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.noColor {
		cfg.Output.Color = false
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if path != "" {
		newLogger(cfg).Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.
func newLogger(cfg *config.Config) *slog.Logger {
	return util.NewLogger(cfg.LoggerConfig())
}

// newReporter writes to the command's output. Color is dropped when the
// output is not a terminal.
func newReporter(cmd *cobra.Command, cfg *config.Config, lines report.LineFetcher) *report.Reporter {
	root, err := os.Getwd()
	if err != nil {
		root = ""
	}
	return report.New(cmd.OutOrStdout(), report.Options{
		Format: cfg.Output.Format,
		Color:  cfg.Output.Color && !color.NoColor && isStdout(cmd.OutOrStdout()),
		Root:   root,
		Lines:  lines,
	})
}

func isStdout(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout
}

// lockedReporter serializes output from concurrent watch callbacks.
type lockedReporter struct {
	mu sync.Mutex
	r  *report.Reporter
}

func (l *lockedReporter) do(fn func(r *report.Reporter) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.r)
}

func pathsOrCurrent(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
