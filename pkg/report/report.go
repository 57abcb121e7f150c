// Package report renders lint and inspection results as text, JSON or a
// table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/linter"
)

// LineFetcher returns one 1-based source line. The linter implements it
// over its source cache.
type LineFetcher interface {
	FetchLine(path string, line int) (string, error)
}

// Options configure a Reporter.
type Options struct {
	// Format is text, json or table; anything else renders text.
	Format string
	Color  bool
	// Root makes printed paths relative when set.
	Root string
	// Lines, when set, adds the offending source line under each text
	// diagnostic.
	Lines LineFetcher
}

// Reporter writes results to one writer.
type Reporter struct {
	w    io.Writer
	opts Options

	bold    *color.Color
	faint   *color.Color
	red     *color.Color
	yellow  *color.Color
	green   *color.Color
	cyan    *color.Color
	underln *color.Color
}

// New creates a reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	r := &Reporter{
		w:       w,
		opts:    opts,
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
		red:     color.New(color.FgRed, color.Bold),
		yellow:  color.New(color.FgYellow),
		green:   color.New(color.FgGreen),
		cyan:    color.New(color.FgCyan),
		underln: color.New(color.Underline),
	}
	for _, c := range []*color.Color{r.bold, r.faint, r.red, r.yellow, r.green, r.cyan, r.underln} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Reporter) relative(path string) string {
	if r.opts.Root == "" {
		return path
	}
	root, err := filepath.Abs(r.opts.Root)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func (r *Reporter) severity(s lint.Severity) string {
	switch s {
	case lint.SeverityError:
		return r.red.Sprint("error")
	case lint.SeverityWarning:
		return r.yellow.Sprint("warn")
	}
	return s.String()
}

func (r *Reporter) writeJSON(data any) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// newTable builds a borderless table in the style of the text output.
func (r *Reporter) newTable() *tablewriter.Table {
	return tablewriter.NewTable(r.w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)
}

func renderTable(table *tablewriter.Table, headers []string, rows [][]string) error {
	table.Header(headers)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// Rules lists rule metadata with the configured severity.
func (r *Reporter) Rules(cfg *config.Config, all []lint.Rule) error {
	type ruleRow struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Recommended bool   `json:"recommended"`
		Severity    string `json:"severity"`
	}
	rows := make([]ruleRow, 0, len(all))
	for _, rule := range all {
		meta := rule.Meta()
		severity := lint.SeverityOff.String()
		if rc, ok := cfg.Rules[meta.ID]; ok {
			if s, err := lint.ParseSeverity(rc.Severity); err == nil {
				severity = s.String()
			}
		}
		rows = append(rows, ruleRow{
			ID:          meta.ID,
			Description: meta.Description,
			Category:    meta.Category,
			Recommended: meta.Recommended,
			Severity:    severity,
		})
	}

	switch r.opts.Format {
	case config.FormatJSON:
		return r.writeJSON(rows)
	case config.FormatTable:
		cells := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, []string{row.ID, row.Severity, row.Category, row.Description})
		}
		return renderTable(r.newTable(), []string{"Rule", "Severity", "Category", "Description"}, cells)
	}

	for _, row := range rows {
		fmt.Fprintf(r.w, "%-24s %-6s %s\n", r.bold.Sprint(row.ID), row.Severity, r.faint.Sprint(row.Description))
	}
	return nil
}

// fileError renders a per-file failure.
func fileError(f linter.FileResult) string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}
