package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/linter"
)

type diagnosticsFile struct {
	Path         string            `json:"path"`
	Diagnostics  []lint.Diagnostic `json:"diagnostics"`
	SyntaxErrors bool              `json:"syntaxErrors,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type diagnosticsReport struct {
	Files        []diagnosticsFile `json:"files"`
	ErrorCount   int               `json:"errorCount"`
	WarningCount int               `json:"warningCount"`
	FailedCount  int               `json:"failedCount"`
}

// Diagnostics renders a lint result. Files without diagnostics or errors
// are omitted from text and table output.
func (r *Reporter) Diagnostics(result *linter.Result) error {
	switch r.opts.Format {
	case config.FormatJSON:
		return r.diagnosticsJSON(result)
	case config.FormatTable:
		return r.diagnosticsTable(result)
	}
	return r.diagnosticsText(result)
}

func (r *Reporter) diagnosticsJSON(result *linter.Result) error {
	rep := diagnosticsReport{Files: make([]diagnosticsFile, 0, len(result.Files))}
	rep.ErrorCount, rep.WarningCount = result.Counts()
	rep.FailedCount = len(result.Failed())
	for _, f := range result.Files {
		diags := f.Diagnostics
		if diags == nil {
			diags = []lint.Diagnostic{}
		}
		rep.Files = append(rep.Files, diagnosticsFile{
			Path:         r.relative(f.Path),
			Diagnostics:  diags,
			SyntaxErrors: f.SyntaxErrors,
			Error:        fileError(f),
		})
	}
	return r.writeJSON(rep)
}

func (r *Reporter) diagnosticsTable(result *linter.Result) error {
	var rows [][]string
	for _, f := range result.Files {
		path := r.relative(f.Path)
		for _, d := range f.Diagnostics {
			rows = append(rows, []string{
				path,
				strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column),
				d.Severity.String(),
				d.RuleID,
				d.Message,
			})
		}
		if f.Err != nil {
			rows = append(rows, []string{path, "", "fatal", "", fileError(f)})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.w, r.green.Sprint("No problems found"))
		return nil
	}
	if err := renderTable(r.newTable(), []string{"File", "Position", "Severity", "Rule", "Message"}, rows); err != nil {
		return err
	}
	r.summary(result)
	return nil
}

func (r *Reporter) diagnosticsText(result *linter.Result) error {
	for _, f := range result.Files {
		if len(f.Diagnostics) == 0 && f.Err == nil {
			continue
		}
		fmt.Fprintln(r.w, r.underln.Sprint(r.relative(f.Path)))
		for _, d := range f.Diagnostics {
			fmt.Fprintf(r.w, "  %s  %s  %s  %s\n",
				r.faint.Sprintf("%d:%d", d.Line, d.Column),
				r.severity(d.Severity),
				d.Message,
				r.faint.Sprint(d.RuleID))
			if r.opts.Lines != nil {
				if line, err := r.opts.Lines.FetchLine(f.Path, d.Line); err == nil {
					fmt.Fprintf(r.w, "      %s\n", strings.TrimRight(line, " \t"))
					fmt.Fprintf(r.w, "      %s%s\n", caretIndent(line, d.Column), r.red.Sprint("^"))
				}
			}
		}
		if f.Err != nil {
			fmt.Fprintf(r.w, "  %s  %s\n", r.red.Sprint("fatal"), fileError(f))
		}
		fmt.Fprintln(r.w)
	}
	r.summary(result)
	return nil
}

// caretIndent reproduces the line's leading whitespace up to column so the
// caret lines up under tabs.
func caretIndent(line string, column int) string {
	var b strings.Builder
	for i, ch := range line {
		if i >= column-1 {
			break
		}
		if ch == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func (r *Reporter) summary(result *linter.Result) {
	errorCount, warningCount := result.Counts()
	failed := len(result.Failed())
	total := errorCount + warningCount
	if total == 0 && failed == 0 {
		fmt.Fprintln(r.w, r.green.Sprint("No problems found"))
		return
	}

	line := fmt.Sprintf("%s (%s, %s)", plural(total, "problem"), plural(errorCount, "error"), plural(warningCount, "warning"))
	if errorCount > 0 {
		line = r.red.Sprint(line)
	} else {
		line = r.yellow.Sprint(line)
	}
	fmt.Fprintln(r.w, line)
	if failed > 0 {
		fmt.Fprintln(r.w, r.red.Sprintf("%s could not be fully analyzed", plural(failed, "file")))
	}
}
