package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnana997/uilint/pkg/components"
	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/linter"
)

type componentsFile struct {
	Path       string               `json:"path"`
	Components []components.Summary `json:"components"`
	Error      string               `json:"error,omitempty"`
}

// Components renders an inspection result.
func (r *Reporter) Components(result *linter.Result) error {
	switch r.opts.Format {
	case config.FormatJSON:
		files := make([]componentsFile, 0, len(result.Files))
		for _, f := range result.Files {
			if len(f.Components) == 0 && f.Err == nil {
				continue
			}
			summaries := f.Components
			if summaries == nil {
				summaries = []components.Summary{}
			}
			files = append(files, componentsFile{Path: r.relative(f.Path), Components: summaries, Error: fileError(f)})
		}
		return r.writeJSON(files)
	case config.FormatTable:
		return r.componentsTable(result)
	}
	return r.componentsText(result)
}

func declaredList(props []components.DeclaredProp) string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		if p.Required {
			names = append(names, p.Name+"*")
		} else {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (r *Reporter) componentsTable(result *linter.Result) error {
	var rows [][]string
	for _, f := range result.Files {
		path := r.relative(f.Path)
		for _, c := range f.Components {
			rows = append(rows, []string{
				path,
				c.Name,
				c.Kind,
				strconv.Itoa(c.Line),
				declaredList(c.DeclaredProps),
				strings.Join(c.UsedProps, ", "),
			})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "No components found")
		return nil
	}
	return renderTable(r.newTable(), []string{"File", "Component", "Kind", "Line", "Declared", "Used"}, rows)
}

func (r *Reporter) componentsText(result *linter.Result) error {
	count := 0
	for _, f := range result.Files {
		if len(f.Components) == 0 && f.Err == nil {
			continue
		}
		fmt.Fprintln(r.w, r.underln.Sprint(r.relative(f.Path)))
		for _, c := range f.Components {
			count++
			fmt.Fprintf(r.w, "  %s %s %s\n",
				r.bold.Sprint(c.Name),
				r.cyan.Sprintf("(%s)", c.Kind),
				r.faint.Sprintf("%d:%d", c.Line, c.Column))
			if c.IgnorePropsValidation {
				fmt.Fprintf(r.w, "    declared: %s\n", r.faint.Sprint("unresolved"))
			} else if len(c.DeclaredProps) > 0 {
				fmt.Fprintf(r.w, "    declared: %s\n", declaredList(c.DeclaredProps))
			}
			if len(c.UsedProps) > 0 {
				fmt.Fprintf(r.w, "    used:     %s\n", strings.Join(c.UsedProps, ", "))
			}
			if c.DefaultPropsUnresolved {
				fmt.Fprintf(r.w, "    defaults: %s\n", r.faint.Sprint("unresolved"))
			} else if len(c.DefaultProps) > 0 {
				fmt.Fprintf(r.w, "    defaults: %s\n", strings.Join(c.DefaultProps, ", "))
			}
		}
		if f.Err != nil {
			fmt.Fprintf(r.w, "  %s  %s\n", r.red.Sprint("fatal"), fileError(f))
		}
		fmt.Fprintln(r.w)
	}
	fmt.Fprintf(r.w, "%s\n", plural(count, "component"))
	return nil
}
