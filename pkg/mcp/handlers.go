package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uilint/pkg/components"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/linter"
	"github.com/gnana997/uilint/pkg/rules"
)

// fileReport is the JSON shape of one analyzed file.
type fileReport struct {
	Path         string               `json:"path"`
	Diagnostics  []lint.Diagnostic    `json:"diagnostics,omitempty"`
	Components   []components.Summary `json:"components,omitempty"`
	SyntaxErrors bool                 `json:"syntaxErrors,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func toReport(f linter.FileResult, path string) fileReport {
	r := fileReport{
		Path:         path,
		Diagnostics:  f.Diagnostics,
		Components:   f.Components,
		SyntaxErrors: f.SyntaxErrors,
	}
	if f.Err != nil {
		r.Error = f.Err.Error()
	}
	return r
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolvePath joins a relative argument to the root and rejects paths
// that leave it.
func (s *Server) resolvePath(arg string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the server root", arg)
	}
	return path, nil
}

func (s *Server) relative(path string) string {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func (s *Server) handleLintSource(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", defaultFilename)

	result := s.engine.LintSource(filename, []byte(source))
	return jsonResult(toReport(result, filename))
}

func (s *Server) handleLintPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.resolvePath(arg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.engine.Lint(ctx, []string{path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type lintPathReport struct {
		Files        []fileReport `json:"files"`
		ErrorCount   int          `json:"errorCount"`
		WarningCount int          `json:"warningCount"`
	}
	out := lintPathReport{Files: []fileReport{}}
	out.ErrorCount, out.WarningCount = result.Counts()
	for _, f := range result.Files {
		if len(f.Diagnostics) == 0 && f.Err == nil {
			continue
		}
		out.Files = append(out.Files, toReport(f, s.relative(f.Path)))
	}
	return jsonResult(out)
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := req.GetString("source", "")
	pathArg := req.GetString("path", "")

	switch {
	case source != "" && pathArg != "":
		return mcp.NewToolResultError("pass either source or path, not both"), nil
	case source != "":
		filename := req.GetString("filename", defaultFilename)
		result := s.engine.InspectSource(filename, []byte(source))
		return jsonResult([]fileReport{toReport(result, filename)})
	case pathArg != "":
		path, err := s.resolvePath(pathArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := s.engine.Inspect(ctx, []string{path})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		files := []fileReport{}
		for _, f := range result.Files {
			if len(f.Components) == 0 && f.Err == nil {
				continue
			}
			files = append(files, toReport(f, s.relative(f.Path)))
		}
		return jsonResult(files)
	}
	return mcp.NewToolResultError("source or path is required"), nil
}

func (s *Server) handleListRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type ruleInfo struct {
		ID          string         `json:"id"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Severity    string         `json:"severity"`
		Options     map[string]any `json:"options,omitempty"`
	}

	cfg := s.engine.Config()
	active := make(map[string]ruleInfo)
	for _, ar := range cfg.ActiveRules() {
		active[ar.Rule.Meta().ID] = ruleInfo{Severity: ar.Severity.String(), Options: ar.Options}
	}

	all := rules.All()
	out := make([]ruleInfo, 0, len(all))
	for _, r := range all {
		meta := r.Meta()
		info, ok := active[meta.ID]
		if !ok {
			info = ruleInfo{Severity: lint.SeverityOff.String(), Options: meta.DefaultOptions}
		}
		info.ID = meta.ID
		info.Description = meta.Description
		info.Category = meta.Category
		out = append(out, info)
	}
	return jsonResult(out)
}
