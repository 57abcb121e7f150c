package lint

import (
	"fmt"
	"log/slog"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/scope"
	"github.com/gnana997/uilint/pkg/util"
)

// Context is handed to a rule for one file. It exposes the file, the
// scope in effect at the node being visited and a sink for reports.
type Context struct {
	file     *File
	ruleID   string
	severity Severity
	settings Settings
	options  Options
	logger   *slog.Logger

	current     *ts.Node
	diagnostics []Diagnostic
}

// NewContext prepares a context for running ruleID over file.
func NewContext(file *File, ruleID string, severity Severity, settings Settings, options Options, logger *slog.Logger) *Context {
	if options == nil {
		options = Options{}
	}
	if logger == nil {
		logger = util.NopLogger()
	}
	return &Context{
		file:     file,
		ruleID:   ruleID,
		severity: severity,
		settings: settings,
		options:  options,
		logger:   logger.With("rule", ruleID),
		current:  file.Root,
	}
}

func (c *Context) Filename() string             { return c.file.Path }
func (c *Context) Source() []byte               { return c.file.Source }
func (c *Context) Root() *ts.Node               { return c.file.Root }
func (c *Context) File() *File                  { return c.file }
func (c *Context) ScopeManager() *scope.Manager { return c.file.Scopes }
func (c *Context) Comments() []Comment          { return c.file.Comments }
func (c *Context) Settings() Settings           { return c.settings }
func (c *Context) Options() Options             { return c.options }
func (c *Context) Logger() *slog.Logger         { return c.logger }
func (c *Context) RuleID() string               { return c.ruleID }

// Current is the node whose event is being dispatched.
func (c *Context) Current() *ts.Node {
	return c.current
}

// Scope returns the scope in effect at the current node.
func (c *Context) Scope() *scope.Scope {
	return c.file.Scopes.ScopeAt(c.current)
}

// Text returns the source text of node, or "" for nil.
func (c *Context) Text(node *ts.Node) string {
	return ast.Text(node, c.file.Source)
}

// jsdocHosts are the wrappers a leading doc comment attaches to.
var jsdocHosts = map[string]bool{
	"export_statement":         true,
	"variable_declarator":      true,
	"lexical_declaration":      true,
	"variable_declaration":     true,
	"assignment_expression":    true,
	"expression_statement":     true,
	"parenthesized_expression": true,
}

// JSDocComment returns the /** block ending on the line before node or one
// of its declaration wrappers, or "" when there is none.
func (c *Context) JSDocComment(node *ts.Node) string {
	for n := node; n != nil; n = n.Parent() {
		if prev := n.PrevSibling(); prev != nil && prev.Kind() == "comment" {
			text := c.Text(prev)
			if strings.HasPrefix(text, "/**") && n.StartPosition().Row-prev.EndPosition().Row <= 1 {
				return text
			}
		}
		parent := n.Parent()
		if parent == nil || !jsdocHosts[parent.Kind()] {
			break
		}
	}
	return ""
}

// Report records a diagnostic located at node.
func (c *Context) Report(node *ts.Node, format string, args ...any) {
	if node == nil {
		node = c.current
	}
	line, col := ast.Position(node)
	endLine, endCol := ast.EndPosition(node)
	c.diagnostics = append(c.diagnostics, Diagnostic{
		File:      c.file.Path,
		RuleID:    c.ruleID,
		Severity:  c.severity,
		Message:   fmt.Sprintf(format, args...),
		Line:      line,
		Column:    col,
		EndLine:   endLine,
		EndColumn: endCol,
		NodeType:  ast.TypeName(node),
	})
}

// Diagnostics returns what has been reported so far.
func (c *Context) Diagnostics() []Diagnostic {
	return c.diagnostics
}
