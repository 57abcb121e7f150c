package lint

import (
	"fmt"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/parser/queries"
	"github.com/gnana997/uilint/pkg/scope"
)

// Comment is a source comment with its position.
type Comment struct {
	Node *ts.Node
	// Text is the raw comment including delimiters.
	Text string
	// Line and EndLine are 1-based.
	Line    int
	EndLine int
}

// ModuleReference is the module specifier of an import, a re-export or a
// call whose first argument is a string literal.
type ModuleReference struct {
	// Kind is ImportDeclaration, ExportNamedDeclaration,
	// ExportAllDeclaration or CallExpression.
	Kind ast.Kind
	// Callee is the called identifier for CallExpression references.
	Callee string
	// Source is the string literal node; Value its unquoted contents.
	Source *ts.Node
	Value  string
}

// File is a parsed source file ready to be linted. It is shared read-only
// by every rule run on it.
type File struct {
	Path     string
	Source   []byte
	Dialect  parser.Dialect
	Root     *ts.Node
	Scopes   *scope.Manager
	Comments []Comment

	ModuleReferences []ModuleReference
}

// NewFile analyses scopes and collects comments for a parsed tree.
func NewFile(path string, source []byte, dialect parser.Dialect, tree *ts.Tree, qm *queries.QueryManager) (*File, error) {
	if tree == nil {
		return nil, fmt.Errorf("%s: no syntax tree", path)
	}
	root := tree.RootNode()
	f := &File{
		Path:    path,
		Source:  source,
		Dialect: dialect,
		Root:    root,
		Scopes:  scope.Analyze(root, source),
	}

	matches, err := qm.Run(tree, dialect, queries.QueryTypeComments, source)
	if err != nil {
		return nil, fmt.Errorf("%s: collect comments: %w", path, err)
	}
	for _, m := range matches {
		for _, c := range m.Captures {
			f.Comments = append(f.Comments, Comment{
				Node:    c.Node,
				Text:    c.Text,
				Line:    int(c.Location.StartLine),
				EndLine: int(c.Location.EndLine),
			})
		}
	}
	sort.SliceStable(f.Comments, func(i, j int) bool {
		return f.Comments[i].Node.StartByte() < f.Comments[j].Node.StartByte()
	})

	refs, err := qm.Run(tree, dialect, queries.QueryTypeModuleReferences, source)
	if err != nil {
		return nil, fmt.Errorf("%s: collect module references: %w", path, err)
	}
	for _, m := range refs {
		f.ModuleReferences = append(f.ModuleReferences, moduleReference(m, source))
	}
	sort.SliceStable(f.ModuleReferences, func(i, j int) bool {
		return f.ModuleReferences[i].Source.StartByte() < f.ModuleReferences[j].Source.StartByte()
	})
	return f, nil
}

func moduleReference(m queries.QueryMatch, source []byte) ModuleReference {
	var ref ModuleReference
	if c, ok := m.Capture("import.source"); ok {
		ref.Kind = ast.KindImportDeclaration
		ref.Source = c.Node
	}
	if c, ok := m.Capture("export.source"); ok {
		ref.Kind = ast.KindExportNamedDeclaration
		ref.Source = c.Node
		if stmt, ok := m.Capture("export.statement"); ok {
			ref.Kind = ast.Classify(stmt.Node)
		}
	}
	if c, ok := m.Capture("require.source"); ok {
		ref.Kind = ast.KindCallExpression
		ref.Source = c.Node
		if callee, ok := m.Capture("require.callee"); ok {
			ref.Callee = callee.Text
		}
	}
	ref.Value = ast.StringValue(ref.Source, source)
	return ref
}
