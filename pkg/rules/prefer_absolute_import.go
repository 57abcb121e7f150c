package rules

import (
	"fmt"
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

const PreferAbsoluteImportID = "prefer-absolute-import"

const invalidPathMessage = "Invalid path access. Don't use relative imports within path string"

// backtrackInPath matches a parent step after a named segment, as in
// ./a/b/../c.
var backtrackInPath = regexp.MustCompile(`\w+/\.\./`)

// PreferAbsoluteImport reports module paths that climb more parent
// directories than allowed, or that step back up in the middle of a path.
// Imports, named re-exports and require calls are checked.
//
// Options:
//   - depthAllowed: the number of leading ../ segments tolerated (default 0)
func PreferAbsoluteImport() lint.Rule {
	return &simpleRule{
		meta: lint.Meta{
			ID:             PreferAbsoluteImportID,
			Description:    "Enforces absolute import from downward folders",
			Category:       CategoryBestPractices,
			Recommended:    true,
			DefaultOptions: lint.Options{"depthAllowed": 0},
		},
		create: newPreferAbsoluteImport,
	}
}

type preferAbsoluteImport struct {
	ctx          *lint.Context
	depthAllowed int
}

func newPreferAbsoluteImport(ctx *lint.Context) (lint.Visitor, error) {
	depth, err := ctx.Options().Int("depthAllowed", 0)
	if err != nil || depth < 0 {
		return nil, fmt.Errorf("%w: depthAllowed must be a non-negative integer", ErrInvalidOption)
	}
	r := &preferAbsoluteImport{ctx: ctx, depthAllowed: depth}
	return lint.Visitor{
		lint.On(ast.KindProgram): r.program,
	}, nil
}

func (r *preferAbsoluteImport) program(*ts.Node) {
	for _, ref := range r.ctx.File().ModuleReferences {
		switch ref.Kind {
		case ast.KindImportDeclaration, ast.KindExportNamedDeclaration:
		case ast.KindCallExpression:
			if ref.Callee != "require" {
				continue
			}
		default:
			continue
		}
		r.checkPath(ref.Source, ref.Value)
	}
}

func (r *preferAbsoluteImport) checkPath(source *ts.Node, path string) {
	if path == "" {
		return
	}
	if backtrackInPath.MatchString(path) {
		r.ctx.Report(source, invalidPathMessage)
		return
	}
	if depth := strings.Count(path, "../"); depth > r.depthAllowed {
		r.ctx.Report(source, "Prefer absolute imports for nesting over depth %d. Found depth %d", r.depthAllowed, depth)
	}
}
