package rules

import (
	"regexp"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

const IndexReexportNamedID = "index-reexport-named"

const defaultExportMessage = "Default exports are forbidden from index files"

var indexFile = regexp.MustCompile(`index.[jt]s$`)

// IndexReexportNamed forbids default exports from index modules, both
// `export default` and re-exports named default.
func IndexReexportNamed() lint.Rule {
	return &simpleRule{
		meta: lint.Meta{
			ID:          IndexReexportNamedID,
			Description: "Restrict index files to exporting named objects only",
			Category:    CategoryBestPractices,
			Recommended: true,
		},
		create: newIndexReexportNamed,
	}
}

func newIndexReexportNamed(ctx *lint.Context) (lint.Visitor, error) {
	if !indexFile.MatchString(ctx.Filename()) {
		return lint.Visitor{}, nil
	}
	return lint.Visitor{
		lint.On(ast.KindExportDefaultDeclaration): func(node *ts.Node) {
			ctx.Report(node, defaultExportMessage)
		},
		lint.On(ast.KindExportNamedDeclaration): func(node *ts.Node) {
			for _, clause := range ast.NamedChildren(node) {
				if clause.Kind() != "export_clause" {
					continue
				}
				for _, specifier := range ast.NamedChildren(clause) {
					if exportedName(specifier, ctx.Source()) == "default" {
						ctx.Report(node, defaultExportMessage)
					}
				}
			}
		},
	}, nil
}

// exportedName is the name a specifier exports under: its alias, else its
// local name.
func exportedName(specifier *ts.Node, source []byte) string {
	if alias := specifier.ChildByFieldName("alias"); alias != nil {
		return ast.StringValue(alias, source)
	}
	return ast.StringValue(specifier.ChildByFieldName("name"), source)
}
