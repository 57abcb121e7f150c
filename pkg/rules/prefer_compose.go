package rules

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

const PreferComposeID = "prefer-compose"

const composeName = "compose"

// PreferCompose reports higher-order components applied by nesting calls,
// as in withRouter(withStyles(styles)(Page)), instead of through compose.
//
// Options:
//   - hocs: names of the higher-order functions to count. When empty,
//     every call counts.
func PreferCompose() lint.Rule {
	return &simpleRule{
		meta: lint.Meta{
			ID:             PreferComposeID,
			Description:    "Enforces the use of compose rather than HOC composition",
			Category:       CategoryStylistic,
			Recommended:    true,
			DefaultOptions: lint.Options{"hocs": []string{}},
		},
		create: newPreferCompose,
	}
}

type preferCompose struct {
	ctx  *lint.Context
	hocs map[string]bool
}

func newPreferCompose(ctx *lint.Context) (lint.Visitor, error) {
	names, _ := ctx.Options().Strings("hocs")
	r := &preferCompose{ctx: ctx, hocs: make(map[string]bool, len(names))}
	for _, name := range names {
		r.hocs[name] = true
	}
	return lint.Visitor{
		lint.On(ast.KindCallExpression): r.callExpression,
	}, nil
}

func (r *preferCompose) calleeName(call *ts.Node) string {
	callee := ast.Callee(call)
	if callee == nil || callee.Kind() != "identifier" {
		return ""
	}
	return r.ctx.Text(callee)
}

// isFactoryCall reports whether call applies the result of another call,
// as in withStyles(styles)(Page).
func isFactoryCall(call *ts.Node) bool {
	return ast.IsCall(ast.Callee(call))
}

// isHOCCall reports whether call applies a configured higher-order
// function, directly or through its factory.
func (r *preferCompose) isHOCCall(call *ts.Node) bool {
	if r.hocs[r.calleeName(call)] {
		return true
	}
	return isFactoryCall(call) && r.hocs[r.calleeName(ast.Callee(call))]
}

// isComposeApplication reports whether call is compose(...)(Component).
func (r *preferCompose) isComposeApplication(call *ts.Node) bool {
	return isFactoryCall(call) && r.calleeName(ast.Callee(call)) == composeName
}

func (r *preferCompose) callExpression(node *ts.Node) {
	if r.calleeName(node) == composeName {
		return
	}
	if len(r.hocs) > 0 && !r.isHOCCall(node) {
		return
	}

	count := 1
	cur := ast.FirstArgument(node)
	for ast.IsCall(cur) && (len(r.hocs) == 0 || r.isHOCCall(cur) || r.isComposeApplication(cur)) {
		count++
		if r.isComposeApplication(cur) {
			break
		}
		if isFactoryCall(cur) {
			cur = ast.FirstArgument(ast.Callee(cur))
		} else {
			cur = ast.FirstArgument(cur)
		}
	}

	if count >= 2 {
		r.ctx.Report(node, "Prefer compose over nesting calls for HoCs. Found %d", count)
	}
}
