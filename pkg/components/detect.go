package components

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

// detector raises and locks confidence levels as the tree is walked.
type detector struct {
	ctx        *lint.Context
	components *Registry
	utils      *Utils
}

func (d *detector) visitor() lint.Visitor {
	return lint.Visitor{
		lint.On(ast.KindCallExpression):      d.callExpression,
		lint.On(ast.KindClassExpression):     d.class,
		lint.On(ast.KindClassDeclaration):    d.class,
		lint.On(ast.KindClassProperty):       d.classProperty,
		lint.On(ast.KindObjectExpression):    d.objectExpression,
		lint.On(ast.KindFunctionExpression):  d.functionExpression,
		lint.On(ast.KindArrowFunction):       d.functionExpression,
		lint.On(ast.KindFunctionDeclaration): d.functionDeclaration,
		lint.On(ast.KindThisExpression):      d.thisExpression,
		lint.On(ast.KindReturnStatement):     d.returnStatement,
	}
}

func (d *detector) callExpression(node *ts.Node) {
	if !d.utils.IsPragmaComponentWrapper(node) {
		return
	}
	switch arg := ast.FirstArgument(node); {
	case arg == nil:
	case arg.Kind() == "function_expression", arg.Kind() == "function", arg.Kind() == "arrow_function":
		d.components.Add(node, Confirmed)
	}
}

func (d *detector) class(node *ts.Node) {
	if d.utils.IsES6Component(node) {
		d.components.Add(node, Confirmed)
	}
}

func (d *detector) classProperty(*ts.Node) {
	if owner := d.utils.GetParentComponent(); owner != nil {
		d.components.Add(owner, Confirmed)
	}
}

func (d *detector) objectExpression(node *ts.Node) {
	if d.utils.IsES5Component(node) {
		d.components.Add(node, Confirmed)
	}
}

// functionExpression handles function expressions, object and class
// methods, and arrows.
func (d *detector) functionExpression(node *ts.Node) {
	if ast.IsAsync(node) {
		d.components.Add(node, NotComponent)
		return
	}
	owner := d.utils.GetParentComponent()
	if owner == nil || isInJSXContainer(owner) {
		d.components.Add(node, NotComponent)
		return
	}
	if node.Kind() == "arrow_function" && isConciseArrow(owner) && d.utils.IsReturningJSX(owner, false) {
		d.components.Add(owner, Confirmed)
		return
	}
	d.components.Add(owner, Candidate)
}

func (d *detector) functionDeclaration(node *ts.Node) {
	if ast.IsAsync(node) {
		d.components.Add(node, NotComponent)
		return
	}
	if owner := d.utils.GetParentComponent(); owner != nil {
		d.components.Add(owner, Candidate)
	}
}

// thisExpression excludes `this.x` accesses made inside function
// components.
func (d *detector) thisExpression(node *ts.Node) {
	owner := d.utils.GetParentComponent()
	if owner == nil || !ast.IsFunctionLike(owner) || !ast.IsMember(ast.Parent(node)) {
		return
	}
	d.components.Add(node, NotComponent)
}

func (d *detector) returnStatement(node *ts.Node) {
	if !d.utils.IsReturningJSX(node, false) {
		return
	}
	owner := d.utils.GetParentComponent()
	if owner == nil {
		d.components.Add(d.ctx.Scope().Block, Candidate)
		return
	}
	d.components.Add(owner, Confirmed)
}

func isInJSXContainer(node *ts.Node) bool {
	parent := ast.Parent(node)
	return parent != nil && parent.Kind() == "jsx_expression"
}

func isConciseArrow(node *ts.Node) bool {
	if node.Kind() != "arrow_function" {
		return false
	}
	body := node.ChildByFieldName("body")
	return body != nil && body.Kind() != "statement_block"
}
