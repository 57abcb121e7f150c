package components

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/scope"
)

// defaultProps collects the default prop values components declare.
type defaultProps struct {
	ctx        *lint.Context
	components *Registry
	utils      *Utils
}

func newDefaultProps(ctx *lint.Context, components *Registry, utils *Utils) *defaultProps {
	return &defaultProps{ctx: ctx, components: components, utils: utils}
}

func (d *defaultProps) visitor() lint.Visitor {
	return lint.Visitor{
		lint.On(ast.KindMemberExpression): d.memberExpression,
		lint.On(ast.KindMethodDefinition): d.methodDefinition,
		lint.On(ast.KindClassProperty):    d.classProperty,
		lint.On(ast.KindObjectExpression): d.objectExpression,
	}
}

// resolveNodeValue follows an identifier to its initializer and unwraps
// prop wrapper calls.
func (d *defaultProps) resolveNodeValue(node *ts.Node) *ts.Node {
	node = ast.Unparen(node)
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier":
		return scope.FindVariableByName(d.ctx.Scope(), d.ctx.Text(node))
	case "call_expression":
		args := ast.CallArguments(node)
		if len(args) > 0 && d.ctx.Settings().IsPropWrapperFunction(d.ctx.Text(ast.Callee(node))) {
			return d.resolveNodeValue(args[0])
		}
	}
	return node
}

type defaultProp struct {
	name string
	node *ts.Node
}

// fromObject reads the defaults of an object literal. A spread makes the
// defaults unresolved.
func (d *defaultProps) fromObject(obj *ts.Node) (props []defaultProp, unresolved bool) {
	for _, property := range ast.NamedChildren(obj) {
		if ast.IsSpread(property) {
			return nil, true
		}
	}
	for _, property := range ast.NamedChildren(obj) {
		name := strings.Trim(d.ctx.Text(ast.PropertyKey(property)), `"'`)
		props = append(props, defaultProp{name: name, node: property})
	}
	return props, false
}

func (d *defaultProps) markUnresolved(component *Component) {
	d.components.Set(component.Node, func(c *Component) {
		c.DefaultProps = &DefaultProps{Unresolved: true}
	})
}

func (d *defaultProps) add(component *Component, props []defaultProp, unresolved bool) {
	if component.DefaultProps != nil && component.DefaultProps.Unresolved {
		return
	}
	if unresolved {
		d.markUnresolved(component)
		return
	}
	d.components.Set(component.Node, func(c *Component) {
		if c.DefaultProps == nil {
			c.DefaultProps = &DefaultProps{}
		}
		for _, p := range props {
			c.DefaultProps.add(p.name, p.node)
		}
	})
}

func (d *defaultProps) addObject(component *Component, value *ts.Node) {
	expression := d.resolveNodeValue(value)
	if expression == nil || expression.Kind() != "object" {
		return
	}
	props, unresolved := d.fromObject(expression)
	d.add(component, props, unresolved)
}

// memberExpression handles Foo.defaultProps = {...} and
// Foo.defaultProps.bar = value.
func (d *defaultProps) memberExpression(node *ts.Node) {
	if !IsDefaultPropsDeclaration(node, d.ctx.Source()) {
		return
	}
	component := d.utils.GetRelatedComponent(node)
	if component == nil {
		return
	}

	parent := ast.Parent(node)
	if parent != nil && parent.Kind() == "assignment_expression" {
		expression := d.resolveNodeValue(ast.Field(parent, "right"))
		if expression == nil || expression.Kind() != "object" {
			d.markUnresolved(component)
			return
		}
		props, unresolved := d.fromObject(expression)
		d.add(component, props, unresolved)
		return
	}

	if ast.IsMember(parent) && ast.Same(ast.MemberObject(parent), node) {
		assign := ast.Parent(parent)
		if assign != nil && assign.Kind() == "assignment_expression" {
			name := d.ctx.Text(parent.ChildByFieldName("property"))
			d.add(component, []defaultProp{{name: name, node: assign}}, false)
		}
	}
}

func (d *defaultProps) methodDefinition(node *ts.Node) {
	if !ast.IsStatic(node) || !ast.IsGetter(node) || !IsDefaultPropsDeclaration(node, d.ctx.Source()) {
		return
	}
	component := d.components.Get(d.utils.GetParentES6Component())
	if component == nil {
		return
	}
	ret := ast.FindReturnStatement(node)
	if ret == nil {
		return
	}
	d.addObject(component, ast.ReturnArgument(ret))
}

func (d *defaultProps) classProperty(node *ts.Node) {
	value := ast.PropertyValue(node)
	if !ast.IsStatic(node) || value == nil || !IsDefaultPropsDeclaration(node, d.ctx.Source()) {
		return
	}
	component := d.components.Get(d.utils.GetParentES6Component())
	if component == nil {
		return
	}
	d.addObject(component, value)
}

// objectExpression handles getDefaultProps in a createClass object.
func (d *defaultProps) objectExpression(node *ts.Node) {
	if !d.utils.IsES5Component(node) {
		return
	}
	component := d.components.Get(node)
	if component == nil {
		return
	}
	for _, property := range ast.NamedChildren(node) {
		if ast.IsSpread(property) || !IsDefaultPropsDeclaration(property, d.ctx.Source()) {
			continue
		}
		if !ast.IsFunctionExpression(ast.PropertyValue(property)) {
			continue
		}
		ret := ast.FindReturnStatement(property)
		argument := ast.ReturnArgument(ret)
		if argument == nil || argument.Kind() != "object" {
			continue
		}
		props, unresolved := d.fromObject(argument)
		d.add(component, props, unresolved)
	}
}
