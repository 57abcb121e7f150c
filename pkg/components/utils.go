package components

import (
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/scope"
)

var (
	wrapperNames  = map[string]bool{"forwardRef": true, "memo": true}
	explicitClass = regexp.MustCompile(`@(?:extends|augments)\s+React\.(?:Pure)?Component(?:[\s*]|$)`)
)

// Utils answers component questions about the current traversal position.
// Owner lookups are recomputed on every call since confidence levels keep
// changing while the tree is walked.
type Utils struct {
	ctx         *lint.Context
	components  *Registry
	pragma      string
	createClass string

	es5Factory *regexp.Regexp
	es6Base    *regexp.Regexp
	pureBase   *regexp.Regexp
}

// NewUtils binds the helpers to a context and registry.
func NewUtils(ctx *lint.Context, components *Registry, pragma, createClass string) *Utils {
	p := regexp.QuoteMeta(pragma)
	return &Utils{
		ctx:         ctx,
		components:  components,
		pragma:      pragma,
		createClass: createClass,
		es5Factory:  regexp.MustCompile(`^(` + p + `\.)?` + regexp.QuoteMeta(createClass) + `$`),
		es6Base:     regexp.MustCompile(`^(` + p + `\.)?(Pure)?Component$`),
		pureBase:    regexp.MustCompile(`^(` + p + `\.)?PureComponent$`),
	}
}

// Pragma returns the identifier React APIs are qualified with, from the
// file's @jsx comment or the pragma setting.
func (u *Utils) Pragma() string { return u.pragma }

// CreateClass returns the ES5 component factory name.
func (u *Utils) CreateClass() string { return u.createClass }

func (u *Utils) text(node *ts.Node) string {
	return u.ctx.Text(node)
}

// IsES5Component reports whether node is the argument of a createClass
// call.
func (u *Utils) IsES5Component(node *ts.Node) bool {
	parent := ast.Parent(node)
	if parent == nil || parent.Kind() != "call_expression" {
		return false
	}
	return u.es5Factory.MatchString(u.text(ast.Callee(parent)))
}

// IsES6Component reports whether a class extends Component or
// PureComponent, is documented as doing so, or extends a generic base.
func (u *Utils) IsES6Component(node *ts.Node) bool {
	if !ast.IsClass(node) {
		return false
	}
	if u.isExplicitComponent(node) {
		return true
	}
	superclass, typeArgs := ast.ClassSuperclass(node)
	if superclass == nil {
		return false
	}
	return typeArgs != nil || u.es6Base.MatchString(u.text(superclass))
}

func (u *Utils) isExplicitComponent(node *ts.Node) bool {
	comment := u.ctx.JSDocComment(node)
	return comment != "" && explicitClass.MatchString(comment)
}

// IsPureComponent reports whether a class extends PureComponent.
func (u *Utils) IsPureComponent(node *ts.Node) bool {
	superclass, _ := ast.ClassSuperclass(node)
	return superclass != nil && u.pureBase.MatchString(u.text(superclass))
}

// isDestructuredFromPragmaImport reports whether name is declared in the
// same scope as the pragma, as in `import React, { memo } from 'react'`.
func (u *Utils) isDestructuredFromPragmaImport(name string) bool {
	v := scope.FindVariable(scope.VariablesInScope(u.ctx.Scope()), name)
	if v == nil {
		return false
	}
	_, ok := v.Scope.Set[u.pragma]
	return ok
}

// IsCreateElement reports whether node is a pragma.createElement call, or
// a bare createElement call imported alongside the pragma.
func (u *Utils) IsCreateElement(node *ts.Node) bool {
	callee := ast.Callee(node)
	if callee == nil {
		return false
	}
	onPragma := false
	if callee.Kind() == "member_expression" {
		object := ast.Field(callee, "object")
		onPragma = object != nil && object.Kind() == "identifier" && u.text(object) == u.pragma &&
			u.text(callee.ChildByFieldName("property")) == "createElement"
	}
	direct := callee.Kind() == "identifier" && u.text(callee) == "createElement"
	if u.isDestructuredFromPragmaImport("createElement") {
		return direct || onPragma
	}
	return onPragma
}

// InConstructor reports whether the current position is inside a class
// constructor.
func (u *Utils) InConstructor() bool {
	for s := u.ctx.Scope(); s != nil; s = s.Upper {
		if ast.IsConstructor(s.Block, u.ctx.Source()) {
			return true
		}
	}
	return false
}

// returnedValue returns the expression a function, arrow or return
// statement yields. ok is false when no return statement exists.
func returnedValue(node *ts.Node) (value *ts.Node, ok bool) {
	switch node.Kind() {
	case "return_statement":
		return ast.ReturnArgument(node), true
	case "arrow_function":
		body := ast.Field(node, "body")
		if body != nil && body.Kind() != "statement_block" {
			return body, true
		}
	}
	ret := ast.FindReturnStatement(node)
	if ret == nil {
		return nil, false
	}
	return ast.ReturnArgument(ret), true
}

// IsReturningJSX reports whether node returns markup or a createElement
// call. A ternary qualifies when either branch is markup, or both when
// strict is set.
func (u *Utils) IsReturningJSX(node *ts.Node, strict bool) bool {
	if node == nil {
		return false
	}
	value, ok := returnedValue(node)
	if !ok || value == nil {
		return false
	}
	if value.Kind() == "ternary_expression" {
		consequent := ast.IsJSX(ast.Field(value, "consequence"))
		alternate := ast.IsJSX(ast.Field(value, "alternative"))
		if strict && consequent && alternate || !strict && (consequent || alternate) {
			return true
		}
	}
	return ast.IsJSX(value) || u.IsCreateElement(value)
}

// IsReturningNull reports whether node returns the null literal.
func (u *Utils) IsReturningNull(node *ts.Node) bool {
	if node == nil {
		return false
	}
	value, ok := returnedValue(node)
	return ok && ast.IsNullLiteral(value)
}

// IsReturningJSXOrNull combines IsReturningJSX and IsReturningNull.
func (u *Utils) IsReturningJSXOrNull(node *ts.Node, strict bool) bool {
	return u.IsReturningJSX(node, strict) || u.IsReturningNull(node)
}

// GetPragmaComponentWrapper returns the outermost of the consecutive
// forwardRef/memo calls wrapping node, or nil.
func (u *Utils) GetPragmaComponentWrapper(node *ts.Node) *ts.Node {
	var wrapper *ts.Node
	for cur := ast.Parent(node); u.IsPragmaComponentWrapper(cur); cur = ast.Parent(cur) {
		wrapper = cur
	}
	return wrapper
}

func (u *Utils) jsxComponentName(node *ts.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "jsx_element", "jsx_self_closing_element":
	default:
		return ""
	}
	name := ast.JSXElementName(node)
	if name == nil || name.Kind() != "identifier" {
		return ""
	}
	return u.text(name)
}

// wrappedComponentName returns the tag rendered by the function passed to
// a wrapper call: its concise body or its first return.
func (u *Utils) wrappedComponentName(call *ts.Node) string {
	fn := ast.FirstArgument(call)
	if fn == nil {
		return ""
	}
	body := ast.Field(fn, "body")
	if body == nil {
		return ""
	}
	if body.Kind() != "statement_block" {
		return u.jsxComponentName(body)
	}
	for _, stmt := range ast.NamedChildren(body) {
		if stmt.Kind() == "return_statement" {
			return u.jsxComponentName(ast.ReturnArgument(stmt))
		}
	}
	return ""
}

// GetDetectedComponents returns the names of confirmed class declarations
// and of confirmed arrows assigned to a variable.
func (u *Utils) GetDetectedComponents() []string {
	var names []string
	for _, c := range u.components.List() {
		switch c.Node.Kind() {
		case "class_declaration", "abstract_class_declaration":
			if name := c.Node.ChildByFieldName("name"); name != nil {
				names = append(names, u.text(name))
			}
		case "arrow_function":
			parent := ast.Parent(c.Node)
			if parent == nil || parent.Kind() != "variable_declarator" {
				continue
			}
			if name := parent.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				names = append(names, u.text(name))
			}
		}
	}
	return names
}

func (u *Utils) nodeWrapsComponent(call *ts.Node) bool {
	child := u.wrappedComponentName(call)
	if child == "" {
		return false
	}
	for _, name := range u.GetDetectedComponents() {
		if name == child {
			return true
		}
	}
	return false
}

// IsPragmaComponentWrapper reports whether node is a forwardRef or memo
// call on the pragma, or on a binding imported with the pragma. Calls on
// the pragma that merely wrap an already detected component do not count.
func (u *Utils) IsPragmaComponentWrapper(node *ts.Node) bool {
	callee := ast.Callee(node)
	if callee == nil {
		return false
	}
	switch callee.Kind() {
	case "member_expression":
		object := ast.Field(callee, "object")
		property := callee.ChildByFieldName("property")
		return wrapperNames[u.text(property)] &&
			object != nil && object.Kind() == "identifier" && u.text(object) == u.pragma &&
			!u.nodeWrapsComponent(node)
	case "identifier":
		name := u.text(callee)
		return wrapperNames[name] && u.isDestructuredFromPragmaImport(name)
	}
	return false
}

// GetParentComponent returns the component owning the current position:
// an enclosing component class, createClass object or function component.
func (u *Utils) GetParentComponent() *ts.Node {
	if node := u.GetParentES6Component(); node != nil {
		return node
	}
	if node := u.GetParentES5Component(); node != nil {
		return node
	}
	return u.GetParentStatelessComponent()
}

// GetParentES5Component returns the createClass object enclosing the
// current position, or nil.
func (u *Utils) GetParentES5Component() *ts.Node {
	for s := u.ctx.Scope(); s != nil; s = s.Upper {
		node := es5Candidate(s.Block)
		if node != nil && u.IsES5Component(node) {
			return node
		}
	}
	return nil
}

// es5Candidate is the object literal a scope's function would be a
// property of.
func es5Candidate(block *ts.Node) *ts.Node {
	if block == nil {
		return nil
	}
	if block.Kind() == "method_definition" {
		return ast.Parent(block)
	}
	return ast.Parent(ast.Parent(block))
}

// GetParentES6Component returns the nearest enclosing class if it is a
// component.
func (u *Utils) GetParentES6Component() *ts.Node {
	s := u.ctx.Scope()
	for s != nil && s.Type != scope.TypeClass {
		s = s.Upper
	}
	if s == nil || !u.IsES6Component(s.Block) {
		return nil
	}
	return s.Block
}

// isInAllowedPositionForComponent reports whether a function expression
// sits where a component definition can: a declarator or assignment value,
// an object property, a return value, a default export, or the last
// operand of a sequence in one of those places.
func isInAllowedPositionForComponent(node *ts.Node) bool {
	parent := ast.Parent(node)
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "variable_declarator", "assignment_expression", "pair", "return_statement":
		return true
	case "object":
		return node.Kind() == "method_definition"
	case "export_statement":
		return ast.IsDefaultExport(parent)
	case "sequence_expression":
		outer := parent
		for p := ast.Parent(outer); p != nil && p.Kind() == "sequence_expression"; p = ast.Parent(p) {
			outer = p
		}
		operands := ast.Flatten(outer)
		if len(operands) == 0 || !ast.Same(ast.Unparen(operands[len(operands)-1]), node) {
			return false
		}
		return isInAllowedPositionForComponent(outer)
	}
	return false
}

// getStatelessComponent returns the component a function block defines:
// the function itself when it renders from a valid position, or the
// wrapper call around it.
func (u *Utils) getStatelessComponent(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		if u.IsReturningJSXOrNull(node, false) {
			return node
		}
	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		if isInAllowedPositionForComponent(node) && u.IsReturningJSXOrNull(node, false) {
			return node
		}
		if wrapper := u.GetPragmaComponentWrapper(node); wrapper != nil {
			return wrapper
		}
	}
	return nil
}

// GetParentStatelessComponent returns the nearest enclosing function
// component, or nil.
func (u *Utils) GetParentStatelessComponent() *ts.Node {
	for s := u.ctx.Scope(); s != nil; s = s.Upper {
		if node := u.getStatelessComponent(s.Block); node != nil {
			return node
		}
	}
	return nil
}

// GetRelatedComponent resolves the component a member chain such as
// Foo.propTypes or obj.Foo.defaultProps refers to and records it as a
// candidate.
func (u *Utils) GetRelatedComponent(node *ts.Node) *Component {
	var path []string
	for n := node; n != nil; n = ast.MemberObject(n) {
		if !ast.IsMember(n) {
			break
		}
		if property := ast.PropertyKey(n); property != nil && isIdentifierLike(property) {
			path = append(path, u.text(property))
		}
		if object := ast.MemberObject(n); object != nil && object.Kind() == "identifier" {
			path = append(path, u.text(object))
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) == 0 {
		return nil
	}
	componentName := strings.Join(path[:len(path)-1], ".")
	variableName := path[0]
	path = path[1:]

	v := scope.FindVariable(scope.VariablesInScope(u.ctx.Scope()), variableName)
	if v == nil {
		return nil
	}

	var componentNode *ts.Node
	for _, ref := range v.References {
		refID := ref.Identifier
		if parent := ast.Parent(refID); parent != nil && ast.IsMember(parent) {
			refID = parent
		}
		if u.text(refID) != componentName {
			continue
		}
		parent := ast.Parent(refID)
		if ast.IsMember(refID) {
			if parent != nil && parent.Kind() == "assignment_expression" {
				componentNode = ast.Field(parent, "right")
			}
		} else if parent != nil && parent.Kind() == "variable_declarator" {
			if init := ast.Field(parent, "value"); init != nil && init.Kind() != "identifier" {
				componentNode = init
			}
		}
		break
	}
	if componentNode != nil {
		return u.components.Add(componentNode, Candidate)
	}

	var def *scope.Definition
	for _, d := range v.Defs {
		if d.Type == scope.DefClassName || d.Type == scope.DefFunctionName || d.Type == scope.DefVariable {
			def = d
			break
		}
	}
	if def == nil || def.Node == nil {
		return nil
	}
	componentNode = def.Init()
	if componentNode == nil {
		componentNode = def.Node
	}

	for _, segment := range path {
		if componentNode.Kind() != "object" {
			continue
		}
		var value *ts.Node
		for _, prop := range ast.NamedChildren(componentNode) {
			if ast.PropertyName(prop, u.ctx.Source()) == segment {
				value = ast.PropertyValue(prop)
				break
			}
		}
		if value == nil {
			return nil
		}
		componentNode = value
	}
	return u.components.Add(componentNode, Candidate)
}

func isIdentifierLike(node *ts.Node) bool {
	switch node.Kind() {
	case "identifier", "property_identifier", "shorthand_property_identifier":
		return true
	}
	return false
}
