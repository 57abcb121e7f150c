package components

import (
	"golang.org/x/mod/semver"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

// ComputedProp stands for a prop read through a non-literal index, such
// as props[key].
const ComputedProp = "__COMPUTED_PROP__"

// DefaultReactVersion is assumed when no usable version is configured.
const DefaultReactVersion = "999.999.999"

var lifecycleMethods = map[string]bool{
	"componentWillReceiveProps": true,
	"shouldComponentUpdate":     true,
	"componentWillUpdate":       true,
	"componentDidUpdate":        true,
}

var asyncSafeLifecycleMethods = map[string]bool{
	"getDerivedStateFromProps":         true,
	"getSnapshotBeforeUpdate":          true,
	"UNSAFE_componentWillReceiveProps": true,
	"UNSAFE_componentWillUpdate":       true,
}

// objectPrototype lists the names every object inherits.
var objectPrototype = map[string]bool{
	"constructor":          true,
	"hasOwnProperty":       true,
	"isPrototypeOf":        true,
	"propertyIsEnumerable": true,
	"toLocaleString":       true,
	"toString":             true,
	"valueOf":              true,
	"__proto__":            true,
	"__defineGetter__":     true,
	"__defineSetter__":     true,
	"__lookupGetter__":     true,
	"__lookupSetter__":     true,
}

// ReactVersionAtLeast reports whether the configured React version is at
// least min. An empty or malformed version counts as the newest release.
func ReactVersionAtLeast(settings lint.Settings, min string) bool {
	version := "v" + settings.Version
	if !semver.IsValid(version) {
		version = "v" + DefaultReactVersion
	}
	return semver.Compare(version, "v"+min) >= 0
}

type propVariableFrame struct {
	vars    map[string][]string
	written bool
}

// propVariables maps local names to the props path they alias. Frames
// share their parent's map until the first write.
type propVariables struct {
	stack []*propVariableFrame
}

func newPropVariables() *propVariables {
	return &propVariables{stack: []*propVariableFrame{{vars: map[string][]string{}}}}
}

func (p *propVariables) top() *propVariableFrame {
	return p.stack[len(p.stack)-1]
}

func (p *propVariables) push() {
	p.stack = append(p.stack, &propVariableFrame{vars: p.top().vars})
}

func (p *propVariables) pop() {
	if len(p.stack) > 1 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *propVariables) set(name string, path []string) {
	frame := p.top()
	if !frame.written {
		vars := make(map[string][]string, len(frame.vars)+1)
		for k, v := range frame.vars {
			vars[k] = v
		}
		frame.vars = vars
		frame.written = true
	}
	frame.vars[name] = path
}

// get returns the path bound to name. An empty path means the props
// object itself.
func (p *propVariables) get(name string) ([]string, bool) {
	path, ok := p.top().vars[name]
	return path, ok
}

// usedProps records which props components read.
type usedProps struct {
	ctx        *lint.Context
	components *Registry
	utils      *Utils

	checkAsyncSafe bool
	propNames      map[string]bool
	vars           *propVariables
}

func newUsedProps(ctx *lint.Context, components *Registry, utils *Utils) *usedProps {
	names := map[string]bool{"props": true, "nextProps": true, "prevProps": true}
	for _, name := range ctx.Settings().PropVariableNames {
		names[name] = true
	}
	return &usedProps{
		ctx:            ctx,
		components:     components,
		utils:          utils,
		checkAsyncSafe: ReactVersionAtLeast(ctx.Settings(), "16.3.0"),
		propNames:      names,
		vars:           newPropVariables(),
	}
}

func (u *usedProps) visitor() lint.Visitor {
	return lint.Visitor{
		lint.On(ast.KindVariableDeclarator):      u.variableDeclarator,
		lint.On(ast.KindFunctionDeclaration):     u.functionEnter,
		lint.On(ast.KindFunctionExpression):      u.functionEnter,
		lint.On(ast.KindArrowFunction):           u.functionEnter,
		lint.OnExit(ast.KindFunctionDeclaration): u.functionExit,
		lint.OnExit(ast.KindFunctionExpression):  u.functionExit,
		lint.OnExit(ast.KindArrowFunction):       u.functionExit,
		lint.On(ast.KindJSXSpreadAttribute):      u.jsxSpreadAttribute,
		lint.On(ast.KindMemberExpression):        u.memberExpression,
		lint.On(ast.KindObjectPattern):           u.objectPattern,
		lint.OnExit(ast.KindProgram):             u.programExit,
	}
}

func (u *usedProps) text(node *ts.Node) string {
	return u.ctx.Text(node)
}

func (u *usedProps) identifierName(node *ts.Node) string {
	if node == nil || node.Kind() != "identifier" {
		return ""
	}
	return u.text(node)
}

func (u *usedProps) isLifecycleName(name string) bool {
	return lifecycleMethods[name] || (u.checkAsyncSafe && asyncSafeLifecycleMethods[name])
}

// isLifecycleMethod reports whether a method or property node is a
// constructor or a lifecycle method receiving props.
func (u *usedProps) isLifecycleMethod(node *ts.Node) bool {
	if node == nil {
		return false
	}
	if ast.IsConstructor(node, u.ctx.Source()) {
		return true
	}
	return u.isLifecycleName(ast.PropertyName(node, u.ctx.Source()))
}

func (u *usedProps) isInLifecycleMethod(node *ts.Node) bool {
	for n := node; n != nil; n = ast.Parent(n) {
		switch n.Kind() {
		case "method_definition", "pair":
			if u.isLifecycleMethod(n) {
				return true
			}
		}
	}
	return false
}

// inLifecycleMethod reports whether the current scope chain passes
// through a lifecycle method.
func (u *usedProps) inLifecycleMethod() bool {
	for s := u.ctx.Scope(); s != nil; s = s.Upper {
		owner := ast.MethodOwner(s.Block)
		if owner != nil && u.isLifecycleName(ast.PropertyName(owner, u.ctx.Source())) {
			return true
		}
	}
	return false
}

// isSetStateUpdater reports whether fn is the first argument of a
// setState call.
func isSetStateUpdater(fn *ts.Node, source []byte) bool {
	call := ast.Parent(fn)
	if !ast.IsCall(call) {
		return false
	}
	callee := ast.Callee(call)
	if callee == nil || callee.Kind() != "member_expression" {
		return false
	}
	if ast.Text(callee.ChildByFieldName("property"), source) != "setState" {
		return false
	}
	return ast.Same(ast.FirstArgument(call), fn)
}

// isPropArgumentInSetStateUpdater reports whether name is the props
// parameter of the nearest enclosing setState updater.
func (u *usedProps) isPropArgumentInSetStateUpdater(name string) bool {
	if name == "" {
		return false
	}
	for s := u.ctx.Scope(); s != nil; s = s.Upper {
		if s.Block == nil || !isSetStateUpdater(s.Block, u.ctx.Source()) {
			continue
		}
		params := ast.Params(s.Block)
		if len(params) > 1 {
			return u.text(ast.ParamBinding(params[1])) == name
		}
	}
	return false
}

func (u *usedProps) isInClassComponent() bool {
	return u.utils.GetParentES6Component() != nil || u.utils.GetParentES5Component() != nil
}

func (u *usedProps) isThisDotProps(node *ts.Node) bool {
	if node == nil || node.Kind() != "member_expression" {
		return false
	}
	object := ast.MemberObject(node)
	return object != nil && object.Kind() == "this" && u.text(node.ChildByFieldName("property")) == "props"
}

func (u *usedProps) isPropTypesUsageByMemberExpression(node *ts.Node) bool {
	if ast.IsAssignmentLHS(node) {
		return false
	}
	object := ast.MemberObject(node)
	name := u.identifierName(object)
	if u.isInClassComponent() {
		if u.isThisDotProps(object) {
			return true
		}
		if u.propNames[name] && (u.inLifecycleMethod() || u.utils.InConstructor()) {
			return true
		}
		return u.isPropArgumentInSetStateUpdater(name)
	}
	return name == "props"
}

// propertyName returns the prop a member access reads. It returns "" for
// accesses that name no prop and ComputedProp for dynamic ones.
func (u *usedProps) propertyName(node *ts.Node) string {
	if node.Kind() == "member_expression" {
		property := node.ChildByFieldName("property")
		if property != nil && property.Kind() == "property_identifier" {
			return u.text(property)
		}
		return ""
	}
	index := ast.Field(node, "index")
	if index == nil {
		return ""
	}
	switch index.Kind() {
	case "string":
		return ast.StringValue(index, u.ctx.Source())
	case "member_expression", "subscript_expression":
		return ""
	}
	return ComputedProp
}

func propertyNode(member *ts.Node) *ts.Node {
	if member.Kind() == "member_expression" {
		return member.ChildByFieldName("property")
	}
	return ast.Field(member, "index")
}

func appendPath(parent []string, name string) []string {
	out := make([]string, 0, len(parent)+1)
	out = append(out, parent...)
	return append(out, name)
}

// markPropTypesAsUsed records the props read by a member access, a
// destructured function parameter or an object pattern.
func (u *usedProps) markPropTypesAsUsed(node *ts.Node, parentNames []string) {
	var (
		direct     bool
		name       string
		allNames   []string
		properties []*ts.Node
		// nested accesses are recorded after the usage they extend
		nested []nestedUsage
	)

	switch {
	case ast.IsMember(node):
		name = u.propertyName(node)
		if name == "" {
			break
		}
		allNames = appendPath(parentNames, name)
		parent := ast.Parent(node)
		if ast.IsMember(parent) && ast.Same(ast.MemberObject(parent), node) {
			nested = append(nested, nestedUsage{node: parent, path: allNames})
		}
		if parent != nil && parent.Kind() == "variable_declarator" && ast.Same(ast.Field(parent, "value"), node) {
			id := ast.Field(parent, "name")
			switch id.Kind() {
			case "object_pattern":
				nested = append(nested, nestedUsage{node: id, path: allNames})
			case "identifier":
				u.vars.set(u.text(id), allNames)
			}
		}
		direct = name != ComputedProp

	case ast.IsFunctionLike(node):
		params := ast.Params(node)
		if len(params) == 0 {
			break
		}
		param := params[0]
		if isSetStateUpdater(node, u.ctx.Source()) {
			if len(params) < 2 {
				break
			}
			param = params[1]
		}
		if pattern := ast.ParamBinding(param); pattern != nil && pattern.Kind() == "object_pattern" {
			properties = ast.NamedChildren(pattern)
		}

	case node.Kind() == "object_pattern":
		properties = ast.NamedChildren(node)

	default:
		lint.Fatalf(node, "%s nodes are not handled by markPropTypesAsUsed", ast.TypeName(node))
	}

	var usages []PropUsage
	ignoreUnused := false

	if direct {
		if !objectPrototype[name] {
			usages = append(usages, PropUsage{Name: name, AllNames: allNames, Node: propertyNode(node)})
		}
	} else {
		for _, property := range properties {
			if ast.IsSpread(property) || ast.IsComputedKey(property) {
				ignoreUnused = true
				break
			}
			propName := ast.KeyValue(property, u.ctx.Source())
			if propName == "" || !ast.IsPropertyInitializer(property) {
				break
			}
			path := appendPath(parentNames, propName)
			usages = append(usages, PropUsage{Name: propName, AllNames: path, Node: property})

			switch property.Kind() {
			case "shorthand_property_identifier_pattern":
				u.vars.set(propName, path)
			case "pair_pattern":
				value := ast.Field(property, "value")
				switch value.Kind() {
				case "object_pattern":
					nested = append(nested, nestedUsage{node: value, path: path})
				case "identifier":
					u.vars.set(u.text(value), path)
				}
			}
		}
	}

	component := u.components.Get(u.utils.GetParentComponent())
	target := node
	if component != nil {
		target = component.Node
	}
	u.components.Set(target, func(c *Component) {
		c.AddUsages(usages...)
		if ignoreUnused {
			c.IgnoreUnusedPropTypesValidation = true
		}
	})

	for _, n := range nested {
		u.markPropTypesAsUsed(n.node, n.path)
	}
}

// nestedUsage is a deeper member access or destructuring pattern below a
// recorded usage.
type nestedUsage struct {
	node *ts.Node
	path []string
}

func (u *usedProps) variableDeclarator(node *ts.Node) {
	id := ast.Field(node, "name")
	init := ast.Field(node, "value")
	if id == nil {
		return
	}
	if u.isThisDotProps(init) && id.Kind() == "identifier" && u.isInClassComponent() {
		u.vars.set(u.text(id), []string{})
	}
	if id.Kind() == "identifier" {
		u.aliasPropVariable(u.text(id), u.identifierName(init))
	}
	if id.Kind() != "object_pattern" || init == nil {
		return
	}

	var propsProperty *ts.Node
	for _, property := range ast.NamedChildren(id) {
		if ast.KeyValue(property, u.ctx.Source()) == "props" && ast.IsPropertyInitializer(property) {
			propsProperty = property
			break
		}
	}
	if init.Kind() == "this" && propsProperty != nil {
		value := ast.PropertyValue(propsProperty)
		if value != nil && value.Kind() == "object_pattern" {
			u.markPropTypesAsUsed(value, nil)
			return
		}
		if u.text(value) == "props" {
			u.vars.set("props", []string{})
			return
		}
	}

	name := u.identifierName(init)
	if u.propNames[name] && (u.utils.GetParentStatelessComponent() != nil || u.isInLifecycleMethod(node)) {
		u.markPropTypesAsUsed(id, nil)
		return
	}
	if u.isThisDotProps(init) && u.isInClassComponent() {
		u.markPropTypesAsUsed(id, nil)
		return
	}
	if name == "" {
		return
	}
	if path, ok := u.vars.get(name); ok {
		u.markPropTypesAsUsed(id, path)
	}
}

// aliasPropVariable binds alias to the prop path of source, so that
// `const p = props; p.x` reads x.
func (u *usedProps) aliasPropVariable(alias, source string) {
	if source == "" {
		return
	}
	if path, ok := u.vars.get(source); ok {
		u.vars.set(alias, path)
		return
	}
	if u.propNames[source] && u.utils.GetParentStatelessComponent() != nil {
		u.vars.set(alias, []string{})
	}
}

func (u *usedProps) functionEnter(node *ts.Node) {
	u.vars.push()
	source := u.ctx.Source()
	params := ast.Params(node)
	updater := isSetStateUpdater(node, source)

	if updater && len(params) >= 2 {
		u.markPropTypesAsUsed(node, nil)
	}

	var param *ts.Node
	switch {
	case updater && len(params) >= 2:
		param = params[1]
	case !updater && len(params) > 0:
		param = params[0]
	}
	pattern := ast.ParamBinding(param)
	if pattern == nil || pattern.Kind() != "object_pattern" {
		return
	}
	if u.components.Get(node) != nil || u.components.Get(ast.Parent(node)) != nil {
		u.markPropTypesAsUsed(node, nil)
	}
}

func (u *usedProps) functionExit(*ts.Node) {
	u.vars.pop()
}

func (u *usedProps) jsxSpreadAttribute(node *ts.Node) {
	target := node
	if component := u.components.Get(u.utils.GetParentComponent()); component != nil {
		target = component.Node
	}
	u.components.Set(target, func(c *Component) {
		c.IgnoreUnusedPropTypesValidation = true
	})
}

func (u *usedProps) memberExpression(node *ts.Node) {
	if u.isPropTypesUsageByMemberExpression(node) {
		u.markPropTypesAsUsed(node, nil)
		return
	}
	name := u.identifierName(ast.MemberObject(node))
	if name == "" {
		return
	}
	if path, ok := u.vars.get(name); ok {
		u.markPropTypesAsUsed(node, path)
	}
}

// objectPattern handles props destructured in the parameters of a
// lifecycle method or constructor.
func (u *usedProps) objectPattern(node *ts.Node) {
	fn := ast.Parent(node)
	if !ast.IsFunctionLike(fn) || len(ast.NamedChildren(node)) == 0 {
		return
	}
	if u.isLifecycleMethod(ast.MethodOwner(fn)) {
		u.markPropTypesAsUsed(fn, nil)
	}
}

// programExit marks the props read by custom validator functions.
func (u *usedProps) programExit(*ts.Node) {
	for _, component := range u.components.List() {
		if component.IgnorePropsValidation {
			continue
		}
		for _, name := range component.DeclaredPropTypes.Names() {
			value := ast.PropertyValue(component.DeclaredPropTypes[name].Node)
			if value != nil && ast.IsFunctionLike(value) {
				u.markPropTypesAsUsed(value, nil)
			}
		}
	}
}
