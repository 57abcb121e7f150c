package components

import (
	"regexp"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/scope"
)

var propTypesPrefix = regexp.MustCompile(`^.*\.propTypes\.`)

// typeScope is one frame of type alias bindings. Lookups fall through to
// the parent frame; writes stay in the frame.
type typeScope struct {
	vars   map[string]*ts.Node
	parent *typeScope
}

func newTypeScope(parent *typeScope) *typeScope {
	return &typeScope{vars: make(map[string]*ts.Node), parent: parent}
}

func (s *typeScope) get(name string) *ts.Node {
	for f := s; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v
		}
	}
	return nil
}

// propTypes resolves declared props into ShapeMaps on their components.
type propTypes struct {
	ctx              *lint.Context
	components       *Registry
	utils            *Utils
	customValidators map[string]bool

	types            *typeScope
	classExpressions []*ts.Node
}

func newPropTypes(ctx *lint.Context, components *Registry, utils *Utils) *propTypes {
	validators := make(map[string]bool)
	names, _ := ctx.Options().Strings("customValidators")
	for _, name := range names {
		validators[name] = true
	}
	return &propTypes{
		ctx:              ctx,
		components:       components,
		utils:            utils,
		customValidators: validators,
		types:            newTypeScope(nil),
	}
}

func (p *propTypes) visitor() lint.Visitor {
	return lint.Visitor{
		lint.On(ast.KindProgram):                  p.program,
		lint.OnExit(ast.KindProgram):              p.programExit,
		lint.On(ast.KindBlockStatement):           p.blockStatement,
		lint.OnExit(ast.KindBlockStatement):       p.blockStatementExit,
		lint.On(ast.KindClassExpression):          p.classExpression,
		lint.On(ast.KindClassDeclaration):         p.classDeclaration,
		lint.On(ast.KindClassProperty):            p.classProperty,
		lint.On(ast.KindObjectExpression):         p.objectExpression,
		lint.On(ast.KindFunctionExpression):       p.functionExpression,
		lint.On(ast.KindFunctionDeclaration):      p.markAnnotatedFunctionArguments,
		lint.On(ast.KindArrowFunction):            p.markAnnotatedFunctionArguments,
		lint.On(ast.KindMemberExpression):         p.memberExpression,
		lint.On(ast.KindMethodDefinition):         p.methodDefinition,
		lint.On(ast.KindTypeAlias):                p.typeAlias,
		lint.On(ast.KindTypeParameterDeclaration): p.typeParameters,
	}
}

func (p *propTypes) text(node *ts.Node) string {
	return p.ctx.Text(node)
}

func (p *propTypes) program(*ts.Node) {
	p.types = newTypeScope(nil)
}

func (p *propTypes) blockStatement(*ts.Node) {
	p.types = newTypeScope(p.types)
}

func (p *propTypes) blockStatementExit(*ts.Node) {
	if p.types.parent != nil {
		p.types = p.types.parent
	}
}

func (p *propTypes) classExpression(node *ts.Node) {
	p.classExpressions = append(p.classExpressions, node)
}

func (p *propTypes) classDeclaration(node *ts.Node) {
	if hasSuperTypeArguments(node) {
		p.markDeclared(node, p.resolveSuperTypeArgument(node))
	}
}

func (p *propTypes) programExit(*ts.Node) {
	for _, node := range p.classExpressions {
		if hasSuperTypeArguments(node) {
			p.markDeclared(node, p.resolveSuperTypeArgument(node))
		}
	}
}

func (p *propTypes) classProperty(node *ts.Node) {
	source := p.ctx.Source()
	switch {
	case isAnnotatedField(node, "props", source):
		p.markDeclared(node, p.resolveTypeAnnotation(node.ChildByFieldName("type")))
	case IsPropTypesDeclaration(node, source):
		p.markDeclared(node, ast.PropertyValue(node))
	}
}

func (p *propTypes) objectExpression(node *ts.Node) {
	for _, property := range ast.NamedChildren(node) {
		if IsPropTypesDeclaration(property, p.ctx.Source()) {
			p.markDeclared(node, ast.PropertyValue(property))
		}
	}
}

func (p *propTypes) functionExpression(node *ts.Node) {
	if node.Kind() == "method_definition" && ast.IsClassMember(node) {
		return
	}
	p.markAnnotatedFunctionArguments(node)
}

// markAnnotatedFunctionArguments declares the props of a function whose
// first parameter is a typed `props` or a typed destructuring pattern.
func (p *propTypes) markAnnotatedFunctionArguments(node *ts.Node) {
	params := ast.Params(node)
	if len(params) == 0 {
		return
	}
	annotation := ast.ParamType(params[0])
	binding := ast.ParamBinding(params[0])
	if annotation == nil || binding == nil {
		return
	}
	if binding.Kind() != "object_pattern" && p.text(binding) != "props" {
		return
	}
	if ast.IsInside(node, "class_body") {
		return
	}

	typ := ast.AnnotatedType(annotation)
	if typ != nil && typ.Kind() == "union_type" {
		for _, member := range ast.Flatten(typ) {
			if p.typeRefName(member) != "" {
				p.markDeclared(node, p.resolveTypeAnnotation(member))
			} else {
				p.markDeclared(node, member)
			}
		}
		return
	}
	p.markDeclared(node, p.resolveTypeAnnotation(annotation))
}

func (p *propTypes) memberExpression(node *ts.Node) {
	if !IsPropTypesDeclaration(node, p.ctx.Source()) {
		return
	}
	component := p.utils.GetRelatedComponent(node)
	if component == nil {
		return
	}
	parent := ast.Parent(node)
	if right := ast.Field(parent, "right"); right != nil {
		p.markDeclared(component.Node, right)
		return
	}
	p.markDeclared(component.Node, parent)
}

// methodDefinition handles `static get propTypes() { return {...} }`.
func (p *propTypes) methodDefinition(node *ts.Node) {
	if !ast.IsStatic(node) || !ast.IsGetter(node) || !IsPropTypesDeclaration(node, p.ctx.Source()) {
		return
	}
	body := ast.FunctionBody(node)
	statements := ast.NamedChildren(body)
	for i := len(statements) - 1; i >= 0; i-- {
		if statements[i].Kind() == "return_statement" {
			p.markDeclared(node, ast.ReturnArgument(statements[i]))
			return
		}
	}
}

func (p *propTypes) typeAlias(node *ts.Node) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}
	var value *ts.Node
	if node.Kind() == "interface_declaration" {
		value = node.ChildByFieldName("body")
	} else {
		value = node.ChildByFieldName("value")
	}
	if value != nil {
		p.types.vars[p.text(name)] = value
	}
}

// typeParameters binds the first type parameter to its constraint, so
// that `<P extends Props>` makes P resolve like Props.
func (p *propTypes) typeParameters(node *ts.Node) {
	params := ast.NamedChildren(node)
	if len(params) == 0 {
		return
	}
	name := params[0].ChildByFieldName("name")
	constraint := params[0].ChildByFieldName("constraint")
	if name == nil || constraint == nil {
		return
	}
	if bound := ast.NamedChildren(constraint); len(bound) > 0 {
		p.types.vars[p.text(name)] = bound[0]
	}
}

func hasSuperTypeArguments(class *ts.Node) bool {
	_, typeArgs := ast.ClassSuperclass(class)
	return len(ast.NamedChildren(typeArgs)) > 0
}

func (p *propTypes) resolveSuperTypeArgument(class *ts.Node) *ts.Node {
	_, typeArgs := ast.ClassSuperclass(class)
	args := ast.NamedChildren(typeArgs)
	if len(args) == 0 {
		return nil
	}
	return p.resolveTypeAnnotation(args[0])
}

// typeRefName returns the name of a type reference such as Props or
// Props<T>, or "".
func (p *propTypes) typeRefName(node *ts.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier":
		return p.text(node)
	case "generic_type":
		return p.text(node.ChildByFieldName("name"))
	}
	return ""
}

// resolveTypeAnnotation unwraps an annotation and resolves a reference
// to a known alias to the alias body.
func (p *propTypes) resolveTypeAnnotation(node *ts.Node) *ts.Node {
	annotation := ast.AnnotatedType(node)
	if name := p.typeRefName(annotation); name != "" {
		if resolved := p.types.get(name); resolved != nil {
			return resolved
		}
	}
	return annotation
}

// markDeclared merges the props declared by propTypes into the component
// owning node. Expressions that cannot be read statically set
// IgnorePropsValidation instead.
func (p *propTypes) markDeclared(node, propTypes *ts.Node) {
	p.markDeclaredFrom(node, propTypes, make(map[ast.NodeKey]bool))
}

// markDeclaredFrom is markDeclared with the set of values already followed
// through identifiers and wrapper calls. Revisiting one means a reference
// cycle, which is unresolvable.
func (p *propTypes) markDeclaredFrom(node, propTypes *ts.Node, seen map[ast.NodeKey]bool) {
	var component *Component
	for n := node; n != nil && component == nil; n = ast.Parent(n) {
		component = p.components.Get(n)
	}
	declared := ShapeMap{}
	ignore := false
	if component != nil {
		if component.DeclaredPropTypes != nil {
			declared = component.DeclaredPropTypes
		}
		ignore = component.IgnorePropsValidation
	}

	if propTypes != nil {
		switch propTypes.Kind() {
		case "object_type", "interface_body":
			ignore = p.declareObjectType(propTypes, declared)
		case "object":
			for _, property := range ast.NamedChildren(propTypes) {
				value := ast.PropertyValue(property)
				if value == nil {
					ignore = true
					continue
				}
				key := ast.KeyValue(property, p.ctx.Source())
				t := p.buildDeclarationTypes(value, key)
				t.FullName = key
				t.Name = key
				t.Node = property
				t.IsRequired = IsRequiredPropType(value, p.ctx.Source())
				declared[key] = t
			}
		case "member_expression", "subscript_expression":
			if p.declareMemberChain(propTypes, declared) {
				ignore = true
			}
		case "identifier", "shorthand_property_identifier":
			v := scope.FindVariable(scope.VariablesInScope(p.ctx.Scope()), p.text(propTypes))
			if v == nil || len(v.Defs) == 0 {
				ignore = true
				break
			}
			def := v.Defs[len(v.Defs)-1]
			init := def.Init()
			if init == nil || ast.Same(init, propTypes) || seen[ast.KeyOf(init)] {
				ignore = true
				break
			}
			seen[ast.KeyOf(init)] = true
			p.markDeclaredFrom(node, init, seen)
			return
		case "call_expression":
			args := ast.CallArguments(propTypes)
			if len(args) > 0 && p.ctx.Settings().IsPropWrapperFunction(p.text(ast.Callee(propTypes))) {
				if seen[ast.KeyOf(args[0])] {
					ignore = true
					break
				}
				seen[ast.KeyOf(args[0])] = true
				p.markDeclaredFrom(node, args[0], seen)
				return
			}
		case "intersection_type":
			ignore = p.declareIntersection(propTypes, declared)
		case "generic_type":
			switch p.typeRefName(propTypes) {
			case "$ReadOnly", "Readonly":
				args := ast.NamedChildren(propTypes.ChildByFieldName("type_arguments"))
				if len(args) == 0 {
					ignore = true
					break
				}
				ignore = p.declareObjectType(p.resolveTypeAnnotation(args[0]), declared)
			default:
				ignore = true
			}
		default:
			ignore = true
		}
	}

	p.components.Set(node, func(c *Component) {
		c.DeclaredPropTypes = declared
		c.IgnorePropsValidation = ignore
	})
}

// declareMemberChain handles assignments below a propTypes member, such as
// Foo.propTypes.a.b = T, by walking the declared shapes down the chain.
// It reports whether the chain cannot be resolved.
func (p *propTypes) declareMemberChain(propTypes *ts.Node, declared ShapeMap) bool {
	cur := declared
	pt := propTypes
	for pt != nil && ast.IsMember(pt) && cur != nil {
		parent := ast.Parent(pt)
		if parent == nil || parent.Kind() == "assignment_expression" {
			break
		}
		child, ok := cur[p.memberName(pt)]
		if !ok {
			pt = nil
			break
		}
		cur = child.Children
		pt = parent
	}

	if pt != nil && ast.IsMember(pt) && ast.Parent(pt) != nil {
		assign := ast.Parent(pt)
		if assign.Kind() != "assignment_expression" || !ast.Same(ast.Field(assign, "left"), pt) || cur == nil {
			return true
		}
		parentProp := propTypesPrefix.ReplaceAllString(p.text(ast.MemberObject(pt)), "")
		name := p.memberName(pt)
		right := ast.Field(assign, "right")
		t := p.buildDeclarationTypes(right, parentProp)
		t.Name = name
		t.FullName = parentProp + "." + name
		t.Node = assign
		t.IsRequired = IsRequiredPropType(right, p.ctx.Source())
		cur[name] = t
		return false
	}

	source := p.ctx.Source()
	for n := pt; n != nil; n = ast.Parent(n) {
		if n.Kind() == "assignment_expression" && IsPropTypesDeclaration(ast.Field(n, "left"), source) {
			return false
		}
		if (isClassField(n) || n.Kind() == "pair") && IsPropTypesDeclaration(n, source) {
			return false
		}
	}
	return true
}

func (p *propTypes) memberName(member *ts.Node) string {
	key := ast.PropertyKey(member)
	if key == nil || !isIdentifierLike(key) {
		return ""
	}
	return p.text(key)
}

// typeMember is a named member of an object type or interface.
type typeMember struct {
	key      string
	value    *ts.Node
	node     *ts.Node
	optional bool
}

func (p *propTypes) typeMembers(obj *ts.Node) (members []typeMember, indexers bool) {
	if obj == nil || (obj.Kind() != "object_type" && obj.Kind() != "interface_body") {
		return nil, false
	}
	for _, member := range ast.NamedChildren(obj) {
		switch member.Kind() {
		case "property_signature":
			members = append(members, typeMember{
				key:      ast.KeyValue(member, p.ctx.Source()),
				value:    ast.AnnotatedType(member.ChildByFieldName("type")),
				node:     member,
				optional: ast.HasToken(member, "?"),
			})
		case "method_signature":
			members = append(members, typeMember{
				key:      ast.KeyValue(member, p.ctx.Source()),
				value:    member,
				node:     member,
				optional: ast.HasToken(member, "?"),
			})
		case "index_signature":
			indexers = true
		}
	}
	return members, indexers
}

// declareObjectType declares each member of an object type. It reports
// whether a member has no readable type.
func (p *propTypes) declareObjectType(obj *ts.Node, declared ShapeMap) bool {
	ignore := false
	members, _ := p.typeMembers(obj)
	for _, m := range members {
		if m.value == nil {
			ignore = true
			continue
		}
		t := p.buildTypeAnnotationTypes(m.value, m.key, make(map[ast.NodeKey]bool))
		t.FullName = m.key
		t.Name = m.key
		t.Node = m.node
		t.IsRequired = !m.optional
		declared[m.key] = t
	}
	return ignore
}

// declareIntersection declares the members of A & B & ... and stops at
// the first operand that cannot be resolved to an object type. An alias
// already expanded on this path adds nothing and is skipped.
func (p *propTypes) declareIntersection(intersection *ts.Node, declared ShapeMap) bool {
	return p.declareIntersectionFrom(intersection, declared, map[ast.NodeKey]bool{ast.KeyOf(intersection): true})
}

func (p *propTypes) declareIntersectionFrom(intersection *ts.Node, declared ShapeMap, seen map[ast.NodeKey]bool) bool {
	for _, operand := range ast.Flatten(intersection) {
		var failed bool
		switch operand.Kind() {
		case "object_type":
			failed = p.declareObjectType(operand, declared)
		case "union_type":
			failed = true
		default:
			name := p.typeRefName(operand)
			if name == "" {
				failed = true
				break
			}
			resolved := p.types.get(name)
			switch {
			case resolved == nil:
				failed = true
			case seen[ast.KeyOf(resolved)]:
			case resolved.Kind() == "intersection_type":
				seen[ast.KeyOf(resolved)] = true
				failed = p.declareIntersectionFrom(resolved, declared, seen)
			default:
				failed = p.declareObjectType(resolved, declared)
			}
		}
		if failed {
			return true
		}
	}
	return false
}

// buildTypeAnnotationTypes converts a type annotation to a PropType.
// Aliases are followed at most once per path to survive cycles.
func (p *propTypes) buildTypeAnnotationTypes(annotation *ts.Node, parentName string, seen map[ast.NodeKey]bool) *PropType {
	annotation = ast.AnnotatedType(annotation)
	if annotation == nil {
		return scalar()
	}
	key := ast.KeyOf(annotation)
	if seen[key] {
		return scalar()
	}
	seen[key] = true

	switch annotation.Kind() {
	case "type_identifier", "generic_type":
		if resolved := p.types.get(p.typeRefName(annotation)); resolved != nil {
			return p.buildTypeAnnotationTypes(resolved, parentName, seen)
		}
		return scalar()

	case "object_type", "interface_body":
		shape := &PropType{Kind: ShapeShape, Children: ShapeMap{}}
		members, indexers := p.typeMembers(annotation)
		for _, m := range members {
			fullName := parentName + "." + m.key
			t := p.buildTypeAnnotationTypes(m.value, fullName, seen)
			t.FullName = fullName
			t.Name = m.key
			t.Node = m.node
			t.IsRequired = !m.optional
			shape.Children[m.key] = t
		}
		shape.ContainsIndexers = indexers
		return shape

	case "union_type":
		union := &PropType{Kind: ShapeUnion}
		for _, member := range ast.Flatten(annotation) {
			t := p.buildTypeAnnotationTypes(member, parentName, seen)
			if t.Kind != ShapeScalar && t.Opaque {
				union.Opaque = true
				union.Union = nil
				return union
			}
			union.Union = append(union.Union, t)
		}
		if len(union.Union) == 0 {
			return scalar()
		}
		return union

	case "array_type":
		fullName := parentName + ".*"
		var element *ts.Node
		if children := ast.NamedChildren(annotation); len(children) > 0 {
			element = children[0]
		}
		child := p.buildTypeAnnotationTypes(element, fullName, seen)
		child.FullName = fullName
		child.Name = AnyKey
		child.Node = annotation
		return &PropType{Kind: ShapeObject, Children: ShapeMap{AnyKey: child}}
	}
	return scalar()
}

// buildDeclarationTypes converts a PropTypes validator expression to a
// PropType. Unknown validators and oneOf yield a scalar.
func (p *propTypes) buildDeclarationTypes(value *ts.Node, parentName string) *PropType {
	if value == nil {
		return scalar()
	}
	source := p.ctx.Source()
	if callee := ast.Callee(value); callee != nil && callee.Kind() == "member_expression" {
		if object := ast.Field(callee, "object"); object != nil && object.Kind() == "identifier" && p.customValidators[p.text(object)] {
			return scalar()
		}
	}
	if IsRequiredPropType(value, source) {
		value = ast.MemberObject(value)
	}

	callee := ast.Callee(value)
	if callee == nil || callee.Kind() != "member_expression" {
		return scalar()
	}
	args := ast.CallArguments(value)
	if len(args) == 0 {
		return scalar()
	}
	argument := args[0]

	switch p.text(callee.ChildByFieldName("property")) {
	case "shape":
		if argument.Kind() != "object" {
			return scalar()
		}
		shape := &PropType{Kind: ShapeShape, Children: ShapeMap{}}
		for _, property := range ast.NamedChildren(argument) {
			if ast.IsSpread(property) {
				shape.ContainsSpread = true
				continue
			}
			childValue := ast.PropertyValue(property)
			if childValue == nil {
				continue
			}
			childKey := ast.KeyValue(property, source)
			fullName := parentName + "." + childKey
			t := p.buildDeclarationTypes(childValue, fullName)
			t.FullName = fullName
			t.Name = childKey
			t.Node = property
			t.IsRequired = IsRequiredPropType(childValue, source)
			shape.Children[childKey] = t
		}
		return shape

	case "arrayOf", "objectOf":
		fullName := parentName + ".*"
		child := p.buildDeclarationTypes(argument, fullName)
		child.FullName = fullName
		child.Name = AnyKey
		child.Node = argument
		return &PropType{Kind: ShapeObject, Children: ShapeMap{AnyKey: child}}

	case "oneOfType":
		if argument.Kind() != "array" {
			return scalar()
		}
		elements := ast.NamedChildren(argument)
		if len(elements) == 0 {
			return scalar()
		}
		union := &PropType{Kind: ShapeUnion}
		for _, element := range elements {
			t := p.buildDeclarationTypes(element, parentName)
			if t.Kind != ShapeScalar && t.Opaque {
				union.Opaque = true
				union.Union = nil
				return union
			}
			union.Union = append(union.Union, t)
		}
		return union

	case "instanceOf":
		return &PropType{Kind: ShapeInstance, Opaque: true}
	}
	return scalar()
}
