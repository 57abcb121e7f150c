package ast

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// IsJSX reports whether node is a markup element or fragment.
func IsJSX(node *ts.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	return false
}

// IsFunctionLike reports whether node introduces a function body.
func IsFunctionLike(node *ts.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function",
		"arrow_function", "method_definition":
		return true
	}
	return false
}

// IsFunctionExpression reports whether node is a function or arrow
// expression. Object and class methods count, since their value is one.
func IsFunctionExpression(node *ts.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		return true
	}
	return false
}

// IsAsync reports whether a function carries the async modifier.
func IsAsync(fn *ts.Node) bool {
	return HasToken(fn, "async")
}

// IsStatic reports whether a class member is static.
func IsStatic(member *ts.Node) bool {
	return HasToken(member, "static") || HasToken(member, "static get")
}

// IsGetter reports whether a method is a `get` accessor.
func IsGetter(method *ts.Node) bool {
	return HasToken(method, "get") || HasToken(method, "static get")
}

// IsNullLiteral reports whether node is the literal null.
func IsNullLiteral(node *ts.Node) bool {
	return node != nil && node.Kind() == "null"
}

// Params returns the parameter nodes of a function. A bare arrow parameter
// (`x => x`) is returned as a single identifier.
func Params(fn *ts.Node) []*ts.Node {
	if fn == nil {
		return nil
	}
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []*ts.Node{single}
	}
	return NamedChildren(fn.ChildByFieldName("parameters"))
}

// ParamBinding returns the binding pattern of a parameter, looking through
// TypeScript parameter wrappers and a default value.
func ParamBinding(param *ts.Node) *ts.Node {
	if param == nil {
		return nil
	}
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		if pattern := param.ChildByFieldName("pattern"); pattern != nil {
			param = pattern
		}
	}
	if param.Kind() == "assignment_pattern" {
		return param.ChildByFieldName("left")
	}
	return param
}

// ParamType returns the type_annotation of a TypeScript parameter, or nil.
func ParamType(param *ts.Node) *ts.Node {
	if param == nil {
		return nil
	}
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		return param.ChildByFieldName("type")
	}
	return nil
}

// AnnotatedType unwraps a type_annotation to the type it holds.
func AnnotatedType(node *ts.Node) *ts.Node {
	for node != nil && (node.Kind() == "type_annotation" || node.Kind() == "parenthesized_type") {
		inner := firstNamedNonComment(node)
		if inner == nil {
			return nil
		}
		node = inner
	}
	return node
}

// FunctionBody returns the statement block of a function-valued node: a
// function itself, an object property or a class field holding one.
func FunctionBody(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	target := node
	switch node.Kind() {
	case "pair", "field_definition", "public_field_definition":
		target = Field(node, "value")
	}
	if target == nil {
		return nil
	}
	body := target.ChildByFieldName("body")
	if body == nil || body.Kind() != "statement_block" {
		return nil
	}
	return body
}

// FindReturnStatement returns the effective return statement of a function:
// scanning the body backwards, the first return found, or, when a switch is
// reached first, the result of scanning its last case.
func FindReturnStatement(node *ts.Node) *ts.Node {
	body := FunctionBody(node)
	if body == nil {
		return nil
	}
	return lastReturn(NamedChildren(body))
}

func lastReturn(statements []*ts.Node) *ts.Node {
	for i := len(statements) - 1; i >= 0; i-- {
		switch statements[i].Kind() {
		case "return_statement":
			return statements[i]
		case "switch_statement":
			cases := NamedChildren(statements[i].ChildByFieldName("body"))
			if len(cases) > 0 {
				return lastReturn(caseConsequent(cases[len(cases)-1]))
			}
		}
	}
	return nil
}

func caseConsequent(c *ts.Node) []*ts.Node {
	var out []*ts.Node
	count := c.ChildCount()
	for i := uint(0); i < count; i++ {
		child := c.Child(i)
		if child == nil || !child.IsNamed() || child.Kind() == "comment" {
			continue
		}
		if c.FieldNameForChild(uint32(i)) == "value" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// ReturnArgument returns the returned expression of a return statement.
func ReturnArgument(ret *ts.Node) *ts.Node {
	if ret == nil {
		return nil
	}
	return Unparen(firstNamedNonComment(ret))
}

// PropertyKey returns the key node of a property-like node.
func PropertyKey(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "pair", "pair_pattern":
		return node.ChildByFieldName("key")
	case "method_definition", "public_field_definition", "property_signature", "method_signature":
		return node.ChildByFieldName("name")
	case "field_definition":
		return node.ChildByFieldName("property")
	case "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		return node
	case "object_assignment_pattern":
		return node.ChildByFieldName("left")
	case "member_expression":
		return node.ChildByFieldName("property")
	case "subscript_expression":
		return Field(node, "index")
	}
	return nil
}

// PropertyName returns the identifier name of a property, method, class
// field or member access. Keys that are not plain identifiers yield "".
func PropertyName(node *ts.Node, source []byte) string {
	key := PropertyKey(node)
	if key == nil {
		return ""
	}
	switch key.Kind() {
	case "property_identifier", "identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "private_property_identifier":
		return key.Utf8Text(source)
	}
	return ""
}

// KeyValue returns the key of a property as a string: identifier keys by
// name, literal keys by value and spreads by their argument's name.
func KeyValue(node *ts.Node, source []byte) string {
	if node == nil {
		return ""
	}
	var key *ts.Node
	switch node.Kind() {
	case "spread_element", "rest_pattern":
		key = firstNamedNonComment(node)
	default:
		key = PropertyKey(node)
	}
	if key == nil {
		return ""
	}
	switch key.Kind() {
	case "string":
		return StringValue(key, source)
	case "computed_property_name":
		inner := firstNamedNonComment(key)
		if inner != nil && inner.Kind() == "identifier" {
			return inner.Utf8Text(source)
		}
		if inner != nil && inner.Kind() == "string" {
			return StringValue(inner, source)
		}
		return ""
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "number", "private_property_identifier":
		return key.Utf8Text(source)
	}
	return ""
}

// IsComputedKey reports whether a property key is computed (`[expr]: v`).
func IsComputedKey(node *ts.Node) bool {
	key := PropertyKey(node)
	return key != nil && key.Kind() == "computed_property_name"
}

// StringValue returns a string literal's contents without its quotes.
func StringValue(node *ts.Node, source []byte) string {
	text := Text(node, source)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '\'' || first == '"' || first == '`') && last == first {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// PropertyValue returns the value held by a property-like node. Method
// shorthands and shorthand properties are their own value.
func PropertyValue(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "pair", "pair_pattern", "field_definition", "public_field_definition":
		return Field(node, "value")
	case "shorthand_property_identifier", "shorthand_property_identifier_pattern", "method_definition":
		return node
	case "object_assignment_pattern":
		return node
	}
	return nil
}

// IsSpread reports whether a property is a spread or rest element.
func IsSpread(node *ts.Node) bool {
	if node == nil {
		return false
	}
	return node.Kind() == "spread_element" || node.Kind() == "rest_pattern"
}

// IsPropertyInitializer reports whether node is a plain `key: value`
// property of an object literal or destructuring pattern.
func IsPropertyInitializer(node *ts.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "pair", "pair_pattern", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "object_assignment_pattern":
		return true
	}
	return false
}

// IsAssignmentLHS reports whether node is the target of an assignment.
func IsAssignmentLHS(node *ts.Node) bool {
	parent := Parent(node)
	if parent == nil || parent.Kind() != "assignment_expression" {
		return false
	}
	return Same(Field(parent, "left"), node)
}

// MemberObject returns the object of a member or subscript expression.
func MemberObject(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "member_expression", "subscript_expression":
		return Field(node, "object")
	}
	return nil
}

// IsMember reports whether node is a member or subscript expression.
func IsMember(node *ts.Node) bool {
	return node != nil && (node.Kind() == "member_expression" || node.Kind() == "subscript_expression")
}

// IsComputedMember reports whether a member access uses brackets.
func IsComputedMember(node *ts.Node) bool {
	return node != nil && node.Kind() == "subscript_expression"
}

// MethodOwner returns the node that carries a function's key: the method
// itself, or the object property / class field the function is assigned to.
func MethodOwner(fn *ts.Node) *ts.Node {
	if fn == nil {
		return nil
	}
	if fn.Kind() == "method_definition" {
		return fn
	}
	parent := Parent(fn)
	if parent == nil {
		return nil
	}
	switch parent.Kind() {
	case "pair", "field_definition", "public_field_definition":
		return parent
	}
	return nil
}

// IsConstructor reports whether a method definition is a class constructor.
func IsConstructor(node *ts.Node, source []byte) bool {
	return node != nil && node.Kind() == "method_definition" && PropertyName(node, source) == "constructor"
}

// CallArguments returns the argument expressions of a call or new expression.
func CallArguments(call *ts.Node) []*ts.Node {
	if call == nil {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Kind() != "arguments" {
		return nil
	}
	out := NamedChildren(args)
	for i := range out {
		out[i] = Unparen(out[i])
	}
	return out
}

// FirstArgument returns the first argument of a call, or nil.
func FirstArgument(call *ts.Node) *ts.Node {
	args := CallArguments(call)
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// Callee returns the function expression of a call.
func Callee(call *ts.Node) *ts.Node {
	if call == nil || call.Kind() != "call_expression" {
		return nil
	}
	return Field(call, "function")
}

// IsCall reports whether node is a call expression.
func IsCall(node *ts.Node) bool {
	return node != nil && node.Kind() == "call_expression"
}

// ClassSuperclass returns the superclass expression of a class and, for
// TypeScript, the type arguments applied to it.
func ClassSuperclass(class *ts.Node) (superclass, typeArgs *ts.Node) {
	if class == nil {
		return nil, nil
	}
	heritage := firstNamedChildOfKind(class, "class_heritage")
	if heritage == nil {
		return nil, nil
	}
	if clause := firstNamedChildOfKind(heritage, "extends_clause"); clause != nil {
		return Field(clause, "value"), clause.ChildByFieldName("type_arguments")
	}
	for _, child := range NamedChildren(heritage) {
		if child.Kind() == "implements_clause" {
			continue
		}
		return Unparen(child), nil
	}
	return nil, nil
}

// IsClass reports whether node is a class declaration or expression.
func IsClass(node *ts.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration", "class":
		return true
	}
	return false
}

// JSXElementName returns the tag name node of an element, or nil for
// fragments.
func JSXElementName(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "jsx_element":
		return JSXElementName(node.ChildByFieldName("open_tag"))
	case "jsx_opening_element", "jsx_self_closing_element":
		return node.ChildByFieldName("name")
	}
	return nil
}

// IsInside reports whether node has an ancestor of the given kind.
func IsInside(node *ts.Node, kind string) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == kind {
			return true
		}
	}
	return false
}

// TrimComment strips the comment delimiters from a comment's text, giving
// the body ESTree exposes as a comment's value.
func TrimComment(text string) string {
	switch {
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
		return strings.TrimSuffix(text, "*/")
	case strings.HasPrefix(text, "//"):
		return strings.TrimPrefix(text, "//")
	}
	return text
}
