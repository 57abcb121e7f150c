// Package ast maps tree-sitter JavaScript/TypeScript syntax trees onto the
// small set of node kinds the component engine reasons about, and provides
// the structural helpers and tree predicates shared by every analyzer.
//
// tree-sitter trees carry wrapper nodes that ESTree-shaped analyses do not
// expect (parentheses, argument lists, parameter wrappers). Parent hides
// them so that parent-relative checks read the same as they would on an
// ESTree.
package ast

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Kind is the closed set of node kinds the traversal dispatches on.
// Anything else classifies as KindUnknown and is walked through silently.
type Kind int

const (
	KindUnknown Kind = iota
	KindProgram
	KindCallExpression
	KindNewExpression
	KindClassDeclaration
	KindClassExpression
	KindClassProperty
	KindMethodDefinition
	KindObjectExpression
	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunction
	KindThisExpression
	KindReturnStatement
	KindMemberExpression
	KindVariableDeclarator
	KindObjectPattern
	KindBlockStatement
	KindJSXElement
	KindJSXExpressionContainer
	KindJSXSpreadAttribute
	KindImportDeclaration
	KindExportNamedDeclaration
	KindExportDefaultDeclaration
	KindExportAllDeclaration
	KindAssignmentExpression
	KindTypeAlias
	KindTypeParameterDeclaration
	KindIdentifier
)

var kindNames = map[Kind]string{
	KindUnknown:                  "Unknown",
	KindProgram:                  "Program",
	KindCallExpression:           "CallExpression",
	KindNewExpression:            "NewExpression",
	KindClassDeclaration:         "ClassDeclaration",
	KindClassExpression:          "ClassExpression",
	KindClassProperty:            "ClassProperty",
	KindMethodDefinition:         "MethodDefinition",
	KindObjectExpression:         "ObjectExpression",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindFunctionExpression:       "FunctionExpression",
	KindArrowFunction:            "ArrowFunctionExpression",
	KindThisExpression:           "ThisExpression",
	KindReturnStatement:          "ReturnStatement",
	KindMemberExpression:         "MemberExpression",
	KindVariableDeclarator:       "VariableDeclarator",
	KindObjectPattern:            "ObjectPattern",
	KindBlockStatement:           "BlockStatement",
	KindJSXElement:               "JSXElement",
	KindJSXExpressionContainer:   "JSXExpressionContainer",
	KindJSXSpreadAttribute:       "JSXSpreadAttribute",
	KindImportDeclaration:        "ImportDeclaration",
	KindExportNamedDeclaration:   "ExportNamedDeclaration",
	KindExportDefaultDeclaration: "ExportDefaultDeclaration",
	KindExportAllDeclaration:     "ExportAllDeclaration",
	KindAssignmentExpression:     "AssignmentExpression",
	KindTypeAlias:                "TypeAlias",
	KindTypeParameterDeclaration: "TypeParameterDeclaration",
	KindIdentifier:               "Identifier",
}

// String returns the ESTree-style name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Classify returns the kind of a node. A few kinds depend on context:
// export statements are split by their default / star tokens, and a JSX
// expression holding a spread inside an opening tag is a spread attribute.
func Classify(node *ts.Node) Kind {
	if node == nil {
		return KindUnknown
	}

	switch node.Kind() {
	case "program":
		return KindProgram
	case "call_expression":
		return KindCallExpression
	case "new_expression":
		return KindNewExpression
	case "class_declaration", "abstract_class_declaration":
		return KindClassDeclaration
	case "class":
		return KindClassExpression
	case "field_definition", "public_field_definition":
		return KindClassProperty
	case "method_definition":
		if IsClassMember(node) {
			return KindMethodDefinition
		}
		return KindFunctionExpression
	case "object":
		return KindObjectExpression
	case "function_declaration", "generator_function_declaration":
		return KindFunctionDeclaration
	case "function_expression", "function", "generator_function":
		return KindFunctionExpression
	case "arrow_function":
		return KindArrowFunction
	case "this":
		return KindThisExpression
	case "return_statement":
		return KindReturnStatement
	case "member_expression", "subscript_expression":
		return KindMemberExpression
	case "variable_declarator":
		return KindVariableDeclarator
	case "object_pattern":
		return KindObjectPattern
	case "statement_block":
		return KindBlockStatement
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return KindJSXElement
	case "jsx_expression":
		if IsJSXSpreadAttribute(node) {
			return KindJSXSpreadAttribute
		}
		return KindJSXExpressionContainer
	case "import_statement":
		return KindImportDeclaration
	case "export_statement":
		switch {
		case IsDefaultExport(node):
			return KindExportDefaultDeclaration
		case HasToken(node, "*") || firstNamedChildOfKind(node, "namespace_export") != nil:
			return KindExportAllDeclaration
		default:
			return KindExportNamedDeclaration
		}
	case "assignment_expression":
		return KindAssignmentExpression
	case "type_alias_declaration", "interface_declaration":
		return KindTypeAlias
	case "type_parameters":
		return KindTypeParameterDeclaration
	case "identifier":
		return KindIdentifier
	default:
		return KindUnknown
	}
}

// EventKinds returns the kinds the traversal raises on entering a node, in
// order. A class method is both the method and the function it defines, so
// it raises MethodDefinition followed by FunctionExpression; exits run in
// reverse.
func EventKinds(node *ts.Node) []Kind {
	kind := Classify(node)
	switch kind {
	case KindUnknown:
		return nil
	case KindMethodDefinition:
		return []Kind{KindMethodDefinition, KindFunctionExpression}
	default:
		return []Kind{kind}
	}
}

// IsClassMember reports whether node sits directly in a class body.
func IsClassMember(node *ts.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "class_body"
}

// IsDefaultExport reports whether an export statement is `export default`.
func IsDefaultExport(node *ts.Node) bool {
	return node != nil && node.Kind() == "export_statement" && HasToken(node, "default")
}

// IsJSXSpreadAttribute reports whether a jsx_expression is `{...x}` inside
// an opening or self-closing tag.
func IsJSXSpreadAttribute(node *ts.Node) bool {
	if node == nil || node.Kind() != "jsx_expression" {
		return false
	}
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "jsx_opening_element", "jsx_self_closing_element":
	default:
		return false
	}
	return firstNamedChildOfKind(node, "spread_element") != nil
}

// TypeName returns an ESTree-style type name for reporting. Kinds outside
// the dispatch set fall back to their literal/property names or to the raw
// tree-sitter kind.
func TypeName(node *ts.Node) string {
	if node == nil {
		return ""
	}
	if kind := Classify(node); kind != KindUnknown {
		if kind == KindMethodDefinition || node.Kind() != "method_definition" {
			return kind.String()
		}
		return "Property"
	}
	switch node.Kind() {
	case "pair", "shorthand_property_identifier", "pair_pattern",
		"shorthand_property_identifier_pattern", "object_assignment_pattern":
		return "Property"
	case "string", "number", "null", "true", "false", "regex":
		return "Literal"
	case "property_identifier":
		return "Identifier"
	case "spread_element":
		return "SpreadElement"
	case "rest_pattern":
		return "RestElement"
	}
	return node.Kind()
}
