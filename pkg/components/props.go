package components

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

func isClassField(node *ts.Node) bool {
	return node != nil && (node.Kind() == "field_definition" || node.Kind() == "public_field_definition")
}

// isAnnotatedField reports whether a class field named name carries a type
// annotation, as in `props: Props`.
func isAnnotatedField(node *ts.Node, name string, source []byte) bool {
	return isClassField(node) && node.ChildByFieldName("type") != nil && ast.PropertyName(node, source) == name
}

// IsPropTypesDeclaration reports whether node declares propTypes, or is an
// annotated `props` class field.
func IsPropTypesDeclaration(node *ts.Node, source []byte) bool {
	if node == nil {
		return false
	}
	if isAnnotatedField(node, "props", source) {
		return true
	}
	return ast.PropertyName(node, source) == "propTypes"
}

// IsContextTypesDeclaration reports whether node declares contextTypes,
// or is an annotated `context` class field.
func IsContextTypesDeclaration(node *ts.Node, source []byte) bool {
	if node == nil {
		return false
	}
	if isAnnotatedField(node, "context", source) {
		return true
	}
	return ast.PropertyName(node, source) == "contextTypes"
}

// IsChildContextTypesDeclaration reports whether node declares
// childContextTypes.
func IsChildContextTypesDeclaration(node *ts.Node, source []byte) bool {
	return node != nil && ast.PropertyName(node, source) == "childContextTypes"
}

// IsDefaultPropsDeclaration reports whether node declares defaultProps or
// getDefaultProps.
func IsDefaultPropsDeclaration(node *ts.Node, source []byte) bool {
	if node == nil {
		return false
	}
	name := ast.PropertyName(node, source)
	return name == "defaultProps" || name == "getDefaultProps"
}

// IsRequiredPropType reports whether a validator expression ends in
// .isRequired.
func IsRequiredPropType(node *ts.Node, source []byte) bool {
	return node != nil && node.Kind() == "member_expression" &&
		ast.Text(node.ChildByFieldName("property"), source) == "isRequired"
}
