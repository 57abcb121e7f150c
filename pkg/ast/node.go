package ast

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// NodeKey identifies a node by its source span. Two nodes with the same
// span are treated as the same entity, so lookups survive re-fetching a
// node from the tree.
type NodeKey struct {
	Start uint
	End   uint
}

// KeyOf returns the span key of a node. A nil node has the zero key.
func KeyOf(node *ts.Node) NodeKey {
	if node == nil {
		return NodeKey{}
	}
	return NodeKey{Start: node.StartByte(), End: node.EndByte()}
}

// String renders the key as "start:end".
func (k NodeKey) String() string {
	return fmt.Sprintf("%d:%d", k.Start, k.End)
}

// Same reports whether a and b denote the same tree node.
func Same(a, b *ts.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// transparent wrappers have no ESTree counterpart.
var transparent = map[string]bool{
	"parenthesized_expression": true,
	"arguments":                true,
	"formal_parameters":        true,
	"required_parameter":       true,
	"optional_parameter":       true,
	"class_heritage":           true,
	"extends_clause":           true,
	"switch_body":              true,
	"export_clause":            true,
}

// Parent returns the nearest ancestor that is not a transparent wrapper.
func Parent(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	parent := node.Parent()
	for parent != nil && transparent[parent.Kind()] {
		parent = parent.Parent()
	}
	return parent
}

// Unparen strips any parentheses around an expression.
func Unparen(node *ts.Node) *ts.Node {
	for node != nil && node.Kind() == "parenthesized_expression" {
		inner := firstNamedNonComment(node)
		if inner == nil {
			return node
		}
		node = inner
	}
	return node
}

// Field returns a named field of node with parentheses stripped.
func Field(node *ts.Node, name string) *ts.Node {
	if node == nil {
		return nil
	}
	return Unparen(node.ChildByFieldName(name))
}

// NamedChildren returns the named children of node, skipping comments.
func NamedChildren(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	count := node.NamedChildCount()
	children := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// FieldChildren returns every child stored under a field name, in order.
// switch cases keep their consequent statements under repeated "body" fields.
func FieldChildren(node *ts.Node, field string) []*ts.Node {
	if node == nil {
		return nil
	}
	var out []*ts.Node
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if node.FieldNameForChild(uint32(i)) != field {
			continue
		}
		if child := node.Child(i); child != nil && child.Kind() != "comment" {
			out = append(out, child)
		}
	}
	return out
}

// HasToken reports whether node has a direct anonymous child with the given
// text, e.g. "async", "static" or "default".
func HasToken(node *ts.Node, token string) bool {
	if node == nil {
		return false
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// Flatten expands binary sequence, union and intersection chains into
// their operands, left to right.
func Flatten(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	kind := node.Kind()
	var out []*ts.Node
	for _, child := range NamedChildren(node) {
		if child.Kind() == kind {
			out = append(out, Flatten(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

// Position returns the 1-based line and column of the node's start.
func Position(node *ts.Node) (line, column int) {
	if node == nil {
		return 0, 0
	}
	p := node.StartPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

// EndPosition returns the 1-based line and column of the node's end.
func EndPosition(node *ts.Node) (line, column int) {
	if node == nil {
		return 0, 0
	}
	p := node.EndPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

// Text returns the source text of node, or "" for nil.
func Text(node *ts.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

func firstNamedNonComment(node *ts.Node) *ts.Node {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

func firstNamedChildOfKind(node *ts.Node, kind string) *ts.Node {
	for _, child := range NamedChildren(node) {
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}
