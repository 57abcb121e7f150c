// Package scope builds lexical scopes for a tree-sitter JavaScript or
// TypeScript tree: which names each scope declares, where each identifier
// reference resolves, and how scopes nest.
//
// The model mirrors the scope managers ESTree tooling uses, with global and
// module scopes rooted at the program and one scope per function, class,
// block, for-loop, catch clause and switch. Resolution is purely lexical;
// nothing is inferred about values.
package scope

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// Type is the kind of a scope.
type Type string

const (
	TypeGlobal   Type = "global"
	TypeModule   Type = "module"
	TypeFunction Type = "function"
	TypeClass    Type = "class"
	TypeBlock    Type = "block"
	TypeFor      Type = "for"
	TypeCatch    Type = "catch"
	TypeSwitch   Type = "switch"
)

// DefType is the kind of a declaration.
type DefType string

const (
	DefClassName     DefType = "ClassName"
	DefFunctionName  DefType = "FunctionName"
	DefVariable      DefType = "Variable"
	DefParameter     DefType = "Parameter"
	DefImportBinding DefType = "ImportBinding"
	DefCatchClause   DefType = "CatchClause"
	DefTypeAlias     DefType = "TypeAlias"
)

// Scope is one lexical scope.
type Scope struct {
	Type     Type
	Block    *ts.Node
	Upper    *Scope
	Children []*Scope

	// Variables in declaration order; Set indexes them by name.
	Variables []*Variable
	Set       map[string]*Variable

	// References made directly from this scope.
	References []*Reference
}

// Definition records where and how a variable is declared.
type Definition struct {
	Type DefType
	// Name is the identifier that introduces the binding.
	Name *ts.Node
	// Node is the declaring construct: a variable_declarator, function,
	// class, import specifier, parameter or type declaration.
	Node *ts.Node
}

// Variable is a named binding in a scope.
type Variable struct {
	Name       string
	Scope      *Scope
	Defs       []*Definition
	References []*Reference
}

// Reference is one occurrence of a name in expression position.
type Reference struct {
	Identifier *ts.Node
	From       *Scope
	Resolved   *Variable
	// Write is set for assignment targets and initialized declarators.
	Write bool
}

// Manager owns every scope of one tree.
type Manager struct {
	Global *Scope
	scopes map[blockKey][]*Scope
	all    []*Scope
}

type blockKey struct {
	span ast.NodeKey
	kind string
}

func keyFor(node *ts.Node) blockKey {
	return blockKey{span: ast.KeyOf(node), kind: node.Kind()}
}

// Scopes returns every scope in creation order.
func (m *Manager) Scopes() []*Scope {
	return m.all
}

// Acquire returns the scope whose block is node. When a node owns more than
// one scope (the program owns both the global and module scope), inner
// selects the innermost one.
func (m *Manager) Acquire(node *ts.Node, inner bool) *Scope {
	if node == nil {
		return nil
	}
	scopes := m.scopes[keyFor(node)]
	if len(scopes) == 0 {
		return nil
	}
	if inner {
		return scopes[len(scopes)-1]
	}
	return scopes[0]
}

// ScopeAt returns the scope in effect at node: the innermost scope of the
// nearest ancestor (node included) that owns one. At the program itself
// the global scope is returned.
func (m *Manager) ScopeAt(node *ts.Node) *Scope {
	inner := node != nil && node.Kind() != "program"
	for n := node; n != nil; n = n.Parent() {
		if s := m.Acquire(n, inner); s != nil {
			return s
		}
	}
	return m.Global
}

// Lookup resolves name from s outward, returning nil when undeclared.
func (s *Scope) Lookup(name string) *Variable {
	for cur := s; cur != nil; cur = cur.Upper {
		if v, ok := cur.Set[name]; ok {
			return v
		}
	}
	return nil
}

func (m *Manager) nest(t Type, block *ts.Node, upper *Scope) *Scope {
	s := &Scope{
		Type:  t,
		Block: block,
		Upper: upper,
		Set:   make(map[string]*Variable),
	}
	if upper != nil {
		upper.Children = append(upper.Children, s)
	}
	key := keyFor(block)
	m.scopes[key] = append(m.scopes[key], s)
	m.all = append(m.all, s)
	return s
}

func (s *Scope) define(name string, def *Definition) *Variable {
	v, ok := s.Set[name]
	if !ok {
		v = &Variable{Name: name, Scope: s}
		s.Set[name] = v
		s.Variables = append(s.Variables, v)
	}
	v.Defs = append(v.Defs, def)
	return v
}

// variableScope returns the nearest scope a `var` declaration hoists to.
func (s *Scope) variableScope() *Scope {
	cur := s
	for cur.Upper != nil {
		switch cur.Type {
		case TypeFunction, TypeModule, TypeGlobal:
			return cur
		}
		cur = cur.Upper
	}
	return cur
}
