package scope

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// VariablesInScope returns the variables visible from s, nearest first.
//
// Besides the chain from s up to the global scope, it pulls in the module
// scope's first child scope and that scope's first child. The widening is
// deliberately shallow: it lets lookups made from the program level see
// names declared one or two scopes down without turning into closure
// analysis.
func VariablesInScope(s *Scope) []*Variable {
	if s == nil {
		return nil
	}

	vars := append([]*Variable(nil), s.Variables...)
	cur := s
	for cur.Type != TypeGlobal && cur.Upper != nil {
		cur = cur.Upper
		vars = prepend(cur.Variables, vars)
	}

	if len(cur.Children) > 0 {
		first := cur.Children[0]
		vars = prepend(first.Variables, vars)
		if len(first.Children) > 0 {
			vars = prepend(first.Children[0].Variables, vars)
		}
	}

	for i, j := 0, len(vars)-1; i < j; i, j = i+1, j-1 {
		vars[i], vars[j] = vars[j], vars[i]
	}
	return vars
}

func prepend(head, tail []*Variable) []*Variable {
	out := make([]*Variable, 0, len(head)+len(tail))
	out = append(out, head...)
	return append(out, tail...)
}

// FindVariable returns the first variable named name, or nil.
func FindVariable(vars []*Variable, name string) *Variable {
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// FindVariableByName resolves name from s and returns the node it is bound
// to: a declarator's initializer, or the definition of a type alias or
// interface. It returns nil when the name is unknown or has no such node.
func FindVariableByName(s *Scope, name string) *ts.Node {
	v := FindVariable(VariablesInScope(s), name)
	if v == nil || len(v.Defs) == 0 || v.Defs[0].Node == nil {
		return nil
	}
	return v.Defs[0].Init()
}

// Init returns the value a definition binds: a declarator's initializer or
// a type declaration's body. Other definitions have none.
func (d *Definition) Init() *ts.Node {
	if d == nil || d.Node == nil {
		return nil
	}
	switch d.Node.Kind() {
	case "variable_declarator":
		return ast.Field(d.Node, "value")
	case "type_alias_declaration":
		return d.Node.ChildByFieldName("value")
	case "interface_declaration":
		return d.Node.ChildByFieldName("body")
	}
	return nil
}
