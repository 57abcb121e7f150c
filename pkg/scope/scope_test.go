package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/util"
)

func analyze(t *testing.T, dialect parser.Dialect, src string) (*Manager, *ts.Node, []byte) {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	t.Cleanup(func() { pm.Close() })

	source := []byte(src)
	tree, err := pm.Parse(source, dialect)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	root := tree.RootNode()
	require.False(t, root.HasError())
	return Analyze(root, source), root, source
}

func find(node *ts.Node, kind string) *ts.Node {
	if node.Kind() == kind {
		return node
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if found := find(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

func names(vars []*Variable) []string {
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, v.Name)
	}
	return out
}

func TestModuleDeclarations(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
import React, { memo as m } from 'react';
import * as utils from './utils';
const A = 1;
function B() {}
class C {}
`)

	module := m.Acquire(root, true)
	require.NotNil(t, module)
	assert.Equal(t, TypeModule, module.Type)
	assert.Equal(t, TypeGlobal, m.Acquire(root, false).Type)
	assert.Same(t, m.Global, module.Upper)

	assert.Equal(t, []string{"React", "m", "utils", "A", "B", "C"}, names(module.Variables))
	assert.Equal(t, DefImportBinding, module.Set["m"].Defs[0].Type)
	assert.Equal(t, DefFunctionName, module.Set["B"].Defs[0].Type)
	assert.Equal(t, DefClassName, module.Set["C"].Defs[0].Type)

	// the imported binding shares its scope with the pragma import
	_, ok := module.Set["m"].Scope.Set["React"]
	assert.True(t, ok)
}

func TestVarHoistsLetDoesNot(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
function f() {
  if (x) {
    var hoisted = 1;
    let local = 2;
  }
}
`)
	fn := m.Acquire(find(root, "function_declaration"), true)
	require.NotNil(t, fn)
	assert.Equal(t, TypeFunction, fn.Type)
	assert.Contains(t, names(fn.Variables), "hoisted")
	assert.NotContains(t, names(fn.Variables), "local")

	block := m.ScopeAt(find(root, "lexical_declaration"))
	assert.Equal(t, TypeBlock, block.Type)
	assert.Equal(t, []string{"local"}, names(block.Variables))
}

func TestReferencesInSourceOrder(t *testing.T) {
	m, root, src := analyze(t, parser.DialectJavaScript, `
const Foo = () => null;
Foo.propTypes = {};
export default Foo;
`)
	module := m.Acquire(root, true)
	foo := module.Set["Foo"]
	require.NotNil(t, foo)
	require.Len(t, foo.References, 3)

	assert.True(t, foo.References[0].Write)
	assert.Equal(t, "variable_declarator", foo.References[0].Identifier.Parent().Kind())
	assert.Equal(t, "member_expression", foo.References[1].Identifier.Parent().Kind())
	assert.Equal(t, "Foo", foo.References[2].Identifier.Utf8Text(src))
	for _, ref := range foo.References {
		assert.Same(t, foo, ref.Resolved)
	}
}

func TestParametersAndDestructuring(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
const C = ({ a, b: renamed, c = 1, ...rest }, [d], e = 2) => a;
`)
	fn := m.Acquire(find(root, "arrow_function"), true)
	require.NotNil(t, fn)
	assert.Equal(t, []string{"a", "renamed", "c", "rest", "d", "e"}, names(fn.Variables))
	for _, v := range fn.Variables {
		assert.Equal(t, DefParameter, v.Defs[0].Type)
	}

	// the body reference resolves to the parameter
	a := fn.Set["a"]
	require.Len(t, a.References, 1)
}

func TestJSXNamesAreNotReferences(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
const Foo = () => null;
const el = <Foo bar={baz} {...spread} />;
`)
	module := m.Acquire(root, true)
	assert.Len(t, module.Set["Foo"].References, 1, "only the declarator write")

	var unresolved []string
	for _, s := range m.Scopes() {
		for _, ref := range s.References {
			if ref.Resolved == nil {
				unresolved = append(unresolved, ref.Identifier.Kind())
			}
		}
	}
	assert.Len(t, unresolved, 2)
}

func TestScopeAt(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
class A { render() { return this.x; } }
`)
	assert.Same(t, m.Global, m.ScopeAt(root))

	this := find(root, "this")
	s := m.ScopeAt(this)
	assert.Equal(t, TypeFunction, s.Type)
	assert.Equal(t, "method_definition", s.Block.Kind())
	assert.Equal(t, TypeClass, s.Upper.Type)
}

func TestVariablesInScopeShallowWidening(t *testing.T) {
	m, root, _ := analyze(t, parser.DialectJavaScript, `
const top = 1;
function outer() {
  const inner = 2;
  function deeper() {
    const tooDeep = 3;
  }
}
`)
	vars := names(VariablesInScope(m.ScopeAt(root)))
	assert.Contains(t, vars, "top")
	assert.Contains(t, vars, "outer")
	assert.Contains(t, vars, "inner", "module's first child scope is pulled in")
	assert.NotContains(t, vars, "tooDeep")

	// nearest first
	deeper := m.Acquire(find(find(root, "statement_block"), "function_declaration"), true)
	require.NotNil(t, deeper)
	visible := VariablesInScope(deeper)
	require.NotEmpty(t, visible)
	assert.Equal(t, "tooDeep", visible[0].Name)
}

func TestFindVariableByName(t *testing.T) {
	m, root, src := analyze(t, parser.DialectTypeScript, `
const propTypes = { a: 1 };
type Props = { a: string };
interface Other { b: number }
function fn() {}
`)
	s := m.ScopeAt(root)

	init := FindVariableByName(s, "propTypes")
	require.NotNil(t, init)
	assert.Equal(t, "object", init.Kind())

	alias := FindVariableByName(s, "Props")
	require.NotNil(t, alias)
	assert.Equal(t, "{ a: string }", alias.Utf8Text(src))

	iface := FindVariableByName(s, "Other")
	require.NotNil(t, iface)
	assert.Contains(t, iface.Utf8Text(src), "b: number")

	assert.Nil(t, FindVariableByName(s, "fn"))
	assert.Nil(t, FindVariableByName(s, "missing"))
}
