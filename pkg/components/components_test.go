package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/parser/queries"
	"github.com/gnana997/uilint/pkg/util"
)

func newFile(t *testing.T, path, src string) *lint.File {
	t.Helper()

	pm := parser.NewParserManager(util.NopLogger())
	qm := queries.NewQueryManager(util.NopLogger())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})

	source := []byte(src)
	tree, dialect, err := pm.ParseFile(source, path)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	require.False(t, tree.RootNode().HasError(), "fixture must parse cleanly")

	f, err := lint.NewFile(path, source, dialect, tree, qm)
	require.NoError(t, err)
	return f
}

// detectAll runs detection over src and returns the confirmed components.
func detectAll(t *testing.T, path, src string, settings lint.Settings) ([]*Component, *lint.File) {
	t.Helper()

	f := newFile(t, path, src)
	var list []*Component
	rule := Detect(lint.Meta{ID: "test"}, func(_ *lint.Context, components *Registry, _ *Utils) (lint.Visitor, error) {
		return lint.Visitor{
			lint.OnExit(ast.KindProgram): func(*ts.Node) { list = components.List() },
		}, nil
	})
	_, err := lint.Run(f, rule, lint.SeverityError, settings, nil, nil)
	require.NoError(t, err)
	return list, f
}

func byName(t *testing.T, list []*Component, f *lint.File, name string) *Component {
	t.Helper()
	for _, c := range list {
		if ComponentName(c.Node, f.Source) == name {
			return c
		}
	}
	require.Failf(t, "component not found", "%s", name)
	return nil
}

func usedPaths(c *Component) []string {
	var out []string
	for _, u := range c.UsedPropTypes {
		out = append(out, strings.Join(u.AllNames, "."))
	}
	return out
}

func TestClassComponent(t *testing.T) {
	src := `
class Hello extends React.Component {
  render() { return <div>{this.props.name}</div>; }
}
Hello.propTypes = { name: PropTypes.string.isRequired };
`
	list, f := detectAll(t, "hello.jsx", src, lint.Settings{})
	require.Len(t, list, 1)

	c := byName(t, list, f, "Hello")
	assert.Equal(t, Confirmed, c.Confidence)
	require.Contains(t, c.DeclaredPropTypes, "name")
	assert.True(t, c.DeclaredPropTypes["name"].IsRequired)
	assert.Equal(t, []string{"name"}, usedPaths(c))
}

func TestArrowComponentWithDestructuring(t *testing.T) {
	src := `
const Greeting = ({ name, title: heading }) => <h1>{name}{heading}</h1>;
Greeting.propTypes = { name: PropTypes.string, title: PropTypes.string };
Greeting.defaultProps = { title: 'Hi' };
`
	list, f := detectAll(t, "greeting.jsx", src, lint.Settings{})
	require.Len(t, list, 1)

	c := byName(t, list, f, "Greeting")
	assert.Equal(t, []string{"name", "title"}, c.DeclaredPropTypes.Names())
	assert.False(t, c.DeclaredPropTypes["title"].IsRequired)
	assert.Equal(t, []string{"name", "title"}, usedPaths(c))
	require.NotNil(t, c.DefaultProps)
	assert.False(t, c.DefaultProps.Unresolved)
	assert.Equal(t, []string{"title"}, c.DefaultProps.Names())
}

func TestAsyncFunctionIsNeverAComponent(t *testing.T) {
	list, _ := detectAll(t, "a.jsx", `const Loader = async () => <div />;`, lint.Settings{})
	assert.Empty(t, list)
}

func TestPlainFunctionIsNotAComponent(t *testing.T) {
	list, _ := detectAll(t, "a.js", `function add(a, b) { return a + b; }`, lint.Settings{})
	assert.Empty(t, list)
}

func TestCreateClassComponent(t *testing.T) {
	src := `
const Legacy = createReactClass({
  getDefaultProps() { return { size: 1 }; },
  render() { return <div>{this.props.size}</div>; }
});
`
	list, f := detectAll(t, "legacy.jsx", src, lint.Settings{})
	require.Len(t, list, 1)

	c := byName(t, list, f, "Legacy")
	assert.Equal(t, "object", c.Node.Kind())
	assert.Equal(t, []string{"size"}, c.DefaultProps.Names())
	assert.Equal(t, []string{"size"}, usedPaths(c))
}

func TestDestructuringUsagesAreDeduplicated(t *testing.T) {
	src := `
function Card(props) {
  const { title } = props;
  const { title: t } = props;
  return <div>{title}{t}</div>;
}
`
	list, f := detectAll(t, "card.jsx", src, lint.Settings{})
	c := byName(t, list, f, "Card")
	assert.Equal(t, []string{"title"}, usedPaths(c))
}

func TestInterfaceDeclaredProps(t *testing.T) {
	src := `
interface Props { label: string; count?: number; }
function Badge(props: Props) { return <span>{props.label}</span>; }
`
	list, f := detectAll(t, "badge.tsx", src, lint.Settings{})
	c := byName(t, list, f, "Badge")
	assert.Equal(t, []string{"count", "label"}, c.DeclaredPropTypes.Names())
	assert.True(t, c.DeclaredPropTypes["label"].IsRequired)
	assert.False(t, c.DeclaredPropTypes["count"].IsRequired)
	assert.Equal(t, []string{"label"}, usedPaths(c))
}

func TestShapeAndUnionDeclarations(t *testing.T) {
	src := `
function Box(props) { return <div>{props.style.color}</div>; }
Box.propTypes = {
  style: PropTypes.shape({ color: PropTypes.string.isRequired, size: PropTypes.number }).isRequired,
  kind: PropTypes.oneOfType([PropTypes.string, PropTypes.instanceOf(Foo)]),
};
`
	list, f := detectAll(t, "box.jsx", src, lint.Settings{})
	c := byName(t, list, f, "Box")

	style := c.DeclaredPropTypes["style"]
	require.NotNil(t, style)
	assert.Equal(t, ShapeShape, style.Kind)
	assert.True(t, style.IsRequired)
	assert.True(t, style.Children["color"].IsRequired)
	assert.False(t, style.Children["size"].IsRequired)
	assert.Equal(t, "style.color", style.Children["color"].FullName)

	kind := c.DeclaredPropTypes["kind"]
	require.NotNil(t, kind)
	assert.Equal(t, ShapeUnion, kind.Kind)
	assert.True(t, kind.Opaque)

	assert.ElementsMatch(t, []string{"style", "style.color"}, usedPaths(c))
}

func TestSpreadPropTypesIgnoresValidation(t *testing.T) {
	src := `
function Wrap(props) { return <div>{props.a}</div>; }
Wrap.propTypes = { ...base, a: PropTypes.string };
`
	list, f := detectAll(t, "wrap.jsx", src, lint.Settings{})
	c := byName(t, list, f, "Wrap")
	assert.True(t, c.IgnorePropsValidation)
	assert.Contains(t, c.DeclaredPropTypes, "a")
}

func TestDefaultPropsSpreadIsUnresolved(t *testing.T) {
	src := `
function Wrap(props) { return <div>{props.a}</div>; }
Wrap.defaultProps = { ...base };
`
	list, f := detectAll(t, "wrap.jsx", src, lint.Settings{})
	c := byName(t, list, f, "Wrap")
	require.NotNil(t, c.DefaultProps)
	assert.True(t, c.DefaultProps.Unresolved)
}

func TestLifecycleMethodsFollowReactVersion(t *testing.T) {
	src := `
class A extends React.Component {
  static getDerivedStateFromProps(nextProps) { return nextProps.value ? {} : null; }
  render() { return <div />; }
}
`
	list, f := detectAll(t, "a.jsx", src, lint.Settings{Version: "16.2.0"})
	assert.Empty(t, usedPaths(byName(t, list, f, "A")))

	list, f = detectAll(t, "a.jsx", src, lint.Settings{Version: "16.3.0"})
	assert.Equal(t, []string{"value"}, usedPaths(byName(t, list, f, "A")))
}

func TestMemoWrapperIsTheComponent(t *testing.T) {
	list, f := detectAll(t, "memo.jsx", `const Memo = React.memo(() => <div />);`, lint.Settings{})
	require.Len(t, list, 1)
	assert.Equal(t, "call_expression", list[0].Node.Kind())
	assert.Equal(t, "Memo", ComponentName(list[0].Node, f.Source))
}

func TestPragmaFromComment(t *testing.T) {
	f := newFile(t, "a.jsx", "/** @jsx Foo.h */\nconst a = 1;\n")
	ctx := lint.NewContext(f, "test", lint.SeverityError, lint.Settings{Pragma: "Preact"}, nil, nil)
	pragma, err := PragmaFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Foo", pragma)

	f = newFile(t, "b.jsx", "const a = 1;\n")
	ctx = lint.NewContext(f, "test", lint.SeverityError, lint.Settings{Pragma: "Preact"}, nil, nil)
	pragma, err = PragmaFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Preact", pragma)
}

func TestInvalidPragmaFailsCreate(t *testing.T) {
	f := newFile(t, "a.jsx", "const a = 1;\n")
	rule := Detect(lint.Meta{ID: "test"}, func(*lint.Context, *Registry, *Utils) (lint.Visitor, error) {
		return nil, nil
	})

	_, err := lint.Run(f, rule, lint.SeverityError, lint.Settings{Pragma: "1nvalid"}, nil, nil)
	assert.ErrorIs(t, err, lint.ErrInvalidPragma)

	_, err = lint.Run(f, rule, lint.SeverityError, lint.Settings{CreateClass: "a.b"}, nil, nil)
	assert.ErrorIs(t, err, lint.ErrInvalidPragma)
}

func TestUnsupportedUsageNodeIsFatal(t *testing.T) {
	f := newFile(t, "a.js", "foo;\n")
	ctx := lint.NewContext(f, "test", lint.SeverityError, lint.Settings{}, nil, nil)
	registry := NewRegistry()
	u := newUsedProps(ctx, registry, NewUtils(ctx, registry, DefaultPragma, DefaultCreateClass))

	ident := f.Root.NamedChild(0).NamedChild(0)
	require.Equal(t, "identifier", ident.Kind())

	err := lint.Walk(ctx, f.Root, lint.Visitor{
		lint.On(ast.KindIdentifier): func(node *ts.Node) { u.markPropTypesAsUsed(node, nil) },
	})
	var fatal *lint.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 1, fatal.Line)
}

func TestRegistryConfidence(t *testing.T) {
	f := newFile(t, "a.js", "a; b;\n")
	a := f.Root.NamedChild(0)
	b := f.Root.NamedChild(1)

	r := NewRegistry()
	r.Add(a, Candidate)
	r.Add(a, Confirmed)
	r.Add(a, Candidate)
	assert.Equal(t, Confirmed, r.Get(a).Confidence, "confidence never drops below its maximum")
	assert.Equal(t, 1, r.Length())

	r.Add(a, NotComponent)
	r.Add(a, Confirmed)
	assert.Nil(t, r.Get(a), "NotComponent is final")
	assert.Zero(t, r.Length())

	r.Add(b, Confirmed)
	r.Add(b, Confirmed)
	assert.Len(t, r.List(), 1)
}

func TestListMergesCandidateUsagesIntoConfirmedAncestor(t *testing.T) {
	f := newFile(t, "a.js", "function Outer() { function inner() { x; } return null; }\n")
	outer := f.Root.NamedChild(0)
	body := outer.ChildByFieldName("body")
	inner := body.NamedChild(0)
	require.Equal(t, "function_declaration", inner.Kind())
	stmt := inner.ChildByFieldName("body").NamedChild(0)

	r := NewRegistry()
	r.Add(outer, Confirmed)
	r.Add(inner, Candidate)
	r.Set(stmt, func(c *Component) {
		c.AddUsages(PropUsage{Name: "a", AllNames: []string{"a"}, Node: stmt})
		c.AddUsages(PropUsage{Name: "a", AllNames: []string{"a"}, Node: stmt})
	})
	require.Len(t, r.records[ast.KeyOf(inner)].UsedPropTypes, 1)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a"}, usedPaths(list[0]))
	assert.Empty(t, r.Get(outer).UsedPropTypes, "List does not mutate the registry")
}

func TestReactVersionAtLeast(t *testing.T) {
	assert.False(t, ReactVersionAtLeast(lint.Settings{Version: "16.2.0"}, "16.3.0"))
	assert.True(t, ReactVersionAtLeast(lint.Settings{Version: "16.3.0"}, "16.3.0"))
	assert.True(t, ReactVersionAtLeast(lint.Settings{Version: "18.2.0"}, "16.3.0"))
	assert.True(t, ReactVersionAtLeast(lint.Settings{}, "16.3.0"))
	assert.True(t, ReactVersionAtLeast(lint.Settings{Version: "latest"}, "16.3.0"))
}

func TestInspectSummaries(t *testing.T) {
	src := `
const Greeting = ({ name }) => <h1>{name}</h1>;
Greeting.propTypes = { name: PropTypes.string.isRequired };
Greeting.defaultProps = { name: 'x' };
`
	f := newFile(t, "g.jsx", src)
	summaries, err := Inspect(f, lint.Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "Greeting", s.Name)
	assert.Equal(t, KindFunction, s.Kind)
	assert.Equal(t, Confirmed, s.Confidence)
	assert.Equal(t, 2, s.Line)
	assert.Equal(t, []DeclaredProp{{Name: "name", Required: true}}, s.DeclaredProps)
	assert.Equal(t, []string{"name"}, s.UsedProps)
	assert.Equal(t, []string{"name"}, s.DefaultProps)
}

func TestComponentName(t *testing.T) {
	f := newFile(t, "a.jsx", "export default function () { return <div />; }\nclass B {}\n")
	assert.Equal(t, "default", ComponentName(f.Root.NamedChild(0).NamedChild(0), f.Source))
	assert.Equal(t, "B", ComponentName(f.Root.NamedChild(1), f.Source))
	assert.Equal(t, AnonymousComponent, ComponentName(nil, f.Source))
}

func TestPropUsageTracking(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		src          string
		component    string
		used         []string
		ignoreUnused bool
	}{
		{
			name:         "rest element in destructured parameter",
			path:         "foo.jsx",
			src:          `function Foo({ a, ...rest }) { return <div>{a}</div>; }`,
			component:    "Foo",
			used:         []string{"a"},
			ignoreUnused: true,
		},
		{
			name:         "jsx spread attribute",
			path:         "button.jsx",
			src:          `function Button(props) { return <button {...props}>{props.label}</button>; }`,
			component:    "Button",
			used:         []string{"label"},
			ignoreUnused: true,
		},
		{
			name: "alias of props",
			path: "alias.jsx",
			src: `function Alias(props) {
  const p = props;
  return <div>{p.x}</div>;
}`,
			component: "Alias",
			used:      []string{"x"},
		},
		{
			name: "nested destructuring records the parent first",
			path: "nested.jsx",
			src: `function Nested(props) {
  const { c: { d } } = props;
  return <div>{d}</div>;
}`,
			component: "Nested",
			used:      []string{"c", "c.d"},
		},
		{
			name:      "forwardRef render function",
			path:      "input.jsx",
			src:       `const Input = React.forwardRef((props, ref) => <input ref={ref} value={props.value} />);`,
			component: "Input",
			used:      []string{"value"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, f := detectAll(t, tc.path, tc.src, lint.Settings{})
			require.Len(t, list, 1)

			c := byName(t, list, f, tc.component)
			assert.Equal(t, tc.used, usedPaths(c))
			assert.Equal(t, tc.ignoreUnused, c.IgnoreUnusedPropTypesValidation)
			assert.False(t, c.IgnorePropsValidation)
		})
	}
}

func TestForwardRefWrapperIsTheComponent(t *testing.T) {
	list, f := detectAll(t, "input.jsx", `const Input = React.forwardRef((props, ref) => <input ref={ref} />);`, lint.Settings{})
	require.Len(t, list, 1)
	assert.Equal(t, "call_expression", list[0].Node.Kind())
	assert.Equal(t, "Input", ComponentName(list[0].Node, f.Source))
}

func TestSiblingComponentsKeepSeparatePropVariables(t *testing.T) {
	src := `
function A(props) {
  const p = props;
  return <div>{p.x}</div>;
}
function B(other) {
  return <div>{p.y}</div>;
}
`
	list, f := detectAll(t, "ab.jsx", src, lint.Settings{})
	require.Len(t, list, 2)
	assert.Equal(t, []string{"x"}, usedPaths(byName(t, list, f, "A")))
	assert.Empty(t, usedPaths(byName(t, list, f, "B")))
}

func TestReturnShapesDetectComponents(t *testing.T) {
	src := `
function S(props) {
  switch (props.kind) {
    case 'a':
      return 'text';
    default:
      return <div />;
  }
}
function T(props) {
  return props.ok ? <div /> : 'text';
}
function N(props) {
  switch (props.kind) {
    case 'a':
      return <div />;
    default:
      return 'text';
  }
}
`
	list, f := detectAll(t, "shapes.jsx", src, lint.Settings{})
	var names []string
	for _, c := range list {
		names = append(names, ComponentName(c.Node, f.Source))
	}
	assert.ElementsMatch(t, []string{"S", "T"}, names)
}

func TestIsReturningJSXStrictTernary(t *testing.T) {
	testCases := []struct {
		name   string
		src    string
		strict bool
		want   bool
	}{
		{"one branch non-strict", `function f(a) { return a ? <div /> : 'x'; }`, false, true},
		{"one branch strict", `function f(a) { return a ? <div /> : 'x'; }`, true, false},
		{"both branches strict", `function f(a) { return a ? <div /> : <span />; }`, true, true},
		{"no markup", `function f(a) { return a ? 1 : 2; }`, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFile(t, "f.jsx", tc.src)
			ctx := lint.NewContext(f, "test", lint.SeverityError, lint.Settings{}, nil, nil)
			utils := NewUtils(ctx, NewRegistry(), DefaultPragma, DefaultCreateClass)

			fn := f.Root.NamedChild(0)
			require.Equal(t, "function_declaration", fn.Kind())
			assert.Equal(t, tc.want, utils.IsReturningJSX(fn, tc.strict))
		})
	}
}

func TestDetectionIsIdempotent(t *testing.T) {
	src := `
class Foo extends React.Component {
  render() {
    const { a, b: { c } } = this.props;
    return <div>{a}{c}{this.props.d}</div>;
  }
}
Foo.propTypes = { a: PropTypes.string, b: PropTypes.shape({ c: PropTypes.number }) };
const Bar = (props) => <span>{props.y}{props.y}</span>;
`
	type snapshot struct {
		name       string
		confidence int
		declared   []string
		used       []string
	}
	run := func() []snapshot {
		list, f := detectAll(t, "foo.jsx", src, lint.Settings{})
		var out []snapshot
		for _, c := range list {
			out = append(out, snapshot{
				name:       ComponentName(c.Node, f.Source),
				confidence: c.Confidence,
				declared:   c.DeclaredPropTypes.Names(),
				used:       usedPaths(c),
			})
		}
		return out
	}

	first := run()
	require.Len(t, first, 2)
	assert.Equal(t, first, run())
	assert.Equal(t, first, run())
}

func TestPropTypesReferenceCycleIsUnresolved(t *testing.T) {
	src := `
var a = b, b = a;
function Foo(props) { return <div>{props.x}</div>; }
Foo.propTypes = a;
`
	list, f := detectAll(t, "cycle.jsx", src, lint.Settings{})
	c := byName(t, list, f, "Foo")
	assert.True(t, c.IgnorePropsValidation)
	assert.Equal(t, []string{"x"}, usedPaths(c))
}

func TestPropWrapperReferenceCycleIsUnresolved(t *testing.T) {
	src := `
var a = forbidExtraProps(b), b = forbidExtraProps(a);
function Foo(props) { return <div />; }
Foo.propTypes = a;
`
	settings := lint.Settings{PropWrapperFunctions: []string{"forbidExtraProps"}}
	list, f := detectAll(t, "cycle.jsx", src, settings)
	assert.True(t, byName(t, list, f, "Foo").IgnorePropsValidation)
}

func TestCyclicTypeAliases(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		declared []string
	}{
		{
			name: "intersection aliases referring to each other",
			src: `
type A = B & { a: string };
type B = A & { b: string };
function Foo(props: A) { return <div />; }
`,
			declared: []string{"a", "b"},
		},
		{
			name: "self-referencing member type",
			src: `
type Tree = { label: string; children: Tree[] };
function Foo(props: Tree) { return <div />; }
`,
			declared: []string{"children", "label"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, f := detectAll(t, "foo.tsx", tc.src, lint.Settings{})
			c := byName(t, list, f, "Foo")
			assert.Equal(t, tc.declared, c.DeclaredPropTypes.Names())
			assert.False(t, c.IgnorePropsValidation)
		})
	}
}

func TestShapeWithSpreadIsMarked(t *testing.T) {
	src := `
function Box(props) { return <div />; }
Box.propTypes = { style: PropTypes.shape({ ...base, color: PropTypes.string }) };
`
	list, f := detectAll(t, "box.jsx", src, lint.Settings{})
	style := byName(t, list, f, "Box").DeclaredPropTypes["style"]
	require.NotNil(t, style)
	assert.True(t, style.ContainsSpread)
	assert.Contains(t, style.Children, "color")
}
