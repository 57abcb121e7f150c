package components

import (
	"log/slog"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

// AnonymousComponent names components with no binding.
const AnonymousComponent = "<anonymous>"

// Component kinds reported by Inspect.
const (
	KindClass       = "class"
	KindCreateClass = "createClass"
	KindFunction    = "function"
	KindWrapper     = "wrapper"
)

// DeclaredProp is a top-level declared prop.
type DeclaredProp struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Summary describes one confirmed component of a file.
type Summary struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Confidence int    `json:"confidence"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`

	DeclaredProps          []DeclaredProp `json:"declaredProps,omitempty"`
	UsedProps              []string       `json:"usedProps,omitempty"`
	DefaultProps           []string       `json:"defaultProps,omitempty"`
	DefaultPropsUnresolved bool           `json:"defaultPropsUnresolved,omitempty"`

	IgnorePropsValidation           bool `json:"ignorePropsValidation,omitempty"`
	IgnoreUnusedPropTypesValidation bool `json:"ignoreUnusedPropTypesValidation,omitempty"`
}

// Inspect runs detection over file and summarizes every confirmed
// component in source order.
func Inspect(file *lint.File, settings lint.Settings, logger *slog.Logger) ([]Summary, error) {
	var summaries []Summary
	rule := Detect(lint.Meta{ID: "inspect"}, func(ctx *lint.Context, components *Registry, _ *Utils) (lint.Visitor, error) {
		return lint.Visitor{
			lint.OnExit(ast.KindProgram): func(*ts.Node) {
				for _, c := range components.List() {
					summaries = append(summaries, summarize(c, ctx.Source()))
				}
			},
		}, nil
	})
	if _, err := lint.Run(file, rule, lint.SeverityWarning, settings, nil, logger); err != nil {
		return nil, err
	}
	return summaries, nil
}

func summarize(c *Component, source []byte) Summary {
	line, column := ast.Position(c.Node)
	s := Summary{
		Name:                            ComponentName(c.Node, source),
		Kind:                            componentKind(c.Node),
		Confidence:                      c.Confidence,
		Line:                            line,
		Column:                          column,
		IgnorePropsValidation:           c.IgnorePropsValidation,
		IgnoreUnusedPropTypesValidation: c.IgnoreUnusedPropTypesValidation,
	}
	for _, name := range c.DeclaredPropTypes.Names() {
		s.DeclaredProps = append(s.DeclaredProps, DeclaredProp{Name: name, Required: c.DeclaredPropTypes[name].IsRequired})
	}
	seen := make(map[string]bool)
	for _, u := range c.UsedPropTypes {
		path := strings.Join(u.AllNames, ".")
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		s.UsedProps = append(s.UsedProps, path)
	}
	if c.DefaultProps != nil {
		s.DefaultPropsUnresolved = c.DefaultProps.Unresolved
		s.DefaultProps = c.DefaultProps.Names()
	}
	return s
}

func componentKind(node *ts.Node) string {
	switch {
	case ast.IsClass(node):
		return KindClass
	case node.Kind() == "object":
		return KindCreateClass
	case ast.IsCall(node):
		return KindWrapper
	}
	return KindFunction
}

// ComponentName returns the name a component is bound to: its own
// declaration name, or the variable, property or assignment target that
// holds it, looking through wrapper calls. Default exports are named
// "default".
func ComponentName(node *ts.Node, source []byte) string {
	if node == nil {
		return AnonymousComponent
	}
	if name := node.ChildByFieldName("name"); name != nil && node.Kind() != "method_definition" {
		return ast.Text(name, source)
	}
	if node.Kind() == "method_definition" {
		return ast.PropertyName(node, source)
	}

	for n := node; n != nil; {
		parent := ast.Parent(n)
		if parent == nil {
			break
		}
		switch parent.Kind() {
		case "variable_declarator":
			return ast.Text(ast.Field(parent, "name"), source)
		case "assignment_expression":
			return ast.Text(ast.Field(parent, "left"), source)
		case "pair":
			return ast.KeyValue(parent, source)
		case "export_statement":
			return "default"
		case "call_expression", "sequence_expression":
			n = parent
			continue
		}
		break
	}
	return AnonymousComponent
}
