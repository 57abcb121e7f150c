package rules

import (
	"fmt"
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/components"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/scope"
)

const AllowedPropTypesID = "allowed-prop-types"

var defaultForbiddenPropTypes = []string{"any", "array", "object"}

// AllowedPropTypes forbids vague validators such as PropTypes.any, except
// on the keys listed in the `allowed` option.
//
// Options:
//   - allowed: prop keys exempt from the check; "/re/" entries are regular
//     expressions
//   - forbid: validator names to forbid (default any, array, object)
//   - checkContextTypes, checkChildContextTypes: also check contextTypes
//     and childContextTypes declarations
func AllowedPropTypes() lint.Rule {
	return components.Detect(lint.Meta{
		ID:          AllowedPropTypesID,
		Description: "Forbid/Allow certain propTypes",
		Category:    CategoryBestPractices,
		Recommended: true,
		DefaultOptions: lint.Options{
			"allowed":                []string{},
			"forbid":                 defaultForbiddenPropTypes,
			"checkContextTypes":      false,
			"checkChildContextTypes": false,
		},
	}, newAllowedPropTypes)
}

// keyMatcher matches a prop key exactly or, for "/re/" entries, by regexp.
type keyMatcher struct {
	literal string
	re      *regexp.Regexp
}

func (m keyMatcher) match(key string) bool {
	if m.re != nil {
		return m.re.MatchString(key)
	}
	return m.literal == key
}

func parseKeyMatchers(entries []string) ([]keyMatcher, error) {
	matchers := make([]keyMatcher, 0, len(entries))
	for _, entry := range entries {
		if len(entry) > 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile(entry[1 : len(entry)-1])
			if err != nil {
				return nil, fmt.Errorf("%w: allowed entry %s: %v", ErrInvalidOption, entry, err)
			}
			matchers = append(matchers, keyMatcher{re: re})
			continue
		}
		matchers = append(matchers, keyMatcher{literal: entry})
	}
	return matchers, nil
}

type allowedPropTypes struct {
	ctx *lint.Context

	allowed                []keyMatcher
	forbid                 map[string]bool
	checkContextTypes      bool
	checkChildContextTypes bool
}

func newAllowedPropTypes(ctx *lint.Context, _ *components.Registry, _ *components.Utils) (lint.Visitor, error) {
	opts := ctx.Options()
	entries, _ := opts.Strings("allowed")
	allowed, err := parseKeyMatchers(entries)
	if err != nil {
		return nil, err
	}
	forbidden, ok := opts.Strings("forbid")
	if !ok {
		forbidden = defaultForbiddenPropTypes
	}
	r := &allowedPropTypes{
		ctx:                    ctx,
		allowed:                allowed,
		forbid:                 make(map[string]bool, len(forbidden)),
		checkContextTypes:      opts.Bool("checkContextTypes", false),
		checkChildContextTypes: opts.Bool("checkChildContextTypes", false),
	}
	for _, name := range forbidden {
		r.forbid[name] = true
	}

	return lint.Visitor{
		lint.On(ast.KindClassProperty):    r.classProperty,
		lint.On(ast.KindMemberExpression): r.memberExpression,
		lint.On(ast.KindMethodDefinition): r.methodDefinition,
		lint.On(ast.KindObjectExpression): r.objectExpression,
	}, nil
}

// isChecked reports whether node declares propTypes, or context types
// when those checks are enabled.
func (r *allowedPropTypes) isChecked(node *ts.Node) bool {
	source := r.ctx.Source()
	return components.IsPropTypesDeclaration(node, source) ||
		(r.checkContextTypes && components.IsContextTypesDeclaration(node, source)) ||
		(r.checkChildContextTypes && components.IsChildContextTypesDeclaration(node, source))
}

func (r *allowedPropTypes) classProperty(node *ts.Node) {
	if r.isChecked(node) {
		r.checkNode(ast.PropertyValue(node))
	}
}

func (r *allowedPropTypes) memberExpression(node *ts.Node) {
	if r.isChecked(node) {
		r.checkNode(ast.Field(ast.Parent(node), "right"))
	}
}

func (r *allowedPropTypes) methodDefinition(node *ts.Node) {
	if !r.isChecked(node) {
		return
	}
	if ret := ast.FindReturnStatement(node); ret != nil {
		r.checkNode(ast.ReturnArgument(ret))
	}
}

func (r *allowedPropTypes) objectExpression(node *ts.Node) {
	for _, property := range ast.NamedChildren(node) {
		if ast.PropertyKey(property) == nil || !r.isChecked(property) {
			continue
		}
		if value := ast.PropertyValue(property); value != nil && value.Kind() == "object" {
			r.checkProperties(ast.NamedChildren(value))
		}
	}
}

func (r *allowedPropTypes) checkNode(node *ts.Node) {
	node = ast.Unparen(node)
	if node == nil {
		return
	}
	switch node.Kind() {
	case "object":
		r.checkProperties(ast.NamedChildren(node))
	case "identifier":
		value := scope.FindVariableByName(r.ctx.Scope(), r.ctx.Text(node))
		if value != nil && value.Kind() == "object" {
			r.checkProperties(ast.NamedChildren(value))
		}
	case "call_expression":
		inner := ast.FirstArgument(node)
		if inner != nil && r.ctx.Settings().IsPropWrapperFunction(r.ctx.Text(ast.Callee(node))) {
			r.checkNode(inner)
		}
	}
}

// validatorName returns the validator a declaration uses: string for
// PropTypes.string.isRequired, shape for PropTypes.shape({...}).
func (r *allowedPropTypes) validatorName(value *ts.Node) string {
	if components.IsRequiredPropType(value, r.ctx.Source()) {
		value = ast.MemberObject(value)
	}
	if callee := ast.Callee(value); callee != nil && ast.IsMember(callee) {
		value = callee
	}
	if value == nil {
		return ""
	}
	if ast.IsMember(value) {
		return ast.PropertyName(value, r.ctx.Source())
	}
	if value.Kind() == "identifier" {
		return r.ctx.Text(value)
	}
	return ""
}

func (r *allowedPropTypes) isAllowed(key string) bool {
	for _, m := range r.allowed {
		if m.match(key) {
			return true
		}
	}
	return false
}

func (r *allowedPropTypes) checkProperties(declarations []*ts.Node) {
	for _, declaration := range declarations {
		switch declaration.Kind() {
		case "pair", "shorthand_property_identifier":
		default:
			continue
		}
		target := r.validatorName(ast.PropertyValue(declaration))
		key := ast.KeyValue(declaration, r.ctx.Source())
		if r.forbid[target] && !r.isAllowed(key) {
			r.ctx.Report(declaration, "Prop type `%s` for key '%s' is forbidden", target, key)
		}
	}
}
