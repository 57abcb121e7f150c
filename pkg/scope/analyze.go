package scope

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// Analyze builds the scope tree of a parsed program and resolves every
// reference. The result is read-only and may be shared by all rules run
// against the same tree.
func Analyze(root *ts.Node, source []byte) *Manager {
	m := &Manager{scopes: make(map[blockKey][]*Scope)}
	b := &builder{manager: m, source: source}

	m.Global = m.nest(TypeGlobal, root, nil)
	module := m.nest(TypeModule, root, m.Global)
	b.visitChildren(root, module)
	b.resolve()

	return m
}

type builder struct {
	manager *Manager
	source  []byte
	refs    []*Reference
}

func (b *builder) text(node *ts.Node) string {
	return node.Utf8Text(b.source)
}

func (b *builder) reference(ident *ts.Node, from *Scope, write bool) {
	ref := &Reference{Identifier: ident, From: from, Write: write}
	from.References = append(from.References, ref)
	b.refs = append(b.refs, ref)
}

// resolve links references to variables in source order, so each
// variable's reference list is ordered too.
func (b *builder) resolve() {
	for _, ref := range b.refs {
		v := ref.From.Lookup(b.text(ref.Identifier))
		if v == nil {
			continue
		}
		ref.Resolved = v
		v.References = append(v.References, ref)
	}
}

func (b *builder) visitChildren(node *ts.Node, s *Scope) {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if child := node.NamedChild(i); child != nil {
			b.visit(child, s)
		}
	}
}

func (b *builder) visit(node *ts.Node, s *Scope) {
	switch node.Kind() {
	case "comment", "string", "regex", "number",
		"property_identifier", "statement_identifier", "type_identifier":
		// no references

	case "identifier", "shorthand_property_identifier":
		b.reference(node, s, false)

	case "function_declaration", "generator_function_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			s.define(b.text(name), &Definition{Type: DefFunctionName, Name: name, Node: node})
		}
		b.visitFunction(node, s)

	case "function_expression", "function", "generator_function", "arrow_function":
		b.visitFunction(node, s)

	case "method_definition":
		if name := node.ChildByFieldName("name"); name != nil && name.Kind() == "computed_property_name" {
			b.visitChildren(name, s)
		}
		b.visitFunction(node, s)

	case "class_declaration", "abstract_class_declaration", "class":
		b.visitClass(node, s)

	case "statement_block":
		b.visitChildren(node, b.manager.nest(TypeBlock, node, s))

	case "for_statement":
		b.visitChildren(node, b.manager.nest(TypeFor, node, s))

	case "for_in_statement":
		b.visitForIn(node, s)

	case "catch_clause":
		cs := b.manager.nest(TypeCatch, node, s)
		if param := node.ChildByFieldName("parameter"); param != nil {
			b.bindPattern(param, cs, DefCatchClause, node, false, cs)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			b.visit(body, cs)
		}

	case "switch_statement":
		if value := node.ChildByFieldName("value"); value != nil {
			b.visit(value, s)
		}
		ss := b.manager.nest(TypeSwitch, node, s)
		if body := node.ChildByFieldName("body"); body != nil {
			b.visitChildren(body, ss)
		}

	case "variable_declaration", "lexical_declaration":
		target := s
		if node.Kind() == "variable_declaration" {
			target = s.variableScope()
		}
		for _, decl := range ast.NamedChildren(node) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			value := decl.ChildByFieldName("value")
			if name := decl.ChildByFieldName("name"); name != nil {
				b.bindPattern(name, target, DefVariable, decl, value != nil, s)
			}
			if value != nil {
				b.visit(value, s)
			}
		}

	case "import_statement":
		b.visitImport(node, s)

	case "export_statement":
		hasSource := node.ChildByFieldName("source") != nil
		for _, child := range ast.NamedChildren(node) {
			if child.Kind() == "export_clause" && hasSource {
				continue
			}
			b.visit(child, s)
		}

	case "export_specifier":
		if name := node.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
			b.reference(name, s, false)
		}

	case "type_alias_declaration", "interface_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			s.define(b.text(name), &Definition{Type: DefTypeAlias, Name: name, Node: node})
		}

	case "enum_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			s.define(b.text(name), &Definition{Type: DefVariable, Name: name, Node: node})
		}

	case "assignment_expression", "augmented_assignment_expression":
		left := ast.Unparen(node.ChildByFieldName("left"))
		if left != nil {
			switch left.Kind() {
			case "identifier":
				b.reference(left, s, true)
			case "object_pattern", "array_pattern":
				b.writePattern(left, s)
			default:
				b.visit(left, s)
			}
		}
		if right := node.ChildByFieldName("right"); right != nil {
			b.visit(right, s)
		}

	case "jsx_opening_element", "jsx_self_closing_element", "jsx_closing_element":
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			if child == nil || !child.IsNamed() || node.FieldNameForChild(uint32(i)) == "name" {
				continue
			}
			b.visit(child, s)
		}

	case "type_annotation", "type_arguments", "type_parameters", "implements_clause":
		// types carry no value references

	default:
		b.visitChildren(node, s)
	}
}

func (b *builder) visitFunction(fn *ts.Node, s *Scope) {
	fs := b.manager.nest(TypeFunction, fn, s)

	switch fn.Kind() {
	case "function_expression", "function", "generator_function":
		if name := fn.ChildByFieldName("name"); name != nil {
			fs.define(b.text(name), &Definition{Type: DefFunctionName, Name: name, Node: fn})
		}
	}

	for _, param := range ast.Params(fn) {
		b.bindParam(param, fs)
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() == "statement_block" {
		b.visitChildren(body, fs)
		return
	}
	b.visit(body, fs)
}

func (b *builder) bindParam(param *ts.Node, fs *Scope) {
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		if pattern := param.ChildByFieldName("pattern"); pattern != nil {
			b.bindPattern(pattern, fs, DefParameter, param, false, fs)
		}
		if value := param.ChildByFieldName("value"); value != nil {
			b.visit(value, fs)
		}
	default:
		b.bindPattern(param, fs, DefParameter, param, false, fs)
	}
}

func (b *builder) visitClass(node *ts.Node, s *Scope) {
	name := node.ChildByFieldName("name")
	if name != nil && node.Kind() != "class" {
		s.define(b.text(name), &Definition{Type: DefClassName, Name: name, Node: node})
	}

	var body *ts.Node
	for _, child := range ast.NamedChildren(node) {
		switch {
		case child.Kind() == "class_body":
			body = child
		case name != nil && ast.Same(child, name):
		case child.Kind() == "type_parameters":
		default:
			b.visit(child, s)
		}
	}

	cs := b.manager.nest(TypeClass, node, s)
	if name != nil {
		cs.define(b.text(name), &Definition{Type: DefClassName, Name: name, Node: node})
	}
	if body != nil {
		b.visitChildren(body, cs)
	}
}

func (b *builder) visitForIn(node *ts.Node, s *Scope) {
	fs := b.manager.nest(TypeFor, node, s)

	left := node.ChildByFieldName("left")
	kind := node.ChildByFieldName("kind")
	if left != nil {
		switch {
		case kind == nil:
			if left.Kind() == "identifier" {
				b.reference(left, fs, true)
			} else {
				b.visit(left, fs)
			}
		case b.text(kind) == "var":
			b.bindPattern(left, fs.variableScope(), DefVariable, node, true, fs)
		default:
			b.bindPattern(left, fs, DefVariable, node, true, fs)
		}
	}
	if right := node.ChildByFieldName("right"); right != nil {
		b.visit(right, fs)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		b.visit(body, fs)
	}
}

func (b *builder) visitImport(node *ts.Node, s *Scope) {
	for _, child := range ast.NamedChildren(node) {
		if child.Kind() != "import_clause" {
			continue
		}
		for _, part := range ast.NamedChildren(child) {
			switch part.Kind() {
			case "identifier":
				s.define(b.text(part), &Definition{Type: DefImportBinding, Name: part, Node: part})
			case "namespace_import":
				for _, id := range ast.NamedChildren(part) {
					if id.Kind() == "identifier" {
						s.define(b.text(id), &Definition{Type: DefImportBinding, Name: id, Node: part})
					}
				}
			case "named_imports":
				for _, spec := range ast.NamedChildren(part) {
					if spec.Kind() != "import_specifier" {
						continue
					}
					local := spec.ChildByFieldName("alias")
					if local == nil {
						local = spec.ChildByFieldName("name")
					}
					if local != nil && local.Kind() == "identifier" {
						s.define(b.text(local), &Definition{Type: DefImportBinding, Name: local, Node: spec})
					}
				}
			}
		}
	}
}

// bindPattern declares every identifier bound by a pattern in target.
// Default values and computed keys are visited as expressions from `from`.
func (b *builder) bindPattern(p *ts.Node, target *Scope, defType DefType, decl *ts.Node, write bool, from *Scope) {
	if p == nil {
		return
	}
	switch p.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		target.define(b.text(p), &Definition{Type: defType, Name: p, Node: decl})
		if write {
			b.reference(p, from, true)
		}
	case "object_pattern":
		for _, prop := range ast.NamedChildren(p) {
			switch prop.Kind() {
			case "pair_pattern":
				if key := prop.ChildByFieldName("key"); key != nil && key.Kind() == "computed_property_name" {
					b.visitChildren(key, from)
				}
				b.bindPattern(prop.ChildByFieldName("value"), target, defType, decl, write, from)
			case "object_assignment_pattern":
				b.bindPattern(prop.ChildByFieldName("left"), target, defType, decl, write, from)
				if right := prop.ChildByFieldName("right"); right != nil {
					b.visit(right, from)
				}
			default:
				b.bindPattern(prop, target, defType, decl, write, from)
			}
		}
	case "array_pattern":
		for _, elem := range ast.NamedChildren(p) {
			b.bindPattern(elem, target, defType, decl, write, from)
		}
	case "assignment_pattern":
		b.bindPattern(p.ChildByFieldName("left"), target, defType, decl, write, from)
		if right := p.ChildByFieldName("right"); right != nil {
			b.visit(right, from)
		}
	case "rest_pattern":
		for _, inner := range ast.NamedChildren(p) {
			b.bindPattern(inner, target, defType, decl, write, from)
		}
	case "required_parameter", "optional_parameter":
		b.bindParam(p, target)
	default:
		b.visit(p, from)
	}
}

// writePattern records write references for a destructuring assignment.
func (b *builder) writePattern(p *ts.Node, s *Scope) {
	if p == nil {
		return
	}
	switch p.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		b.reference(p, s, true)
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, child := range ast.NamedChildren(p) {
			b.writePattern(child, s)
		}
	case "pair_pattern":
		b.writePattern(p.ChildByFieldName("value"), s)
	case "object_assignment_pattern", "assignment_pattern":
		b.writePattern(p.ChildByFieldName("left"), s)
		if right := p.ChildByFieldName("right"); right != nil {
			b.visit(right, s)
		}
	default:
		b.visit(p, s)
	}
}
