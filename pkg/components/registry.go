// Package components detects UI components in a JavaScript or TypeScript
// syntax tree and tracks the props they declare, read and default.
//
// Detection is heuristic and incremental: traversal events raise or lock a
// node's confidence in a Registry while the prop analyses attach their
// findings to the owning component. Rules built with Detect see the
// finished Registry through List at the end of the traversal.
package components

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// Confidence levels of a detection record.
const (
	// NotComponent is final: nothing raises a record out of it.
	NotComponent = 0
	// Candidate marks a tentative component body.
	Candidate = 1
	// Confirmed components are the ones List exposes.
	Confirmed = 2
)

// PropUsage is one read of a prop.
type PropUsage struct {
	Name string
	// AllNames is the access path from the props root, e.g. [a b] for
	// props.a.b.
	AllNames []string
	Node     *ts.Node
}

func (u PropUsage) equivalent(other PropUsage) bool {
	if u.Name != other.Name {
		return false
	}
	if u.AllNames == nil || other.AllNames == nil {
		return u.AllNames == nil && other.AllNames == nil
	}
	if len(u.AllNames) != len(other.AllNames) {
		return false
	}
	for i := range u.AllNames {
		if u.AllNames[i] != other.AllNames[i] {
			return false
		}
	}
	return true
}

// mergeUsages appends the usages of add not already present in list.
func mergeUsages(list []PropUsage, add []PropUsage) []PropUsage {
	for _, u := range add {
		dup := false
		for _, existing := range list {
			if existing.equivalent(u) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, u)
		}
	}
	return list
}

// DefaultProps are the default prop values of a component. Unresolved is
// set once a declaration cannot be read statically and is final.
type DefaultProps struct {
	Unresolved bool
	Props      map[string]*ts.Node
	names      []string
}

// Names returns the defaulted prop names in declaration order.
func (d *DefaultProps) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

func (d *DefaultProps) add(name string, node *ts.Node) {
	if d.Props == nil {
		d.Props = make(map[string]*ts.Node)
	}
	if _, ok := d.Props[name]; !ok {
		d.names = append(d.names, name)
	}
	d.Props[name] = node
}

// Component is the detection record of one node.
type Component struct {
	Node       *ts.Node
	Confidence int

	DeclaredPropTypes ShapeMap
	UsedPropTypes     []PropUsage
	DefaultProps      *DefaultProps

	IgnorePropsValidation           bool
	IgnoreUnusedPropTypesValidation bool
}

// AddUsages records usages, skipping equivalents of recorded ones.
func (c *Component) AddUsages(usages ...PropUsage) {
	c.UsedPropTypes = mergeUsages(c.UsedPropTypes, usages)
}

// Registry holds the detection records of one traversal, keyed by node
// span.
type Registry struct {
	records map[ast.NodeKey]*Component
	order   []ast.NodeKey
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[ast.NodeKey]*Component)}
}

// Add records node with the given confidence. An existing record keeps the
// higher of the two levels, except that NotComponent on either side wins.
func (r *Registry) Add(node *ts.Node, confidence int) *Component {
	if node == nil {
		return nil
	}
	key := ast.KeyOf(node)
	if c, ok := r.records[key]; ok {
		if confidence == NotComponent || c.Confidence == NotComponent {
			c.Confidence = NotComponent
		} else if confidence > c.Confidence {
			c.Confidence = confidence
		}
		return c
	}
	c := &Component{Node: node, Confidence: confidence}
	r.records[key] = c
	r.order = append(r.order, key)
	return c
}

// Get returns the record of node if it is at least a candidate.
func (r *Registry) Get(node *ts.Node) *Component {
	if node == nil {
		return nil
	}
	if c, ok := r.records[ast.KeyOf(node)]; ok && c.Confidence >= Candidate {
		return c
	}
	return nil
}

// Set applies update to the record of node or, failing that, of its
// nearest recorded ancestor at any confidence. It is a no-op when no
// ancestor is recorded.
func (r *Registry) Set(node *ts.Node, update func(c *Component)) {
	for n := node; n != nil; n = ast.Parent(n) {
		if c, ok := r.records[ast.KeyOf(n)]; ok {
			update(c)
			return
		}
	}
}

// List returns copies of the confirmed records in insertion order. Usages
// collected on unconfirmed records are merged into their nearest confirmed
// ancestor, except for usages located on object properties. The registry
// itself is not modified.
func (r *Registry) List() []*Component {
	inherited := make(map[ast.NodeKey][]PropUsage)
	for _, key := range r.order {
		c := r.records[key]
		if c.Confidence >= Confirmed {
			continue
		}
		owner := r.confirmedAncestor(c.Node)
		if owner == nil {
			continue
		}
		var usages []PropUsage
		for _, u := range c.UsedPropTypes {
			if u.Node != nil && ast.IsPropertyInitializer(u.Node) {
				continue
			}
			usages = append(usages, u)
		}
		ownerKey := ast.KeyOf(owner.Node)
		inherited[ownerKey] = mergeUsages(inherited[ownerKey], usages)
	}

	var out []*Component
	for _, key := range r.order {
		c := r.records[key]
		if c.Confidence < Confirmed {
			continue
		}
		cp := *c
		cp.UsedPropTypes = mergeUsages(append([]PropUsage(nil), c.UsedPropTypes...), inherited[key])
		out = append(out, &cp)
	}
	return out
}

func (r *Registry) confirmedAncestor(node *ts.Node) *Component {
	for n := ast.Parent(node); n != nil; n = ast.Parent(n) {
		if n.Kind() == "decorator" {
			return nil
		}
		if c, ok := r.records[ast.KeyOf(n)]; ok && c.Confidence >= Confirmed {
			return c
		}
	}
	return nil
}

// Length returns the number of confirmed components.
func (r *Registry) Length() int {
	n := 0
	for _, c := range r.records {
		if c.Confidence >= Confirmed {
			n++
		}
	}
	return n
}
