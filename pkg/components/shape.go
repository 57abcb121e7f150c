package components

import (
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ShapeKind classifies a declared prop type.
type ShapeKind string

const (
	// ShapeScalar is a leaf whose structure is not tracked.
	ShapeScalar   ShapeKind = "scalar"
	ShapeShape    ShapeKind = "shape"
	ShapeUnion    ShapeKind = "union"
	ShapeObject   ShapeKind = "object"
	ShapeInstance ShapeKind = "instance"
)

// AnyKey is the synthetic child name of array-like and indexed types.
const AnyKey = "__ANY_KEY__"

// ShapeMap maps prop names to their declared types.
type ShapeMap map[string]*PropType

// Names returns the keys in sorted order.
func (m ShapeMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PropType is a normalized declared prop type.
type PropType struct {
	Kind ShapeKind
	Name string
	// FullName is the dotted path from the props root.
	FullName   string
	Node       *ts.Node
	IsRequired bool

	// Children of shape and object types.
	Children ShapeMap
	// Union members, unless Opaque.
	Union []*PropType
	// Opaque marks unions with an unknowable member and instance types.
	Opaque bool

	// ContainsSpread marks a shape({...}) literal with a spread element,
	// whose keys are not all known.
	ContainsSpread bool
	// ContainsIndexers marks object types with index signatures.
	ContainsIndexers bool
}

func scalar() *PropType {
	return &PropType{Kind: ShapeScalar}
}
