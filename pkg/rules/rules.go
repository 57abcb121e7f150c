// Package rules holds the checks uilint ships and the catalogue the
// linter, the CLI and the MCP server look them up in.
package rules

import (
	"errors"
	"sort"

	"github.com/gnana997/uilint/pkg/lint"
)

// ErrInvalidOption is returned by a rule's Create when its options cannot
// be used.
var ErrInvalidOption = errors.New("invalid rule option")

// Categories of the shipped rules.
const (
	CategoryBestPractices = "Best Practices"
	CategoryStylistic     = "Stylistic Issues"
)

// simpleRule is a rule that needs no component detection.
type simpleRule struct {
	meta   lint.Meta
	create func(ctx *lint.Context) (lint.Visitor, error)
}

func (r *simpleRule) Meta() lint.Meta { return r.meta }

func (r *simpleRule) Create(ctx *lint.Context) (lint.Visitor, error) {
	return r.create(ctx)
}

// All returns every shipped rule, sorted by id.
func All() []lint.Rule {
	all := []lint.Rule{
		AllowedPropTypes(),
		IndexReexportNamed(),
		PreferAbsoluteImport(),
		PreferCompose(),
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Meta().ID < all[j].Meta().ID })
	return all
}

// ByID returns the rule with the given id.
func ByID(id string) (lint.Rule, bool) {
	for _, r := range All() {
		if r.Meta().ID == id {
			return r, true
		}
	}
	return nil, false
}

// IDs returns the ids of every shipped rule, sorted.
func IDs() []string {
	var ids []string
	for _, r := range All() {
		ids = append(ids, r.Meta().ID)
	}
	return ids
}
