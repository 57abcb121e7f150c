package components

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/lint"
)

// CreateFunc builds a rule's own handlers. It receives the Registry the
// detection layers fill during the same traversal.
type CreateFunc func(ctx *lint.Context, components *Registry, utils *Utils) (lint.Visitor, error)

type detectRule struct {
	meta   lint.Meta
	create CreateFunc
}

// Detect wraps create into a rule that runs component detection and the
// prop analyses ahead of the rule's handlers. For every event the layers
// fire in a fixed order: detection, declared props, used props, default
// props, then the rule itself.
func Detect(meta lint.Meta, create CreateFunc) lint.Rule {
	return &detectRule{meta: meta, create: create}
}

func (r *detectRule) Meta() lint.Meta {
	return r.meta
}

func (r *detectRule) Create(ctx *lint.Context) (lint.Visitor, error) {
	pragma, err := PragmaFromContext(ctx)
	if err != nil {
		return nil, err
	}
	createClass, err := CreateClassFromContext(ctx)
	if err != nil {
		return nil, err
	}

	components := NewRegistry()
	utils := NewUtils(ctx, components, pragma, createClass)

	consumer, err := r.create(ctx, components, utils)
	if err != nil {
		return nil, err
	}

	return merge(
		(&detector{ctx: ctx, components: components, utils: utils}).visitor(),
		newPropTypes(ctx, components, utils).visitor(),
		newUsedProps(ctx, components, utils).visitor(),
		newDefaultProps(ctx, components, utils).visitor(),
		consumer,
	), nil
}

// merge combines visitors so that each event runs the handlers of every
// layer in argument order.
func merge(layers ...lint.Visitor) lint.Visitor {
	handlers := make(map[lint.Event][]lint.Handler)
	var events []lint.Event
	for _, layer := range layers {
		for event, h := range layer {
			if h == nil {
				continue
			}
			if _, ok := handlers[event]; !ok {
				events = append(events, event)
			}
			handlers[event] = append(handlers[event], h)
		}
	}

	merged := make(lint.Visitor, len(events))
	for _, event := range events {
		chain := handlers[event]
		if len(chain) == 1 {
			merged[event] = chain[0]
			continue
		}
		merged[event] = func(node *ts.Node) {
			for _, h := range chain {
				h(node)
			}
		}
	}
	return merged
}
