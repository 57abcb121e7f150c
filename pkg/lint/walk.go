package lint

import (
	"errors"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// Walk traverses root depth first, firing each node's enter events before
// its children and its exit events, in reverse order, after them. A
// FatalError raised by a handler stops the walk and is returned.
func Walk(ctx *Context, root *ts.Node, v Visitor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fatal, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			err = fatal
		}
	}()
	walk(ctx, root, v)
	ctx.current = root
	return nil
}

func walk(ctx *Context, node *ts.Node, v Visitor) {
	kinds := ast.EventKinds(node)
	for _, k := range kinds {
		if h := v[On(k)]; h != nil {
			ctx.current = node
			h(node)
		}
	}

	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		walk(ctx, child, v)
	}

	for i := len(kinds) - 1; i >= 0; i-- {
		if h := v[OnExit(kinds[i])]; h != nil {
			ctx.current = node
			h(node)
		}
	}
}

// Run creates rule for file, walks the tree and returns the diagnostics.
// Options are validated by the rule's Create.
func Run(file *File, rule Rule, severity Severity, settings Settings, options Options, logger *slog.Logger) ([]Diagnostic, error) {
	if severity == SeverityOff {
		return nil, nil
	}
	ctx := NewContext(file, rule.Meta().ID, severity, settings, options, logger)
	v, err := rule.Create(ctx)
	if err != nil {
		return nil, err
	}
	if err := Walk(ctx, file.Root, v); err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) {
			ctx.Logger().Debug("analysis aborted", "file", file.Path, "error", fatal.Message)
		}
		return ctx.Diagnostics(), err
	}
	return ctx.Diagnostics(), nil
}
