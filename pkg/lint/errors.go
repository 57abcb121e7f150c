package lint

import (
	"errors"
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// ErrInvalidPragma is returned when a configured or annotated pragma is
// not a valid identifier.
var ErrInvalidPragma = errors.New("invalid pragma")

// FatalError aborts the analysis of one file. It is raised from inside a
// handler with Fatalf and returned by Walk.
type FatalError struct {
	Message  string
	NodeType string
	Line     int
	Column   int
}

func (e *FatalError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s at %d:%d)", e.Message, e.NodeType, e.Line, e.Column)
}

// Fatalf stops the current traversal. Walk recovers it into an error.
func Fatalf(node *ts.Node, format string, args ...any) {
	line, col := ast.Position(node)
	panic(&FatalError{
		Message:  fmt.Sprintf(format, args...),
		NodeType: ast.TypeName(node),
		Line:     line,
		Column:   col,
	})
}
