package components

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnana997/uilint/pkg/ast"
	"github.com/gnana997/uilint/pkg/lint"
)

const (
	DefaultPragma      = "React"
	DefaultCreateClass = "createReactClass"
)

var (
	jsxAnnotation = regexp.MustCompile(`^\*\s*@jsx\s+([^\s]+)`)
	jsIdentifier  = regexp.MustCompile(`^[_$a-zA-Z][_$a-zA-Z0-9]*$`)
)

// PragmaFromContext returns the identifier component APIs are qualified
// with: the first `@jsx` block comment in the file, else the pragma
// setting, else React.
func PragmaFromContext(ctx *lint.Context) (string, error) {
	pragma := DefaultPragma
	annotated := false
	for _, c := range ctx.Comments() {
		if m := jsxAnnotation.FindStringSubmatch(ast.TrimComment(c.Text)); m != nil {
			pragma, _, _ = strings.Cut(m[1], ".")
			annotated = true
			break
		}
	}
	if !annotated && ctx.Settings().Pragma != "" {
		pragma = ctx.Settings().Pragma
	}
	if !jsIdentifier.MatchString(pragma) {
		return "", fmt.Errorf("%w: React pragma %s is not a valid identifier", lint.ErrInvalidPragma, pragma)
	}
	return pragma, nil
}

// CreateClassFromContext returns the legacy component factory name.
func CreateClassFromContext(ctx *lint.Context) (string, error) {
	createClass := DefaultCreateClass
	if s := ctx.Settings().CreateClass; s != "" {
		createClass = s
	}
	if !jsIdentifier.MatchString(createClass) {
		return "", fmt.Errorf("%w: createClass pragma %s is not a valid function name", lint.ErrInvalidPragma, createClass)
	}
	return createClass, nil
}
