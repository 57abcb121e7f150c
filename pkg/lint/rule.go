// Package lint is the traversal runtime rules run on: it walks one syntax
// tree, dispatches node enter/exit events to a rule's visitor and collects
// the diagnostics the rule reports through its Context.
package lint

import (
	"fmt"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/ast"
)

// Meta describes a rule.
type Meta struct {
	ID          string
	Description string
	Category    string
	Recommended bool
	// DefaultOptions documents the options a rule accepts.
	DefaultOptions Options
}

// Rule is a lint check. Create is called once per file and returns the
// handlers to run during that file's traversal.
type Rule interface {
	Meta() Meta
	Create(ctx *Context) (Visitor, error)
}

// Event selects a node kind on entry or exit.
type Event struct {
	Kind ast.Kind
	Exit bool
}

// On is the entry event for a kind.
func On(kind ast.Kind) Event {
	return Event{Kind: kind}
}

// OnExit is the exit event for a kind.
func OnExit(kind ast.Kind) Event {
	return Event{Kind: kind, Exit: true}
}

// String renders the event as "Kind" or "Kind:exit".
func (e Event) String() string {
	if e.Exit {
		return e.Kind.String() + ":exit"
	}
	return e.Kind.String()
}

// Handler receives the node an event fired on.
type Handler func(node *ts.Node)

// Visitor maps events to handlers.
type Visitor map[Event]Handler

// Severity of a diagnostic.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarning
	SeverityError
)

// String returns "off", "warn" or "error".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "off"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity accepts "off", "warn"/"warning", "error" or 0/1/2.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return SeverityOff, nil
	case "warn", "warning", "1":
		return SeverityWarning, nil
	case "error", "2", "":
		return SeverityError, nil
	}
	return SeverityOff, fmt.Errorf("unknown severity %q", s)
}

// Options holds a rule's configuration as decoded from the config file.
type Options map[string]any

// Bool returns a boolean option, or def when unset or not a boolean.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// Has reports whether an option is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Int returns an integer option. Numbers with a fractional part and
// non-numeric values are errors.
func (o Options) Int(key string, def int) (int, error) {
	raw, ok := o[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("option %s: %v is not an integer", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("option %s: %q is not an integer", key, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("option %s: unsupported value %v", key, raw)
}

// Strings returns a string list option. ok is false when unset.
func (o Options) Strings(key string) (values []string, ok bool) {
	raw, present := o[key]
	if !present || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	case string:
		return []string{v}, true
	}
	return nil, false
}
