// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/parser/queries/patterns"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeComments collects every comment node
	QueryTypeComments QueryType = iota
	// QueryTypeModuleReferences collects import/export/require module specifiers
	QueryTypeModuleReferences
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeComments:
		return "comments"
	case QueryTypeModuleReferences:
		return "module-references"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query (dialect + type).
type queryKey struct {
	dialect parser.Dialect
	qtype   QueryType
}

// QueryManager manages tree-sitter query compilation and caching.
//
// Queries are compiled lazily on first use per dialect and cached for the
// lifetime of the manager. Compiled queries are immutable and safe to share
// between goroutines; each execution uses its own cursor.
//
// Usage:
//
//	qm := NewQueryManager(logger)
//	defer qm.Close()
//
//	matches, err := qm.Run(tree, parser.DialectTSX, QueryTypeComments, source)
type QueryManager struct {
	cache  map[queryKey]*ts.Query
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewQueryManager creates a new query manager.
// Logger can be nil (will use default slog logger).
func NewQueryManager(logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		cache:  make(map[queryKey]*ts.Query),
		logger: logger,
	}
}

// GetQuery returns a compiled query for the specified dialect and type.
//
// Returns an error if the dialect is unknown or the query fails to compile.
func (qm *QueryManager) GetQuery(dialect parser.Dialect, qtype QueryType) (*ts.Query, error) {
	key := queryKey{dialect: dialect, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()

	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := parser.LanguagePointer(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", dialect, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, dialect, qerr.Message)
	}

	qm.cache[key] = query

	qm.logger.Debug("compiled query",
		"dialect", dialect.String(),
		"type", qtype.String())

	return query, nil
}

// queryString returns the query source for a query type.
func queryString(qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeComments:
		return patterns.Comments, nil
	case QueryTypeModuleReferences:
		return patterns.ModuleReferences, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// Run compiles (or fetches) the query for a dialect and executes it on the tree.
func (qm *QueryManager) Run(tree *ts.Tree, dialect parser.Dialect, qtype QueryType, source []byte) ([]QueryMatch, error) {
	query, err := qm.GetQuery(dialect, qtype)
	if err != nil {
		return nil, err
	}
	return qm.ExecuteQuery(tree, query, source)
}

// ExecuteQuery runs a compiled query on a parse tree and returns structured matches.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		var captures []QueryCapture
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}

			category, field := parseCaptureName(captureName)
			node := capture.Node

			captures = append(captures, QueryCapture{
				Name:     captureName,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
//
// After Close(), the QueryManager cannot be used.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager",
		"queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}

	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	// PatternIndex identifies which query pattern matched
	PatternIndex uint32

	// Captures contains all captured nodes for this match
	Captures []QueryCapture
}

// Capture returns the first capture with the given full name.
func (m QueryMatch) Capture(name string) (QueryCapture, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c, true
		}
	}
	return QueryCapture{}, false
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "import.source")
	Name string

	// Category is the first part of the capture name (e.g., "import")
	Category string

	// Field is the second part of the capture name (e.g., "source").
	// Empty string if capture name has no dot
	Field string

	Node *ts.Node

	// Text is the source code text of the captured node
	Text string

	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based line number
	StartColumn uint32 // 1-based column number
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based byte offset
	EndByte     uint32
}

// parseCaptureName splits a capture name like "import.source" into ("import", "source").
func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

// nodeLocation converts tree-sitter's 0-based coordinates to 1-based
// line/column numbers.
func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
