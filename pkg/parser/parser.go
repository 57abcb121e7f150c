package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/uilint/pkg/util"
)

// ParserManager manages tree-sitter parsers for every supported dialect with
// lazy initialization and thread-safe concurrent access.
//
// Memory Management:
//   - Parser pools are created lazily on first use per dialect
//   - ParserManager owns the pools and must be closed via Close()
//   - Callers own Tree instances and must call tree.Close() after use
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("const x = <div />;"), DialectJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	// pools stores parser pools per dialect (lazily initialized)
	pools map[Dialect]*parserPool

	// poolSize caps the parsers per dialect
	poolSize int

	// mutex provides thread-safe access to pools map and stats
	mutex sync.RWMutex

	logger *slog.Logger

	stats struct {
		parsesCalled int
		parsesFailed int
	}
}

// Option configures a ParserManager.
type Option func(*ParserManager)

// WithPoolSize caps the number of parsers per dialect. Values below 1 keep
// the default, util.DefaultWorkers.
func WithPoolSize(n int) Option {
	return func(pm *ParserManager) {
		if n > 0 {
			pm.poolSize = n
		}
	}
}

// NewParserManager creates a new ParserManager instance.
//
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger, opts ...Option) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	pm := &ParserManager{
		pools:    make(map[Dialect]*parserPool),
		poolSize: util.DefaultWorkers(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// PoolSize returns the per-dialect parser cap.
func (pm *ParserManager) PoolSize() int {
	return pm.poolSize
}

// Parse parses source code with the grammar of the given dialect.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
// Trees with syntax errors are still returned: the analyzers tolerate
// ERROR nodes and a partial tree is more useful than none.
func (pm *ParserManager) Parse(source []byte, dialect Dialect) (*ts.Tree, error) {
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("cannot parse unknown dialect")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", dialect, err)
	}

	parser, err := pool.get()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)
	pool.put(parser)

	if tree == nil {
		pm.mutex.Lock()
		pm.stats.parsesFailed++
		pm.mutex.Unlock()
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Warn("parse tree contains errors",
			"dialect", dialect.String())
	}

	return tree, nil
}

// ParseFile parses source code, picking the dialect from the file path.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, Dialect, error) {
	dialect := DetectDialect(filePath)
	if dialect == DialectUnknown {
		return nil, dialect, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	tree, err := pm.Parse(source, dialect)
	return tree, dialect, err
}

// Close releases all parser pool resources.
//
// After Close(), the ParserManager cannot be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled,
		"parses_failed", pm.stats.parsesFailed)

	for _, pool := range pm.pools {
		if pool != nil {
			pool.close()
		}
	}
	pm.pools = make(map[Dialect]*parserPool)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
// Thread-safe using double-checked locking.
func (pm *ParserManager) getOrCreatePool(dialect Dialect) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[dialect]
	pm.mutex.RUnlock()

	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[dialect]; exists {
		return pool, nil
	}

	langPtr, err := LanguagePointer(dialect)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(dialect, ts.NewLanguage(langPtr), pm.poolSize, pm.logger)
	pm.pools[dialect] = pool

	pm.logger.Debug("created new parser pool",
		"dialect", dialect.String(),
		"limit", pm.poolSize)

	return pool, nil
}

// LanguagePointer returns the tree-sitter grammar for a dialect.
//
// The query manager uses it to compile queries against the same grammar
// the trees were produced with.
func LanguagePointer(dialect Dialect) (unsafe.Pointer, error) {
	switch dialect {
	case DialectJavaScript:
		return ts_javascript.Language(), nil
	case DialectTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case DialectTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	totalParsers := 0
	for _, pool := range pm.pools {
		totalParsers += pool.createdCount()
	}

	return ParserStats{
		ParsersCreated: totalParsers,
		ParsesCalled:   pm.stats.parsesCalled,
		ParsesFailed:   pm.stats.parsesFailed,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int

	// ParsesFailed counts parses that produced no tree at all
	ParsesFailed int
}
