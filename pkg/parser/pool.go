package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

var errPoolClosed = errors.New("parser pool is closed")

// parserPool lends out parsers bound to one dialect's grammar.
//
// Parsers are created on demand until limit exist; after that get blocks
// until one is returned with put. A ts.Parser must be closed explicitly, so
// the pool tracks every parser it created instead of relying on sync.Pool.
type parserPool struct {
	dialect Dialect
	lang    *ts.Language
	limit   int
	logger  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	idle    []*ts.Parser
	created int
	closed  bool
}

func newParserPool(dialect Dialect, lang *ts.Language, limit int, logger *slog.Logger) *parserPool {
	p := &parserPool{
		dialect: dialect,
		lang:    lang,
		limit:   max(limit, 1),
		logger:  logger,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// get returns an idle parser, a new one while under the limit, or waits
// for a put.
func (p *parserPool) get() (*ts.Parser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return nil, errPoolClosed
		}
		if n := len(p.idle); n > 0 {
			parser := p.idle[n-1]
			p.idle = p.idle[:n-1]
			return parser, nil
		}
		if p.created < p.limit {
			parser := ts.NewParser()
			if err := parser.SetLanguage(p.lang); err != nil {
				parser.Close()
				return nil, fmt.Errorf("failed to set %s grammar: %w", p.dialect, err)
			}
			p.created++
			p.logger.Debug("created parser",
				"dialect", p.dialect.String(),
				"created", p.created,
				"limit", p.limit)
			return parser, nil
		}
		p.cond.Wait()
	}
}

// put hands a parser back. Parsers returned after close are freed.
func (p *parserPool) put(parser *ts.Parser) {
	if parser == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		parser.Close()
		return
	}
	parser.Reset()
	p.idle = append(p.idle, parser)
	p.cond.Signal()
}

// close frees the idle parsers and wakes waiters, which then fail.
func (p *parserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, parser := range p.idle {
		parser.Close()
	}
	p.logger.Debug("closed parser pool",
		"dialect", p.dialect.String(),
		"closed_parsers", len(p.idle),
		"created", p.created)

	p.idle = nil
	p.closed = true
	p.cond.Broadcast()
}

func (p *parserPool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
