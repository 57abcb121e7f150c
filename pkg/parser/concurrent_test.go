package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"
)

// TestConcurrentParsing checks that many goroutines can share one manager
// without races or deadlocks and that the pool never grows past its cap.
func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManager(quietLogger())
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)

	source := []byte("const C = () => <div />;")
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			tree, err := manager.Parse(source, DialectJavaScript)
			if err != nil {
				errChan <- err
				return
			}
			tree.Close()
		}()
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs)

	stats := manager.GetStats()
	assert.LessOrEqual(t, stats.ParsersCreated, manager.PoolSize())
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentMultiDialect parses all dialects at once; each dialect gets
// its own pool.
func TestConcurrentMultiDialect(t *testing.T) {
	manager := NewParserManager(quietLogger())
	defer manager.Close()

	sources := map[Dialect][]byte{
		DialectJavaScript: []byte("const a = <span />;"),
		DialectTypeScript: []byte("const a: string = 'x';"),
		DialectTSX:        []byte("const a: JSX.Element = <span />;"),
	}

	const perDialect = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0

	for dialect, src := range sources {
		for i := 0; i < perDialect; i++ {
			wg.Add(1)
			go func(d Dialect, s []byte) {
				defer wg.Done()
				tree, err := manager.Parse(s, d)
				if err != nil || tree.RootNode().HasError() {
					mu.Lock()
					failures++
					mu.Unlock()
				}
				if tree != nil {
					tree.Close()
				}
			}(dialect, src)
		}
	}

	wg.Wait()
	assert.Zero(t, failures)
	assert.Equal(t, perDialect*len(sources), manager.GetStats().ParsesCalled)
}

func BenchmarkConcurrentParsing(b *testing.B) {
	manager := NewParserManager(quietLogger())
	defer manager.Close()

	source := []byte("class A extends React.Component { render() { return <div>{this.props.x}</div>; } }")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tree, err := manager.Parse(source, DialectJavaScript)
			if err != nil {
				b.Fatal(err)
			}
			tree.Close()
		}
	})
}

func TestWithPoolSizeCapsParsers(t *testing.T) {
	manager := NewParserManager(quietLogger(), WithPoolSize(2))
	defer manager.Close()
	assert.Equal(t, 2, manager.PoolSize())

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := manager.Parse([]byte("const a = <b />;"), DialectJavaScript)
			if assert.NoError(t, err) {
				tree.Close()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, manager.GetStats().ParsersCreated, 2)
}

func TestPoolCloseReleasesWaiters(t *testing.T) {
	lang, err := LanguagePointer(DialectJavaScript)
	require.NoError(t, err)
	pool := newParserPool(DialectJavaScript, ts.NewLanguage(lang), 1, quietLogger())

	held, err := pool.get()
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := pool.get()
		errc <- err
	}()

	pool.close()
	assert.ErrorIs(t, <-errc, errPoolClosed)

	// returned after close: freed rather than pooled
	pool.put(held)
	assert.Equal(t, 1, pool.createdCount())
}
