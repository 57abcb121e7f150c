package queries

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uilint/pkg/parser"
)

func setupTest(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return pm, qm
}

func TestGetQueryCompilesForEveryDialect(t *testing.T) {
	_, qm := setupTest(t)

	for _, dialect := range parser.SupportedDialects() {
		for _, qtype := range []QueryType{QueryTypeComments, QueryTypeModuleReferences} {
			query, err := qm.GetQuery(dialect, qtype)
			require.NoError(t, err, "%s/%s", dialect, qtype)
			assert.NotNil(t, query)
		}
	}
}

func TestGetQueryCaches(t *testing.T) {
	_, qm := setupTest(t)

	q1, err := qm.GetQuery(parser.DialectJavaScript, QueryTypeComments)
	require.NoError(t, err)
	q2, err := qm.GetQuery(parser.DialectJavaScript, QueryTypeComments)
	require.NoError(t, err)
	assert.Same(t, q1, q2)
}

func TestGetQueryUnknownDialect(t *testing.T) {
	_, qm := setupTest(t)

	_, err := qm.GetQuery(parser.DialectUnknown, QueryTypeComments)
	assert.Error(t, err)
}

func TestCommentsQuery(t *testing.T) {
	pm, qm := setupTest(t)

	source := []byte("/** @jsx h */\n// line\nconst a = 1; /* trailing */\n")
	tree, err := pm.Parse(source, parser.DialectJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	matches, err := qm.Run(tree, parser.DialectJavaScript, QueryTypeComments, source)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	first := matches[0].Captures[0]
	assert.Equal(t, "comment", first.Name)
	assert.Equal(t, "/** @jsx h */", first.Text)
	assert.Equal(t, uint32(1), first.Location.StartLine)
	assert.Equal(t, uint32(1), first.Location.StartColumn)
}

func TestModuleReferencesQuery(t *testing.T) {
	pm, qm := setupTest(t)

	source := []byte(`import a from '../a';
import './side-effect';
export { b } from './b';
export * from '../../c';
const d = require('./d');
foo('./not-a-require');
`)
	tree, err := pm.Parse(source, parser.DialectJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	matches, err := qm.Run(tree, parser.DialectJavaScript, QueryTypeModuleReferences, source)
	require.NoError(t, err)

	var imports, exports, calls []string
	for _, m := range matches {
		if c, ok := m.Capture("import.source"); ok {
			imports = append(imports, c.Text)
		}
		if c, ok := m.Capture("export.source"); ok {
			exports = append(exports, c.Text)
		}
		if c, ok := m.Capture("require.source"); ok {
			callee, _ := m.Capture("require.callee")
			calls = append(calls, callee.Text+":"+c.Text)
		}
	}

	assert.Equal(t, []string{"'../a'", "'./side-effect'"}, imports)
	assert.Equal(t, []string{"'./b'", "'../../c'"}, exports)
	assert.Equal(t, []string{"require:'./d'", "foo:'./not-a-require'"}, calls)
}

func TestExecuteQueryNilArguments(t *testing.T) {
	_, qm := setupTest(t)

	_, err := qm.ExecuteQuery(nil, nil, nil)
	assert.Error(t, err)
}

func TestConcurrentQueryExecution(t *testing.T) {
	pm, qm := setupTest(t)

	source := []byte("import x from './x'; // c\n")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pm.Parse(source, parser.DialectTSX)
			if !assert.NoError(t, err) {
				return
			}
			defer tree.Close()
			matches, err := qm.Run(tree, parser.DialectTSX, QueryTypeModuleReferences, source)
			assert.NoError(t, err)
			assert.Len(t, matches, 1)
		}()
	}
	wg.Wait()
}

func TestParseCaptureName(t *testing.T) {
	c, f := parseCaptureName("import.source")
	assert.Equal(t, "import", c)
	assert.Equal(t, "source", f)

	c, f = parseCaptureName("comment")
	assert.Equal(t, "comment", c)
	assert.Empty(t, f)
}
