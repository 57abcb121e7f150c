package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/parser/queries"
	"github.com/gnana997/uilint/pkg/util"
)

func runRule(t *testing.T, rule lint.Rule, path, src string, options lint.Options) ([]lint.Diagnostic, error) {
	t.Helper()

	pm := parser.NewParserManager(util.NopLogger())
	qm := queries.NewQueryManager(util.NopLogger())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})

	source := []byte(src)
	tree, dialect, err := pm.ParseFile(source, path)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	require.False(t, tree.RootNode().HasError(), "fixture must parse cleanly")

	f, err := lint.NewFile(path, source, dialect, tree, qm)
	require.NoError(t, err)
	return lint.Run(f, rule, lint.SeverityError, lint.Settings{}, options, nil)
}

func messages(diags []lint.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestCatalogue(t *testing.T) {
	assert.Equal(t, []string{
		AllowedPropTypesID,
		IndexReexportNamedID,
		PreferAbsoluteImportID,
		PreferComposeID,
	}, IDs())

	r, ok := ByID(PreferComposeID)
	require.True(t, ok)
	assert.Equal(t, CategoryStylistic, r.Meta().Category)

	_, ok = ByID("no-such-rule")
	assert.False(t, ok)
}

const allowedPropTypesCode = `
import PropTypes from 'prop-types';
const AComponent = ({ intl, classes, num }) => (
    <Something intl={intl} classes={classes} num={num} />
);
AComponent.propTypes = {
    intl: PropTypes.any,
    classes: PropTypes.any,
};
export { AComponent };
`

func TestAllowedPropTypes(t *testing.T) {
	t.Run("all allowed", func(t *testing.T) {
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", allowedPropTypesCode,
			lint.Options{"allowed": []string{"intl", "classes"}})
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("one forbidden", func(t *testing.T) {
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", allowedPropTypesCode,
			lint.Options{"allowed": []any{"intl"}})
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, "Prop type `any` for key 'classes' is forbidden", diags[0].Message)
		assert.Equal(t, "Property", diags[0].NodeType)
		assert.Equal(t, AllowedPropTypesID, diags[0].RuleID)
	})

	t.Run("regexp allowed", func(t *testing.T) {
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", allowedPropTypesCode,
			lint.Options{"allowed": []string{"/^(intl|class)/"}})
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("custom forbid list", func(t *testing.T) {
		src := `
class A extends React.Component {
  static propTypes = { a: PropTypes.func.isRequired, b: PropTypes.shape({}) };
  render() { return <div />; }
}
`
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", src, lint.Options{"forbid": []string{"func", "shape"}})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Prop type `func` for key 'a' is forbidden",
			"Prop type `shape` for key 'b' is forbidden",
		}, messages(diags))
	})

	t.Run("identifier declaration", func(t *testing.T) {
		src := `
const types = { data: PropTypes.object };
function A(props) { return <div />; }
A.propTypes = types;
`
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", src, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Prop type `object` for key 'data' is forbidden"}, messages(diags))
	})

	t.Run("context types only when enabled", func(t *testing.T) {
		src := `
const Legacy = createReactClass({
  contextTypes: { store: PropTypes.object },
  render() { return null; }
});
`
		diags, err := runRule(t, AllowedPropTypes(), "a.jsx", src, nil)
		require.NoError(t, err)
		assert.Empty(t, diags)

		diags, err = runRule(t, AllowedPropTypes(), "a.jsx", src, lint.Options{"checkContextTypes": true})
		require.NoError(t, err)
		assert.Equal(t, []string{"Prop type `object` for key 'store' is forbidden"}, messages(diags))
	})

	t.Run("invalid regexp", func(t *testing.T) {
		_, err := runRule(t, AllowedPropTypes(), "a.jsx", allowedPropTypesCode, lint.Options{"allowed": []string{"/(/"}})
		assert.ErrorIs(t, err, ErrInvalidOption)
	})
}

var composeOptions = lint.Options{
	"hocs": []any{"withIntl", "withTheme", "withRouter", "withStyles", "connect", "injectIntl"},
}

func TestPreferCompose(t *testing.T) {
	valid := []string{
		`const Comparison = (props) => <div>aaa</div>;
export default withStyles(styles)(Comparison);`,
		`export default compose(withStyles(styles), withIntl)(Comparison)`,
		`export default compose(
    connect(mapStateToProps, {setUserFeatureFlags}),
    withStyles(styles),
    withIntl
)(Comparison)`,
		`const smokeTry1 = withStyles(styles)(Comparison);
const smokeTry2 = withIntl(smokeTry1);
export default connect(mapStateToProps, {setUserFeatureFlags})(smokeTry2);`,
	}
	for _, src := range valid {
		diags, err := runRule(t, PreferCompose(), "a.jsx", src, composeOptions)
		require.NoError(t, err)
		assert.Empty(t, diags, src)
	}

	testCases := []struct {
		src   string
		found []string
	}{
		{
			src:   `export default injectIntl(withStyles(styles)(Step13Value));`,
			found: []string{"Found 2"},
		},
		{
			src:   `export default withStyles(styles)(injectIntl(About));`,
			found: []string{"Found 2"},
		},
		{
			src: `export default connect(
    mapStateToProps,
    { setUserFeatureFlags }
)(withIntl(withStyles(styles)(withRouter(DreamApartmentsLP))));`,
			found: []string{"Found 3", "Found 2", "Found 2"},
		},
		{
			src:   `export default withRouter(compose(withStyles(styles), withIntl)(Comparison))`,
			found: []string{"Found 2"},
		},
	}
	for _, tc := range testCases {
		diags, err := runRule(t, PreferCompose(), "a.jsx", tc.src, composeOptions)
		require.NoError(t, err)
		var want []string
		for _, f := range tc.found {
			want = append(want, "Prefer compose over nesting calls for HoCs. "+f)
		}
		assert.Equal(t, want, messages(diags), tc.src)
		for _, d := range diags {
			assert.Equal(t, "CallExpression", d.NodeType)
		}
	}
}

func TestPreferComposeWithoutHOCList(t *testing.T) {
	diags, err := runRule(t, PreferCompose(), "a.js", `a(b(c));`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Prefer compose over nesting calls for HoCs. Found 2"}, messages(diags))
}

func TestPreferAbsoluteImport(t *testing.T) {
	valid := []string{
		`import something from 'somewhere';`,
		`import something from 'somewhere/yay/paths';`,
		`import something from './somewhere';`,
		`import something from './somewhere/yay/paths';`,
		`export * from '../../anything';`,
		`load('../../not-a-require');`,
	}
	for _, src := range valid {
		diags, err := runRule(t, PreferAbsoluteImport(), "a.js", src, nil)
		require.NoError(t, err)
		assert.Empty(t, diags, src)
	}

	testCases := []struct {
		src     string
		message string
	}{
		{`import Something from '../../somewhere';`, "Prefer absolute imports for nesting over depth 0. Found depth 2"},
		{`import something from 'somewhere/../wrong';`, invalidPathMessage},
		{`import Something from './somewhere/../wrong';`, invalidPathMessage},
		{`import Something from './../somewhere/../../really/wrong';`, invalidPathMessage},
		{`const a = require('../a');`, "Prefer absolute imports for nesting over depth 0. Found depth 1"},
		{`export { a } from '../a';`, "Prefer absolute imports for nesting over depth 0. Found depth 1"},
	}
	for _, tc := range testCases {
		diags, err := runRule(t, PreferAbsoluteImport(), "a.js", tc.src, nil)
		require.NoError(t, err)
		require.Len(t, diags, 1, tc.src)
		assert.Equal(t, tc.message, diags[0].Message)
		assert.Equal(t, "Literal", diags[0].NodeType)
	}
}

func TestPreferAbsoluteImportDepthAllowed(t *testing.T) {
	diags, err := runRule(t, PreferAbsoluteImport(), "a.js", `import a from '../../a';`, lint.Options{"depthAllowed": 2})
	require.NoError(t, err)
	assert.Empty(t, diags)

	diags, err = runRule(t, PreferAbsoluteImport(), "a.js", `import a from '../../../a';`, lint.Options{"depthAllowed": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Prefer absolute imports for nesting over depth 2. Found depth 3"}, messages(diags))

	for _, bad := range []any{-1, 1.5, "many"} {
		_, err := runRule(t, PreferAbsoluteImport(), "a.js", `import a from '../a';`, lint.Options{"depthAllowed": bad})
		assert.ErrorIs(t, err, ErrInvalidOption, "%v", bad)
	}
}

func TestIndexReexportNamed(t *testing.T) {
	valid := []string{
		`export { something, anotherthing } from 'somewhere';`,
		`import { something, anotherthing } from 'somewhere';
export { something, anotherthing };`,
		`export { default as Something, anotherthing } from 'somewhere';`,
		`import { default as Something, anotherthing } from 'somewhere';
export { Something, anotherthing };`,
	}
	for _, src := range valid {
		diags, err := runRule(t, IndexReexportNamed(), "index.js", src, nil)
		require.NoError(t, err)
		assert.Empty(t, diags, src)
	}

	testCases := []struct {
		src      string
		nodeType string
	}{
		{`export default Something;`, "ExportDefaultDeclaration"},
		{`export { default } from 'Something';`, "ExportNamedDeclaration"},
	}
	for _, tc := range testCases {
		diags, err := runRule(t, IndexReexportNamed(), "src/index.js", tc.src, nil)
		require.NoError(t, err)
		require.Len(t, diags, 1, tc.src)
		assert.Equal(t, defaultExportMessage, diags[0].Message)
		assert.Equal(t, tc.nodeType, diags[0].NodeType)
	}

	diags, err := runRule(t, IndexReexportNamed(), "button.js", `export default Something;`, nil)
	require.NoError(t, err)
	assert.Empty(t, diags, "only index modules are checked")
}
