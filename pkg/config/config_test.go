package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/rules"
	"github.com/gnana997/uilint/pkg/util"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "React", cfg.Settings.React.Pragma)
	assert.Equal(t, "createReactClass", cfg.Settings.React.CreateClass)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Equal(t, 1024, cfg.Lint.CacheSize)
	assert.Contains(t, cfg.Files.Exclude, "**/node_modules/**")

	for _, id := range rules.IDs() {
		assert.Equal(t, "error", cfg.Rules[id].Severity, id)
	}
	assert.Len(t, cfg.ActiveRules(), len(rules.IDs()))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".uilint.yaml", `
settings:
  react:
    pragma: Foo
    version: 16.2.0
    propWrapperFunctions: [forbidExtraProps, "Object.freeze"]
rules:
  prefer-compose:
    severity: warn
    options:
      hocs: [withRouter, connect]
  index-reexport-named:
    severity: "off"
output:
  format: json
lint:
  workers: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Foo", cfg.Settings.React.Pragma)
	assert.Equal(t, "createReactClass", cfg.Settings.React.CreateClass, "defaults survive")
	assert.Equal(t, "16.2.0", cfg.Settings.React.Version)
	assert.Equal(t, []string{"forbidExtraProps", "Object.freeze"}, cfg.Settings.React.PropWrapperFunctions)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, 3, cfg.Lint.Workers)
	assert.Equal(t, 1024, cfg.Lint.CacheSize)

	active := map[string]ActiveRule{}
	for _, ar := range cfg.ActiveRules() {
		active[ar.Rule.Meta().ID] = ar
	}
	assert.NotContains(t, active, rules.IndexReexportNamedID)
	require.Contains(t, active, rules.PreferComposeID)
	assert.Equal(t, lint.SeverityWarning, active[rules.PreferComposeID].Severity)
	hocs, ok := active[rules.PreferComposeID].Options.Strings("hocs")
	require.True(t, ok)
	assert.Equal(t, []string{"withRouter", "connect"}, hocs)

	// Default options fill in keys the file leaves out.
	require.Contains(t, active, rules.PreferAbsoluteImportID)
	depth, err := active[rules.PreferAbsoluteImportID].Options.Int("depthAllowed", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	settings := cfg.LintSettings()
	assert.Equal(t, "Foo", settings.Pragma)
	assert.True(t, settings.IsPropWrapperFunction("freeze"))
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".uilint.toml", `
[rules.prefer-absolute-import]
severity = "error"

[rules.prefer-absolute-import.options]
depthAllowed = 2

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	for _, ar := range cfg.ActiveRules() {
		if ar.Rule.Meta().ID != rules.PreferAbsoluteImportID {
			continue
		}
		depth, err := ar.Options.Int("depthAllowed", 0)
		require.NoError(t, err)
		assert.Equal(t, 2, depth)
	}
	assert.Equal(t, util.LevelDebug, cfg.LoggerConfig().Level)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".uilint.json", `{"files": {"include": ["src/**/*.jsx"]}, "output": {"color": false}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.jsx"}, cfg.Files.Include)
	assert.False(t, cfg.Output.Color)
}

func TestLoadRejectsUnknownRule(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".uilint.yaml", "rules:\n  no-such-rule:\n    severity: error\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad severity", func(c *Config) { c.Rules[rules.PreferComposeID] = RuleConfig{Severity: "fatal"} }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative workers", func(c *Config) { c.Lint.Workers = -1 }},
		{"negative cache", func(c *Config) { c.Lint.CacheSize = -5 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "uilint.ini", "x=1")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	cfg, path, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)

	writeFile(t, dir, ".uilint.json", `{"output": {"format": "table"}}`)
	yml := writeFile(t, dir, ".uilint.yml", "output:\n  format: json\n")

	cfg, path, err = Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, yml, path, ".yml is searched before .json")
	assert.Equal(t, FormatJSON, cfg.Output.Format)

	explicit := filepath.Join(dir, ".uilint.json")
	cfg, path, err = Resolve(dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.Equal(t, FormatTable, cfg.Output.Format)

	_, _, err = Resolve(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".uilint.yaml")

	require.NoError(t, WriteSample(path, false))
	assert.ErrorIs(t, WriteSample(path, false), ErrConfigExists)
	require.NoError(t, WriteSample(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# uilint configuration")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "React", cfg.Settings.React.Pragma)
	assert.Equal(t, "createReactClass", cfg.Settings.React.CreateClass)
	assert.Len(t, cfg.ActiveRules(), len(rules.IDs()))
}
