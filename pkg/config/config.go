// Package config loads uilint's project configuration.
//
// A config file is YAML, TOML or JSON, chosen by extension. Values in the
// file are layered over Default(), so a file only needs the keys it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/rules"
	"github.com/gnana997/uilint/pkg/util"
)

var (
	// ErrUnknownRule is returned when the rules section names a rule
	// uilint does not ship.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrInvalidValue is returned for a setting outside its allowed values.
	ErrInvalidValue = errors.New("invalid config value")
)

// FileNames are the config files searched for, in order.
var FileNames = []string{
	".uilint.yaml",
	".uilint.yml",
	".uilint.toml",
	".uilint.json",
}

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Config holds all configuration options for uilint.
type Config struct {
	Settings SettingsConfig        `koanf:"settings" yaml:"settings"`
	Rules    map[string]RuleConfig `koanf:"rules" yaml:"rules"`
	Files    FilesConfig           `koanf:"files" yaml:"files"`
	Lint     LintConfig            `koanf:"lint" yaml:"lint"`
	Output   OutputConfig          `koanf:"output" yaml:"output"`
	Log      LogConfig             `koanf:"log" yaml:"log"`
}

// SettingsConfig holds settings shared by every rule.
type SettingsConfig struct {
	React ReactConfig `koanf:"react" yaml:"react"`
}

// ReactConfig describes the React flavor the analyzed code targets.
type ReactConfig struct {
	Pragma               string   `koanf:"pragma" yaml:"pragma"`
	CreateClass          string   `koanf:"createClass" yaml:"createClass"`
	Version              string   `koanf:"version" yaml:"version"`
	PropWrapperFunctions []string `koanf:"propWrapperFunctions" yaml:"propWrapperFunctions"`
	PropVariableNames    []string `koanf:"propVariableNames" yaml:"propVariableNames"`
}

// RuleConfig enables a rule and passes it options.
type RuleConfig struct {
	// Severity is off, warn or error.
	Severity string         `koanf:"severity" yaml:"severity"`
	Options  map[string]any `koanf:"options" yaml:"options,omitempty"`
}

// FilesConfig selects the files to lint with doublestar globs relative to
// the lint root.
type FilesConfig struct {
	Include []string `koanf:"include" yaml:"include"`
	Exclude []string `koanf:"exclude" yaml:"exclude"`
}

// LintConfig tunes the runner.
type LintConfig struct {
	// Workers is the number of files analyzed at once; 0 picks a size
	// from the CPU count.
	Workers int `koanf:"workers" yaml:"workers"`
	// CacheSize bounds the result cache; 0 disables it.
	CacheSize int `koanf:"cacheSize" yaml:"cacheSize"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format string `koanf:"format" yaml:"format"` // text, json, table
	Color  bool   `koanf:"color" yaml:"color"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns a config with every shipped rule at its recommended
// severity and default options.
func Default() *Config {
	cfg := &Config{
		Settings: SettingsConfig{
			React: ReactConfig{
				Pragma:      "React",
				CreateClass: "createReactClass",
			},
		},
		Rules: make(map[string]RuleConfig),
		Files: FilesConfig{
			Include: []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts}"},
			Exclude: []string{
				"**/node_modules/**",
				"**/.git/**",
				"**/dist/**",
				"**/build/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
		},
		Lint: LintConfig{
			Workers:   0,
			CacheSize: 1024,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  true,
		},
		Log: LogConfig{
			Level:  string(util.LevelWarn),
			Format: string(util.FormatText),
		},
	}
	for _, r := range rules.All() {
		meta := r.Meta()
		severity := lint.SeverityOff
		if meta.Recommended {
			severity = lint.SeverityError
		}
		rc := RuleConfig{Severity: severity.String()}
		if len(meta.DefaultOptions) > 0 {
			rc.Options = make(map[string]any, len(meta.DefaultOptions))
			for k, v := range meta.DefaultOptions {
				rc.Options[k] = v
			}
		}
		cfg.Rules[meta.ID] = rc
	}
	return cfg
}

// parserFor picks the koanf parser for a config file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	}
	return nil, fmt.Errorf("%w: unsupported config file extension %q", ErrInvalidValue, filepath.Ext(path))
}

// Load reads the config file at path over the defaults and validates it.
func Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file from FileNames present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Resolve loads the explicit config path when one is given, otherwise the
// first config file found in dir, otherwise the defaults. It returns the
// path it loaded, empty for defaults.
func Resolve(dir, explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	if path, ok := Find(dir); ok {
		cfg, err := Load(path)
		return cfg, path, err
	}
	return Default(), "", nil
}

// Validate checks rule ids, severities and enumerated settings.
func (c *Config) Validate() error {
	var errs []error

	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := rules.ByID(id); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownRule, id))
			continue
		}
		if _, err := lint.ParseSeverity(c.Rules[id].Severity); err != nil {
			errs = append(errs, fmt.Errorf("%w: rules.%s.severity: %v", ErrInvalidValue, id, err))
		}
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatTable:
	default:
		errs = append(errs, fmt.Errorf("%w: output.format %q (valid: text, json, table)", ErrInvalidValue, c.Output.Format))
	}
	if _, ok := util.ParseLogLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level))
	}
	if _, ok := util.ParseLogFormat(c.Log.Format); !ok {
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalidValue, c.Log.Format))
	}
	if c.Lint.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: lint.workers must not be negative", ErrInvalidValue))
	}
	if c.Lint.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: lint.cacheSize must not be negative", ErrInvalidValue))
	}

	return errors.Join(errs...)
}

// LintSettings converts the react settings for the engine.
func (c *Config) LintSettings() lint.Settings {
	react := c.Settings.React
	return lint.Settings{
		Pragma:               react.Pragma,
		CreateClass:          react.CreateClass,
		Version:              react.Version,
		PropWrapperFunctions: react.PropWrapperFunctions,
		PropVariableNames:    react.PropVariableNames,
	}
}

// ActiveRule is an enabled rule with its effective severity and options.
type ActiveRule struct {
	Rule     lint.Rule
	Severity lint.Severity
	Options  lint.Options
}

// ActiveRules returns the enabled rules sorted by id. A rule's options are
// its defaults overlaid with the configured ones. Rules missing from the
// rules section stay off.
func (c *Config) ActiveRules() []ActiveRule {
	var active []ActiveRule
	for _, r := range rules.All() {
		meta := r.Meta()
		rc, ok := c.Rules[meta.ID]
		if !ok {
			continue
		}
		severity, err := lint.ParseSeverity(rc.Severity)
		if err != nil || severity == lint.SeverityOff {
			continue
		}
		options := make(lint.Options, len(meta.DefaultOptions)+len(rc.Options))
		for k, v := range meta.DefaultOptions {
			options[k] = v
		}
		for k, v := range rc.Options {
			options[k] = v
		}
		active = append(active, ActiveRule{Rule: r, Severity: severity, Options: options})
	}
	return active
}

// LoggerConfig converts the log section, writing to stderr.
func (c *Config) LoggerConfig() util.LoggerConfig {
	cfg := util.DefaultLoggerConfig()
	cfg.Level, _ = util.ParseLogLevel(c.Log.Level)
	cfg.Format, _ = util.ParseLogFormat(c.Log.Format)
	return cfg
}
