package parser

import (
	"path/filepath"
	"strings"
)

// Dialect identifies the grammar a source file is parsed with.
//
// Plain JavaScript files (including .jsx) use the JavaScript grammar, which
// understands JSX natively. TypeScript files without JSX use the TypeScript
// grammar, and .tsx files use the TSX variant of it.
type Dialect int

const (
	// DialectUnknown represents an unsupported file type
	DialectUnknown Dialect = iota
	// DialectJavaScript covers .js, .jsx, .mjs and .cjs files
	DialectJavaScript
	// DialectTypeScript covers .ts, .mts and .cts files
	DialectTypeScript
	// DialectTSX covers .tsx files
	DialectTSX
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectJavaScript:
		return "javascript"
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// HasTypeAnnotations reports whether the grammar produces type annotation nodes.
func (d Dialect) HasTypeAnnotations() bool {
	return d == DialectTypeScript || d == DialectTSX
}

// DetectDialect detects the dialect from a file path.
// Returns DialectUnknown if the file extension is not recognized.
func DetectDialect(filePath string) Dialect {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	case ".js", ".jsx", ".mjs", ".cjs":
		return DialectJavaScript
	default:
		return DialectUnknown
	}
}

// ParseDialectString converts a dialect name to a Dialect.
// Returns DialectUnknown if the string is not recognized.
func ParseDialectString(name string) Dialect {
	switch strings.ToLower(name) {
	case "javascript", "js", "jsx":
		return DialectJavaScript
	case "typescript", "ts":
		return DialectTypeScript
	case "tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}

// SupportedDialects returns every dialect the parser can handle.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectJavaScript,
		DialectTypeScript,
		DialectTSX,
	}
}

// SupportedExtensions returns the file extensions that map to a known dialect.
func SupportedExtensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".mts", ".cts", ".tsx"}
}
