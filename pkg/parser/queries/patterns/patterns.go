// Package patterns holds the tree-sitter query sources used by the linter.
//
// The JavaScript and TypeScript grammars share the node names used here,
// so a single pattern set compiles against every dialect.
package patterns

// Comments captures every comment node. The lint context uses them to
// find the per-file @jsx pragma and JSDoc blocks preceding declarations.
//
// Captures:
//   - @comment - the comment node
const Comments = `
(comment) @comment
`

// ModuleReferences captures the module specifier strings of static imports,
// re-exports and CommonJS require calls.
//
// Captures:
//   - @import.source  - source string of an import statement
//   - @export.source  - source string of an export ... from statement
//   - @export.statement - the enclosing export statement
//   - @require.callee - callee identifier of a call whose first argument is a string
//   - @require.source - that first string argument
const ModuleReferences = `
; import x from './a';  import './b';
(import_statement
  source: (string) @import.source
)

; export { a } from './a';  export * from './b';
(export_statement
  source: (string) @export.source
) @export.statement

; require('./a')
(call_expression
  function: (identifier) @require.callee
  arguments: (arguments . (string) @require.source)
)
`
