// Package ssasyntax is the textual SSA surface syntax (SPEC_FULL.md §2.1): a
// participle grammar and parser that let tests, the CLI, and fixtures author
// internal/ssa programs as text instead of hand-built Go structs. It is a
// convenience surface over internal/ssa's data model; it does not change
// lowering semantics.
package ssasyntax

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var SSALexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"ValueRef", `v[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"String", `"(\\.|[^"])*"`, nil},
		{"Arrow", `->`, nil},
		{"Punctuation", `[{}\[\];():,=<>]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
