package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// AssemblyLexer tokenizes the IR's stable textual surface (spec §6).
// Shape and tuple-key tokens are lexed whole (`[32x32]`, `.0`) rather
// than as separate punctuation and integers, since a naive digit/ident
// split would swallow the `x` dimension separator into an identifier.
var AssemblyLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Shape", `\[[0-9]+(x[0-9]+)*\]`, nil},
		{"TupleKey", `\.[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Int", `[0-9]+`, nil},
		{"Arrow", `->`, nil},
		{"Punctuation", `[%@:,(){}<>=.\[\]]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
