package grammar

import "github.com/alecthomas/participle/v2/lexer"

// KascLexer tokenizes one function declaration for the REPL's
// participle-driven parse path, grounded on the teacher's
// grammar/lexer.go stateful-lexer shape, with this language's own
// keyword/operator set substituted for kanso's.
var KascLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Operator", `(\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|%=|->|[-+*/%=<>!])`, nil},
		{"Punctuation", `[{}\[\](),;]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
