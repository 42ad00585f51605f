package grammar

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

// ParseFunction parses a single function declaration, grounded on the
// teacher's grammar/parser.go ParseFile shape, narrowed to one function
// at a time (the REPL's unit of input) instead of a whole program.
func ParseFunction(source string) (*Function, error) {
	parser, err := participle.Build[Function](
		participle.Lexer(KascLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar parser: %w", err)
	}

	fn, err := parser.ParseString("<repl>", source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return fn, nil
}

// reportParseError prints a caret-style parse error message, matching the
// teacher's repl/CLI error rendering.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("Syntax error at line %d, column %d:", pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
