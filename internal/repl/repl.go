// Package repl implements an interactive read-parse-compile-print loop
// over one function declaration at a time, grounded on the teacher's
// repl/repl.go read loop, rerouted through internal/grammar's
// participle-declared parser and the same semantic/ir pipeline the batch
// CLI uses.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"kasc/internal/ast"
	"kasc/internal/grammar"
	"kasc/internal/ir"
	"kasc/internal/semantic"
)

const prompt = "kasc> "

// Start runs the loop until in is exhausted (EOF) or a read error occurs.
// Each iteration accumulates lines until braces balance (one complete
// "func ... { ... }" declaration), then parses, checks, lowers to IR,
// runs the optimization pipeline, and prints the result to out.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		src, ok := readDeclaration(scanner)
		if !ok {
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		runOne(out, src)
	}
}

// readDeclaration reads lines until the running text has at least one
// "{" and its braces are balanced, or the scanner is exhausted.
func readDeclaration(scanner *bufio.Scanner) (string, bool) {
	var b strings.Builder
	depth := 0
	seenBrace := false
	for scanner.Scan() {
		line := scanner.Text()
		b.WriteString(line)
		b.WriteString("\n")
		for _, r := range line {
			switch r {
			case '{':
				depth++
				seenBrace = true
			case '}':
				depth--
			}
		}
		if seenBrace && depth <= 0 {
			return b.String(), true
		}
	}
	if b.Len() > 0 {
		return b.String(), true
	}
	return "", false
}

func runOne(out io.Writer, src string) {
	parsed, err := grammar.ParseFunction(src)
	if err != nil {
		return // grammar.ParseFunction already printed a caret-framed error
	}
	fn := grammar.Convert(parsed)

	analyzer := semantic.NewAnalyzer()
	bag := analyzer.Analyze(&ast.Program{Functions: []*ast.Function{fn}})
	for _, d := range bag.Diagnostics {
		fmt.Fprintln(out, d.Error())
	}
	if bag.HasErrors() {
		return
	}

	irFn := ir.BuildFunction(fn)
	pipeline := ir.NewPipeline(ir.Options{})
	pipeline.Run(irFn)
	for _, w := range pipeline.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}

	if err := ir.Verify(irFn); err != nil {
		fmt.Fprintln(out, "internal error:", err)
		return
	}

	fmt.Fprint(out, ir.Print(irFn))
}
