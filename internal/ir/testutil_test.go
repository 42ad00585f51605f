package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kasc/internal/parser"
	"kasc/internal/semantic"
)

// buildFunc parses and semantically checks a single-function source
// string and lowers it to IR, failing the test on any parse or semantic
// error. Shared by every *_test.go in this package so each pass's tests
// can start from real front-end output instead of hand-built IR.
func buildFunc(t *testing.T, source string) *Function {
	t.Helper()
	prog, perrs := parser.Parse("test.kc", source)
	require.Empty(t, perrs, "source should parse cleanly")

	a := semantic.NewAnalyzer()
	bag := a.Analyze(prog)
	require.False(t, bag.HasErrors(), "source should check cleanly: %v", bag.Diagnostics)

	require.Len(t, prog.Functions, 1)
	return BuildFunction(prog.Functions[0])
}
