package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasc/internal/parser"
)

func analyze(t *testing.T, source string) *Analyzer {
	t.Helper()
	prog, parseErrs := parser.Parse("test.kc", source)
	require.Empty(t, parseErrs, "source should parse cleanly")
	a := NewAnalyzer()
	a.Analyze(prog)
	return a
}

func TestValidProgramHasNoErrors(t *testing.T) {
	a := analyze(t, `func add(a int, b int) -> int {
    return a + b;
}
func main() -> int {
    return add(1, 2);
}`)
	assert.False(t, a.bag.HasErrors())
}

func TestUndefinedVariable(t *testing.T) {
	a := analyze(t, `func f() -> int {
    return x;
}`)
	require.True(t, a.bag.HasErrors())
	assert.Equal(t, "E0100", a.bag.Diagnostics[0].Code)
}

func TestDuplicateFunctionDeclaration(t *testing.T) {
	a := analyze(t, `func f() -> int { return 0; }
func f() -> int { return 1; }`)
	require.True(t, a.bag.HasErrors())
}

func TestTypeMismatchOnLet(t *testing.T) {
	a := analyze(t, `func f() -> int {
    let a [2]int = 1;
    return a[0];
}`)
	require.True(t, a.bag.HasErrors())
}

func TestMissingReturnIsAnError(t *testing.T) {
	a := analyze(t, `func f() -> int {
    let x int = 1;
}`)
	require.True(t, a.bag.HasErrors())
	assert.Equal(t, "E0200", a.bag.Diagnostics[len(a.bag.Diagnostics)-1].Code)
}

func TestIfElseBothReturningSatisfiesReturnCheck(t *testing.T) {
	a := analyze(t, `func f(x int) -> int {
    if (x > 0) {
        return 1;
    } else {
        return 0;
    }
}`)
	assert.False(t, a.bag.HasErrors())
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	a := analyze(t, `func f() -> int {
    break;
    return 0;
}`)
	require.True(t, a.bag.HasErrors())
}

func TestBreakInsideForIsFine(t *testing.T) {
	a := analyze(t, `func f() -> int {
    for (let i int = 0; i < 10; i += 1) {
        break;
    }
    return 0;
}`)
	assert.False(t, a.bag.HasErrors())
}

func TestArrayRankMismatch(t *testing.T) {
	a := analyze(t, `func f() -> int {
    let m [2][2]int = {};
    return m[0];
}`)
	require.True(t, a.bag.HasErrors())
}

func TestUnusedVariableIsAWarningNotAnError(t *testing.T) {
	a := analyze(t, `func f() -> int {
    let unused int = 5;
    return 0;
}`)
	assert.False(t, a.bag.HasErrors())
	assert.NotEmpty(t, a.bag.Warnings())
}

func TestCallArgumentCountMismatch(t *testing.T) {
	a := analyze(t, `func add(a int, b int) -> int { return a + b; }
func f() -> int {
    return add(1);
}`)
	require.True(t, a.bag.HasErrors())
}
