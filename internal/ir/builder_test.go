package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasc/internal/parser"
)

func TestBuildFunctionProducesEntryBlock(t *testing.T) {
	fn := buildFunc(t, `func f(a int, b int) -> int {
    return a + b;
}`)
	require.NotNil(t, fn.Entry)
	assert.NotEmpty(t, fn.Blocks)
	require.NoError(t, Verify(fn))
}

func TestBuildFunctionLowersIfIntoBranchingBlocks(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    if (a > 0) {
        return 1;
    }
    return 0;
}`)
	require.NotNil(t, blockByLabel(fn, "if.then"))
	require.NoError(t, Verify(fn))
}

func TestBuildFunctionLowersForIntoLoopBlocks(t *testing.T) {
	fn := buildFunc(t, `func f(n int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        sum += i;
    }
    return sum;
}`)
	require.NotNil(t, blockByLabel(fn, "for.cond"))
	require.NotNil(t, blockByLabel(fn, "for.body"))
	require.NoError(t, Verify(fn))
}

func TestBuildProgramBuildsEveryFunction(t *testing.T) {
	prog, perrs := parser.Parse("test.kc", `
func one() -> int {
    return 1;
}
func two(a int) -> int {
    return a;
}
`)
	require.Empty(t, perrs)
	funcs := BuildProgram(prog)
	require.Len(t, funcs, 2)
	assert.NotNil(t, funcs["one"])
	assert.NotNil(t, funcs["two"])
}
