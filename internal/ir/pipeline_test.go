package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineFoldsAndEliminatesDeadCode(t *testing.T) {
	fn := buildFunc(t, `func f(n int) -> int {
    let a int = 2;
    let b int = 3;
    let unused int = n * n;
    return a + b;
}`)
	p := NewPipeline(Options{})
	p.Run(fn)
	require.NoError(t, Verify(fn))

	ret, ok := fn.Blocks[len(fn.Blocks)-1].Terminator.(*Return)
	require.True(t, ok)
	c, ok := ret.Val.Def.(*Const)
	require.True(t, ok)
	assert.Equal(t, int64(5), c.Value)
}

func TestPipelineHoistsLoopInvariantAcrossRounds(t *testing.T) {
	fn := buildFunc(t, `func f(n int, k int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        sum += k * k;
    }
    return sum;
}`)
	p := NewPipeline(Options{})
	rounds := p.Run(fn)
	assert.Greater(t, rounds, 0)
	require.NoError(t, Verify(fn))

	for _, label := range mulBlocks(fn) {
		assert.NotEqual(t, "for.body", label)
	}
}

func TestPipelinePrunesDeadBranchAndMergesBlocks(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let c int = 0;
    if (c == 1) {
        return 99;
    }
    return 1;
}`)
	before := len(fn.Blocks)
	p := NewPipeline(Options{})
	p.Run(fn)
	require.NoError(t, Verify(fn))
	assert.Less(t, len(fn.Blocks), before)
}

func TestPipelineWarnsOnConstantDivisionByZero(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let z int = 0;
    return 10 / z;
}`)
	p := NewPipeline(Options{})
	p.Run(fn)
	require.NoError(t, Verify(fn))
	assert.NotEmpty(t, p.Warnings)
}

func TestPipelineRespectsDisableOptions(t *testing.T) {
	fn := buildFunc(t, `func f(n int, k int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        sum += k * k;
    }
    return sum;
}`)
	p := NewPipeline(Options{DisableSSA: true})
	p.Run(fn)
	require.NoError(t, Verify(fn))

	for _, label := range mulBlocks(fn) {
		assert.Equal(t, "for.body", label, "with SSA disabled LICM must not run, so k * k stays in the loop body")
	}
}

func TestPipelineReturnsZeroRoundsWhenAlreadyOptimal(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    return a;
}`)
	p := NewPipeline(Options{})
	rounds := p.Run(fn)
	assert.Equal(t, 0, rounds)
	require.NoError(t, Verify(fn))
}
