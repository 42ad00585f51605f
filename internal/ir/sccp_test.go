package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSCCPFoldsStraightLineConstants(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let a int = 2;
    let b int = 3;
    return a + b;
}`)
	PromoteToSSA(fn)

	var warnings []string
	changed := SCCP(fn, func(msg string) { warnings = append(warnings, msg) })
	assert.True(t, changed)
	assert.Empty(t, warnings)

	ret, ok := fn.Blocks[len(fn.Blocks)-1].Terminator.(*Return)
	require.True(t, ok)
	c, ok := ret.Val.Def.(*Const)
	require.True(t, ok, "return value should have folded to a materialized constant")
	assert.Equal(t, int64(5), c.Value)
	require.NoError(t, Verify(fn))
}

func TestSCCPPrunesUnreachableBranch(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let c int = 1;
    if (c == 0) {
        return 1;
    }
    return 2;
}`)
	PromoteToSSA(fn)

	changed := SCCP(fn, func(string) {})
	assert.True(t, changed)
	require.NoError(t, Verify(fn))

	for _, b := range fn.Blocks {
		if ret, ok := b.Terminator.(*Return); ok {
			if c, ok := ret.Val.Def.(*Const); ok {
				assert.NotEqual(t, int64(1), c.Value, "the unreachable then-branch's return must not survive")
			}
		}
	}
}

func TestSCCPLeavesConstantDivisionByZeroUnfoldedWithWarning(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let z int = 0;
    return 10 / z;
}`)
	PromoteToSSA(fn)

	var warnings []string
	SCCP(fn, func(msg string) { warnings = append(warnings, msg) })
	require.NotEmpty(t, warnings)
	require.NoError(t, Verify(fn))
}

func TestSCCPIsMonotonic(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = a;
    if (x > 0) {
        x = 1;
    } else {
        x = 1;
    }
    return x;
}`)
	PromoteToSSA(fn)

	SCCP(fn, func(string) {})
	changedAgain := SCCP(fn, func(string) {})
	assert.False(t, changedAgain, "a second SCCP pass over already-folded IR should find nothing new")
}
