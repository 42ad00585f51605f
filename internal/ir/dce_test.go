package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countInstructions(fn *Function) int {
	n := 0
	for _, b := range fn.Blocks {
		n += len(b.Instructions)
	}
	return n
}

func TestDCERemovesUnusedPureComputation(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let unused int = a * a + 1;
    return a;
}`)
	PromoteToSSA(fn)
	before := countInstructions(fn)

	changed := DCE(fn)
	assert.True(t, changed)
	assert.Less(t, countInstructions(fn), before)
	require.NoError(t, Verify(fn))
}

func TestDCEKeepsStoreEffectfulInstructions(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let a [4]int = {};
    a[0] = 7;
    return a[0];
}`)
	PromoteToSSA(fn)

	DCE(fn)
	var sawStore bool
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if _, ok := inst.(*Store); ok {
				sawStore = true
			}
		}
	}
	assert.True(t, sawStore, "a store to array memory must never be dropped as dead")
	require.NoError(t, Verify(fn))
}

func TestDCEIsIdempotent(t *testing.T) {
	fn := buildFunc(t, `func f(a int, b int) -> int {
    let x int = a + b;
    let y int = x * 2;
    return a;
}`)
	PromoteToSSA(fn)

	DCE(fn)
	firstPass := countInstructions(fn)
	changed := DCE(fn)
	assert.False(t, changed)
	assert.Equal(t, firstPass, countInstructions(fn))
}
