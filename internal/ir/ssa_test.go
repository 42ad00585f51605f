package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteToSSARemovesScalarAllocas(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = a;
    x = x + 1;
    return x;
}`)
	PromoteToSSA(fn)

	for _, inst := range fn.Entry.Instructions {
		if alloca, ok := inst.(*Alloca); ok {
			assert.NotEqual(t, 1, alloca.Count, "scalar allocas should be promoted away")
		}
	}
	require.NoError(t, Verify(fn))
}

func TestPromoteToSSAInsertsPhiAtMergeBlock(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = 0;
    if (a > 0) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`)
	PromoteToSSA(fn)

	merge := blockByLabel(fn, "if.end")
	require.NotNil(t, merge)
	var sawPhi bool
	for _, inst := range merge.Instructions {
		if _, ok := inst.(*PhiInstruction); ok {
			sawPhi = true
		}
	}
	assert.True(t, sawPhi, "the merge block for a value reassigned on both branches needs a phi")
	require.NoError(t, Verify(fn))
}

func TestPromoteToSSALeavesArrayAllocasAlone(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let a [4]int = {};
    a[0] = 1;
    return a[0];
}`)
	PromoteToSSA(fn)

	var sawArrayAlloca bool
	for _, inst := range fn.Entry.Instructions {
		if alloca, ok := inst.(*Alloca); ok && alloca.Count > 1 {
			sawArrayAlloca = true
		}
	}
	assert.True(t, sawArrayAlloca, "array allocas are addressed memory and must survive mem2reg untouched")
	require.NoError(t, Verify(fn))
}
