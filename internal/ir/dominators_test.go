package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockByLabel(fn *Function, label string) *BasicBlock {
	for _, b := range fn.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

func TestDominatorsEntryHasNoIdom(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    if (a > 0) {
        return 1;
    }
    return 0;
}`)
	dt := fn.Dominators()
	assert.Nil(t, dt.IDom(fn.Entry))
	assert.True(t, dt.Dominates(fn.Entry, fn.Entry))
}

func TestDominatorsIfMergeDominatedByEntry(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = 0;
    if (a > 0) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`)
	dt := fn.Dominators()
	for _, b := range fn.Blocks {
		if !dt.Reachable(b) || b == fn.Entry {
			continue
		}
		assert.True(t, dt.Dominates(fn.Entry, b), "entry must dominate every reachable block")
	}
}

func TestDominanceFrontierOfIfBranchesIsMergeBlock(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = 0;
    if (a > 0) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`)
	dt := fn.Dominators()
	then := blockByLabel(fn, "if.then")
	require.NotNil(t, then)
	front := dt.Frontier(then)
	require.Len(t, front, 1)
	assert.Equal(t, "if.end", front[0].Label)
}

func TestUnreachableBlockIsNotReachable(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    if (a > 0) {
        return 1;
    } else {
        return 2;
    }
}`)
	dt := fn.Dominators()
	for _, b := range fn.Blocks {
		if b == fn.Entry {
			assert.True(t, dt.Reachable(b))
		}
		if b.Label == "if.end" {
			assert.False(t, dt.Reachable(b))
		}
	}
}
