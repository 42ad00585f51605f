package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCleanupMergesStraightLine(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = a;
    for {
        x = x + 1;
        break;
    }
    return x;
}`)
	PromoteToSSA(fn)
	before := len(fn.Blocks)

	changed := BlockCleanup(fn)
	assert.True(t, changed)
	assert.Less(t, len(fn.Blocks), before)
	require.NoError(t, Verify(fn))
}

func TestBlockCleanupDropsUnreachableAfterSCCP(t *testing.T) {
	fn := buildFunc(t, `func f() -> int {
    let c int = 0;
    if (c == 1) {
        return 99;
    }
    return 1;
}`)
	PromoteToSSA(fn)
	SCCP(fn, func(string) {})

	changed := BlockCleanup(fn)
	require.NoError(t, Verify(fn))
	_ = changed

	for _, b := range fn.Blocks {
		if ret, ok := b.Terminator.(*Return); ok {
			if c, ok := ret.Val.Def.(*Const); ok {
				assert.NotEqual(t, int64(99), c.Value)
			}
		}
	}
}

func TestCollapseTrivialPhis(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = a;
    if (a > 0) {
        x = a;
    } else {
        x = a;
    }
    return x;
}`)
	PromoteToSSA(fn)

	CollapseTrivialPhis(fn)
	require.NoError(t, Verify(fn))
}

func TestBlockCleanupReachesFixpoint(t *testing.T) {
	fn := buildFunc(t, `func f(a int) -> int {
    let x int = a;
    if (a > 0) {
        x = x + 1;
    }
    return x;
}`)
	PromoteToSSA(fn)

	BlockCleanup(fn)
	changedAgain := BlockCleanup(fn)
	assert.False(t, changedAgain)
}
