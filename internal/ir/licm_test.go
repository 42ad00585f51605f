package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mulBlocks returns the labels of every block containing a Mul BinaryOp,
// so tests can check hoisting without depending on whether LICM reused
// an existing predecessor as the preheader or created a fresh one.
func mulBlocks(fn *Function) []string {
	var labels []string
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if bo, ok := inst.(*BinaryOp); ok && bo.Op == 10 { // ast.BMul
				labels = append(labels, b.Label)
			}
		}
	}
	return labels
}

func TestLICMHoistsInvariantComputation(t *testing.T) {
	fn := buildFunc(t, `func f(n int, k int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        let invariant int = k * k;
        sum += invariant;
    }
    return sum;
}`)
	PromoteToSSA(fn)

	changed := LICM(fn)
	assert.True(t, changed)
	require.NoError(t, Verify(fn))

	for _, label := range mulBlocks(fn) {
		assert.NotEqual(t, "for.body", label, "k * k does not depend on the loop and must not remain in the loop body")
	}
}

func TestLICMDoesNotHoistLoopVariantComputation(t *testing.T) {
	fn := buildFunc(t, `func f(n int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        sum += i * i;
    }
    return sum;
}`)
	PromoteToSSA(fn)

	LICM(fn)
	require.NoError(t, Verify(fn))

	labels := mulBlocks(fn)
	require.NotEmpty(t, labels)
	for _, label := range labels {
		assert.Equal(t, "for.body", label, "i * i depends on the loop variable and must stay inside the loop")
	}
}

func TestLICMIsIdempotent(t *testing.T) {
	fn := buildFunc(t, `func f(n int, k int) -> int {
    let sum int = 0;
    for (let i int = 0; i < n; i += 1) {
        sum += k * k;
    }
    return sum;
}`)
	PromoteToSSA(fn)

	LICM(fn)
	changedAgain := LICM(fn)
	assert.False(t, changedAgain)
}
