package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasc/internal/ast"
)

func TestParseEmptyFunction(t *testing.T) {
	source := `func main() -> int {
    return 0;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs, "should have no parse errors")
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Empty(t, fn.Params)
	require.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(0), lit.Value)
}

func TestParseParamsWithArrayType(t *testing.T) {
	source := `func f(a int, b [4]int) -> int {
    return a;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	_, isInt := fn.Params[0].Type.(*ast.IntType)
	assert.True(t, isInt)

	assert.Equal(t, "b", fn.Params[1].Name)
	arr, isArr := fn.Params[1].Type.(*ast.ArrayType)
	require.True(t, isArr)
	assert.Equal(t, []int{4}, arr.Dims)
}

func TestParseLetAndAssign(t *testing.T) {
	source := `func f() -> int {
    let x int = 1;
    x += 2;
    return x;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	fn := prog.Functions[0]
	require.Len(t, fn.Body.Stmts, 3)

	let, ok := fn.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)

	assign, ok := fn.Body.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, ast.AssignAdd, assign.Op)
	assert.Empty(t, assign.Target.Indices)
}

func TestParseArrayIndexAssign(t *testing.T) {
	source := `func f() -> int {
    let a [3]int = {};
    a[1] = 5;
    return a[1];
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	fn := prog.Functions[0]

	let, ok := fn.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	_, isArrayLit := let.Init.(*ast.ArrayLit)
	assert.True(t, isArrayLit)

	assign, ok := fn.Body.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, assign.Target.Indices, 1)
}

func TestParseIfElseAndLoops(t *testing.T) {
	source := `func f() -> int {
    let i int = 0;
    for (let j int = 0; j < 10; j += 1) {
        if (j == 5) {
            break;
        } else {
            continue;
        }
    }
    for {
        break;
    }
    return i;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	fn := prog.Functions[0]
	require.Len(t, fn.Body.Stmts, 4)

	forStmt, ok := fn.Body.Stmts[1].(*ast.ForStmt)
	require.True(t, ok)
	assert.NotNil(t, forStmt.Init)
	assert.NotNil(t, forStmt.Cond)
	assert.NotNil(t, forStmt.Post)

	whileStmt, ok := fn.Body.Stmts[2].(*ast.ForStmt)
	require.True(t, ok)
	assert.Nil(t, whileStmt.Init)
	assert.Nil(t, whileStmt.Cond)
}

func TestParseBinaryPrecedence(t *testing.T) {
	source := `func f() -> int {
    return 1 + 2 * 3 == 7 && 1 < 2;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	fn := prog.Functions[0]
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	top, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BAnd, top.Op)

	left, ok := top.Left.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BEq, left.Op)

	addMul, ok := left.Left.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BAdd, addMul.Op)
	_, mulOk := addMul.Right.(*ast.Binary)
	assert.True(t, mulOk, "* should bind tighter than + so it nests on the right")
}

func TestParseCallExpression(t *testing.T) {
	source := `func f(a int) -> int {
    return g(a, 1);
}
func g(a int, b int) -> int {
    return a;
}`
	prog, errs := Parse("test.kc", source)
	assert.Empty(t, errs)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "g", call.Callee)
	assert.Len(t, call.Args, 2)
}

func TestParseReportsErrorOnUnexpectedToken(t *testing.T) {
	source := `func f() -> int {
    return 1 + ;
}`
	_, errs := Parse("test.kc", source)
	assert.NotEmpty(t, errs)
}
