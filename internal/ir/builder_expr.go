package ir

import (
	"fmt"

	"kasc/internal/ast"
)

func (b *Builder) buildExpr(e ast.Expr) *Value {
	switch v := e.(type) {
	case *ast.IntLit:
		return b.fn.emitConst(b.cur, v.Value)
	case *ast.Ident:
		binding := b.vars[v.Name]
		return b.fn.emitLoad(b.cur, binding.addr, binding.typ)
	case *ast.Binary:
		return b.buildBinary(v)
	case *ast.Unary:
		operand := b.buildExpr(v.Operand)
		return b.fn.emitUnary(b.cur, v.Op, operand)
	case *ast.Call:
		return b.buildCall(v)
	case *ast.Index:
		addr, typ := b.lvalueAddr(v)
		return b.fn.emitLoad(b.cur, addr, typ)
	default:
		panic(fmt.Sprintf("ir: unhandled expression %T", e))
	}
}

// buildBinary lowers every operator except the two short-circuit forms
// directly; && and || get the diamond-with-join lowering that resolves
// SPEC_FULL's short-circuit open question (result is always 0/1, the
// unevaluated operand truly never runs).
func (b *Builder) buildBinary(v *ast.Binary) *Value {
	if v.Op == ast.BAnd || v.Op == ast.BOr {
		return b.buildShortCircuit(v)
	}
	left := b.buildExpr(v.Left)
	right := b.buildExpr(v.Right)
	return b.fn.emitBinary(b.cur, v.Op, left, right)
}

func (b *Builder) buildShortCircuit(v *ast.Binary) *Value {
	resultAddr := b.fn.emitAlloca(b.cur, "", &ast.IntType{}, 1)

	evalRight := b.fn.NewBlock("sc.rhs")
	shortCircuit := b.fn.NewBlock("sc.short")
	join := b.fn.NewBlock("sc.end")

	left := b.buildExpr(v.Left)
	if v.Op == ast.BAnd {
		b.fn.setBranch(b.cur, left, evalRight, shortCircuit)
	} else {
		b.fn.setBranch(b.cur, left, shortCircuit, evalRight)
	}

	b.cur = evalRight
	right := b.buildExpr(v.Right)
	zero := b.fn.emitConst(b.cur, 0)
	truthyRight := b.fn.emitBinary(b.cur, ast.BNe, right, zero)
	b.fn.emitStore(b.cur, resultAddr, truthyRight)
	b.fn.setJump(b.cur, join)

	b.cur = shortCircuit
	shortValue := int64(0)
	if v.Op == ast.BOr {
		shortValue = 1
	}
	b.fn.emitStore(b.cur, resultAddr, b.fn.emitConst(b.cur, shortValue))
	b.fn.setJump(b.cur, join)

	b.cur = join
	return b.fn.emitLoad(b.cur, resultAddr, &ast.IntType{})
}

func (b *Builder) buildCall(v *ast.Call) *Value {
	args := make([]*Value, len(v.Args))
	for i, a := range v.Args {
		args[i] = b.buildExpr(a)
	}
	// The callee's return type comes from calleeReturnTypes, which
	// BuildProgram fills from every declaration's signature
	// (internal/semantic already validated the call; the builder only
	// needs to know whether a result Value exists at all, which
	// emitCall's retType parameter controls).
	retType := b.calleeReturnTypes[v.Callee]
	return b.fn.emitCall(b.cur, v.Callee, args, retType)
}

// lvalueAddr resolves the address an Index node refers to: a bare
// identifier (Indices empty) is the variable's own alloca; otherwise it
// walks a chain of GetElementAddr computations into the array.
func (b *Builder) lvalueAddr(idx *ast.Index) (*Value, ast.Type) {
	ident := idx.Base.(*ast.Ident)
	binding := b.vars[ident.Name]

	if len(idx.Indices) == 0 {
		return binding.addr, binding.typ
	}

	arr := binding.typ.(*ast.ArrayType)
	indices := make([]*Value, len(idx.Indices))
	for i, e := range idx.Indices {
		indices[i] = b.buildExpr(e)
	}
	addr := b.fn.emitGetElementAddr(b.cur, binding.addr, indices, arr.Dims, &ast.IntType{})
	return addr, &ast.IntType{}
}
