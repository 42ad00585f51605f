package semantic

import (
	"fmt"

	"kasc/internal/ast"
	"kasc/internal/errors"
)

// checkExpr type-checks an expression and returns its type, or nil if a
// type could not be determined (an error was already recorded).
func (a *Analyzer) checkExpr(e ast.Expr, scope *SymbolTable) ast.Type {
	switch v := e.(type) {
	case *ast.IntLit:
		return &ast.IntType{}
	case *ast.Ident:
		sym := scope.Lookup(v.Name)
		if sym == nil {
			a.addError(errors.ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", v.Name), v.Pos)
			return nil
		}
		scope.MarkUsed(v.Name)
		return sym.Type
	case *ast.Binary:
		return a.checkBinary(v, scope)
	case *ast.Unary:
		return a.checkUnary(v, scope)
	case *ast.Call:
		return a.checkCall(v, scope)
	case *ast.Index:
		return a.checkIndexExpr(v, scope)
	case *ast.ArrayLit:
		a.addError(errors.ErrorTypeMismatch, "'{}' may only appear as a let-statement initializer", v.Pos)
		return nil
	default:
		return nil
	}
}

func (a *Analyzer) checkBinary(v *ast.Binary, scope *SymbolTable) ast.Type {
	lt := a.checkExpr(v.Left, scope)
	rt := a.checkExpr(v.Right, scope)
	if lt == nil || rt == nil {
		return nil
	}
	if lt.IsArray() || rt.IsArray() {
		a.addError(errors.ErrorInvalidOperation, "arrays cannot be used as binary operands", v.Pos)
		return nil
	}
	return &ast.IntType{}
}

func (a *Analyzer) checkUnary(v *ast.Unary, scope *SymbolTable) ast.Type {
	ot := a.checkExpr(v.Operand, scope)
	if ot != nil && ot.IsArray() {
		a.addError(errors.ErrorInvalidOperation, "arrays cannot be used as unary operands", v.Pos)
		return nil
	}
	return &ast.IntType{}
}

func (a *Analyzer) checkCall(v *ast.Call, scope *SymbolTable) ast.Type {
	fn, ok := a.functions[v.Callee]
	if !ok {
		a.addError(errors.ErrorUndefinedFunction, fmt.Sprintf("undefined function '%s'", v.Callee), v.Pos)
		for _, arg := range v.Args {
			a.checkExpr(arg, scope)
		}
		return nil
	}

	if len(v.Args) != len(fn.Params) {
		a.addError(errors.ErrorInvalidArguments, fmt.Sprintf("'%s' expects %d argument(s) but %d were given", v.Callee, len(fn.Params), len(v.Args)), v.Pos)
	}

	n := len(v.Args)
	if len(fn.Params) < n {
		n = len(fn.Params)
	}
	for i := 0; i < n; i++ {
		argType := a.checkExpr(v.Args[i], scope)
		if argType != nil && !ast.SameType(argType, fn.Params[i].Type) {
			a.addError(errors.ErrorInvalidArguments, fmt.Sprintf("argument %d to '%s' has type %s but %s was expected", i+1, v.Callee, argType, fn.Params[i].Type), v.Args[i].NodePos())
		}
	}
	for i := n; i < len(v.Args); i++ {
		a.checkExpr(v.Args[i], scope)
	}

	if fn.RetType == nil {
		a.addError(errors.ErrorVoidInExpression, fmt.Sprintf("'%s' has no return value and cannot be used in an expression", v.Callee), v.Pos)
		return nil
	}
	return fn.RetType
}

func (a *Analyzer) checkIndexExpr(v *ast.Index, scope *SymbolTable) ast.Type {
	ident, ok := v.Base.(*ast.Ident)
	if !ok {
		a.addError(errors.ErrorNotAnArray, "only a plain variable may be indexed", v.Pos)
		return nil
	}
	sym := scope.Lookup(ident.Name)
	if sym == nil {
		a.addError(errors.ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", ident.Name), ident.Pos)
		return nil
	}
	scope.MarkUsed(ident.Name)
	return a.indexedType(sym.Type, v, scope, ident.Name)
}
