package semantic

import (
	"fmt"

	"kasc/internal/ast"
	"kasc/internal/errors"
)

func (a *Analyzer) checkStmt(s ast.Stmt, scope *SymbolTable) {
	switch v := s.(type) {
	case *ast.LetStmt:
		a.checkLetStmt(v, scope)
	case *ast.AssignStmt:
		a.checkAssignStmt(v, scope)
	case *ast.IfStmt:
		a.checkIfStmt(v, scope)
	case *ast.ForStmt:
		a.checkForStmt(v, scope)
	case *ast.BreakStmt:
		if a.loopDepth == 0 {
			a.addError(errors.ErrorBreakOutsideLoop, "break used outside of a loop", v.Pos)
		}
	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.addError(errors.ErrorContinueOutsideLoop, "continue used outside of a loop", v.Pos)
		}
	case *ast.ReturnStmt:
		a.checkReturnStmt(v, scope)
	case *ast.ExprStmt:
		a.checkExpr(v.X, scope)
	case *ast.Block:
		a.checkBlock(v, scope)
	}
}

func (a *Analyzer) checkLetStmt(s *ast.LetStmt, scope *SymbolTable) {
	if scope.LookupLocal(s.Name) != nil {
		a.addError(errors.ErrorDuplicateDeclaration, fmt.Sprintf("'%s' is already declared in this scope", s.Name), s.Pos)
	}

	initType := a.checkExpr(s.Init, scope)

	// `{}` is the only array literal and must be checked against the
	// declared array type rather than inferred, since it carries no
	// shape of its own.
	if _, isArrLit := s.Init.(*ast.ArrayLit); isArrLit {
		if !s.Type.IsArray() {
			a.addError(errors.ErrorTypeMismatch, "'{}' initializer requires an array type", s.Pos)
		}
	} else if initType != nil && !ast.SameType(initType, s.Type) {
		a.addError(errors.ErrorTypeMismatch, fmt.Sprintf("cannot initialize '%s' of type %s with value of type %s", s.Name, s.Type, initType), s.Pos)
	}

	scope.Define(s.Name, SymbolVariable, s, s.Pos, s.Type)
}

func (a *Analyzer) checkAssignStmt(s *ast.AssignStmt, scope *SymbolTable) {
	base, ok := s.Target.Base.(*ast.Ident)
	if !ok {
		a.addError(errors.ErrorInvalidAssignment, "invalid assignment target", s.Pos)
		return
	}

	sym := scope.Lookup(base.Name)
	if sym == nil {
		a.addError(errors.ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", base.Name), base.Pos)
		return
	}

	targetType := a.indexedType(sym.Type, s.Target, scope, base.Name)
	valType := a.checkExpr(s.Value, scope)

	if targetType != nil && valType != nil && !ast.SameType(targetType, valType) {
		a.addError(errors.ErrorInvalidAssignment, fmt.Sprintf("cannot assign value of type %s to '%s' of type %s", valType, base.Name, targetType), s.Pos)
	}

	if s.Op != ast.AssignSet && targetType != nil && targetType.IsArray() {
		a.addError(errors.ErrorInvalidOperation, "compound assignment operators are not supported on arrays", s.Pos)
	}

	scope.MarkUsed(base.Name)
}

func (a *Analyzer) checkIfStmt(s *ast.IfStmt, scope *SymbolTable) {
	condType := a.checkExpr(s.Cond, scope)
	if condType != nil && condType.IsArray() {
		a.addError(errors.ErrorTypeMismatch, "if condition must be an int (0 is false, nonzero is true)", s.Cond.NodePos())
	}
	a.checkBlock(s.Then, scope)
	if s.Else != nil {
		a.checkBlock(s.Else, scope)
	}
}

func (a *Analyzer) checkForStmt(s *ast.ForStmt, scope *SymbolTable) {
	loopScope := NewSymbolTable(scope)
	if s.Init != nil {
		a.checkStmt(s.Init, loopScope)
	}
	if s.Cond != nil {
		condType := a.checkExpr(s.Cond, loopScope)
		if condType != nil && condType.IsArray() {
			a.addError(errors.ErrorTypeMismatch, "for condition must be an int", s.Cond.NodePos())
		}
	}
	if s.Post != nil {
		a.checkStmt(s.Post, loopScope)
	}

	a.loopDepth++
	a.checkBlock(s.Body, loopScope)
	a.loopDepth--
}

func (a *Analyzer) checkReturnStmt(s *ast.ReturnStmt, scope *SymbolTable) {
	if s.Value == nil {
		if a.fn.RetType != nil {
			a.addError(errors.ErrorInvalidReturnType, fmt.Sprintf("function '%s' must return a value of type %s", a.fn.Name, a.fn.RetType), s.Pos)
		}
		return
	}

	valType := a.checkExpr(s.Value, scope)
	if a.fn.RetType == nil {
		a.addError(errors.ErrorInvalidReturnType, fmt.Sprintf("function '%s' has no return type but a value was returned", a.fn.Name), s.Pos)
		return
	}
	if valType != nil && !ast.SameType(valType, a.fn.RetType) {
		a.addError(errors.ErrorInvalidReturnType, fmt.Sprintf("returned value has type %s but function declares %s", valType, a.fn.RetType), s.Pos)
	}
}

// indexedType computes the type of `base[i0][i1]...` given base's own
// type and reports a rank mismatch if the number of indices doesn't
// match an array's declared dimensions.
func (a *Analyzer) indexedType(baseType ast.Type, idx *ast.Index, scope *SymbolTable, name string) ast.Type {
	for _, e := range idx.Indices {
		it := a.checkExpr(e, scope)
		if it != nil && it.IsArray() {
			a.addError(errors.ErrorTypeMismatch, "array index must be an int", e.NodePos())
		}
	}

	if len(idx.Indices) == 0 {
		return baseType
	}

	arr, ok := baseType.(*ast.ArrayType)
	if !ok {
		a.addError(errors.ErrorNotAnArray, fmt.Sprintf("'%s' is not an array", name), idx.Pos)
		return nil
	}
	if len(idx.Indices) != arr.Rank() {
		a.addError(errors.ErrorIndexRankMismatch, fmt.Sprintf("'%s' has rank %d but %d indices were given", name, arr.Rank(), len(idx.Indices)), idx.Pos)
		return nil
	}
	return &ast.IntType{}
}
