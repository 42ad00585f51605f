// Package semantic checks a parsed *ast.Program for scope, type, and
// control-flow errors before it is handed to the IR builder, grounded on
// the teacher's internal/semantic package.
package semantic

import (
	"fmt"

	"kasc/internal/ast"
	"kasc/internal/errors"
)

// Analyzer performs a two-pass check over a Program: pass one builds the
// function signature table (so forward calls resolve), pass two checks
// every function body against that table.
type Analyzer struct {
	bag       errors.Bag
	functions map[string]*ast.Function
	loopDepth int
	symbols   *SymbolTable
	fn        *ast.Function
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{functions: make(map[string]*ast.Function)}
}

// Analyze checks the whole program and returns accumulated diagnostics.
// The caller should treat the program as unsafe to lower to IR if
// bag.HasErrors() is true.
func (a *Analyzer) Analyze(prog *ast.Program) *errors.Bag {
	a.bag = errors.Bag{}
	a.functions = make(map[string]*ast.Function)

	for _, fn := range prog.Functions {
		if _, dup := a.functions[fn.Name]; dup {
			a.addError(errors.ErrorDuplicateDeclaration, fmt.Sprintf("function '%s' is already declared", fn.Name), fn.Pos)
			continue
		}
		a.functions[fn.Name] = fn
	}

	for _, fn := range prog.Functions {
		a.analyzeFunction(fn)
	}

	return &a.bag
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	a.fn = fn
	a.loopDepth = 0
	a.symbols = NewSymbolTable(nil)

	seen := make(map[string]bool)
	for _, p := range fn.Params {
		if seen[p.Name] {
			a.addError(errors.ErrorDuplicateDeclaration, fmt.Sprintf("duplicate parameter '%s'", p.Name), p.Pos)
			continue
		}
		seen[p.Name] = true
		a.symbols.Define(p.Name, SymbolParameter, fn, p.Pos, p.Type)
	}

	a.checkBlock(fn.Body, a.symbols)

	if fn.RetType != nil && !a.blockAlwaysReturns(fn.Body) {
		a.addError(errors.ErrorMissingReturn, fmt.Sprintf("function '%s' declares return type %s but does not return on every path", fn.Name, fn.RetType), fn.Pos)
	}

	a.warnUnusedLocals(a.symbols)
}

func (a *Analyzer) checkBlock(b *ast.Block, parent *SymbolTable) {
	scope := NewSymbolTable(parent)
	terminated := false
	for _, stmt := range b.Stmts {
		if terminated {
			a.addWarning(errors.WarningUnreachableCode, "unreachable code after a terminating statement", stmt.NodePos())
		}
		a.checkStmt(stmt, scope)
		if stmtTerminates(stmt) {
			terminated = true
		}
	}
	a.warnUnusedLocals(scope)
}

// stmtTerminates reports whether a statement unconditionally ends
// control flow on the path it appears in (return/break/continue, or an
// if/else whose both arms terminate).
func stmtTerminates(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	case *ast.IfStmt:
		if v.Else == nil {
			return false
		}
		return blockTerminates(v.Then) && blockTerminates(v.Else)
	default:
		return false
	}
}

func blockTerminates(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if stmtTerminates(s) {
			return true
		}
	}
	return false
}

// blockAlwaysReturns is stricter than stmtTerminates: break/continue
// don't satisfy a function's required return.
func (a *Analyzer) blockAlwaysReturns(b *ast.Block) bool {
	for _, s := range b.Stmts {
		switch v := s.(type) {
		case *ast.ReturnStmt:
			return true
		case *ast.IfStmt:
			if v.Else != nil && a.blockAlwaysReturns(v.Then) && a.blockAlwaysReturns(v.Else) {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) warnUnusedLocals(scope *SymbolTable) {
	for _, sym := range scope.AllLocal() {
		if sym.Kind == SymbolVariable && !sym.Used {
			a.addWarning(errors.WarningUnusedVariable, fmt.Sprintf("variable '%s' is never used", sym.Name), sym.Position)
		}
	}
}

func (a *Analyzer) addError(code, message string, pos ast.Position) {
	a.bag.Add(errors.New(code, message, pos).Build())
}

func (a *Analyzer) addWarning(code, message string, pos ast.Position) {
	a.bag.Add(errors.NewWarning(code, message, pos).Build())
}
