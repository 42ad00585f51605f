package grammar

import (
	"strconv"

	"kasc/internal/ast"
)

// zeroPos is used for every node Convert produces: the participle parser
// already reports its own caret-framed syntax errors before Convert ever
// runs, and the REPL's session-local diagnostics don't need span
// granularity the way the batch CLI's do.
var zeroPos ast.Position

// Convert turns a parsed grammar.Function into the same *ast.Function the
// hand-written internal/parser produces, so internal/semantic and
// internal/ir need no awareness of which front end ran.
func Convert(fn *Function) *ast.Function {
	params := make([]*ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = &ast.Param{Pos: zeroPos, Name: p.Name, Type: convertType(p.Type)}
	}
	var retType ast.Type
	if fn.Return != nil {
		retType = convertType(fn.Return)
	}
	return &ast.Function{
		Pos:     zeroPos,
		Name:    fn.Name,
		Params:  params,
		RetType: retType,
		Body:    convertBlock(fn.Body),
	}
}

func convertType(t *Type) ast.Type {
	if t.Elem != nil {
		inner := convertType(t.Elem)
		if arr, ok := inner.(*ast.ArrayType); ok {
			return &ast.ArrayType{Dims: append([]int{t.Size}, arr.Dims...)}
		}
		return &ast.ArrayType{Dims: []int{t.Size}}
	}
	return &ast.IntType{}
}

func convertBlock(b *Block) *ast.Block {
	blk := ast.NewBlock(zeroPos)
	for _, s := range b.Stmts {
		blk.Stmts = append(blk.Stmts, convertStmt(s))
	}
	return blk
}

func convertStmt(s *Stmt) ast.Stmt {
	switch {
	case s.Let != nil:
		return ast.NewLetStmt(zeroPos, s.Let.Name, convertType(s.Let.Type), convertExpr(s.Let.Init))
	case s.If != nil:
		var els *ast.Block
		if s.If.Else != nil {
			els = convertBlock(s.If.Else)
		}
		return ast.NewIfStmt(zeroPos, convertExpr(s.If.Cond), convertBlock(s.If.Then), els)
	case s.For != nil:
		return convertFor(s.For)
	case s.Break != nil:
		return ast.NewBreakStmt(zeroPos)
	case s.Continue != nil:
		return ast.NewContinueStmt(zeroPos)
	case s.Return != nil:
		var val ast.Expr
		if s.Return.Value != nil {
			val = convertExpr(s.Return.Value)
		}
		return ast.NewReturnStmt(zeroPos, val)
	case s.Block != nil:
		return convertBlock(s.Block)
	case s.ExprOrAssign != nil:
		return convertExprOrAssign(s.ExprOrAssign)
	}
	return ast.NewBlock(zeroPos)
}

func convertFor(f *ForStmt) ast.Stmt {
	if f.Bare != nil {
		return ast.NewForStmt(zeroPos, nil, nil, nil, convertBlock(f.Bare))
	}
	c := f.Counted
	var init ast.Stmt
	if c.Init != nil {
		init = convertAssignOrLet(c.Init)
	}
	var cond ast.Expr
	if c.Cond != nil {
		cond = convertExpr(c.Cond)
	}
	var post ast.Stmt
	if c.Post != nil {
		post = convertAssign(c.Post)
	}
	return ast.NewForStmt(zeroPos, init, cond, post, convertBlock(c.Body))
}

func convertAssignOrLet(a *AssignOrLet) ast.Stmt {
	if a.Let != nil {
		return ast.NewLetStmt(zeroPos, a.Let.Name, convertType(a.Let.Type), convertExpr(a.Let.Init))
	}
	return convertAssign(a.Assign)
}

func convertAssign(a *Assign) ast.Stmt {
	target := ast.NewIndex(zeroPos, ast.NewIdent(zeroPos, a.Target.Name), convertExprList(a.Target.Indices))
	return ast.NewAssignStmt(zeroPos, target, convertAssignOp(a.Op), convertExpr(a.Value))
}

func convertAssignOp(op string) ast.AssignOp {
	switch op {
	case "+=":
		return ast.AssignAdd
	case "-=":
		return ast.AssignSub
	case "*=":
		return ast.AssignMul
	case "/=":
		return ast.AssignDiv
	case "%=":
		return ast.AssignMod
	default:
		return ast.AssignSet
	}
}

func convertExprOrAssign(e *ExprOrAssignStmt) ast.Stmt {
	if e.Assign != nil {
		return convertAssign(e.Assign)
	}
	return ast.NewExprStmt(zeroPos, convertExpr(e.Expr))
}

func convertExprList(exprs []*Expr) []ast.Expr {
	out := make([]ast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = convertExpr(e)
	}
	return out
}

func convertExpr(e *Expr) ast.Expr {
	return convertOr(e.Or)
}

func convertOr(o *OrExpr) ast.Expr {
	expr := convertAnd(o.Left)
	for _, r := range o.Rest {
		expr = ast.NewBinary(zeroPos, ast.BOr, expr, convertAnd(r))
	}
	return expr
}

func convertAnd(a *AndExpr) ast.Expr {
	expr := convertEq(a.Left)
	for _, r := range a.Rest {
		expr = ast.NewBinary(zeroPos, ast.BAnd, expr, convertEq(r))
	}
	return expr
}

func convertEq(e *EqExpr) ast.Expr {
	expr := convertRel(e.Left)
	for _, op := range e.Ops {
		bop := ast.BEq
		if op.Op == "!=" {
			bop = ast.BNe
		}
		expr = ast.NewBinary(zeroPos, bop, expr, convertRel(op.Right))
	}
	return expr
}

func convertRel(r *RelExpr) ast.Expr {
	expr := convertAdd(r.Left)
	for _, op := range r.Ops {
		var bop ast.BinOp
		switch op.Op {
		case "<=":
			bop = ast.BLe
		case ">=":
			bop = ast.BGe
		case "<":
			bop = ast.BLt
		default:
			bop = ast.BGt
		}
		expr = ast.NewBinary(zeroPos, bop, expr, convertAdd(op.Right))
	}
	return expr
}

func convertAdd(a *AddExpr) ast.Expr {
	expr := convertMul(a.Left)
	for _, op := range a.Ops {
		bop := ast.BAdd
		if op.Op == "-" {
			bop = ast.BSub
		}
		expr = ast.NewBinary(zeroPos, bop, expr, convertMul(op.Right))
	}
	return expr
}

func convertMul(m *MulExpr) ast.Expr {
	expr := convertUnary(m.Left)
	for _, op := range m.Ops {
		var bop ast.BinOp
		switch op.Op {
		case "*":
			bop = ast.BMul
		case "/":
			bop = ast.BDiv
		default:
			bop = ast.BMod
		}
		expr = ast.NewBinary(zeroPos, bop, expr, convertUnary(op.Right))
	}
	return expr
}

func convertUnary(u *UnaryExpr) ast.Expr {
	operand := convertPostfix(u.Operand)
	if u.Op == nil {
		return operand
	}
	if *u.Op == "-" {
		return ast.NewUnary(zeroPos, ast.UNeg, operand)
	}
	return ast.NewUnary(zeroPos, ast.UNot, operand)
}

func convertPostfix(p *PostfixExpr) ast.Expr {
	expr := convertPrimary(p.Primary)
	if len(p.Indices) > 0 {
		return ast.NewIndex(zeroPos, expr, convertExprList(p.Indices))
	}
	return expr
}

func convertPrimary(p *PrimaryExpr) ast.Expr {
	switch {
	case p.Call != nil:
		return ast.NewCall(zeroPos, p.Call.Callee, convertExprList(p.Call.Args))
	case p.Number != nil:
		v, _ := strconv.ParseInt(*p.Number, 10, 64)
		return ast.NewIntLit(zeroPos, v)
	case p.Ident != nil:
		return ast.NewIdent(zeroPos, *p.Ident)
	case p.ArrayLit:
		return ast.NewArrayLit(zeroPos)
	default:
		return convertExpr(p.Sub)
	}
}
