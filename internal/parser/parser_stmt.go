package parser

import "kasc/internal/ast"

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.check(LET):
		return p.parseLetStmt()
	case p.check(IF):
		return p.parseIfStmt()
	case p.check(FOR):
		return p.parseForStmt()
	case p.check(BREAK):
		tok := p.advance()
		p.consume(SEMICOLON, "expected ';' after 'break'")
		return ast.NewBreakStmt(p.makePos(tok))
	case p.check(CONTINUE):
		tok := p.advance()
		p.consume(SEMICOLON, "expected ';' after 'continue'")
		return ast.NewContinueStmt(p.makePos(tok))
	case p.check(RETURN):
		return p.parseReturnStmt()
	case p.check(LEFT_BRACE):
		return p.parseBlock()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.consume(LET, "expected 'let'")
	name := p.consumeIdent("expected variable name")
	typ := p.parseType()
	p.consume(EQUAL, "expected '=' in let statement")
	init := p.parseExpr()
	p.consume(SEMICOLON, "expected ';' after let statement")
	return ast.NewLetStmt(p.makePos(start), name.Name, typ, init)
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.consume(IF, "expected 'if'")
	p.consume(LEFT_PAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")
	then := p.parseBlock()

	var els *ast.Block
	if p.match(ELSE) {
		if p.check(IF) {
			// `else if` desugars to an else-block containing one if statement.
			elseIf := p.parseIfStmt()
			els = ast.NewBlock(elseIf.NodePos())
			els.Stmts = []ast.Stmt{elseIf}
		} else {
			els = p.parseBlock()
		}
	}

	return ast.NewIfStmt(p.makePos(start), cond, then, els)
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.consume(FOR, "expected 'for'")

	if p.check(LEFT_BRACE) {
		body := p.parseBlock()
		return ast.NewForStmt(p.makePos(start), nil, nil, nil, body)
	}

	p.consume(LEFT_PAREN, "expected '(' after 'for'")

	var init ast.Stmt
	if !p.check(SEMICOLON) {
		if p.check(LET) {
			init = p.parseLetStmtNoSemi()
		} else {
			init = p.parseAssignStmtNoSemi()
		}
	}
	p.consume(SEMICOLON, "expected ';' after for-loop initializer")

	var cond ast.Expr
	if !p.check(SEMICOLON) {
		cond = p.parseExpr()
	}
	p.consume(SEMICOLON, "expected ';' after for-loop condition")

	var post ast.Stmt
	if !p.check(RIGHT_PAREN) {
		post = p.parseAssignStmtNoSemi()
	}
	p.consume(RIGHT_PAREN, "expected ')' after for-loop clauses")

	body := p.parseBlock()
	return ast.NewForStmt(p.makePos(start), init, cond, post, body)
}

func (p *Parser) parseLetStmtNoSemi() ast.Stmt {
	start := p.consume(LET, "expected 'let'")
	name := p.consumeIdent("expected variable name")
	typ := p.parseType()
	p.consume(EQUAL, "expected '=' in let statement")
	init := p.parseExpr()
	return ast.NewLetStmt(p.makePos(start), name.Name, typ, init)
}

func (p *Parser) parseAssignStmtNoSemi() ast.Stmt {
	start := p.peek()
	target := p.parseLValue()
	op := p.parseAssignOp()
	value := p.parseExpr()
	return ast.NewAssignStmt(p.makePos(start), target, op, value)
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.consume(RETURN, "expected 'return'")
	var value ast.Expr
	if !p.check(SEMICOLON) {
		value = p.parseExpr()
	}
	p.consume(SEMICOLON, "expected ';' after return statement")
	return ast.NewReturnStmt(p.makePos(start), value)
}

// parseExprOrAssignStmt handles both a bare call-expression statement and
// an assignment statement; both start with an lvalue-shaped expression,
// so the parser looks ahead for an assignment operator before deciding.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.peek()
	expr := p.parseExpr()

	if p.isAssignOp(p.peek().Type) {
		target, ok := exprToIndex(expr)
		if !ok {
			p.errorAtCurrent("invalid assignment target")
		}
		op := p.parseAssignOp()
		value := p.parseExpr()
		p.consume(SEMICOLON, "expected ';' after assignment")
		return ast.NewAssignStmt(p.makePos(start), target, op, value)
	}

	p.consume(SEMICOLON, "expected ';' after expression statement")
	return ast.NewExprStmt(p.makePos(start), expr)
}

// exprToIndex reinterprets an already-parsed expression as an lvalue: a
// plain identifier (scalar target) or an Index chain rooted at one.
func exprToIndex(e ast.Expr) (*ast.Index, bool) {
	switch v := e.(type) {
	case *ast.Ident:
		return ast.NewIndex(v.NodePos(), v, nil), true
	case *ast.Index:
		return v, true
	default:
		return nil, false
	}
}

func (p *Parser) parseLValue() *ast.Index {
	start := p.consumeIdent("expected assignment target")
	var indices []ast.Expr
	for p.match(LEFT_BRACKET) {
		idx := p.parseExpr()
		p.consume(RIGHT_BRACKET, "expected ']' after index")
		indices = append(indices, idx)
	}
	return ast.NewIndex(start.NodePos(), start, indices)
}

func (p *Parser) isAssignOp(tt TokenType) bool {
	switch tt {
	case EQUAL, PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL, PERCENT_EQUAL:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAssignOp() ast.AssignOp {
	tok := p.advance()
	switch tok.Type {
	case EQUAL:
		return ast.AssignSet
	case PLUS_EQUAL:
		return ast.AssignAdd
	case MINUS_EQUAL:
		return ast.AssignSub
	case STAR_EQUAL:
		return ast.AssignMul
	case SLASH_EQUAL:
		return ast.AssignDiv
	case PERCENT_EQUAL:
		return ast.AssignMod
	default:
		p.errorAtCurrent("expected assignment operator")
		return ast.AssignSet
	}
}
