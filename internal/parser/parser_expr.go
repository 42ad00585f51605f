package parser

import "kasc/internal/ast"

// binaryPrecedence mirrors the teacher's Pratt-parser precedence table,
// extended with the full C-style ladder this language's grammar needs.
var binaryPrecedence = map[TokenType]int{
	OR:             1,
	AND:            2,
	EQUAL_EQUAL:    3,
	BANG_EQUAL:     3,
	LESS:           4,
	LESS_EQUAL:     4,
	GREATER:        4,
	GREATER_EQUAL:  4,
	PLUS:           5,
	MINUS:          5,
	STAR:           6,
	SLASH:          6,
	PERCENT:        6,
}

var tokenToBinOp = map[TokenType]ast.BinOp{
	OR:            ast.BOr,
	AND:           ast.BAnd,
	EQUAL_EQUAL:   ast.BEq,
	BANG_EQUAL:    ast.BNe,
	LESS:          ast.BLt,
	LESS_EQUAL:    ast.BLe,
	GREATER:       ast.BGt,
	GREATER_EQUAL: ast.BGe,
	PLUS:          ast.BAdd,
	MINUS:         ast.BSub,
	STAR:          ast.BMul,
	SLASH:         ast.BDiv,
	PERCENT:       ast.BMod,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parsePrattExpr(0)
}

func (p *Parser) parsePrattExpr(minPrec int) ast.Expr {
	expr := p.parseUnaryExpr()

	for {
		tt := p.peek().Type
		prec, ok := binaryPrecedence[tt]
		if !ok || prec < minPrec {
			break
		}

		op := p.advance()
		right := p.parsePrattExpr(prec + 1)
		expr = ast.NewBinary(expr.NodePos(), tokenToBinOp[op.Type], expr, right)
	}

	return expr
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	if p.match(MINUS) {
		op := p.previous()
		operand := p.parseUnaryExpr()
		return ast.NewUnary(p.makePos(op), ast.UNeg, operand)
	}
	if p.match(BANG) {
		op := p.previous()
		operand := p.parseUnaryExpr()
		return ast.NewUnary(p.makePos(op), ast.UNot, operand)
	}
	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixExpr(expr ast.Expr) ast.Expr {
	for p.check(LEFT_BRACKET) {
		var indices []ast.Expr
		for p.match(LEFT_BRACKET) {
			idx := p.parseExpr()
			p.consume(RIGHT_BRACKET, "expected ']' after index")
			indices = append(indices, idx)
		}
		expr = ast.NewIndex(expr.NodePos(), expr, indices)
	}
	return expr
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	if p.match(NUMBER) {
		tok := p.previous()
		return ast.NewIntLit(p.makePos(tok), parseIntLiteral(tok.Lexeme))
	}

	if p.match(LEFT_BRACE) {
		start := p.previous()
		p.consume(RIGHT_BRACE, "expected '}' to close the zero-initializer literal")
		return ast.NewArrayLit(p.makePos(start))
	}

	if p.match(IDENTIFIER) {
		tok := p.previous()
		if p.check(LEFT_PAREN) {
			p.advance()
			args := p.parseExprList()
			p.consume(RIGHT_PAREN, "expected ')' after call arguments")
			return ast.NewCall(p.makePos(tok), tok.Lexeme, args)
		}
		return ast.NewIdent(p.makePos(tok), tok.Lexeme)
	}

	if p.match(LEFT_PAREN) {
		inner := p.parseExpr()
		p.consume(RIGHT_PAREN, "expected ')'")
		return inner
	}

	tok := p.peek()
	p.errorAtCurrent("unexpected token in expression: " + tok.Lexeme)
	if !p.isAtEnd() {
		p.advance()
	}
	return ast.NewIntLit(p.makePos(tok), 0)
}

func (p *Parser) parseExprList() []ast.Expr {
	var args []ast.Expr
	if p.check(RIGHT_PAREN) {
		return args
	}
	for {
		args = append(args, p.parseExpr())
		if !p.match(COMMA) {
			break
		}
	}
	return args
}
