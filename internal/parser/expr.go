package parser

import (
	"bverify/internal/ast"
	"bverify/internal/lexer"
)

// binaryPrecedence mirrors the teacher's parser_pratt.go table, trimmed and
// renamed to this grammar's operators and precedence order (low to high:
// or, and, equality, relational, additive, multiplicative — SPEC_FULL.md
// §4.1). Unary '-'/'not' binds tighter than any binary operator and is
// handled outside this table, in parsePrefix.
var binaryPrecedence = map[lexer.TokenType]int{
	lexer.OR:  1,
	lexer.AND: 2,
	lexer.EQ:  3, lexer.NOT_EQ: 3,
	lexer.LT: 4, lexer.LE: 4, lexer.GT: 4, lexer.GE: 4,
	lexer.PLUS: 5, lexer.MINUS: 5,
	lexer.STAR: 6, lexer.SLASH: 6, lexer.PERCENT: 6,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parsePratt(1)
}

// parsePratt is precedence-climbing, grounded on parser_pratt.go's
// parsePrattExpr(minPrec).
func (p *Parser) parsePratt(minPrec int) ast.Expr {
	left := p.parsePrefix()

	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.parsePratt(prec + 1)
		left = &ast.BinaryExpr{Position: left.Pos(), Op: tok.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	if p.match(lexer.MINUS) {
		op := p.previous()
		operand := p.parsePrefix()
		return &ast.UnaryExpr{Position: makePos(op), Op: "-", Operand: operand}
	}
	if p.match(lexer.NOT) {
		op := p.previous()
		operand := p.parsePrefix()
		return &ast.UnaryExpr{Position: makePos(op), Op: "not", Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.match(lexer.NUMBER):
		tok := p.previous()
		return parseIntLiteral(tok)
	case p.match(lexer.IDENTIFIER):
		tok := p.previous()
		return &ast.VarRef{Position: makePos(tok), Name: tok.Lexeme}
	case p.match(lexer.LPAREN):
		inner := p.parseExpr()
		p.consume(lexer.RPAREN, "expected ')' after expression")
		return inner
	default:
		p.errorAtCurrent("expected an expression")
		tok := p.peek()
		return &ast.IntLiteral{Position: makePos(tok), Value: 0, Raw: "0"}
	}
}
