package parser

import (
	"strconv"
	"strings"

	"bverify/internal/ast"
	"bverify/internal/diagnostics"
	"bverify/internal/lexer"
)

// Grounded on the teacher's internal/parser/parser_helper.go: advance/
// check/match/consume/peek/previous/isAtEnd plus errorAtCurrent and
// synchronize, trimmed of struct/function/module-specific helpers this
// grammar has no use for.

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, message string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return p.peek()
}

func (p *Parser) consumeIdent(message string) string {
	tok := p.consume(lexer.IDENTIFIER, message)
	return tok.Lexeme
}

func (p *Parser) peek() lexer.Token     { return p.tokens[p.current] }
func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool         { return p.peek().Type == lexer.EOF }

func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	p.errors = append(p.errors, &diagnostics.ParseError{
		Line: tok.Position.Line,
		Col:  tok.Position.Col,
		Msg:  message,
	})
}

// synchronize advances past tokens until the next statement boundary, so one
// malformed statement doesn't swallow the rest of the file. Grounded on
// parser_helper.go's synchronize(), retuned to this grammar's keyword set.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case lexer.VAR, lexer.WHILE, lexer.FOR, lexer.IF, lexer.ASSERT:
			return
		}
		p.advance()
	}
}

// parseIntLiteral turns a NUMBER token into an ast.IntLiteral, marking
// HasFraction when the lexeme contains a '.' (SPEC_FULL.md §4.1: decimal
// literals are tolerated by the scanner/parser but rejected downstream,
// not here).
func parseIntLiteral(tok lexer.Token) *ast.IntLiteral {
	if strings.Contains(tok.Lexeme, ".") {
		return &ast.IntLiteral{Position: makePos(tok), HasFraction: true, Raw: tok.Lexeme}
	}
	v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
	return &ast.IntLiteral{Position: makePos(tok), Value: v, Raw: tok.Lexeme}
}
