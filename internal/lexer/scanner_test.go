package lexer

import "testing"

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "var while for if else assert and or not customIdent"
	expected := []TokenType{
		VAR, WHILE, FOR, IF, ELSE, ASSERT, AND, OR, NOT, IDENTIFIER,
	}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}

func TestNumbers(t *testing.T) {
	input := "42 0 12345 3.14"
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	for i := 0; i < 4; i++ {
		if tokens[i].Type != NUMBER {
			t.Errorf("token %d: expected NUMBER, got %s", i, tokens[i].Type)
		}
	}
	if tokens[3].Lexeme != "3.14" {
		t.Errorf("expected lexeme 3.14, got %s", tokens[3].Lexeme)
	}
}

func TestOperatorsAndPunctuation(t *testing.T) {
	input := "(){};+-*/% == != < <= > >= = :="
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, SEMICOLON,
		PLUS, MINUS, STAR, SLASH, PERCENT,
		EQ, NOT_EQ, LT, LE, GT, GE, ASSIGN, DECLARE,
	}
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}

func TestLineComment(t *testing.T) {
	input := "var x := 1; // trailing comment\nvar y := 2;"
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	var count int
	for _, tok := range tokens {
		if tok.Type == VAR {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 'var' tokens, got %d", count)
	}
}

func TestUnexpectedCharacterReportsError(t *testing.T) {
	scanner := NewScanner("var x := 1 @ 2;")
	scanner.ScanTokens()
	if len(scanner.Errors()) == 0 {
		t.Fatalf("expected a scan error for '@'")
	}
}
