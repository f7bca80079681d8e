package parser

import (
	"testing"

	"bverify/internal/ast"
	"bverify/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	prog, err := New(tokens).Parse()
	require.NoError(t, err)
	return prog
}

func TestParseVarDeclAndAssert(t *testing.T) {
	prog := parse(t, "var x := 10; assert x == 10;")
	require.Len(t, prog.Statements, 2)

	decl, ok := prog.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)

	lit, ok := decl.Value.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(10), lit.Value)

	assertStmt, ok := prog.Statements[1].(*ast.AssertStmt)
	require.True(t, ok)
	bin, ok := assertStmt.Condition.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", bin.Op)
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parse(t, "var z := 1 + 2 * 3;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top, ok := decl.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)

	right, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestUnaryBindsTighterThanBinary(t *testing.T) {
	prog := parse(t, "var z := -1 + 2;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top, ok := decl.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)
	_, ok = top.Left.(*ast.UnaryExpr)
	require.True(t, ok)
}

func TestWhileLoop(t *testing.T) {
	prog := parse(t, "while (x > 0) { x := x - 1; }")
	ws, ok := prog.Statements[0].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, ws.Body, 1)
}

func TestIfElse(t *testing.T) {
	prog := parse(t, "if (x < 5) { var y := x + 1; } else { var y := x - 1; }")
	ifs, ok := prog.Statements[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
}

func TestForDesugarShape(t *testing.T) {
	prog := parse(t, "for (i := 0; i < 5; i := i + 1) { s := s + i; }")
	fs, ok := prog.Statements[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, fs.Init)
	require.NotNil(t, fs.Update)
	require.Len(t, fs.Body, 1)
}

func TestSyntaxErrorIsReported(t *testing.T) {
	tokens := lexer.NewScanner("var := 5;").ScanTokens()
	_, err := New(tokens).Parse()
	require.Error(t, err)
}
