package unroll

import (
	"testing"

	"bverify/internal/lexer"
	"bverify/internal/parser"
	"bverify/internal/ssa"
	"github.com/stretchr/testify/require"
)

func buildSSA(t *testing.T, src string) *ssa.Program {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	ssaProg, err := ssa.Build(prog)
	require.NoError(t, err)
	return ssaProg
}

func containsWhile(stmts []ssa.Stmt) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ssa.While:
			return true
		case *ssa.If:
			if containsWhile(n.Then) || containsWhile(n.Else) {
				return true
			}
		}
	}
	return false
}

func TestUnrollRemovesAllWhileNodes(t *testing.T) {
	ssaProg := buildSSA(t, `
		var x := 10;
		var y := 5;
		var z := 0;
		while (y > 0) { z := z + x; y := y - 1; }
		assert z == 50;
	`)

	unrolled := Program(ssaProg, 5)
	require.False(t, containsWhile(unrolled.Statements))
}

func TestUnrollDepthZeroYieldsAssertNotCond(t *testing.T) {
	ssaProg := buildSSA(t, `
		var x := 0;
		while (x < 4) { x := x + 1; }
		assert x == 4;
	`)

	unrolled := Program(ssaProg, 0)
	ifStmt, ok := unrolled.Statements[1].(*ssa.If)
	// depth 0 replaces the While directly with an Assert(not cond).
	if !ok {
		assertStmt, isAssert := unrolled.Statements[1].(*ssa.Assert)
		require.True(t, isAssert)
		_, isUnary := assertStmt.Cond.(*ssa.UnaryOp)
		require.True(t, isUnary)
		return
	}
	t.Fatalf("expected Assert at depth 0, got If: %+v", ifStmt)
}

func TestUnrollNestingMatchesTrueBranchContinuation(t *testing.T) {
	ssaProg := buildSSA(t, `
		var x := 0;
		while (x < 4) { x := x + 1; }
		assert x == 4;
	`)

	unrolled := Program(ssaProg, 2)
	top, ok := unrolled.Statements[1].(*ssa.If)
	require.True(t, ok)
	// the continuation (depth-1) must be the LAST statement of Then, not a
	// sibling following the If in the enclosing list. The While's header
	// symbol is then bound to the chain's output, and the original
	// `assert x == 4` follows: [Decl, If, Assign, Assert].
	require.Len(t, unrolled.Statements, 4)
	last := top.Then[len(top.Then)-1]
	_, isNestedIf := last.(*ssa.If)
	require.True(t, isNestedIf)
}
