package ssa

import (
	"fmt"
	"testing"

	"bverify/internal/lexer"
	"bverify/internal/parser"
	"github.com/stretchr/testify/require"
)

func buildFrom(t *testing.T, src string) *Program {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	ssaProg, err := Build(prog)
	require.NoError(t, err)
	return ssaProg
}

func TestSingleAssignmentInvariant(t *testing.T) {
	ssaProg := buildFrom(t, `
		var x := 3;
		if (x < 5) { var y := x + 1; } else { var y := x - 1; }
		assert y > 0;
	`)

	seen := map[string]bool{}
	define := func(name string, version int) {
		key := fmt.Sprintf("%s_%d", name, version)
		require.False(t, seen[key], "duplicate definition of %s", key)
		seen[key] = true
	}
	var walk func(stmts []Stmt)
	walk = func(stmts []Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *Decl:
				define(n.Name, n.Version)
			case *Assign:
				define(n.Name, n.Version)
			case *Phi:
				define(n.Name, n.Version)
			case *If:
				walk(n.Then)
				walk(n.Else)
				for _, phi := range n.Phi {
					define(phi.Name, phi.Version)
				}
			case *While:
				walk(n.Body)
				for _, phi := range n.Phi {
					define(phi.Name, phi.Version)
				}
			}
		}
	}
	walk(ssaProg.Statements)
}

func TestIfMergeEmitsPhi(t *testing.T) {
	ssaProg := buildFrom(t, `
		var x := 3;
		if (x < 5) { var y := x + 1; } else { var y := x - 1; }
		assert y > 0;
	`)

	ifStmt, ok := ssaProg.Statements[1].(*If)
	require.True(t, ok)
	require.Len(t, ifStmt.Phi, 1)
	require.Equal(t, "y", ifStmt.Phi[0].Name)
}

func TestWhileHeaderPhi(t *testing.T) {
	ssaProg := buildFrom(t, `
		var x := 10;
		var y := 5;
		var z := 0;
		while (y > 0) { z := z + x; y := y - 1; }
		assert z == 50;
	`)

	whileStmt, ok := ssaProg.Statements[3].(*While)
	require.True(t, ok)
	names := map[string]bool{}
	for _, phi := range whileStmt.Phi {
		names[phi.Name] = true
	}
	require.True(t, names["y"])
	require.True(t, names["z"])
	require.False(t, names["x"], "x is never written in the loop body")
}

func TestForDesugarsToInitWhile(t *testing.T) {
	ssaProg := buildFrom(t, `
		var s := 0;
		for (i := 0; i < 5; i := i + 1) { s := s + i; }
		assert s == 10;
	`)

	require.Len(t, ssaProg.Statements, 3)
	_, isAssign := ssaProg.Statements[1].(*Assign)
	require.True(t, isAssign, "the for-init assignment should lower to an Assign")
	_, isWhile := ssaProg.Statements[2].(*While)
	require.True(t, isWhile, "for should desugar to a While")
}

func TestUndeclaredVariableIsSemanticError(t *testing.T) {
	tokens := lexer.NewScanner("assert x == 1;").ScanTokens()
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	_, err = Build(prog)
	require.Error(t, err)
}
