package smt_test

import (
	"strings"
	"testing"

	"bverify/internal/lexer"
	"bverify/internal/optimize"
	"bverify/internal/parser"
	"bverify/internal/smt"
	"bverify/internal/ssa"
	"bverify/internal/unroll"
	"github.com/stretchr/testify/require"
)

func encodeSrc(t *testing.T, src string, depth int, passes []optimize.Name) *smt.Encoding {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	ssaProg, err := ssa.Build(prog)
	require.NoError(t, err)
	unrolled := unroll.Program(ssaProg, depth)
	optimized := optimize.NewPipeline(passes).Run(unrolled)
	enc, err := smt.Encode(optimized)
	require.NoError(t, err)
	return enc
}

func TestEncodeDeclarationOrderIsLexicographicThenByVersion(t *testing.T) {
	enc := encodeSrc(t, `
		var b := 1;
		var a := 2;
		a := a + 1;
		assert a == 3;
	`, 0, nil)

	var symbols []string
	for _, d := range enc.Declarations {
		symbols = append(symbols, d.Name)
	}
	require.True(t, sortedLexByNameThenVersion(enc.Declarations), "got %v", symbols)
}

func sortedLexByNameThenVersion(decls []smt.Declaration) bool {
	for i := 1; i < len(decls); i++ {
		prev, cur := decls[i-1], decls[i]
		if cur.Name < prev.Name {
			return false
		}
		if cur.Name == prev.Name && cur.Version < prev.Version {
			return false
		}
	}
	return true
}

func TestEncodeAssertBecomesObligationNotConstraint(t *testing.T) {
	enc := encodeSrc(t, `
		var x := 10;
		assert x == 10;
	`, 0, nil)

	require.Len(t, enc.Obligations, 1)
	require.Len(t, enc.Constraints, 1, "only x's definition belongs in Γ; the assert must not add a constraint, found: %v", enc.Constraints)
}

func TestEncodeIfBranchesAreUnguardedAndPhiIsDisjunction(t *testing.T) {
	enc := encodeSrc(t, `
		var x := 0;
		if (x == 0) { x := 1; } else { x := 2; }
		assert x == 1;
	`, 0, nil)

	text := strings.Join(enc.Constraints, "\n")
	require.Contains(t, text, "(or ")
}

func TestEncodeRejectsNonBooleanAssert(t *testing.T) {
	prog := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.Decl{Name: "x", Version: 0, Value: &ssa.Constant{IntValue: 1}},
		&ssa.Assert{Cond: &ssa.Variable{Name: "x", Version: 0}},
	}}
	_, err := smt.Encode(prog)
	require.Error(t, err)
}

func TestEncodeRejectsMismatchedSortComparison(t *testing.T) {
	prog := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.Decl{Name: "x", Version: 0, Value: &ssa.Constant{IntValue: 1}},
		&ssa.Decl{Name: "y", Version: 0, Value: &ssa.Constant{IsBool: true, BoolValue: true}},
		&ssa.Assert{Cond: &ssa.BinaryOp{
			Op:    "==",
			Left:  &ssa.Variable{Name: "x", Version: 0},
			Right: &ssa.Variable{Name: "y", Version: 0},
		}},
	}}
	_, err := smt.Encode(prog)
	require.Error(t, err)
}

func TestEncodeRejectsWhileReachingEncoder(t *testing.T) {
	prog := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.While{Cond: &ssa.Constant{IsBool: true, BoolValue: true}},
	}}
	_, err := smt.Encode(prog)
	require.Error(t, err)
}

func TestEncodePairPrefixesSecondProgramAndFindsCommonOutputs(t *testing.T) {
	tokens1 := lexer.NewScanner(`var x := 1; x := x + 1;`).ScanTokens()
	p1, err := parser.New(tokens1).Parse()
	require.NoError(t, err)
	ssa1, err := ssa.Build(p1)
	require.NoError(t, err)

	tokens2 := lexer.NewScanner(`var x := 2; x := x - 0;`).ScanTokens()
	p2, err := parser.New(tokens2).Parse()
	require.NoError(t, err)
	ssa2, err := ssa.Build(p2)
	require.NoError(t, err)

	enc, err := smt.EncodePair(ssa1, ssa2)
	require.NoError(t, err)
	require.Contains(t, enc.CommonOutputs, "x")
	require.Contains(t, enc.EquivalenceTerms["x"], "p2_x_")

	for _, d := range enc.Declarations2 {
		require.True(t, strings.HasPrefix(d.Name, "p2_"))
	}
}
