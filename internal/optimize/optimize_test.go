package optimize

import (
	"testing"

	"bverify/internal/lexer"
	"bverify/internal/parser"
	"bverify/internal/ssa"
	"bverify/internal/unroll"
	"github.com/stretchr/testify/require"
)

func buildUnrolled(t *testing.T, src string, depth int) *ssa.Program {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	ssaProg, err := ssa.Build(prog)
	require.NoError(t, err)
	return unroll.Program(ssaProg, depth)
}

func TestConstantFoldingDropsDeadBranch(t *testing.T) {
	p := buildUnrolled(t, `
		var x := 5;
		if (1 < 2) { var y := x + 1; } else { var y := x - 1; }
		assert y == 6;
	`, 3)

	out := (&ConstProp{}).Apply(p)
	for _, s := range out.Statements {
		if _, ok := s.(*ssa.If); ok {
			t.Fatalf("expected the If to be folded away, found: %s", s)
		}
	}
}

func TestConstantFoldingPreservesDivByZero(t *testing.T) {
	p := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.Decl{Name: "z", Version: 0, Value: &ssa.BinaryOp{
			Op: "/", Left: &ssa.Constant{IntValue: 10}, Right: &ssa.Constant{IntValue: 0},
		}},
	}}
	out := (&ConstProp{}).Apply(p)
	decl := out.Statements[0].(*ssa.Decl)
	_, isBinary := decl.Value.(*ssa.BinaryOp)
	require.True(t, isBinary, "division by a literal zero must not be folded")
}

func TestDeadCodeEliminationDropsUnusedDefinition(t *testing.T) {
	p := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.Decl{Name: "unused", Version: 0, Value: &ssa.Constant{IntValue: 99}},
		&ssa.Decl{Name: "x", Version: 0, Value: &ssa.Constant{IntValue: 1}},
		&ssa.Assert{Cond: &ssa.BinaryOp{Op: "==", Left: &ssa.Variable{Name: "x", Version: 0}, Right: &ssa.Constant{IntValue: 1}}},
	}}
	out := (&DCE{}).Apply(p)
	require.Len(t, out.Statements, 2)
}

func TestCommonSubexpressionEliminationReusesVariable(t *testing.T) {
	p := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.Decl{Name: "a", Version: 0, Value: &ssa.BinaryOp{Op: "+", Left: &ssa.Variable{Name: "x", Version: 0}, Right: &ssa.Variable{Name: "y", Version: 0}}},
		&ssa.Decl{Name: "b", Version: 0, Value: &ssa.BinaryOp{Op: "+", Left: &ssa.Variable{Name: "x", Version: 0}, Right: &ssa.Variable{Name: "y", Version: 0}}},
	}}
	out := (&CSE{}).Apply(p)
	second := out.Statements[1].(*ssa.Decl)
	ref, ok := second.Value.(*ssa.Variable)
	require.True(t, ok, "second occurrence should be replaced by a variable reference")
	require.Equal(t, "a", ref.Name)
}

func TestCSEDoesNotExportAcrossBranches(t *testing.T) {
	p := &ssa.Program{Statements: []ssa.Stmt{
		&ssa.If{
			Cond: &ssa.Constant{IsBool: true, BoolValue: true},
			Then: []ssa.Stmt{&ssa.Decl{Name: "a", Version: 0, Value: &ssa.BinaryOp{Op: "+", Left: &ssa.Variable{Name: "x", Version: 0}, Right: &ssa.Variable{Name: "y", Version: 0}}}},
		},
		&ssa.Decl{Name: "b", Version: 0, Value: &ssa.BinaryOp{Op: "+", Left: &ssa.Variable{Name: "x", Version: 0}, Right: &ssa.Variable{Name: "y", Version: 0}}},
	}}
	out := (&CSE{}).Apply(p)
	decl := out.Statements[1].(*ssa.Decl)
	_, stillBinary := decl.Value.(*ssa.BinaryOp)
	require.True(t, stillBinary, "a branch-local CSE entry must not be visible outside the branch")
}

func TestPipelineFixedOrderRegardlessOfSelectionOrder(t *testing.T) {
	selectedReversed := []Name{CommonSubexpressionElimination, DeadCodeElimination, ConstantPropagation}
	pipeline := NewPipeline(selectedReversed)
	require.Equal(t, ConstantPropagation, pipeline.passes[0].Name())
	require.Equal(t, DeadCodeElimination, pipeline.passes[1].Name())
	require.Equal(t, CommonSubexpressionElimination, pipeline.passes[2].Name())
}
