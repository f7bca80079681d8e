package solver

import (
	"strings"
	"testing"

	"bverify/internal/smt"
)

func TestDeclareAndAssertRendersDeclarationsThenAsserts(t *testing.T) {
	decls := []smt.Declaration{{Name: "x", Version: 0, Sort: smt.SortInt}}
	text := declareAndAssert(decls, []string{"(= x_0 1)"})
	if !strings.Contains(text, "(declare-const x_0 Int)") {
		t.Fatalf("missing declaration: %s", text)
	}
	if !strings.Contains(text, "(assert (= x_0 1))") {
		t.Fatalf("missing assert: %s", text)
	}
}

func TestBlockingClauseExcludesPriorValues(t *testing.T) {
	decls := []smt.Declaration{{Name: "x", Version: 0, Sort: smt.SortInt}}
	prior := Model{"x": int64(10)}
	clause := blockingClause(decls, prior)
	if !strings.Contains(clause, "(not (= x_0 10))") {
		t.Fatalf("got %s", clause)
	}
}

func TestBlockingClauseWithNoMatchingPriorIsUnsatisfiableFalse(t *testing.T) {
	decls := []smt.Declaration{{Name: "x", Version: 0, Sort: smt.SortInt}}
	clause := blockingClause(decls, Model{})
	if clause != "false" {
		t.Fatalf("got %s", clause)
	}
}
