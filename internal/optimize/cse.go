package optimize

import (
	"fmt"

	"bverify/internal/ssa"
)

// CSE replaces a repeated binary/unary subexpression with a reference to
// the SSA variable already holding it. Grounded on optimizer.py's
// common_subexpression_elimination: a canonical structural string keys a
// map to the defining variable; Decl/Assign statements register new entries
// in the table of the scope they appear in, and a branch only sees a *copy*
// of the table, so entries discovered inside an If/While body never leak to
// the enclosing scope (SPEC_FULL.md §4.4, scope-safe).
type CSE struct{}

func (*CSE) Name() Name          { return CommonSubexpressionElimination }
func (*CSE) Description() string { return "replaces a repeated subexpression with its already-computed value" }

func (*CSE) Apply(p *ssa.Program) *ssa.Program {
	st := &cseState{table: map[string]*ssa.Variable{}}
	return &ssa.Program{Statements: st.stmts(p.Statements), VarVersion: p.VarVersion}
}

type cseState struct {
	table map[string]*ssa.Variable
}

func cloneExprTable(m map[string]*ssa.Variable) map[string]*ssa.Variable {
	c := make(map[string]*ssa.Variable, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (st *cseState) stmts(in []ssa.Stmt) []ssa.Stmt {
	var out []ssa.Stmt
	for _, s := range in {
		out = append(out, st.stmt(s))
	}
	return out
}

func (st *cseState) stmt(s ssa.Stmt) ssa.Stmt {
	switch n := s.(type) {
	case *ssa.Decl:
		val := st.expr(n.Value)
		st.register(val, n.Name, n.Version)
		return &ssa.Decl{Name: n.Name, Version: n.Version, Value: val}

	case *ssa.Assign:
		val := st.expr(n.Value)
		st.register(val, n.Name, n.Version)
		return &ssa.Assign{Name: n.Name, Version: n.Version, Value: val}

	case *ssa.Assert:
		return &ssa.Assert{Cond: st.expr(n.Cond)}

	case *ssa.If:
		cond := st.expr(n.Cond)
		thenState := &cseState{table: cloneExprTable(st.table)}
		elseState := &cseState{table: cloneExprTable(st.table)}
		return &ssa.If{Cond: cond, Then: thenState.stmts(n.Then), Else: elseState.stmts(n.Else), Phi: n.Phi}

	case *ssa.While:
		cond := st.expr(n.Cond)
		bodyState := &cseState{table: cloneExprTable(st.table)}
		return &ssa.While{Cond: cond, Body: bodyState.stmts(n.Body), Phi: n.Phi}

	default:
		return s
	}
}

func (st *cseState) register(val ssa.Expr, name string, version int) {
	switch val.(type) {
	case *ssa.BinaryOp, *ssa.UnaryOp:
		st.table[canonical(val)] = &ssa.Variable{Name: name, Version: version}
	}
}

func (st *cseState) expr(e ssa.Expr) ssa.Expr {
	switch n := e.(type) {
	case *ssa.UnaryOp:
		operand := st.expr(n.Expr)
		reduced := ssa.Expr(&ssa.UnaryOp{Op: n.Op, Expr: operand})
		if v, ok := st.table[canonical(reduced)]; ok {
			return v
		}
		return reduced

	case *ssa.BinaryOp:
		left := st.expr(n.Left)
		right := st.expr(n.Right)
		reduced := ssa.Expr(&ssa.BinaryOp{Op: n.Op, Left: left, Right: right})
		if v, ok := st.table[canonical(reduced)]; ok {
			return v
		}
		return reduced

	default:
		return e
	}
}

// canonical produces expr_to_string's structural key: unique per distinct
// expression shape, identical for alpha-equivalent (already-substituted)
// subexpressions.
func canonical(e ssa.Expr) string {
	switch n := e.(type) {
	case *ssa.Constant:
		if n.IsBool {
			return fmt.Sprintf("%t", n.BoolValue)
		}
		return fmt.Sprintf("%d", n.IntValue)
	case *ssa.Variable:
		return fmt.Sprintf("%s_%d", n.Name, n.Version)
	case *ssa.UnaryOp:
		return fmt.Sprintf("%s(%s)", n.Op, canonical(n.Expr))
	case *ssa.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", canonical(n.Left), n.Op, canonical(n.Right))
	default:
		return ""
	}
}
