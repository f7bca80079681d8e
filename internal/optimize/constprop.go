package optimize

import (
	"fmt"

	"bverify/internal/ssa"
)

// ConstProp folds literal-valued definitions and eliminates statically
// decidable If/While branches. Grounded on
// _examples/original_source/optimizer.py's constant_propagation /
// propagate_in_expr / propagate_in_stmt.
type ConstProp struct{}

func (*ConstProp) Name() Name        { return ConstantPropagation }
func (*ConstProp) Description() string {
	return "folds constant-valued definitions and removes statically decided branches"
}

func (*ConstProp) Apply(p *ssa.Program) *ssa.Program {
	st := &constPropState{consts: map[string]litValue{}}
	return &ssa.Program{Statements: st.stmts(p.Statements), VarVersion: p.VarVersion}
}

// litValue is either an integer or a boolean literal; Constant itself plays
// this role in the SSA tree, litValue is the bookkeeping copy kept in the
// consts table keyed by "name_version".
type litValue struct {
	isBool    bool
	boolValue bool
	intValue  int64
}

func (v litValue) toConstant() *ssa.Constant {
	if v.isBool {
		return &ssa.Constant{IsBool: true, BoolValue: v.boolValue}
	}
	return &ssa.Constant{IntValue: v.intValue}
}

func fromConstant(c *ssa.Constant) litValue {
	if c.IsBool {
		return litValue{isBool: true, boolValue: c.BoolValue}
	}
	return litValue{intValue: c.IntValue}
}

type constPropState struct {
	consts map[string]litValue
}

func key(name string, version int) string { return fmt.Sprintf("%s_%d", name, version) }

func (st *constPropState) stmts(in []ssa.Stmt) []ssa.Stmt {
	var out []ssa.Stmt
	for _, s := range in {
		out = append(out, st.stmt(s)...)
	}
	return out
}

func (st *constPropState) stmt(s ssa.Stmt) []ssa.Stmt {
	switch n := s.(type) {
	case *ssa.Decl:
		val := st.expr(n.Value)
		if c, ok := val.(*ssa.Constant); ok {
			st.consts[key(n.Name, n.Version)] = fromConstant(c)
		}
		return []ssa.Stmt{&ssa.Decl{Name: n.Name, Version: n.Version, Value: val}}

	case *ssa.Assign:
		val := st.expr(n.Value)
		if c, ok := val.(*ssa.Constant); ok {
			st.consts[key(n.Name, n.Version)] = fromConstant(c)
		}
		return []ssa.Stmt{&ssa.Assign{Name: n.Name, Version: n.Version, Value: val}}

	case *ssa.Phi:
		// Phi nodes are left intact: folding them would need
		// interprocedural knowledge the pass does not keep
		// (optimizer.py, same rationale).
		return []ssa.Stmt{n}

	case *ssa.Assert:
		return []ssa.Stmt{&ssa.Assert{Cond: st.expr(n.Cond)}}

	case *ssa.If:
		cond := st.expr(n.Cond)
		if c, ok := cond.(*ssa.Constant); ok && c.IsBool {
			if c.BoolValue {
				return st.stmts(n.Then)
			}
			if len(n.Else) > 0 {
				return st.stmts(n.Else)
			}
			return nil
		}
		return []ssa.Stmt{&ssa.If{Cond: cond, Then: st.stmts(n.Then), Else: st.stmts(n.Else), Phi: n.Phi}}

	case *ssa.While:
		cond := st.expr(n.Cond)
		if c, ok := cond.(*ssa.Constant); ok && c.IsBool && !c.BoolValue {
			return nil
		}
		return []ssa.Stmt{&ssa.While{Cond: cond, Body: st.stmts(n.Body), Phi: n.Phi}}

	default:
		return []ssa.Stmt{s}
	}
}

func (st *constPropState) expr(e ssa.Expr) ssa.Expr {
	switch n := e.(type) {
	case *ssa.Constant:
		return n

	case *ssa.Variable:
		if v, ok := st.consts[key(n.Name, n.Version)]; ok {
			return v.toConstant()
		}
		return n

	case *ssa.UnaryOp:
		operand := st.expr(n.Expr)
		if c, ok := operand.(*ssa.Constant); ok {
			if folded, ok := foldUnary(n.Op, c); ok {
				return folded
			}
		}
		return &ssa.UnaryOp{Op: n.Op, Expr: operand}

	case *ssa.BinaryOp:
		left := st.expr(n.Left)
		right := st.expr(n.Right)
		lc, lok := left.(*ssa.Constant)
		rc, rok := right.(*ssa.Constant)
		if lok && rok {
			if folded, ok := foldBinary(n.Op, lc, rc); ok {
				return folded
			}
		}
		return &ssa.BinaryOp{Op: n.Op, Left: left, Right: right}

	default:
		return e
	}
}

func foldUnary(op string, c *ssa.Constant) (*ssa.Constant, bool) {
	switch op {
	case "-":
		if c.IsBool {
			return nil, false
		}
		return &ssa.Constant{IntValue: -c.IntValue}, true
	case "not":
		if !c.IsBool {
			return nil, false
		}
		return &ssa.Constant{IsBool: true, BoolValue: !c.BoolValue}, true
	}
	return nil, false
}

// foldBinary folds a binary operator over two literal operands per
// SPEC_FULL.md §4.4: unbounded-integer arithmetic, '/' and '%' fold only
// when the divisor is non-zero (left for the solver otherwise), comparisons
// and boolean connectives fold normally.
func foldBinary(op string, l, r *ssa.Constant) (*ssa.Constant, bool) {
	switch op {
	case "+", "-", "*":
		if l.IsBool || r.IsBool {
			return nil, false
		}
		switch op {
		case "+":
			return &ssa.Constant{IntValue: l.IntValue + r.IntValue}, true
		case "-":
			return &ssa.Constant{IntValue: l.IntValue - r.IntValue}, true
		case "*":
			return &ssa.Constant{IntValue: l.IntValue * r.IntValue}, true
		}
	case "/":
		if l.IsBool || r.IsBool || r.IntValue == 0 {
			return nil, false
		}
		return &ssa.Constant{IntValue: l.IntValue / r.IntValue}, true
	case "%":
		if l.IsBool || r.IsBool || r.IntValue == 0 {
			return nil, false
		}
		return &ssa.Constant{IntValue: l.IntValue % r.IntValue}, true
	case "==", "!=", "<", "<=", ">", ">=":
		if l.IsBool != r.IsBool {
			return nil, false
		}
		var res bool
		if l.IsBool {
			res = compareBool(op, l.BoolValue, r.BoolValue)
		} else {
			res = compareInt(op, l.IntValue, r.IntValue)
		}
		return &ssa.Constant{IsBool: true, BoolValue: res}, true
	case "and", "or":
		if !l.IsBool || !r.IsBool {
			return nil, false
		}
		if op == "and" {
			return &ssa.Constant{IsBool: true, BoolValue: l.BoolValue && r.BoolValue}, true
		}
		return &ssa.Constant{IsBool: true, BoolValue: l.BoolValue || r.BoolValue}, true
	}
	return nil, false
}

func compareInt(op string, a, b int64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareBool(op string, a, b bool) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}
