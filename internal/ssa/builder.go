package ssa

import (
	"fmt"
	"sort"

	"bverify/internal/ast"
	"bverify/internal/diagnostics"
)

// Build converts a parsed Program into SSA form. Grounded on
// _examples/original_source/ssa.py's convert_to_ssa: a version map closed
// over by convertExpr/convertStmt, the exact If-merge and While-header
// Phi-placement algorithms described in SPEC_FULL.md §4.3.
func Build(prog *ast.Program) (*Program, error) {
	b := &builder{versions: map[string]int{}}
	stmts, err := b.convertStmts(prog.Statements)
	if err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, VarVersion: b.versions}, nil
}

type builder struct {
	versions map[string]int
}

func cloneMap(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// getVersion returns the current SSA version of name, or a SemanticError if
// name has never been declared on this path.
func (b *builder) getVersion(name string) (int, error) {
	v, ok := b.versions[name]
	if !ok {
		return 0, &diagnostics.SemanticError{Msg: fmt.Sprintf("use of undeclared variable %q", name)}
	}
	return v, nil
}

// increment allocates the next version for name, starting at 0 on first
// use — every write (Decl, Assign, or generated Phi) goes through this.
func (b *builder) increment(name string) int {
	v, ok := b.versions[name]
	if !ok {
		b.versions[name] = 0
		return 0
	}
	b.versions[name] = v + 1
	return v + 1
}

func (b *builder) convertStmts(stmts []ast.Stmt) ([]Stmt, error) {
	var out []Stmt
	for _, s := range stmts {
		converted, err := b.convertStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

// convertStmt returns a slice because ForStmt desugars into two statements
// (init, then a synthesized While) — SPEC_FULL.md §4.3.
func (b *builder) convertStmt(s ast.Stmt) ([]Stmt, error) {
	switch n := s.(type) {
	case *ast.VarDecl:
		val, err := b.convertExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v := b.increment(n.Name)
		return []Stmt{&Decl{Name: n.Name, Version: v, Value: val}}, nil

	case *ast.Assignment:
		val, err := b.convertExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v := b.increment(n.Name)
		return []Stmt{&Assign{Name: n.Name, Version: v, Value: val}}, nil

	case *ast.AssertStmt:
		cond, err := b.convertExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		return []Stmt{&Assert{Cond: cond}}, nil

	case *ast.IfStmt:
		stmt, err := b.convertIf(n)
		if err != nil {
			return nil, err
		}
		return []Stmt{stmt}, nil

	case *ast.WhileStmt:
		stmt, err := b.convertWhile(n.Condition, n.Body)
		if err != nil {
			return nil, err
		}
		return []Stmt{stmt}, nil

	case *ast.ForStmt:
		var out []Stmt
		if n.Init != nil {
			initStmts, err := b.convertStmt(n.Init)
			if err != nil {
				return nil, err
			}
			out = append(out, initStmts...)
		}
		body := append(append([]ast.Stmt{}, n.Body...), n.Update)
		whileStmt, err := b.convertWhile(n.Condition, body)
		if err != nil {
			return nil, err
		}
		return append(out, whileStmt), nil

	default:
		return nil, &diagnostics.SemanticError{Msg: fmt.Sprintf("unsupported statement: %T", s)}
	}
}

// convertIf implements the snapshot/restore merge algorithm of
// SPEC_FULL.md §4.3: preV -> true branch -> trueV -> restore preV -> false
// branch -> falseV -> Phi every variable whose trueV/falseV versions
// differ, in lexicographic order.
//
// A variable declared fresh in one or both branches (not present in preV
// at all, e.g. `if(c){var y:=..}else{var y:=..}`) is still a Phi
// candidate: restoring to preV before the false branch only resets
// variables preV already knows about, so a name the true branch just
// introduced keeps its allocated version counter instead of restarting at
// 0 — otherwise both branches would independently declare the same
// "y_0" with conflicting defining expressions.
func (b *builder) convertIf(n *ast.IfStmt) (*If, error) {
	cond, err := b.convertExpr(n.Condition)
	if err != nil {
		return nil, err
	}

	preV := cloneMap(b.versions)
	thenStmts, err := b.convertStmts(n.Then)
	if err != nil {
		return nil, err
	}
	trueV := cloneMap(b.versions)

	restored := cloneMap(preV)
	for name, v := range trueV {
		if _, ok := preV[name]; !ok {
			restored[name] = v
		}
	}
	b.versions = restored

	var elseStmts []Stmt
	if n.Else != nil {
		elseStmts, err = b.convertStmts(n.Else)
		if err != nil {
			return nil, err
		}
	}
	falseV := cloneMap(b.versions)

	names := map[string]bool{}
	for name := range preV {
		names[name] = true
	}
	for name := range trueV {
		names[name] = true
	}
	for name := range falseV {
		names[name] = true
	}

	branchVersion := func(m map[string]int, name string) int {
		if v, ok := m[name]; ok {
			return v
		}
		return preV[name]
	}

	var sorted []string
	for name := range names {
		if branchVersion(trueV, name) != branchVersion(falseV, name) {
			sorted = append(sorted, name)
		}
	}
	sort.Strings(sorted)

	var phis []*Phi
	for _, name := range sorted {
		v := b.increment(name)
		phis = append(phis, &Phi{
			Name: name, Version: v,
			Sources: []VersionRef{
				{Name: name, Version: branchVersion(trueV, name)},
				{Name: name, Version: branchVersion(falseV, name)},
			},
		})
	}

	return &If{Cond: cond, Then: thenStmts, Else: elseStmts, Phi: phis}, nil
}

// convertWhile implements the header-Phi algorithm of SPEC_FULL.md §4.3:
// the body is converted exactly once, using the pre-loop version map; any
// variable the body touches gets a fresh header version with Phi sources
// [(name, preV), (name, postV)]. Fixed-point semantics only emerge after
// unrolling (internal/unroll).
func (b *builder) convertWhile(cond ast.Expr, body []ast.Stmt) (*While, error) {
	preV := cloneMap(b.versions)
	condExpr, err := b.convertExpr(cond)
	if err != nil {
		return nil, err
	}

	bodyStmts, err := b.convertStmts(body)
	if err != nil {
		return nil, err
	}
	postV := cloneMap(b.versions)

	var names []string
	for name := range preV {
		if postV[name] != preV[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var phis []*Phi
	for _, name := range names {
		v := b.increment(name)
		phis = append(phis, &Phi{
			Name: name, Version: v,
			Sources: []VersionRef{
				{Name: name, Version: preV[name]},
				{Name: name, Version: postV[name]},
			},
		})
	}

	return &While{Cond: condExpr, Body: bodyStmts, Phi: phis}, nil
}

func (b *builder) convertExpr(e ast.Expr) (Expr, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		if n.HasFraction {
			return nil, &diagnostics.EncodingError{Msg: fmt.Sprintf("floating-point literal %q is not supported", n.Raw)}
		}
		return &Constant{IntValue: n.Value}, nil

	case *ast.VarRef:
		v, err := b.getVersion(n.Name)
		if err != nil {
			return nil, err
		}
		return &Variable{Name: n.Name, Version: v}, nil

	case *ast.UnaryExpr:
		operand, err := b.convertExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: n.Op, Expr: operand}, nil

	case *ast.BinaryExpr:
		left, err := b.convertExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.convertExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: n.Op, Left: left, Right: right}, nil

	default:
		return nil, &diagnostics.EncodingError{Msg: fmt.Sprintf("unsupported expression: %T", e)}
	}
}
