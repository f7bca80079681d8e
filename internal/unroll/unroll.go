// Package unroll bounds every SSA While loop to a fixed-depth chain of
// If-statements, grounded on
// _examples/original_source/ssa.py's unroll_loops/unroll_statements,
// disambiguated to SPEC_FULL.md §4.4's literal nesting (the recursive
// continuation is the last statement of the generated If's true branch,
// not a sibling statement appended after it — see DESIGN.md Open
// Question 4).
//
// A loop body is SSA-converted exactly once, by internal/ssa's builder,
// so its statements carry one frozen set of (name, version) symbols.
// Unrolling re-executes that body once per iteration; reusing the same
// symbols for every copy would make every iteration's "z := z+x" alias
// the very same z_1, so iteration 3's read of z would silently pick up
// iteration 1's definition instead of iteration 2's output. Every
// unrolled copy is therefore re-versioned through a fresh allocator
// seeded from prog.VarVersion, chaining one iteration's exit versions
// into the next iteration's entry versions (see DESIGN.md).
package unroll

import (
	"sort"

	"bverify/internal/ssa"
)

// Program rewrites every While in prog to a depth-bounded If-chain. depth
// is the configured bound ([1,10] for Config.UnrollDepth, spec.md §6); it
// is not range-checked here, and at depth 0 each While is replaced directly
// by its Assert(not cond) termination obligation. The result contains no
// While node (testable property #2).
func Program(prog *ssa.Program, depth int) *ssa.Program {
	alloc := cloneVersions(prog.VarVersion)
	stmts := unrollStmts(prog.Statements, depth, alloc)
	return &ssa.Program{Statements: stmts, VarVersion: alloc}
}

func cloneVersions(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// fresh allocates the next never-before-used version for name, from a
// single allocator shared across the whole program so that no two
// unrolled copies (of this loop or any other) ever collide.
func fresh(alloc map[string]int, name string) int {
	v := alloc[name] + 1
	alloc[name] = v
	return v
}

func unrollStmts(stmts []ssa.Stmt, depth int, alloc map[string]int) []ssa.Stmt {
	out := make([]ssa.Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *ssa.While:
			out = append(out, unrollWhile(n, depth, alloc)...)
		case *ssa.If:
			// If branches are unrolled recursively at the SAME depth: they
			// are straight-line/nested-if bodies, not loop bodies, so the
			// budget does not decrease across an If (SPEC_FULL.md §4.4).
			// The If itself is not duplicated, so its own symbols need no
			// renaming here — only a While's body is ever re-executed.
			out = append(out, &ssa.If{
				Cond: n.Cond,
				Then: unrollStmts(n.Then, depth, alloc),
				Else: unrollStmts(n.Else, depth, alloc),
				Phi:  n.Phi,
			})
		default:
			out = append(out, s)
		}
	}
	return out
}

// unrollWhile rewrites one While node into a depth-bounded If-chain, each
// level re-versioned from the previous level's output, then binds the
// original header-Phi symbols (still referenced by any statement after
// the loop) to the final chained values.
func unrollWhile(w *ssa.While, depth int, alloc map[string]int) []ssa.Stmt {
	entry := map[string]int{}
	for _, phi := range w.Phi {
		if len(phi.Sources) > 0 {
			entry[phi.Name] = phi.Sources[0].Version
		}
	}

	chain, exit := unrollLevel(w, depth, entry, alloc)

	out := []ssa.Stmt{chain}
	for _, phi := range w.Phi {
		out = append(out, &ssa.Assign{
			Name:    phi.Name,
			Version: phi.Version,
			Value:   &ssa.Variable{Name: phi.Name, Version: exit[phi.Name]},
		})
	}
	return out
}

// unrollLevel produces one level of the bounded If-chain: at depth<=0, the
// base-case termination obligation; otherwise one fresh instantiation of
// the body followed by the next level down, merged with entry via a
// freshly-versioned Phi (SPEC_FULL.md §4.4).
func unrollLevel(w *ssa.While, depth int, entry map[string]int, alloc map[string]int) (ssa.Stmt, map[string]int) {
	cond := substituteExpr(w.Cond, entry)

	if depth <= 0 {
		return &ssa.Assert{Cond: &ssa.UnaryOp{Op: "not", Expr: cond}}, entry
	}

	// The body and the recursive continuation share the same decremented
	// budget: a nested While found inside this body gets exactly the
	// depth the recursive unroll(w, depth-1) call below also uses
	// (SPEC_FULL.md §4.4).
	bodyStmts, bodyExit := instantiateBody(w.Body, entry, depth-1, alloc)
	nested, nestedExit := unrollLevel(w, depth-1, bodyExit, alloc)

	then := append(bodyStmts, nested)

	var names []string
	for _, phi := range w.Phi {
		names = append(names, phi.Name)
	}
	sort.Strings(names)

	var phis []*ssa.Phi
	exit := map[string]int{}
	for _, name := range names {
		v := fresh(alloc, name)
		phis = append(phis, &ssa.Phi{
			Name: name, Version: v,
			Sources: []ssa.VersionRef{
				{Name: name, Version: entry[name]},
				{Name: name, Version: nestedExit[name]},
			},
		})
		exit[name] = v
	}

	return &ssa.If{Cond: cond, Then: then, Else: nil, Phi: phis}, exit
}

// instantiateBody re-versions one pass of a loop body: reads of
// loop-carried names start from entry, and every name the body defines
// (Decl, Assign, or a nested If's merge Phi) gets a fresh version,
// threaded forward exactly as internal/ssa/builder.go's convertStmts
// threads its own versions map.
func instantiateBody(body []ssa.Stmt, entry map[string]int, depth int, alloc map[string]int) ([]ssa.Stmt, map[string]int) {
	cur := cloneVersions(entry)
	out := instantiateStmts(body, cur, depth, alloc)
	return out, cur
}

func instantiateStmts(stmts []ssa.Stmt, cur map[string]int, depth int, alloc map[string]int) []ssa.Stmt {
	out := make([]ssa.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, instantiateStmt(s, cur, depth, alloc)...)
	}
	return out
}

func instantiateStmt(s ssa.Stmt, cur map[string]int, depth int, alloc map[string]int) []ssa.Stmt {
	switch n := s.(type) {
	case *ssa.Decl:
		val := substituteExpr(n.Value, cur)
		v := fresh(alloc, n.Name)
		cur[n.Name] = v
		return []ssa.Stmt{&ssa.Decl{Name: n.Name, Version: v, Value: val}}

	case *ssa.Assign:
		val := substituteExpr(n.Value, cur)
		v := fresh(alloc, n.Name)
		cur[n.Name] = v
		return []ssa.Stmt{&ssa.Assign{Name: n.Name, Version: v, Value: val}}

	case *ssa.Assert:
		return []ssa.Stmt{&ssa.Assert{Cond: substituteExpr(n.Cond, cur)}}

	case *ssa.If:
		preIf := cloneVersions(cur)
		thenStmts := instantiateStmts(n.Then, cur, depth, alloc)
		thenExit := cloneVersions(cur)

		for k := range cur {
			delete(cur, k)
		}
		for k, v := range preIf {
			cur[k] = v
		}
		elseStmts := instantiateStmts(n.Else, cur, depth, alloc)
		elseExit := cloneVersions(cur)

		var phis []*ssa.Phi
		for _, phi := range n.Phi {
			name := phi.Name
			v := fresh(alloc, name)
			phis = append(phis, &ssa.Phi{
				Name: name, Version: v,
				Sources: []ssa.VersionRef{
					{Name: name, Version: thenExit[name]},
					{Name: name, Version: elseExit[name]},
				},
			})
			cur[name] = v
		}

		return []ssa.Stmt{&ssa.If{
			Cond: substituteExpr(n.Cond, preIf),
			Then: thenStmts, Else: elseStmts, Phi: phis,
		}}

	case *ssa.While:
		return unrollNestedWhile(n, cur, depth, alloc)

	default:
		return []ssa.Stmt{s}
	}
}

// unrollNestedWhile handles a While found inside another While's body. It
// reuses the same chain-building logic as the top-level loop, at the same
// budget the enclosing body was instantiated with, reading its entry
// versions from (and writing its exit versions back into) the enclosing
// body's live environment instead of a dedicated phi lookup.
func unrollNestedWhile(w *ssa.While, cur map[string]int, depth int, alloc map[string]int) []ssa.Stmt {
	entry := map[string]int{}
	for _, phi := range w.Phi {
		if v, ok := cur[phi.Name]; ok {
			entry[phi.Name] = v
		} else if len(phi.Sources) > 0 {
			entry[phi.Name] = phi.Sources[0].Version
		}
	}

	chain, exit := unrollLevel(w, depth, entry, alloc)

	out := []ssa.Stmt{chain}
	for _, phi := range w.Phi {
		v := exit[phi.Name]
		cur[phi.Name] = v
		out = append(out, &ssa.Assign{
			Name: phi.Name, Version: phi.Version,
			Value: &ssa.Variable{Name: phi.Name, Version: v},
		})
	}
	return out
}

// substituteExpr replaces every Variable reference to a loop-carried name
// with its current version from env, leaving anything untracked (a
// variable the loop never writes) unchanged.
func substituteExpr(e ssa.Expr, env map[string]int) ssa.Expr {
	switch n := e.(type) {
	case *ssa.Variable:
		if v, ok := env[n.Name]; ok {
			return &ssa.Variable{Name: n.Name, Version: v}
		}
		return n
	case *ssa.UnaryOp:
		return &ssa.UnaryOp{Op: n.Op, Expr: substituteExpr(n.Expr, env)}
	case *ssa.BinaryOp:
		return &ssa.BinaryOp{Op: n.Op, Left: substituteExpr(n.Left, env), Right: substituteExpr(n.Right, env)}
	default:
		return e
	}
}
