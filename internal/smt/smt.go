// Package smt translates loop-free SSA into SMT-LIB 2 text and a structured
// form internal/solver can recombine per query. Grounded on
// _examples/other_examples/0da108a7_lhaig-intent__internal-verify-smt.go.go
// for the strings.Builder/fmt.Sprintf encoding style, and on
// _examples/original_source/smt.py for exact statement/paired-program
// semantics (SPEC_FULL.md §4.5).
package smt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bverify/internal/diagnostics"
	"bverify/internal/ssa"
)

// Sort is the SMT sort a translated expression carries.
type Sort int

const (
	SortInt Sort = iota
	SortBool
)

// Name renders the sort's SMT-LIB identifier ("Int" or "Bool").
func (s Sort) Name() string {
	if s == SortBool {
		return "Bool"
	}
	return "Int"
}

// Declaration is one `declare-const` entry.
type Declaration struct {
	Name    string // base variable name, possibly p2_-prefixed
	Version int
	Sort    Sort
}

// Symbol renders the declared SMT-LIB identifier "name_version".
func (d Declaration) Symbol() string { return fmt.Sprintf("%s_%d", d.Name, d.Version) }

// Encoding is the background constraints Γ and obligation list O of
// single-program mode (spec.md §4.5), plus the full smt_text rendering.
type Encoding struct {
	Declarations []Declaration
	Constraints  []string // Γ, each one SMT-LIB assert body (no outer "(assert ...)")
	Obligations  []string // O, one per Assert statement; NOT part of Γ
	Text         string
}

// Encode translates a loop-free single-program SSA tree.
func Encode(prog *ssa.Program) (*Encoding, error) {
	enc := newEncoder("")
	if err := enc.walk(prog.Statements); err != nil {
		return nil, err
	}
	return enc.finish(), nil
}

// PairedEncoding is the result of encoding two programs for equivalence
// checking: each program's own Γ, plus the equivalence predicate terms over
// their common outputs (spec.md §4.5 paired-program mode).
type PairedEncoding struct {
	Declarations1, Declarations2 []Declaration
	Constraints1, Constraints2   []string
	CommonOutputs                []string          // base names, lexicographically sorted
	EquivalenceTerms             map[string]string // base name -> "(= sym1 sym2)"
	Text                         string
}

// EncodePair translates two loop-free SSA trees for equivalence checking.
// Program 2's identifiers get the `p2_` prefix (spec.md §4.5).
func EncodePair(prog1, prog2 *ssa.Program) (*PairedEncoding, error) {
	enc1 := newEncoder("")
	if err := enc1.walk(prog1.Statements); err != nil {
		return nil, err
	}
	enc2 := newEncoder("p2_")
	if err := enc2.walk(prog2.Statements); err != nil {
		return nil, err
	}
	sortDeclarations(enc1.declarations)
	sortDeclarations(enc2.declarations)

	outputs1 := outputHighestVersions(prog1.Statements)
	outputs2 := outputHighestVersions(prog2.Statements)

	var common []string
	for name := range outputs1 {
		if _, ok := outputs2[name]; ok {
			common = append(common, name)
		}
	}
	sort.Strings(common)

	terms := map[string]string{}
	for _, name := range common {
		sym1 := fmt.Sprintf("%s_%d", name, outputs1[name])
		sym2 := fmt.Sprintf("p2_%s_%d", name, outputs2[name])
		terms[name] = fmt.Sprintf("(= %s %s)", sym1, sym2)
	}

	var b strings.Builder
	b.WriteString(";;; Program 1 variables\n")
	writeDeclarations(&b, enc1.declarations)
	b.WriteString(";;; Program 2 variables\n")
	writeDeclarations(&b, enc2.declarations)
	b.WriteString(";;; Program 1 constraints\n")
	writeAsserts(&b, enc1.constraints)
	b.WriteString(";;; Program 2 constraints\n")
	writeAsserts(&b, enc2.constraints)
	b.WriteString(";;; Equivalence constraints\n")
	for _, name := range common {
		b.WriteString(fmt.Sprintf("(assert %s)\n", terms[name]))
	}
	b.WriteString("(check-sat)\n(get-model)\n")

	return &PairedEncoding{
		Declarations1: enc1.declarations, Declarations2: enc2.declarations,
		Constraints1: enc1.constraints, Constraints2: enc2.constraints,
		CommonOutputs: common, EquivalenceTerms: terms,
		Text: b.String(),
	}, nil
}

// outputHighestVersions returns, for every base name that appears as the
// LHS of a Decl, Assign, or Phi anywhere in stmts, the highest version
// number it was ever assigned ("output" per spec.md §4.5/§4.6). An If or
// While's own Phi field (the merge produced at its exit, not a bare
// statement inside Then/Else/Body) must be visited too — a variable whose
// final value comes only from an if/else merge would otherwise never
// appear as an output, exactly like the encoder's own walkPhis call
// (smt.go's encoder.stmt, *ssa.If case).
func outputHighestVersions(stmts []ssa.Stmt) map[string]int {
	out := map[string]int{}
	record := func(name string, version int) {
		if version > out[name] || !hasKey(out, name) {
			out[name] = version
		}
	}
	var walk func([]ssa.Stmt)
	walkPhis := func(phis []*ssa.Phi) {
		for _, phi := range phis {
			record(phi.Name, phi.Version)
		}
	}
	walk = func(in []ssa.Stmt) {
		for _, s := range in {
			switch n := s.(type) {
			case *ssa.Decl:
				record(n.Name, n.Version)
			case *ssa.Assign:
				record(n.Name, n.Version)
			case *ssa.Phi:
				record(n.Name, n.Version)
			case *ssa.If:
				walk(n.Then)
				walk(n.Else)
				walkPhis(n.Phi)
			case *ssa.While:
				walk(n.Body)
				walkPhis(n.Phi)
			}
		}
	}
	walk(stmts)
	return out
}

func hasKey(m map[string]int, k string) bool { _, ok := m[k]; return ok }

func writeDeclarations(b *strings.Builder, decls []Declaration) {
	for _, d := range decls {
		b.WriteString(fmt.Sprintf("(declare-const %s %s)\n", d.Symbol(), d.Sort.Name()))
	}
}

func writeAsserts(b *strings.Builder, constraints []string) {
	for _, c := range constraints {
		b.WriteString(fmt.Sprintf("(assert %s)\n", c))
	}
}

// sortDeclarations orders decls lexicographically on base name, then by
// ascending version (SPEC_FULL.md §4.6).
func sortDeclarations(decls []Declaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].Name != decls[j].Name {
			return decls[i].Name < decls[j].Name
		}
		return decls[i].Version < decls[j].Version
	})
}

// encoder walks one program's SSA tree, accumulating declarations,
// background constraints, and obligations.
type encoder struct {
	prefix       string
	sorts        map[string]Sort // "name_version" -> Sort, prefix already applied to the key's name part
	declarations []Declaration
	declared     map[string]bool
	constraints  []string
	obligations  []string
}

func newEncoder(prefix string) *encoder {
	return &encoder{prefix: prefix, sorts: map[string]Sort{}, declared: map[string]bool{}}
}

func (e *encoder) finish() *Encoding {
	sortDeclarations(e.declarations)
	var b strings.Builder
	writeDeclarations(&b, e.declarations)
	writeAsserts(&b, e.constraints)
	for _, o := range e.obligations {
		b.WriteString(fmt.Sprintf(";;; obligation: %s\n", o))
	}
	b.WriteString("(check-sat)\n(get-model)\n")
	return &Encoding{Declarations: e.declarations, Constraints: e.constraints, Obligations: e.obligations, Text: b.String()}
}

func (e *encoder) name(base string) string { return e.prefix + base }

func (e *encoder) declare(base string, version int, sort Sort) string {
	full := e.name(base)
	key := fmt.Sprintf("%s_%d", full, version)
	e.sorts[key] = sort
	if !e.declared[key] {
		e.declared[key] = true
		e.declarations = append(e.declarations, Declaration{Name: full, Version: version, Sort: sort})
	}
	return key
}

func (e *encoder) walk(stmts []ssa.Stmt) error {
	for _, s := range stmts {
		if err := e.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) stmt(s ssa.Stmt) error {
	switch n := s.(type) {
	case *ssa.Decl:
		return e.define(n.Name, n.Version, n.Value)
	case *ssa.Assign:
		return e.define(n.Name, n.Version, n.Value)

	case *ssa.Phi:
		var sorts []Sort
		var srcSyms []string
		for _, src := range n.Sources {
			srcSym := e.symbolFor(src.Name, src.Version)
			sort, ok := e.sorts[srcSym]
			if !ok {
				return &diagnostics.EncodingError{Msg: fmt.Sprintf("phi source %s has no known sort", srcSym)}
			}
			sorts = append(sorts, sort)
			srcSyms = append(srcSyms, srcSym)
		}
		for _, sort := range sorts[1:] {
			if sort != sorts[0] {
				return &diagnostics.SemanticError{Msg: fmt.Sprintf("phi for %s merges mismatched sorts", n.Name)}
			}
		}
		self := e.declare(n.Name, n.Version, sorts[0])
		var disjuncts []string
		for _, srcSym := range srcSyms {
			disjuncts = append(disjuncts, fmt.Sprintf("(= %s %s)", self, srcSym))
		}
		e.constraints = append(e.constraints, fmt.Sprintf("(or %s)", strings.Join(disjuncts, " ")))
		return nil

	case *ssa.Assert:
		smtStr, sort, err := e.encodeExpr(n.Cond)
		if err != nil {
			return err
		}
		if sort != SortBool {
			return &diagnostics.SemanticError{Msg: "assert condition is not boolean-valued"}
		}
		e.obligations = append(e.obligations, smtStr)
		return nil

	case *ssa.If:
		_, condSort, err := e.encodeExpr(n.Cond)
		if err != nil {
			return err
		}
		if condSort != SortBool {
			return &diagnostics.SemanticError{Msg: "if condition is not boolean-valued"}
		}
		// Every statement in Then, every statement in Else, and every Phi
		// in Φ translate unconditionally (Phi-by-disjunction soundness
		// note, spec.md §4.5/§9).
		if err := e.walk(n.Then); err != nil {
			return err
		}
		if err := e.walk(n.Else); err != nil {
			return err
		}
		return e.walkPhis(n.Phi)

	case *ssa.While:
		return &diagnostics.EncodingError{Msg: "encoder received a While node; loops must be unrolled first"}

	default:
		return &diagnostics.EncodingError{Msg: fmt.Sprintf("unsupported SSA statement: %T", s)}
	}
}

func (e *encoder) walkPhis(phis []*ssa.Phi) error {
	for _, phi := range phis {
		if err := e.stmt(phi); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) define(name string, version int, value ssa.Expr) error {
	smtStr, sort, err := e.encodeExpr(value)
	if err != nil {
		return err
	}
	self := e.declare(name, version, sort)
	e.constraints = append(e.constraints, fmt.Sprintf("(= %s %s)", self, smtStr))
	return nil
}

func (e *encoder) symbolFor(name string, version int) string {
	return fmt.Sprintf("%s_%d", e.name(name), version)
}

// encodeExpr translates one SSA expression, returning its SMT-LIB text and
// inferred sort. No silent int/bool coercion: a sort mismatch is a
// SemanticError (DESIGN.md Open Question 1).
func (e *encoder) encodeExpr(expr ssa.Expr) (string, Sort, error) {
	switch n := expr.(type) {
	case *ssa.Constant:
		if n.IsBool {
			return strconv.FormatBool(n.BoolValue), SortBool, nil
		}
		return strconv.FormatInt(n.IntValue, 10), SortInt, nil

	case *ssa.Variable:
		sym := e.symbolFor(n.Name, n.Version)
		sort, ok := e.sorts[sym]
		if !ok {
			return "", 0, &diagnostics.EncodingError{Msg: fmt.Sprintf("reference to undefined SSA variable %s", sym)}
		}
		return sym, sort, nil

	case *ssa.UnaryOp:
		operand, sort, err := e.encodeExpr(n.Expr)
		if err != nil {
			return "", 0, err
		}
		switch n.Op {
		case "-":
			if sort != SortInt {
				return "", 0, &diagnostics.SemanticError{Msg: "unary '-' requires an integer operand"}
			}
			return fmt.Sprintf("(- %s)", operand), SortInt, nil
		case "not":
			if sort != SortBool {
				return "", 0, &diagnostics.SemanticError{Msg: "'not' requires a boolean operand"}
			}
			return fmt.Sprintf("(not %s)", operand), SortBool, nil
		}
		return "", 0, &diagnostics.EncodingError{Msg: fmt.Sprintf("unknown unary operator %q", n.Op)}

	case *ssa.BinaryOp:
		return e.encodeBinary(n)

	default:
		return "", 0, &diagnostics.EncodingError{Msg: fmt.Sprintf("unsupported SSA expression: %T", expr)}
	}
}

func (e *encoder) encodeBinary(n *ssa.BinaryOp) (string, Sort, error) {
	left, lsort, err := e.encodeExpr(n.Left)
	if err != nil {
		return "", 0, err
	}
	right, rsort, err := e.encodeExpr(n.Right)
	if err != nil {
		return "", 0, err
	}

	switch n.Op {
	case "+", "-", "*":
		if lsort != SortInt || rsort != SortInt {
			return "", 0, &diagnostics.SemanticError{Msg: fmt.Sprintf("operator %q requires integer operands", n.Op)}
		}
		smtOp := map[string]string{"+": "+", "-": "-", "*": "*"}[n.Op]
		return fmt.Sprintf("(%s %s %s)", smtOp, left, right), SortInt, nil

	case "/":
		if lsort != SortInt || rsort != SortInt {
			return "", 0, &diagnostics.SemanticError{Msg: "'/' requires integer operands"}
		}
		return fmt.Sprintf("(div %s %s)", left, right), SortInt, nil

	case "%":
		if lsort != SortInt || rsort != SortInt {
			return "", 0, &diagnostics.SemanticError{Msg: "'%%' requires integer operands"}
		}
		return fmt.Sprintf("(mod %s %s)", left, right), SortInt, nil

	case "==", "!=":
		if lsort != rsort {
			return "", 0, &diagnostics.SemanticError{Msg: "'==' / '!=' require operands of the same sort"}
		}
		if n.Op == "==" {
			return fmt.Sprintf("(= %s %s)", left, right), SortBool, nil
		}
		return fmt.Sprintf("(not (= %s %s))", left, right), SortBool, nil

	case "<", "<=", ">", ">=":
		if lsort != SortInt || rsort != SortInt {
			return "", 0, &diagnostics.SemanticError{Msg: fmt.Sprintf("operator %q requires integer operands", n.Op)}
		}
		return fmt.Sprintf("(%s %s %s)", n.Op, left, right), SortBool, nil

	case "and", "or":
		if lsort != SortBool || rsort != SortBool {
			return "", 0, &diagnostics.SemanticError{Msg: fmt.Sprintf("operator %q requires boolean operands", n.Op)}
		}
		return fmt.Sprintf("(%s %s %s)", n.Op, left, right), SortBool, nil
	}

	return "", 0, &diagnostics.EncodingError{Msg: fmt.Sprintf("unknown binary operator %q", n.Op)}
}
