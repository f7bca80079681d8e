package solver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bverify/internal/smt"
)

var equivTermRE = regexp.MustCompile(`\(= (\S+) (\S+)\)`)

func declareAndAssert(decls []smt.Declaration, constraints []string) string {
	var b strings.Builder
	for _, d := range decls {
		b.WriteString(fmt.Sprintf("(declare-const %s %s)\n", d.Symbol(), d.Sort.Name()))
	}
	for _, c := range constraints {
		b.WriteString(fmt.Sprintf("(assert %s)\n", c))
	}
	return b.String()
}

// blockingClause excludes the values recorded in prior, matching smt.py's
// "add a constraint to exclude the first counterexample" before searching
// for a second one. Each base name is compared at its highest declared
// version, the same final-value projection parseModel reports, so the
// clause is a single disjunction requiring at least one final value to
// differ; two models that differ only in intermediate versions are not
// told apart (DESIGN.md Open Question 2).
func blockingClause(decls []smt.Declaration, prior Model) string {
	latest := map[string]int{}
	for _, d := range decls {
		if v, ok := latest[d.Name]; !ok || d.Version > v {
			latest[d.Name] = d.Version
		}
	}
	var disjuncts []string
	for _, d := range decls {
		if d.Version != latest[d.Name] {
			continue
		}
		val, ok := prior[d.Name]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case int64:
			disjuncts = append(disjuncts, fmt.Sprintf("(not (= %s %d))", d.Symbol(), v))
		case bool:
			disjuncts = append(disjuncts, fmt.Sprintf("(not (= %s %t))", d.Symbol(), v))
		}
	}
	if len(disjuncts) == 0 {
		return "false"
	}
	return fmt.Sprintf("(or %s)", strings.Join(disjuncts, " "))
}

// CheckAssertion runs the query driver for verification mode: Γ alone is
// checked first for a satisfying example, then Γ ∧ ¬ω_i is checked for
// each obligation ω_i in turn. A second counterexample is sought only when
// exactly one was found, by adding a blocking clause to the LAST obligation
// query tried — not a fresh query over all obligations — reproducing
// smt.py's check_assertion exactly (DESIGN.md Open Question 2).
func (s *Session) CheckAssertion(ctx context.Context, enc *smt.Encoding) (ok bool, examples []Model, counterexamples []Model, err error) {
	background := declareAndAssert(enc.Declarations, enc.Constraints)

	backgroundOutcome, out, runErr := s.run(ctx, background+"(check-sat)\n(get-model)\n")
	if runErr != nil {
		return false, nil, nil, runErr
	}
	if backgroundOutcome != Sat {
		return true, nil, nil, nil
	}
	examples = append(examples, parseModel(out))

	var lastQuery string
	for _, obligation := range enc.Obligations {
		lastQuery = background + fmt.Sprintf("(assert (not %s))\n", obligation)
		outcome, out, runErr := s.run(ctx, lastQuery+"(check-sat)\n(get-model)\n")
		if runErr != nil {
			return false, examples, counterexamples, runErr
		}
		if outcome == Sat {
			counterexamples = append(counterexamples, parseModel(out))
		}
		if len(counterexamples) >= 2 {
			break
		}
	}

	if len(counterexamples) == 1 && lastQuery != "" {
		blocked := lastQuery + fmt.Sprintf("(assert %s)\n", blockingClause(enc.Declarations, counterexamples[0]))
		outcome, out, runErr := s.run(ctx, blocked+"(check-sat)\n(get-model)\n")
		if runErr != nil {
			return false, examples, counterexamples, runErr
		}
		if outcome == Sat {
			counterexamples = append(counterexamples, parseModel(out))
		}
	}

	return len(counterexamples) == 0, examples, counterexamples, nil
}

// PairModel is one equivalence counterexample: for every common output, the
// value each program computed.
type PairModel map[string][2]interface{}

// CheckEquivalence runs the query driver for equivalence mode: Γ1 ∧ Γ2 is
// checked for a shared input example, then Γ1 ∧ Γ2 ∧ ¬E (E the conjunction
// of per-output equalities) is checked for a counterexample pair, with the
// same single-retry second-counterexample search as CheckAssertion
// (spec.md §4.6, §8).
func (s *Session) CheckEquivalence(ctx context.Context, enc *smt.PairedEncoding) (ok bool, examples []Model, counterexamples []PairModel, err error) {
	var decls []smt.Declaration
	decls = append(decls, enc.Declarations1...)
	decls = append(decls, enc.Declarations2...)
	var constraints []string
	constraints = append(constraints, enc.Constraints1...)
	constraints = append(constraints, enc.Constraints2...)
	background := declareAndAssert(decls, constraints)

	backgroundOutcome, out, runErr := s.run(ctx, background+"(check-sat)\n(get-model)\n")
	if runErr != nil {
		return false, nil, nil, runErr
	}
	if backgroundOutcome != Sat {
		return true, nil, nil, nil
	}
	examples = append(examples, parseModel(out))

	var equalities []string
	for _, name := range enc.CommonOutputs {
		equalities = append(equalities, enc.EquivalenceTerms[name])
	}
	negatedEquivalence := fmt.Sprintf("(not (and %s))", strings.Join(equalities, " "))
	query := background + fmt.Sprintf("(assert %s)\n", negatedEquivalence)

	outcome, out, runErr := s.run(ctx, query+"(check-sat)\n(get-model)\n")
	if runErr != nil {
		return false, examples, counterexamples, runErr
	}
	if outcome == Sat {
		counterexamples = append(counterexamples, pairModelFrom(out, enc.CommonOutputs, enc.EquivalenceTerms))
	}

	if len(counterexamples) == 1 {
		flat := Model{}
		for name, pair := range counterexamples[0] {
			flat[name] = pair[0]
		}
		blocked := query + fmt.Sprintf("(assert %s)\n", blockingClause(decls, flat))
		outcome, out, runErr := s.run(ctx, blocked+"(check-sat)\n(get-model)\n")
		if runErr != nil {
			return false, examples, counterexamples, runErr
		}
		if outcome == Sat {
			counterexamples = append(counterexamples, pairModelFrom(out, enc.CommonOutputs, enc.EquivalenceTerms))
		}
	}

	return len(counterexamples) == 0, examples, counterexamples, nil
}

// pairModelFrom pulls each program's distinct value for every common output
// out of a raw (unstripped) model, using the exact symbol pair recorded in
// each output's equivalence term "(= sym1 sym2)".
func pairModelFrom(out string, commonOutputs []string, terms map[string]string) PairModel {
	raw := parseModelRaw(out)
	pair := PairModel{}
	for _, name := range commonOutputs {
		m := equivTermRE.FindStringSubmatch(terms[name])
		if m == nil {
			continue
		}
		pair[name] = [2]interface{}{raw[m[1]], raw[m[2]]}
	}
	return pair
}
