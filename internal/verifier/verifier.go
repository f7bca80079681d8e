package verifier

import (
	"context"

	"bverify/internal/config"
	"bverify/internal/diagnostics"
	"bverify/internal/lexer"
	"bverify/internal/optimize"
	"bverify/internal/parser"
	"bverify/internal/smt"
	"bverify/internal/solver"
	"bverify/internal/ssa"
	"bverify/internal/unroll"
)

// Verify parses, builds SSA, unrolls, optimizes, encodes, and discharges a
// program's assert obligations against an external SMT solver (spec.md
// §4, §6). The pipeline stages return diagnostics.ParseError,
// diagnostics.SemanticError, diagnostics.EncodingError, or
// diagnostics.SolverError as appropriate (spec.md §7).
func Verify(text string, cfg config.Config) (*VerificationResult, error) {
	optimized, ssaProg, err := buildOptimizedSSA(text, cfg)
	if err != nil {
		return nil, err
	}

	enc, err := smt.Encode(optimized)
	if err != nil {
		return nil, err
	}

	sess := solver.NewSession(cfg.SolverPath)
	ok, examples, counterexamples, err := sess.CheckAssertion(context.Background(), enc)
	if err != nil {
		return nil, err
	}

	return &VerificationResult{
		OK:              ok,
		Examples:        toVarMaps(examples),
		Counterexamples: toVarMaps(counterexamples),
		SSAText:         ssaProg.String(),
		SMTText:         enc.Text,
	}, nil
}

// Equiv parses, builds SSA, unrolls, and optimizes both programs, encodes
// them for paired equivalence checking, and discharges the equivalence
// predicate's negation against the solver (spec.md §4.5, §6).
func Equiv(text1, text2 string, cfg config.Config) (*EquivalenceResult, error) {
	optimized1, ssaProg1, err := buildOptimizedSSA(text1, cfg)
	if err != nil {
		return nil, err
	}
	optimized2, ssaProg2, err := buildOptimizedSSA(text2, cfg)
	if err != nil {
		return nil, err
	}

	enc, err := smt.EncodePair(optimized1, optimized2)
	if err != nil {
		return nil, err
	}

	sess := solver.NewSession(cfg.SolverPath)
	ok, examples, counterexamples, err := sess.CheckEquivalence(context.Background(), enc)
	if err != nil {
		return nil, err
	}

	return &EquivalenceResult{
		OK:              ok,
		Examples:        toVarMaps(examples),
		Counterexamples: toVarPairMaps(counterexamples),
		SSA1Text:        ssaProg1.String(),
		SSA2Text:        ssaProg2.String(),
		SMTText:         enc.Text,
	}, nil
}

// buildOptimizedSSA runs every stage up to (but not including) SMT
// encoding: lex, parse, SSA-build, unroll, optimize. It returns both the
// loop-free optimized tree encoding operates on and the pre-unroll SSA tree
// whose String() is the ssa_text boundary artifact (spec.md §6) — unrolling
// expands loops into a much larger tree that is not what a caller wants to
// read back.
func buildOptimizedSSA(text string, cfg config.Config) (optimized, preUnrollSSA *ssa.Program, err error) {
	scanner := lexer.NewScanner(text)
	tokens := scanner.ScanTokens()
	if scanErrs := scanner.Errors(); len(scanErrs) > 0 {
		first := scanErrs[0]
		return nil, nil, &diagnostics.ParseError{Line: first.Position.Line, Col: first.Position.Col, Msg: first.Message}
	}
	prog, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, nil, err
	}

	ssaProg, err := ssa.Build(prog)
	if err != nil {
		return nil, nil, err
	}

	unrolledProg := unroll.Program(ssaProg, cfg.UnrollDepth)
	pipeline := optimize.NewPipeline(toOptimizeNames(cfg.Optimizations))
	return pipeline.Run(unrolledProg), ssaProg, nil
}

func toOptimizeNames(opts []config.Optimization) []optimize.Name {
	names := make([]optimize.Name, len(opts))
	for i, o := range opts {
		names[i] = optimize.Name(o)
	}
	return names
}

func toVarMaps(models []solver.Model) []VarMap {
	out := make([]VarMap, len(models))
	for i, m := range models {
		out[i] = toVarMap(m)
	}
	return out
}

func toVarMap(m solver.Model) VarMap {
	vm := VarMap{}
	for name, val := range m {
		switch v := val.(type) {
		case int64:
			vm[name] = v
		case bool:
			if v {
				vm[name] = 1
			} else {
				vm[name] = 0
			}
		}
	}
	return vm
}

func toVarPairMaps(models []solver.PairModel) []VarPairMap {
	out := make([]VarPairMap, len(models))
	for i, m := range models {
		pm := VarPairMap{}
		for name, pair := range m {
			pm[name] = [2]int64{toInt64(pair[0]), toInt64(pair[1])}
		}
		out[i] = pm
	}
	return out
}

func toInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}
