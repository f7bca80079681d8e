// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"bverify/internal/config"
	"bverify/internal/diagnostics"
	"bverify/internal/verifier"
	"github.com/fatih/color"
)

func main() {
	var (
		unrollDepth = flag.Int("unroll", 3, "bounded loop unrolling depth (1-10)")
		optFlags    = flag.String("opt", "", "comma-separated optimizer passes: ConstantPropagation,DeadCodeElimination,CommonSubexpressionElimination")
		solverPath  = flag.String("solver", "z3", "path to the external SMT solver binary")
		equivMode   = flag.Bool("equiv", false, "check equivalence of two programs instead of verifying one")
		batchFile   = flag.String("batch", "", "run every scenario in a scenario file instead of a single program")
		showSSA     = flag.Bool("ssa", false, "print the ssa_text produced by the pipeline")
		showSMT     = flag.Bool("smt", false, "print the smt_text produced by the pipeline")
	)
	flag.Parse()

	cfg := config.New(
		config.WithUnrollDepth(*unrollDepth),
		config.WithOptimizations(parseOptimizations(*optFlags)...),
		config.WithSolverPath(*solverPath),
	)

	if *batchFile != "" {
		runBatch(*batchFile)
		return
	}

	args := flag.Args()
	if *equivMode {
		if len(args) != 2 {
			fmt.Println("Usage: bverify -equiv <file1> <file2>")
			os.Exit(1)
		}
		runEquiv(args[0], args[1], cfg, *showSSA, *showSMT)
		return
	}

	if len(args) != 1 {
		fmt.Println("Usage: bverify <file>")
		os.Exit(1)
	}
	runVerify(args[0], cfg, *showSSA, *showSMT)
}

func parseOptimizations(flagValue string) []config.Optimization {
	if flagValue == "" {
		return nil
	}
	var out []config.Optimization
	for _, name := range splitAndTrim(flagValue) {
		out = append(out, config.Optimization(name))
	}
	return out
}

func splitAndTrim(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				parts = append(parts, s[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func runVerify(path string, cfg config.Config, showSSA, showSMT bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("could not read %s: %v", path, err)
		os.Exit(1)
	}

	res, err := verifier.Verify(string(source), cfg)
	if err != nil {
		reportError(path, string(source), err)
		os.Exit(1)
	}

	printVerification(path, res, showSSA, showSMT)
	if !res.OK {
		os.Exit(1)
	}
}

func runEquiv(path1, path2 string, cfg config.Config, showSSA, showSMT bool) {
	source1, err := os.ReadFile(path1)
	if err != nil {
		color.Red("could not read %s: %v", path1, err)
		os.Exit(1)
	}
	source2, err := os.ReadFile(path2)
	if err != nil {
		color.Red("could not read %s: %v", path2, err)
		os.Exit(1)
	}

	res, err := verifier.Equiv(string(source1), string(source2), cfg)
	if err != nil {
		reportError(path1, string(source1), err)
		os.Exit(1)
	}

	if res.OK {
		color.Green("✅ %s and %s are equivalent", path1, path2)
	} else {
		color.Red("❌ %s and %s are NOT equivalent", path1, path2)
		for _, ce := range res.Counterexamples {
			fmt.Printf("  counterexample: %s\n", ce)
		}
	}
	if showSSA {
		fmt.Println("--- ssa1 ---")
		fmt.Println(res.SSA1Text)
		fmt.Println("--- ssa2 ---")
		fmt.Println(res.SSA2Text)
	}
	if showSMT {
		fmt.Println("--- smt ---")
		fmt.Println(res.SMTText)
	}
	if !res.OK {
		os.Exit(1)
	}
}

func runBatch(path string) {
	scenarios, err := config.ParseScenarioFile(path)
	if err != nil {
		color.Red("could not load scenario file %s: %v", path, err)
		os.Exit(1)
	}

	failures := 0
	for _, sc := range scenarios {
		var ok bool
		var err error
		switch sc.Config.Mode {
		case config.ModeVerify:
			var res *verifier.VerificationResult
			res, err = verifier.Verify(sc.Program, sc.Config)
			if res != nil {
				ok = res.OK
			}
		case config.ModeEquiv:
			var res *verifier.EquivalenceResult
			res, err = verifier.Equiv(sc.Program, sc.Program2, sc.Config)
			if res != nil {
				ok = res.OK
			}
		}

		switch {
		case err != nil:
			color.Red("❌ %s: error: %v", sc.Name, err)
			failures++
		case ok != sc.Expect:
			color.Red("❌ %s: expected %v, got %v", sc.Name, sc.Expect, ok)
			failures++
		default:
			color.Green("✅ %s", sc.Name)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func printVerification(path string, res *verifier.VerificationResult, showSSA, showSMT bool) {
	if res.OK {
		color.Green("✅ %s verified", path)
	} else {
		color.Red("❌ %s failed", path)
		for _, ce := range res.Counterexamples {
			fmt.Printf("  counterexample: %s\n", ce)
		}
	}
	if showSSA {
		fmt.Println("--- ssa ---")
		fmt.Println(res.SSAText)
	}
	if showSMT {
		fmt.Println("--- smt ---")
		fmt.Println(res.SMTText)
	}
}

func reportError(path, source string, err error) {
	if pe, ok := err.(*diagnostics.ParseError); ok {
		reporter := diagnostics.NewReporter(path, source)
		fmt.Println(reporter.Format(pe))
		return
	}
	color.Red("%s: %v", path, err)
}
