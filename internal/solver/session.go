// Package solver drives an external z3 process over SMT-LIB 2 text and
// implements the query driver (C7): one solver call per assertion negation
// for verification, one call for the equivalence predicate's negation, with
// a blocking-clause-based search for a second counterexample. Grounded on
// _examples/original_source/smt.py's check_assertion/check_equivalence, and
// on the teacher's subprocess-invocation idiom adapted from
// _examples/other_examples/e7ba133a_vasic-digital-SuperAgent__internal-verification-formal_verifier.go.go
// (Z3Path config field, logrus subprocess tracing) per SPEC_FULL.md §9.
package solver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"bverify/internal/diagnostics"
	"github.com/sirupsen/logrus"
)

// Session owns one external solver binary invocation path and a logrus
// sink for subprocess tracing, gated behind diagnostics.SolverLoggingEnabled
// (SPEC_FULL.md §5, §9).
type Session struct {
	binary string
	log    *logrus.Logger
}

// NewSession builds a Session targeting the solver at binary (SolverPath in
// Config, default "z3").
func NewSession(binary string) *Session {
	if binary == "" {
		binary = "z3"
	}
	log := logrus.New()
	if diagnostics.SolverLoggingEnabled() {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.PanicLevel)
	}
	return &Session{binary: binary, log: log}
}

// Outcome is "sat", "unsat", or "unknown" — a solver is never asked to
// block longer than ctx allows.
type Outcome int

const (
	Unsat Outcome = iota
	Sat
	Unknown
)

// run writes script to a temp file and invokes `z3 -smt2 <file>`, matching
// SPEC_FULL.md §4.7's chosen invocation shape.
func (s *Session) run(ctx context.Context, script string) (Outcome, string, error) {
	tmp, err := os.CreateTemp("", "bverify-*.smt2")
	if err != nil {
		return Unknown, "", &diagnostics.SolverError{Msg: fmt.Sprintf("could not create solver input file: %v", err)}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return Unknown, "", &diagnostics.SolverError{Msg: fmt.Sprintf("could not write solver input: %v", err)}
	}
	if err := tmp.Close(); err != nil {
		return Unknown, "", &diagnostics.SolverError{Msg: fmt.Sprintf("could not close solver input: %v", err)}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, s.binary, "-smt2", tmp.Name())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	elapsed := time.Since(start)

	if diagnostics.SolverLoggingEnabled() {
		diagnostics.Solver().Debugf("%s -smt2 %s (%s)", s.binary, tmp.Name(), elapsed)
		s.log.WithFields(logrus.Fields{
			"binary": s.binary, "elapsed": elapsed, "stderr": stderr.String(),
		}).Debug("solver invocation")
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return Unknown, "", &diagnostics.SolverError{Msg: "solver invocation timed out"}
		}
		if _, isExit := runErr.(*exec.ExitError); !isExit {
			return Unknown, "", &diagnostics.SolverError{Msg: fmt.Sprintf("could not run solver %q: %v", s.binary, runErr)}
		}
	}

	out := stdout.String()
	switch {
	case hasLeadingWord(out, "sat"):
		return Sat, out, nil
	case hasLeadingWord(out, "unsat"):
		return Unsat, out, nil
	default:
		return Unknown, out, nil
	}
}

// hasLeadingWord reports whether the solver's first output line is exactly
// word (z3 reports "sat"/"unsat"/"unknown" on their own line before the
// model s-expression).
func hasLeadingWord(out, word string) bool {
	for i := 0; i < len(out); i++ {
		if out[i] == '\n' || out[i] == ' ' {
			return out[:i] == word
		}
	}
	return out == word
}
