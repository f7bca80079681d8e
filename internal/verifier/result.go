// Package verifier wires the lexer, parser, SSA builder, unroller,
// optimizer pipeline, SMT encoder, and solver query driver behind the two
// entry points spec.md §6 names: Verify and Equiv. Grounded on the
// teacher's top-level orchestration style (cmd/kanso-cli/main.go calling
// grammar.ParseFile then walking the result) and on
// _examples/original_source/smt.py's check_assertion/check_equivalence,
// which this package's Verify/Equiv replace end to end.
package verifier

import (
	"fmt"
	"sort"
	"strings"
)

// VarMap is a keyed collection from base variable name to integer value
// (spec.md §6). Boolean-valued outputs are rendered as 1/0 — a
// result-formatting convention, not a silent sort coercion inside encoding
// (DESIGN.md Open Question 1 concerns the latter only).
type VarMap map[string]int64

// Keys returns m's keys in the lexicographic order spec.md §6 mandates.
func (m VarMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m VarMap) String() string {
	var parts []string
	for _, k := range m.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

// VarPairMap maps a common output name to the (value1, value2) pair each
// program computed for it (spec.md §6).
type VarPairMap map[string][2]int64

// Keys returns m's keys in lexicographic order.
func (m VarPairMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m VarPairMap) String() string {
	var parts []string
	for _, k := range m.Keys() {
		pair := m[k]
		parts = append(parts, fmt.Sprintf("%s=(%d, %d)", k, pair[0], pair[1]))
	}
	return strings.Join(parts, ", ")
}

// VerificationResult is verify's return value (spec.md §6).
type VerificationResult struct {
	OK              bool
	Examples        []VarMap
	Counterexamples []VarMap
	SSAText         string
	SMTText         string
}

// EquivalenceResult is equiv's return value (spec.md §6).
type EquivalenceResult struct {
	OK              bool
	Examples        []VarMap
	Counterexamples []VarPairMap
	SSA1Text        string
	SSA2Text        string
	SMTText         string
}
