package solver

import (
	"regexp"
	"strconv"
	"strings"
)

// Model is one satisfying assignment, keyed by the base variable name (the
// version suffix is stripped). When several versions of one base name are
// present, the value of the highest version is kept. Values are int64 or
// bool.
type Model map[string]interface{}

var defineFunRE = regexp.MustCompile(`\(define-fun\s+(\S+)\s*\(\)\s*(Int|Bool)\s+((?:\([^()]*\))|[^()\s]+)\)`)

// parseModel extracts every `(define-fun sym_k () Sort value)` entry from a
// z3 `(get-model)` response and reduces each symbol to its base name,
// keeping the value of the highest version seen for that name.
func parseModel(output string) Model {
	model := Model{}
	versions := map[string]int{}
	for _, m := range defineFunRE.FindAllStringSubmatch(output, -1) {
		symbol, sort, raw := m[1], m[2], strings.TrimSpace(m[3])
		base := baseName(symbol)
		version := symbolVersion(symbol)
		if prev, seen := versions[base]; seen && prev > version {
			continue
		}
		switch sort {
		case "Bool":
			model[base] = raw == "true"
			versions[base] = version
		case "Int":
			if v, ok := parseIntLiteral(raw); ok {
				model[base] = v
				versions[base] = version
			}
		}
	}
	return model
}

// symbolVersion returns the numeric "_<version>" suffix of symbol, or -1
// when there is none.
func symbolVersion(symbol string) int {
	i := strings.LastIndexByte(symbol, '_')
	if i < 0 {
		return -1
	}
	v, err := strconv.Atoi(symbol[i+1:])
	if err != nil {
		return -1
	}
	return v
}

// parseModelRaw extracts every `(define-fun sym () Sort value)` entry keyed
// by its exact symbol, without stripping the version suffix or a `p2_`
// prefix — used by equivalence checking, which must keep each program's
// value for a shared output name distinct.
func parseModelRaw(output string) map[string]interface{} {
	raw := map[string]interface{}{}
	for _, m := range defineFunRE.FindAllStringSubmatch(output, -1) {
		symbol, sort, val := m[1], m[2], strings.TrimSpace(m[3])
		switch sort {
		case "Bool":
			raw[symbol] = val == "true"
		case "Int":
			if v, ok := parseIntLiteral(val); ok {
				raw[symbol] = v
			}
		}
	}
	return raw
}

// baseName strips a leading "p2_" prefix and the trailing "_<version>"
// suffix; underscores inside the identifier itself are kept.
func baseName(symbol string) string {
	symbol = strings.TrimPrefix(symbol, "p2_")
	if i := strings.LastIndexByte(symbol, '_'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// parseIntLiteral handles both a plain literal ("10") and z3's parenthesized
// negative-literal rendering ("(- 10)").
func parseIntLiteral(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "(") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
		fields := strings.Fields(inner)
		if len(fields) == 2 && fields[0] == "-" {
			v, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return 0, false
			}
			return -v, true
		}
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
