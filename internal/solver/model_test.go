package solver

import "testing"

func TestParseModelExtractsIntAndBool(t *testing.T) {
	out := `sat
(
  (define-fun x_0 () Int
    10)
  (define-fun y_1 () Bool
    true)
  (define-fun z_2 () Int
    (- 5))
)
`
	m := parseModel(out)
	if m["x"] != int64(10) {
		t.Fatalf("x: got %v", m["x"])
	}
	if m["y"] != true {
		t.Fatalf("y: got %v", m["y"])
	}
	if m["z"] != int64(-5) {
		t.Fatalf("z: got %v", m["z"])
	}
}

func TestParseModelRawKeepsExactSymbols(t *testing.T) {
	out := `sat
(
  (define-fun x_0 () Int 1)
  (define-fun p2_x_0 () Int 2)
)
`
	raw := parseModelRaw(out)
	if raw["x_0"] != int64(1) {
		t.Fatalf("x_0: got %v", raw["x_0"])
	}
	if raw["p2_x_0"] != int64(2) {
		t.Fatalf("p2_x_0: got %v", raw["p2_x_0"])
	}
}

func TestBaseNameStripsVersionAndPrefix(t *testing.T) {
	cases := map[string]string{"x_0": "x", "count_12": "count", "p2_x_3": "x"}
	for in, want := range cases {
		if got := baseName(in); got != want {
			t.Fatalf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasLeadingWord(t *testing.T) {
	if !hasLeadingWord("sat\n(\n)\n", "sat") {
		t.Fatal("expected leading sat to match")
	}
	if hasLeadingWord("unsat\n", "sat") {
		t.Fatal("unsat must not match sat")
	}
}
