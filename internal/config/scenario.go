package config

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Scenario is one batch entry: either a verify scenario (Program set) or an
// equiv scenario (Program and Program2 set), plus the Config to run it
// under and the expected outcome, used by the CLI's `-batch` flag. The
// fixture files under testdata hold S1-S6 in this format; internal/verifier's
// scenario tests write their programs as Go string literals (SPEC_FULL.md §9).
type Scenario struct {
	Name     string
	Config   Config
	Program  string
	Program2 string // set only when Config.Mode == ModeEquiv
	Expect   bool   // true: expected to verify/be equivalent
}

var scenarioLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[{}=,]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

type scenarioFile struct {
	Scenarios []*scenarioNode `@@*`
}

type scenarioNode struct {
	Name   string        `"scenario" @Ident`
	Mode   string        `@Ident`
	Fields []*fieldNode  `"{" @@* "}"`
}

type fieldNode struct {
	Key   string   `@Ident "="`
	Str   *string  `(  @String`
	List  []string `  | @Ident ("," @Ident)*`
	Num   *int     `  | @Int )`
}

// ParseScenarioFile reads and parses a scenario-file at path, returning one
// Scenario per `scenario NAME verify|equiv { ... }` block.
func ParseScenarioFile(path string) ([]*Scenario, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return ParseScenarios(path, string(source))
}

// ParseScenarios parses scenario-file text already read into memory, under
// the given name (used only for error messages).
func ParseScenarios(name, source string) ([]*Scenario, error) {
	parser, err := participle.Build[scenarioFile](
		participle.Lexer(scenarioLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("building scenario grammar: %w", err)
	}

	file, err := parser.ParseString(name, source)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", name, err)
	}

	var out []*Scenario
	for _, node := range file.Scenarios {
		scenario, err := scenarioFromNode(node)
		if err != nil {
			return nil, err
		}
		out = append(out, scenario)
	}
	return out, nil
}

func scenarioFromNode(node *scenarioNode) (*Scenario, error) {
	s := &Scenario{Name: node.Name, Config: Default()}
	switch node.Mode {
	case "verify":
		s.Config.Mode = ModeVerify
	case "equiv":
		s.Config.Mode = ModeEquiv
	default:
		return nil, fmt.Errorf("scenario %s: unknown mode %q", node.Name, node.Mode)
	}

	for _, f := range node.Fields {
		switch f.Key {
		case "program":
			s.Program = stringField(f)
		case "program2":
			s.Program2 = stringField(f)
		case "unroll":
			if f.Num != nil {
				s.Config.UnrollDepth = *f.Num
			}
		case "optimizations":
			for _, name := range f.List {
				s.Config.Optimizations = append(s.Config.Optimizations, Optimization(name))
			}
		case "expect":
			s.Expect = len(f.List) == 1 && f.List[0] == "ok"
		}
	}
	return s, nil
}

func stringField(f *fieldNode) string {
	if f.Str == nil {
		return ""
	}
	return *f.Str
}
