// Package config holds the external configuration record (spec.md §6) and a
// secondary scenario-file loader for batch-running Verify/Equiv, grounded on
// the teacher's functional-option constructors for its own config types and
// on grammar/parser.go's participle.Build usage, repurposed onto a narrow
// scenario grammar instead of the core language (SPEC_FULL.md §9, DESIGN.md).
package config

// Mode selects which entry point a Config drives.
type Mode string

const (
	ModeVerify Mode = "verify"
	ModeEquiv  Mode = "equiv"
)

// Optimization names one of the three selectable SSA passes (spec.md §6).
type Optimization string

const (
	ConstantPropagation            Optimization = "ConstantPropagation"
	DeadCodeElimination             Optimization = "DeadCodeElimination"
	CommonSubexpressionElimination Optimization = "CommonSubexpressionElimination"
)

// Config is the external record spec.md §6 names, plus the ambient
// SolverPath addition SPEC_FULL.md §6 documents.
type Config struct {
	UnrollDepth   int
	Optimizations []Optimization
	Mode          Mode
	SolverPath    string
}

// Default returns spec.md §6's default configuration: unroll depth 3, no
// optimizer passes, verify mode, and the z3 binary resolved from PATH.
func Default() Config {
	return Config{
		UnrollDepth:   3,
		Optimizations: nil,
		Mode:          ModeVerify,
		SolverPath:    "z3",
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

// New builds a Config from Default() with opts applied in order.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithUnrollDepth sets the bounded-unrolling depth (spec.md §4.3).
func WithUnrollDepth(depth int) Option {
	return func(c *Config) { c.UnrollDepth = depth }
}

// WithOptimizations selects which optimizer passes run, independent of the
// order given here — Pipeline always runs them in its fixed canonical order
// (spec.md §4.4).
func WithOptimizations(opts ...Optimization) Option {
	return func(c *Config) { c.Optimizations = opts }
}

// WithMode selects verify or equiv.
func WithMode(mode Mode) Option {
	return func(c *Config) { c.Mode = mode }
}

// WithSolverPath overrides the external solver binary path.
func WithSolverPath(path string) Option {
	return func(c *Config) { c.SolverPath = path }
}
