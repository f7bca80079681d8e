// Package optimize implements the three SSA-level optimizer passes from
// spec.md §4.4: constant propagation, dead-code elimination, common-
// subexpression elimination. Pass bodies are grounded on
// _examples/original_source/optimizer.py's exact fold/eliminate/CSE
// semantics; the Pass/Pipeline shape is grounded on the teacher's
// internal/ir/optimizations.go (OptimizationPass interface, ordered
// AddPass/Run driver), applied to this package's tree-shaped SSA rather
// than the teacher's basic-block IR.
package optimize

import "bverify/internal/ssa"

// Name identifies one of the three optimizer passes, matching the
// identifiers named in the Config.Optimizations field (spec.md §6).
type Name string

const (
	ConstantPropagation         Name = "ConstantPropagation"
	DeadCodeElimination         Name = "DeadCodeElimination"
	CommonSubexpressionElimination Name = "CommonSubexpressionElimination"
)

// Pass is one optimizer pass over an SSA program.
type Pass interface {
	Name() Name
	Description() string
	Apply(p *ssa.Program) *ssa.Program
}

// Pipeline runs a selected subset of passes in the fixed order
// ConstantPropagation -> DeadCodeElimination -> CommonSubexpressionElimination,
// regardless of the order they were selected in (spec.md §4.4).
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a pipeline containing exactly the passes named in
// selected, in the fixed canonical order.
func NewPipeline(selected []Name) *Pipeline {
	all := []Pass{&ConstProp{}, &DCE{}, &CSE{}}
	want := map[Name]bool{}
	for _, n := range selected {
		want[n] = true
	}

	p := &Pipeline{}
	for _, pass := range all {
		if want[pass.Name()] {
			p.passes = append(p.passes, pass)
		}
	}
	return p
}

// Run applies every selected pass once, in order, to prog.
func (p *Pipeline) Run(prog *ssa.Program) *ssa.Program {
	for _, pass := range p.passes {
		prog = pass.Apply(prog)
	}
	return prog
}
