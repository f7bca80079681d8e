package diagnostics

import (
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // registers the default backend
)

// solverLogger traces solver subprocess invocations (command line and wall
// time). Off by default: Verify/Equiv run silently unless a host
// opts in with EnableSolverLogging, matching the single-threaded, no
// core-owned-logging-policy contract (SPEC_FULL.md §5).
var (
	solverLoggerOnce sync.Once
	solverLogger     commonlog.Logger
	solverLogEnabled bool
)

// EnableSolverLogging turns on commonlog-backed tracing of every solver
// invocation at the given verbosity (1=info, 2=debug, matching commonlog's
// own verbosity scale).
func EnableSolverLogging(verbosity int) {
	commonlog.Configure(verbosity, nil)
	solverLogEnabled = true
}

// Solver returns the package-level logger used by internal/solver, lazily
// initialized so a default Verify/Equiv call never touches commonlog at all.
func Solver() commonlog.Logger {
	solverLoggerOnce.Do(func() {
		solverLogger = commonlog.GetLogger("bverify.solver")
	})
	return solverLogger
}

// SolverLoggingEnabled reports whether EnableSolverLogging has been called.
func SolverLoggingEnabled() bool {
	return solverLogEnabled
}
