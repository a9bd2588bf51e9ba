package solver

import "sync"

var (
	defaultOnce   sync.Once
	defaultSolver Solver
)

// Default returns the process-wide Graphviz solver, initialized once on
// first use. Callers that need custom separations construct their own via
// NewGraphviz.
func Default() Solver {
	defaultOnce.Do(func() {
		defaultSolver = NewGraphviz(DefaultOptions())
	})
	return defaultSolver
}
