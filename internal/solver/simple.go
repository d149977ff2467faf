package solver

import (
	"sync"

	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// SimpleSolver routes each sink of a net independently with a shortest
// path from the signal and unions the paths into a tree. A node shared by
// two sinks of the same net counts once in the node set: congestion is
// between nets, not within one.
type SimpleSolver struct{}

// Identifier returns the human-readable solver name.
func (SimpleSolver) Identifier() string {
	return "Simple Solver"
}

// Solve computes one shortest path per sink, in parallel.
func (SimpleSolver) Solve(g *fabric.FabricGraph, r *fabric.Routing) error {
	paths := make([][]int, len(r.Sinks))
	errs := make([]error, len(r.Sinks))

	var wg sync.WaitGroup
	for i, sink := range r.Sinks {
		wg.Add(1)
		go func(i, sink int) {
			defer wg.Done()
			path, _, ok := algorithms.ShortestPath(g, r.Signal, sink)
			if !ok {
				errs[i] = apperror.Newf(apperror.CodeUnreachableSink,
					"could not find a route for sink %d (%s) from signal %d (%s)",
					sink, g.Nodes[sink].ID, r.Signal, g.Nodes[r.Signal].ID).
					WithDetails("sink", sink).
					WithDetails("signal", r.Signal)
				return
			}
			paths[i] = path
		}(i, sink)
	}
	wg.Wait()

	if err := firstError(errs); err != nil {
		return err
	}

	nodes := make(map[int]bool)
	resultPaths := make(map[int][]int, len(r.Sinks))
	for i, sink := range r.Sinks {
		for _, n := range paths[i] {
			nodes[n] = true
		}
		resultPaths[sink] = paths[i]
	}

	r.Result = &fabric.RoutingResult{Paths: resultPaths, Nodes: nodes}
	return nil
}
