package solver

import (
	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// SimpleSteinerSolver walks the pre-planned anchor skeleton of a net and
// stitches consecutive anchors with fresh shortest paths. The geometry is
// fixed by the pre-planner; only the pip-level routing between anchors
// adapts to the current congestion.
type SimpleSteinerSolver struct{}

// Identifier returns the human-readable solver name.
func (SimpleSteinerSolver) Identifier() string {
	return "SimpleSteinerSolver"
}

// Solve stitches the skeleton. Fails if pre-planning has not run.
func (SimpleSteinerSolver) Solve(g *fabric.FabricGraph, r *fabric.Routing) error {
	if r.SteinerTree == nil {
		return apperror.ErrMissingPrePlan
	}

	paths := make(map[int][]int, len(r.SteinerTree.SteinerNodes))
	nodes := make(map[int]bool)

	for terminal, route := range r.SteinerTree.SteinerNodes {
		var path []int
		for i := 0; i+1 < len(route); i++ {
			start, end := route[i], route[i+1]
			segment, _, ok := algorithms.ShortestPath(g, start, end)
			if !ok {
				return apperror.Newf(apperror.CodeUnreachableSink,
					"could not find a path between steiner nodes %d and %d", start, end).
					WithDetails("terminal", terminal)
			}
			for _, n := range segment {
				nodes[n] = true
			}
			// Drop the segment end; the next segment starts with it.
			path = append(path, segment[:len(segment)-1]...)
		}
		path = append(path, terminal)
		paths[terminal] = path
	}

	r.Result = &fabric.RoutingResult{Paths: paths, Nodes: nodes}
	return nil
}
