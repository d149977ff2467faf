package solver

import (
	"errors"
	"math"
	"sync"

	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// steinerCandidate is one trunk hypothesis: the trunk path itself, the
// chosen join point per sink, and the total tree cost.
type steinerCandidate struct {
	basePath  []int
	midPoints map[int]int
	cost      float32
}

// SteinerSolver is a two-level Steiner-tree heuristic. Every sink is
// tried as the trunk terminal; the remaining sinks connect to the trunk
// at their cheapest join point, and the cheapest overall candidate wins.
type SteinerSolver struct{}

// Identifier returns the human-readable solver name.
func (SteinerSolver) Identifier() string {
	return "Steiner Solver"
}

// Solve evaluates all trunk candidates in parallel and materializes the
// winner into the routing.
func (SteinerSolver) Solve(g *fabric.FabricGraph, r *fabric.Routing) error {
	// Distance vectors to every sink, shared across trunk candidates.
	dists := allSinkDistances(g, r.Sinks)

	candidates := make([]*steinerCandidate, len(r.Sinks))
	errs := make([]error, len(r.Sinks))

	var wg sync.WaitGroup
	for i, baseSink := range r.Sinks {
		wg.Add(1)
		go func(i, baseSink int) {
			defer wg.Done()
			candidates[i], errs[i] = buildCandidate(g, r, baseSink, dists, false)
		}(i, baseSink)
	}
	wg.Wait()

	best := reduceCandidates(candidates)
	if best == nil {
		r.Result = nil
		return apperror.Wrap(errors.Join(errs...), apperror.CodeNoSteinerTree,
			"no steiner tree candidate could be routed").
			WithDetails("signal", r.Signal)
	}

	// Materialize the full tree for the winner.
	nodes := make(map[int]bool)
	for _, n := range best.basePath {
		nodes[n] = true
	}

	paths := make(map[int][]int, len(best.midPoints))
	for sink, mid := range best.midPoints {
		pathToMid, _, ok := algorithms.ShortestPath(g, r.Signal, mid)
		if !ok {
			return apperror.Newf(apperror.CodeUnreachableSink,
				"could not find a route from signal %d to join point %d for sink %d", r.Signal, mid, sink)
		}
		pathFromMid, _, ok := algorithms.ShortestPath(g, mid, sink)
		if !ok {
			return apperror.Newf(apperror.CodeUnreachableSink,
				"could not find a route from join point %d to sink %d", mid, sink)
		}

		for _, n := range pathToMid {
			nodes[n] = true
		}
		for _, n := range pathFromMid {
			nodes[n] = true
		}

		// Skip the duplicated join point at the seam.
		path := make([]int, 0, len(pathToMid)+len(pathFromMid)-1)
		path = append(path, pathToMid...)
		path = append(path, pathFromMid[1:]...)
		paths[sink] = path
	}

	r.Result = &fabric.RoutingResult{Paths: paths, Nodes: nodes}
	return nil
}

// buildCandidate evaluates one trunk hypothesis. With penalizeUsed the
// join-point selection strictly deprioritizes nodes whose usage marker is
// set, which is what the pre-planner wants.
func buildCandidate(g *fabric.FabricGraph, r *fabric.Routing, baseSink int, dists map[int][]float32, penalizeUsed bool) (*steinerCandidate, error) {
	basePath, cost, ok := algorithms.ShortestPath(g, r.Signal, baseSink)
	if !ok {
		return nil, apperror.Newf(apperror.CodeUnreachableSink,
			"could not find a trunk path from signal %d to sink %d", r.Signal, baseSink)
	}

	midPoints := make(map[int]int, len(r.Sinks))
	for _, sink := range r.Sinks {
		td, ok := dists[sink]
		if !ok {
			return nil, apperror.Newf(apperror.CodeInternal,
				"no precalculated distances for sink %d", sink)
		}

		minNode := basePath[0]
		minDist := td[minNode]
		for _, node := range basePath[1:] {
			if joinBetter(g, node, td[node], minNode, minDist, penalizeUsed) {
				minNode, minDist = node, td[node]
			}
		}

		cost += minDist
		midPoints[sink] = minNode
	}

	return &steinerCandidate{basePath: basePath, midPoints: midPoints, cost: cost}, nil
}

// joinBetter reports whether the candidate join point should replace the
// current one. NaN distances never win, equal distances keep the first
// encountered node. With penalizeUsed a marked node sorts after any
// unmarked one, regardless of distance.
func joinBetter(g *fabric.FabricGraph, candNode int, candDist float32, curNode int, curDist float32, penalizeUsed bool) bool {
	if penalizeUsed {
		if g.Costs[candNode].Usage > 0 {
			return false
		}
		if g.Costs[curNode].Usage > 0 {
			return true
		}
	}
	if math.IsNaN(float64(candDist)) {
		return false
	}
	if math.IsNaN(float64(curDist)) {
		return true
	}
	return candDist < curDist
}

// reduceCandidates picks the cheapest non-nil candidate, keeping the
// earlier one on ties.
func reduceCandidates(candidates []*steinerCandidate) *steinerCandidate {
	var best *steinerCandidate
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || c.cost < best.cost {
			best = c
		}
	}
	return best
}
