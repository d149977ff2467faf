package solver

import (
	"errors"
	"sync"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// steinerPlan is a pre-planning candidate: the join-node set, the anchor
// skeleton per sink, and the total cost used to rank candidates.
type steinerPlan struct {
	nodes        map[int]bool
	steinerNodes map[int][]int
	cost         float32
}

// PreCalcSteinerTree replays the trunk-selection procedure of the
// SteinerSolver for one net, with two differences: join-point selection
// strictly deprioritizes nodes already marked used in this pre-pass, and
// the winner's join nodes are written back as used so later nets cannot
// claim them.
func PreCalcSteinerTree(g *fabric.FabricGraph, r *fabric.Routing) (*fabric.SteinerTree, error) {
	dists := allSinkDistances(g, r.Sinks)

	plans := make([]*steinerPlan, len(r.Sinks))
	errs := make([]error, len(r.Sinks))

	var wg sync.WaitGroup
	for i, baseSink := range r.Sinks {
		wg.Add(1)
		go func(i, baseSink int) {
			defer wg.Done()
			plans[i], errs[i] = buildPlan(g, r, baseSink, dists)
		}(i, baseSink)
	}
	wg.Wait()

	var best *steinerPlan
	for _, p := range plans {
		if p == nil {
			continue
		}
		if best == nil || p.cost < best.cost {
			best = p
		}
	}
	if best == nil {
		return nil, apperror.Wrap(errors.Join(errs...), apperror.CodeNoSteinerTree,
			"no steiner tree was found").
			WithDetails("signal", r.Signal)
	}

	// Reserve the winner's join nodes for the rest of the pre-pass.
	for n := range best.nodes {
		g.Costs[n].Usage = 1
	}

	return &fabric.SteinerTree{
		Nodes:        best.nodes,
		SteinerNodes: best.steinerNodes,
	}, nil
}

// buildPlan evaluates one trunk hypothesis for the pre-planner and
// constructs the anchor skeletons along the trunk.
func buildPlan(g *fabric.FabricGraph, r *fabric.Routing, baseSink int, dists map[int][]float32) (*steinerPlan, error) {
	cand, err := buildCandidate(g, r, baseSink, dists, true)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int]bool, len(cand.midPoints))
	for _, mid := range cand.midPoints {
		nodes[mid] = true
	}

	// The skeleton of a sink is the signal, then every join node the
	// trunk passes before the sink's own join point, then the sink.
	steinerNodes := make(map[int][]int, len(r.Sinks))
	for _, sink := range r.Sinks {
		mid, ok := cand.midPoints[sink]
		if !ok {
			return nil, apperror.Newf(apperror.CodeInternal, "no join point calculated for sink %d", sink)
		}
		skeleton := []int{r.Signal}
		for _, n := range cand.basePath {
			if n == mid {
				skeleton = append(skeleton, sink)
				steinerNodes[sink] = skeleton
				break
			}
			if nodes[n] {
				skeleton = append(skeleton, n)
			}
		}
	}

	return &steinerPlan{
		nodes:        nodes,
		steinerNodes: steinerNodes,
		cost:         cand.cost,
	}, nil
}

// PreProcess runs pre-planning over the whole plan. Nets are processed
// sequentially because every net's choice consults the usage markers set
// by earlier nets. Overlapping reservations are a programmer error and
// fail the pass. The usage markers are wiped before returning.
func PreProcess(g *fabric.FabricGraph, plan []*fabric.Routing) error {
	reserved := make(map[int]bool)
	for i, route := range plan {
		tree, err := PreCalcSteinerTree(g, route)
		if err != nil {
			return err
		}
		for n := range tree.Nodes {
			if reserved[n] {
				return apperror.NewCritical(apperror.CodeOverlappingPrePlan,
					"steiner node is already reserved by an earlier net").
					WithDetails("node", n).
					WithDetails("net", i)
			}
		}
		for n := range tree.Nodes {
			reserved[n] = true
		}
		route.SteinerTree = tree
	}
	g.ResetUsage()
	return nil
}
