package pathfinder

import (
	"time"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// IterationResult carries the telemetry of one negotiation iteration.
type IterationResult struct {
	// Iteration is the zero-based iteration number.
	Iteration int `json:"iteration"`
	// Config is the run configuration this result belongs to.
	Config Config `json:"config"`
	// Conflicts is the number of over-used nodes after this iteration.
	Conflicts int `json:"conflicts"`
	// LongestPathSignal and LongestPathSink identify the most expensive
	// sink path of the iteration, measured by base edge costs.
	LongestPathSignal int `json:"longest_path_signal"`
	LongestPathSink   int `json:"longest_path_sink"`
	// LongestPathCost is the base-cost sum along that path.
	LongestPathCost float32 `json:"longest_path_cost"`
	// TotalWireUse sums each net's distinct node count. Inter-net
	// sharing inflates this until the negotiation converges.
	TotalWireUse int `json:"total_wire_use"`
	// WireReuse is the mean, over nets, of times-used per distinct node
	// within the net.
	WireReuse float32 `json:"wire_reuse"`
	// DurationMicroseconds is the wall-clock time of the iteration.
	DurationMicroseconds int64 `json:"duration_microseconds"`
}

// analyze computes the iteration metrics from the freshly solved plan.
func analyze(conflicts int, duration time.Duration, g *fabric.FabricGraph, plan []*fabric.Routing) (*IterationResult, error) {
	result := &IterationResult{
		Conflicts:            conflicts,
		DurationMicroseconds: duration.Microseconds(),
	}

	totalWireUse := 0
	for _, route := range plan {
		if route.Result == nil {
			continue
		}

		for sink, path := range route.Result.Paths {
			if len(path) == 0 || path[0] != route.Signal || path[len(path)-1] != sink {
				return nil, apperror.Newf(apperror.CodeInternal,
					"malformed path for sink %d of signal %d", sink, route.Signal)
			}

			var cost float32
			for i := 0; i+1 < len(path); i++ {
				edge, ok := findEdge(g, path[i], path[i+1])
				if !ok {
					return nil, apperror.Newf(apperror.CodeMissingEdge,
						"graph does not contain the edge %d -> %d", path[i], path[i+1])
				}
				cost += edge.Cost
			}

			if result.LongestPathCost < cost {
				result.LongestPathSignal = route.Signal
				result.LongestPathSink = sink
				result.LongestPathCost = cost
			}
		}

		usages := make(map[int]int)
		for _, path := range route.Result.Paths {
			for _, n := range path {
				usages[n]++
			}
		}
		sum := 0
		for _, u := range usages {
			sum += u
		}
		if len(usages) > 0 {
			result.WireReuse += float32(sum) / float32(len(usages))
		}

		totalWireUse += len(route.Result.Nodes)
	}

	if len(plan) > 0 {
		result.WireReuse /= float32(len(plan))
	}
	result.TotalWireUse = totalWireUse
	return result, nil
}

func findEdge(g *fabric.FabricGraph, from, to int) (fabric.Edge, bool) {
	for _, e := range g.Map[from] {
		if e.To == to {
			return e, true
		}
	}
	return fabric.Edge{}, false
}
