package fabric

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// Routing is one net of the route plan: a source signal that must reach
// every sink through a conflict-free sub-tree of the fabric.
type Routing struct {
	// Signal is the source node index.
	Signal int
	// Sinks are the destination node indices.
	Sinks []int
	// Result is the routing computed in the last iteration, if any.
	Result *RoutingResult
	// SteinerTree is the pre-planned anchor skeleton, set only for the
	// pre-planned solver.
	SteinerTree *SteinerTree
}

// RoutingResult is the solved routing of one net.
type RoutingResult struct {
	// Paths maps each sink to the node path from the signal to it.
	Paths map[int][]int
	// Nodes is the union of all path nodes.
	Nodes map[int]bool
}

// SteinerTree is a pre-planned anchor skeleton for a net.
type SteinerTree struct {
	// SteinerNodes maps each sink to the ordered anchor points from the
	// signal to the sink (first element is the signal, last is the sink).
	SteinerNodes map[int][]int
	// Nodes is the set of chosen join points.
	Nodes map[int]bool
}

// RoutingExpanded is the serialized form of a Routing, with node indices
// replaced by full "{id}/X{x}Y{y}" identifiers.
type RoutingExpanded struct {
	// Sinks are the destination node identifiers.
	Sinks []string `json:"sinks"`
	// Signal is the source node identifier.
	Signal string `json:"signal"`
	// Result is the routing result, omitted while unsolved.
	Result *RoutingResultExpanded `json:"result,omitempty"`
}

// RoutingResultExpanded is the serialized form of a RoutingResult.
type RoutingResultExpanded struct {
	// Paths maps each sink identifier to its node-identifier path.
	Paths map[string][]string `json:"paths"`
	// Nodes is the sorted union of all used node identifiers.
	Nodes []string `json:"nodes"`
}

// Expand converts the routing into its serialized form.
func (r *Routing) Expand(g *FabricGraph) *RoutingExpanded {
	sinks := make([]string, len(r.Sinks))
	for i, s := range r.Sinks {
		sinks[i] = g.Nodes[s].FullID()
	}
	out := &RoutingExpanded{
		Sinks:  sinks,
		Signal: g.Nodes[r.Signal].FullID(),
	}
	if r.Result != nil {
		out.Result = r.Result.Expand(g)
	}
	return out
}

// Expand converts the result into its serialized form. Node sets are
// emitted sorted so the output is deterministic.
func (r *RoutingResult) Expand(g *FabricGraph) *RoutingResultExpanded {
	paths := make(map[string][]string, len(r.Paths))
	for sink, path := range r.Paths {
		ids := make([]string, len(path))
		for i, n := range path {
			ids[i] = g.Nodes[n].FullID()
		}
		paths[g.Nodes[sink].FullID()] = ids
	}

	nodes := make([]string, 0, len(r.Nodes))
	for n := range r.Nodes {
		nodes = append(nodes, g.Nodes[n].FullID())
	}
	sort.Strings(nodes)

	return &RoutingResultExpanded{Paths: paths, Nodes: nodes}
}

// RoutingFromExpanded resolves an expanded routing against the graph.
// Unresolved identifiers fail loudly; a routing with no resolvable signal
// or an empty sink list is invalid.
func RoutingFromExpanded(expanded *RoutingExpanded, g *FabricGraph) (*Routing, error) {
	signal, err := resolveNode(expanded.Signal, g)
	if err != nil {
		return nil, err
	}
	if len(expanded.Sinks) == 0 {
		return nil, apperror.Newf(apperror.CodeInvalidRoutePlan,
			"net %s has no sinks", expanded.Signal)
	}
	sinks := make([]int, len(expanded.Sinks))
	for i, id := range expanded.Sinks {
		idx, err := resolveNode(id, g)
		if err != nil {
			return nil, err
		}
		sinks[i] = idx
	}

	routing := &Routing{Signal: signal, Sinks: sinks}
	if expanded.Result != nil {
		result, err := resultFromExpanded(expanded.Result, g)
		if err != nil {
			return nil, err
		}
		routing.Result = result
	}
	return routing, nil
}

func resultFromExpanded(expanded *RoutingResultExpanded, g *FabricGraph) (*RoutingResult, error) {
	paths := make(map[int][]int, len(expanded.Paths))
	for sinkID, pathIDs := range expanded.Paths {
		sink, err := resolveNode(sinkID, g)
		if err != nil {
			return nil, err
		}
		path := make([]int, len(pathIDs))
		for i, id := range pathIDs {
			idx, err := resolveNode(id, g)
			if err != nil {
				return nil, err
			}
			path[i] = idx
		}
		paths[sink] = path
	}

	nodes := make(map[int]bool, len(expanded.Nodes))
	for _, id := range expanded.Nodes {
		idx, err := resolveNode(id, g)
		if err != nil {
			return nil, err
		}
		nodes[idx] = true
	}
	return &RoutingResult{Paths: paths, Nodes: nodes}, nil
}

func resolveNode(fullID string, g *FabricGraph) (int, error) {
	node, err := ParseFullID(fullID)
	if err != nil {
		return 0, err
	}
	idx, ok := g.Index[node]
	if !ok {
		return 0, apperror.Newf(apperror.CodeUnresolvedNode,
			"node %q does not exist in the fabric graph", fullID)
	}
	return idx, nil
}

// RoutePlanExpandedFromFile reads an expanded route plan from a JSON file.
func RoutePlanExpandedFromFile(path string) ([]*RoutingExpanded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoadError, "error loading route plan: "+path)
	}
	var plan []*RoutingExpanded
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoadError, "error parsing route plan: "+path)
	}
	return plan, nil
}

// RoutePlanFromFile reads an expanded route plan from a JSON file and
// resolves it against the graph.
func (g *FabricGraph) RoutePlanFromFile(path string) ([]*Routing, error) {
	expanded, err := RoutePlanExpandedFromFile(path)
	if err != nil {
		return nil, err
	}
	plan := make([]*Routing, len(expanded))
	for i, e := range expanded {
		r, err := RoutingFromExpanded(e, g)
		if err != nil {
			return nil, err
		}
		plan[i] = r
	}
	return plan, nil
}

// ExpandPlan expands every routing of a plan.
func ExpandPlan(g *FabricGraph, plan []*Routing) []*RoutingExpanded {
	out := make([]*RoutingExpanded, len(plan))
	for i, r := range plan {
		out[i] = r.Expand(g)
	}
	return out
}
