// Package validators checks a finished route plan against the fabric
// graph: every net must carry a result, all node references must be in
// range, no node may be claimed by more than one net, and every sink must
// be reachable from its signal inside the net's own node set.
package validators

import (
	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// Validate enforces all routing invariants and returns the first
// violation as an error, or nil when the plan is valid. Validation is
// read-only and idempotent.
func Validate(g *fabric.FabricGraph, plan []*fabric.Routing) error {
	if errs := ValidateAll(g, plan); errs.HasErrors() {
		return errs.First()
	}
	return nil
}

// ValidateAll collects every invariant violation of the plan instead of
// stopping at the first one.
func ValidateAll(g *fabric.FabricGraph, plan []*fabric.Routing) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	usedGlobal := make(map[int]int) // node -> first net claiming it
	nodeCount := len(g.Nodes)

	for netIdx, route := range plan {
		if route.Result == nil {
			errs.Add(apperror.Newf(apperror.CodeMissingResult,
				"net %d has no routing result", netIdx).
				WithDetails("net", netIdx))
			continue
		}

		valid := true

		// All referenced nodes exist.
		for n := range route.Result.Nodes {
			if n < 0 || n >= nodeCount {
				errs.Add(apperror.Newf(apperror.CodeInvalidNodeIndex,
					"net %d contains invalid node index %d (out of range)", netIdx, n).
					WithDetails("net", netIdx).
					WithDetails("node", n))
				valid = false
			}
		}
		if route.Signal < 0 || route.Signal >= nodeCount {
			errs.Add(apperror.Newf(apperror.CodeInvalidNodeIndex,
				"net %d uses invalid signal node %d", netIdx, route.Signal).
				WithDetails("net", netIdx))
			valid = false
		}
		for _, sink := range route.Sinks {
			if sink < 0 || sink >= nodeCount {
				errs.Add(apperror.Newf(apperror.CodeInvalidNodeIndex,
					"net %d has invalid sink %d", netIdx, sink).
					WithDetails("net", netIdx).
					WithDetails("sink", sink))
				valid = false
			}
		}
		if !valid {
			continue
		}

		// Exclusivity: no node belongs to more than one net.
		for n := range route.Result.Nodes {
			if other, taken := usedGlobal[n]; taken {
				errs.Add(apperror.Newf(apperror.CodeNodeConflict,
					"node %d is used by more than one net (nets %d and %d)", n, other, netIdx).
					WithDetails("node", n).
					WithDetails("nets", []int{other, netIdx}))
			} else {
				usedGlobal[n] = netIdx
			}
		}

		// Reachability: every sink inside the net's own node set.
		for _, sink := range route.Sinks {
			if !algorithms.ReachableWithin(g, route.Signal, sink, route.Result.Nodes) {
				errs.Add(apperror.Newf(apperror.CodeUnreachableInTree,
					"net %d: sink %d is not reachable from signal %d using the net's nodes",
					netIdx, sink, route.Signal).
					WithDetails("net", netIdx).
					WithDetails("sink", sink))
			}
		}
	}

	return errs
}
