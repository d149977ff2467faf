// Package solver implements the three route-solution strategies of the
// negotiation pipeline: per-sink shortest paths, a two-level Steiner
// approximation, and a pre-planned Steiner walk.
//
// # Thread Safety
//
// Solvers only read the graph; each Solve call mutates nothing but the
// routing passed to it. Per-sink shortest-path work inside a solve runs
// in parallel over the immutable graph view.
package solver

import (
	"strings"
	"sync"

	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// Type selects one of the routing strategies. The set is closed.
type Type string

const (
	// TypeSimple routes every sink independently.
	TypeSimple Type = "simple"
	// TypeSteiner picks the best trunk per iteration and grafts the
	// remaining sinks onto it.
	TypeSteiner Type = "steiner"
	// TypeSimpleSteiner walks a pre-planned anchor skeleton.
	TypeSimpleSteiner Type = "simple-steiner"
)

// ParseType parses a solver name. It accepts both the CLI spelling
// ("simple-steiner") and the job-API spelling ("SimpleSteinerSolver").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "simplesolver":
		return TypeSimple, nil
	case "steiner", "steinersolver":
		return TypeSteiner, nil
	case "simple-steiner", "simple_steiner", "simplesteiner", "simplesteinersolver":
		return TypeSimpleSteiner, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidSolverType, "unknown solver: %q", s)
	}
}

// Solver computes the routing of a single net against the current graph
// costs, writing the result back into the net.
type Solver interface {
	Solve(g *fabric.FabricGraph, r *fabric.Routing) error
	Identifier() string
}

// New returns the solver implementation for a type.
func New(t Type) (Solver, error) {
	switch t {
	case TypeSimple:
		return SimpleSolver{}, nil
	case TypeSteiner:
		return SteinerSolver{}, nil
	case TypeSimpleSteiner:
		return SimpleSteinerSolver{}, nil
	default:
		return nil, apperror.Newf(apperror.CodeInvalidSolverType, "unknown solver: %q", string(t))
	}
}

// allSinkDistances computes ShortestPathAll for every sink in parallel.
// The result maps a sink to the distance-to-sink vector for all nodes.
func allSinkDistances(g *fabric.FabricGraph, sinks []int) map[int][]float32 {
	vectors := make([][]float32, len(sinks))
	var wg sync.WaitGroup
	for i, sink := range sinks {
		wg.Add(1)
		go func(i, sink int) {
			defer wg.Done()
			vectors[i] = algorithms.ShortestPathAll(g, sink)
		}(i, sink)
	}
	wg.Wait()

	dists := make(map[int][]float32, len(sinks))
	for i, sink := range sinks {
		dists[sink] = vectors[i]
	}
	return dists
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
