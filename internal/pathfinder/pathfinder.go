// Package pathfinder implements the iterative negotiated-congestion
// driver. Each iteration routes every net with the configured solver,
// accumulates node usage, amortizes over-use into the historic cost, and
// repeats until no node is shared between nets or the iteration cap is
// reached.
package pathfinder

import (
	"sync/atomic"
	"time"

	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// stagnationWindow is the number of consecutive iterations with an
// unchanged conflict count after which the pre-planned solver rebuilds
// its steiner skeletons. The counter is monotonic: it is not reset when
// the conflict count changes, so the rebuild fires at most once per run.
const stagnationWindow = 200

// Config parameterizes one routing run.
type Config struct {
	// ID is a driver-assigned, monotonically increasing run id.
	ID uint64 `json:"id"`
	// HistFactor scales how fast over-use accumulates into the
	// historic cost.
	HistFactor float32 `json:"hist_factor"`
	// Solver selects the route-solution strategy.
	Solver solver.Type `json:"solver"`
	// MaxIterations caps the negotiation loop.
	MaxIterations int `json:"max_iterations"`
}

var configCounter atomic.Uint64

// NewConfig builds a Config with a fresh run id.
func NewConfig(histFactor float32, st solver.Type, maxIterations int) Config {
	return Config{
		ID:            configCounter.Add(1) - 1,
		HistFactor:    histFactor,
		Solver:        st,
		MaxIterations: maxIterations,
	}
}

// DefaultConfig returns the default run parameters.
func DefaultConfig() Config {
	return NewConfig(0.1, solver.TypeSimple, 1000)
}

// Logging receives one IterationResult per iteration, synchronously,
// before the termination checks.
type Logging interface {
	Log(result *IterationResult)
}

// Route executes the negotiation loop for a route plan.
//
// On convergence it returns the final IterationResult and a nil error.
// If the iteration cap is reached with conflicts left, the final result
// is returned together with an UNRESOLVED_CONGESTION error; the caller
// can still inspect the metrics. Solver and pre-planning failures are
// fatal and return a nil result.
func Route(plan []*fabric.Routing, g *fabric.FabricGraph, cfg Config, log Logging) (*IterationResult, error) {
	s, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, err
	}

	if cfg.Solver == solver.TypeSimpleSteiner {
		if err := solver.PreProcess(g, plan); err != nil {
			return nil, err
		}
	}

	i := 0
	lastConflicts := 0
	sameConflicts := 0
	for {
		result, err := iteration(g, plan, s, cfg.HistFactor)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.Code(err), "routing iteration failed").
				WithDetails("iteration", i)
		}
		result.Iteration = i
		result.Config = cfg

		log.Log(result)

		if result.Conflicts == lastConflicts {
			sameConflicts++
		}
		if result.Conflicts == 0 {
			return result, nil
		}
		if i == cfg.MaxIterations {
			return result, apperror.Newf(apperror.CodeUnresolvedCongestion,
				"reached %d iterations with %d conflicts left", i, result.Conflicts).
				WithDetails("conflicts", result.Conflicts)
		}
		lastConflicts = result.Conflicts

		if sameConflicts == stagnationWindow && cfg.Solver == solver.TypeSimpleSteiner {
			// The plan is stuck; re-plan the skeletons against the
			// accumulated historic costs and keep negotiating.
			if err := solver.PreProcess(g, plan); err != nil {
				return nil, err
			}
		}
		i++
	}
}

// iteration routes every net once, accumulates usage, updates the
// historic costs and counts the over-used nodes.
func iteration(g *fabric.FabricGraph, plan []*fabric.Routing, s solver.Solver, histFactor float32) (*IterationResult, error) {
	start := time.Now()

	for _, route := range plan {
		if err := s.Solve(g, route); err != nil {
			return nil, err
		}
		if route.Result != nil {
			for n := range route.Result.Nodes {
				g.Costs[n].Usage++
			}
		}
	}

	conflicts := 0
	for i := range g.Costs {
		if g.Costs[i].Update(histFactor) {
			conflicts++
		}
	}

	return analyze(conflicts, time.Since(start), g, plan)
}
