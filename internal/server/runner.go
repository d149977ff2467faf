package server

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/internal/validators"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/cache"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/logger"
)

// Runner drains the schedule queue and executes tests with bounded
// concurrency.
type Runner struct {
	state *AppState
	sem   chan struct{}
}

// NewRunner builds a runner with the configured concurrency.
func NewRunner(state *AppState) *Runner {
	n := state.cfg.Router.Runners
	if n <= 0 {
		n = 5
	}
	return &Runner{
		state: state,
		sem:   make(chan struct{}, n),
	}
}

// Run polls the queue until the context is cancelled. Each popped test
// runs on its own goroutine, gated by the concurrency semaphore.
func (r *Runner) Run(ctx context.Context) {
	for {
		id, ok := r.state.popQueue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case r.sem <- struct{}{}:
		}

		go func(id uint64) {
			defer func() { <-r.sem }()
			r.runTest(ctx, id)
		}(id)
	}
}

// runTest executes one scheduled test end to end.
func (r *Runner) runTest(ctx context.Context, id uint64) {
	test, ok := r.state.Test(id)
	if !ok {
		logger.Warn("scheduled test vanished", "test_id", id)
		return
	}

	r.state.setState(id, TestState{Type: StateRunning})
	log := logger.WithTest(id)

	solverType, err := solver.ParseType(test.Solver)
	if err != nil {
		log.Error("invalid solver in test", "error", err)
		r.state.setState(id, TestState{Type: StateUndefined})
		return
	}

	// Served from the result cache when an identical sweep cell was
	// already computed.
	cacheKey := r.cacheKey(test, solverType)
	if cached := r.lookupCache(ctx, cacheKey); cached != nil {
		log.Info("serving test from result cache", "iterations", cached.Iterations)
		r.state.setResult(id, cached.Routing)
		r.state.setState(id, TestState{Type: StateSuccessful, Value: cached.Iterations})
		return
	}

	graph, err := fabric.FromFile(r.state.cfg.Router.PipsPath)
	if err != nil {
		log.Error("could not load fabric graph", "error", err)
		r.state.setState(id, TestState{Type: StateUndefined})
		return
	}
	if r.state.metrics != nil {
		r.state.metrics.ObserveGraph(len(graph.Nodes), graph.EdgeCount())
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	plan, err := fabric.GeneratePlan(graph, float64(test.Percentage)/100, test.Dst, rng)
	if err != nil {
		log.Error("could not generate route plan", "error", err)
		r.state.setState(id, TestState{Type: StateUndefined})
		return
	}

	cfg := pathfinder.Config{
		ID:            test.ID,
		HistFactor:    float32(test.HistFactor),
		Solver:        solverType,
		MaxIterations: r.state.cfg.Router.MaxIterations,
	}

	start := time.Now()
	result, err := pathfinder.Route(plan, graph, cfg, r.state)
	duration := time.Since(start)

	switch {
	case err == nil:
		if verr := validators.Validate(graph, plan); verr != nil {
			log.Error("converged routing failed validation", "error", verr)
			r.state.setState(id, TestState{Type: StateUndefined})
			return
		}
		expanded := fabric.ExpandPlan(graph, plan)
		r.state.setResult(id, expanded)
		r.state.setState(id, TestState{Type: StateSuccessful, Value: result.Iteration})
		r.storeCache(ctx, cacheKey, result, expanded)
		if r.state.metrics != nil {
			r.state.metrics.ObserveRouteRun(string(solverType), true, result.Iteration, duration)
		}
		log.Info("test converged", "iterations", result.Iteration, "duration", duration)

	case apperror.Is(err, apperror.CodeUnresolvedCongestion):
		r.state.setState(id, TestState{Type: StateFailed, Value: result.Conflicts})
		if r.state.metrics != nil {
			r.state.metrics.ObserveRouteRun(string(solverType), false, result.Iteration, duration)
		}
		log.Warn("test failed to converge", "conflicts", result.Conflicts)

	default:
		log.Error("test run failed", "error", err)
		r.state.setState(id, TestState{Type: StateUndefined})
	}
}

func (r *Runner) cacheKey(test *Test, solverType solver.Type) string {
	if r.state.routeCache == nil {
		return ""
	}
	// Graph hash + sweep-cell parameters. The random plan itself is not
	// part of the key; an enabled cache trades re-randomization for
	// repeatable sweep cells.
	cell := fmt.Sprintf("p%d:d%d", test.Percentage, test.Dst)
	return cache.BuildRouteKey(r.state.graphHash,
		cell, string(solverType), test.HistFactor, r.state.cfg.Router.MaxIterations)
}

func (r *Runner) lookupCache(ctx context.Context, key string) *cache.CachedRouteResult {
	if r.state.routeCache == nil || key == "" {
		return nil
	}
	cached, hit, err := r.state.routeCache.Get(ctx, key)
	if err != nil {
		logger.Warn("route cache lookup failed", "error", err)
		return nil
	}
	if r.state.metrics != nil {
		label := "miss"
		if hit {
			label = "hit"
		}
		r.state.metrics.CacheHitsTotal.WithLabelValues(label).Inc()
	}
	if !hit {
		return nil
	}
	return cached
}

func (r *Runner) storeCache(ctx context.Context, key string, result *pathfinder.IterationResult, routing []*fabric.RoutingExpanded) {
	if r.state.routeCache == nil || key == "" {
		return
	}
	entry := &cache.CachedRouteResult{
		Iterations:      result.Iteration,
		Conflicts:       result.Conflicts,
		TotalWireUse:    result.TotalWireUse,
		WireReuse:       result.WireReuse,
		LongestPathCost: result.LongestPathCost,
		Routing:         routing,
		ComputedAt:      time.Now(),
	}
	if err := r.state.routeCache.Put(ctx, key, entry); err != nil {
		logger.Warn("route cache store failed", "error", err)
	}
}
