package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/SirJonasM/fpga-router/internal/fasm"
	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/internal/validators"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/cache"
	"github.com/SirJonasM/fpga-router/pkg/config"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/logger"
)

func runRoute(args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	graphPath := fs.String("graph", "pips.txt", "fabric pip file")
	routingList := fs.String("routing-list", "", "route plan JSON file")
	output := fs.String("output", "routing.json", "output file, .json or .fasm")
	solverName := fs.String("solver", "simple", "simple, steiner or simple-steiner")
	histFactor := fs.Float64("hist-factor", 0.1, "historic cost factor")
	loggerKind := fs.String("logger", "terminal", "no, terminal or file")
	logFile := fs.String("log-file", "", "iteration log file (for -logger file)")
	maxIterations := fs.Int("max-iterations", 2000, "iteration cap")
	fs.Parse(args)

	if *routingList == "" {
		return apperror.New(apperror.CodeInvalidArgument, "missing -routing-list")
	}

	solverType, err := solver.ParseType(*solverName)
	if err != nil {
		return err
	}

	iterLog, closeLog, err := buildIterationLogger(*loggerKind, *logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	graph, err := fabric.FromFile(*graphPath)
	if err != nil {
		return err
	}
	plan, err := graph.RoutePlanFromFile(*routingList)
	if err != nil {
		return err
	}
	logger.Info("fabric graph loaded",
		"nodes", len(graph.Costs),
		"edges", graph.EdgeCount(),
		"nets", len(plan),
	)

	cfg := pathfinder.NewConfig(float32(*histFactor), solverType, *maxIterations)

	// Optional result cache for repeated identical runs.
	appCfg, cfgErr := config.Load()
	var routeCache *cache.RouteCache
	var cacheKey string
	if cfgErr == nil && appCfg.Cache.Enabled {
		backend, err := cache.New(cache.FromConfig(&appCfg.Cache))
		if err != nil {
			logger.Warn("cache disabled, could not connect", "error", err)
		} else {
			defer backend.Close()
			routeCache = cache.NewRouteCache(backend, appCfg.Cache.DefaultTTL)
			cacheKey = cache.BuildRouteKey(
				cache.GraphHash(graph), cache.PlanHash(graph, plan),
				string(solverType), *histFactor, *maxIterations)
		}
	}

	ctx := context.Background()
	if routeCache != nil {
		if cached, hit, err := routeCache.Get(ctx, cacheKey); err == nil && hit {
			logger.Info("serving routing from cache", "iterations", cached.Iterations)
			return writeRoutingOutput(*output, cached.Routing)
		}
	}

	result, err := pathfinder.Route(plan, graph, cfg, iterLog)
	switch {
	case err == nil:
		logger.Info("routing converged", "iterations", result.Iteration)
	case apperror.Is(err, apperror.CodeUnresolvedCongestion):
		logger.Error("routing failed to converge",
			"iterations", result.Iteration,
			"conflicts", result.Conflicts,
		)
		return err
	default:
		return err
	}

	if err := validators.Validate(graph, plan); err != nil {
		return err
	}

	expanded := fabric.ExpandPlan(graph, plan)
	if routeCache != nil {
		routeCache.Put(ctx, cacheKey, &cache.CachedRouteResult{
			Iterations:      result.Iteration,
			Conflicts:       result.Conflicts,
			TotalWireUse:    result.TotalWireUse,
			WireReuse:       result.WireReuse,
			LongestPathCost: result.LongestPathCost,
			Routing:         expanded,
			ComputedAt:      time.Now(),
		})
	}

	if err := writeRoutingOutput(*output, expanded); err != nil {
		return err
	}
	logger.Info("wrote the routing", "path", *output)
	return nil
}

// writeRoutingOutput writes the expanded plan either as FASM or as
// pretty-printed JSON, selected by the output extension.
func writeRoutingOutput(path string, expanded []*fabric.RoutingExpanded) error {
	var out []byte
	if strings.HasSuffix(path, "fasm") {
		out = []byte(fasm.RoutingToFASM(expanded))
	} else {
		var err error
		out, err = json.MarshalIndent(expanded, "", "  ")
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, out, 0644)
}

// buildIterationLogger maps the -logger flag onto a Logging sink.
func buildIterationLogger(kind, logFile string) (pathfinder.Logging, func(), error) {
	switch kind {
	case "no":
		return pathfinder.NopLogger{}, func() {}, nil
	case "terminal":
		return pathfinder.TerminalLogger{}, func() {}, nil
	case "file":
		if logFile == "" {
			return nil, nil, apperror.New(apperror.CodeInvalidArgument, "missing -log-file for -logger file")
		}
		fl, err := pathfinder.NewFileLogger(logFile)
		if err != nil {
			return nil, nil, err
		}
		return fl, func() { fl.Close() }, nil
	default:
		return nil, nil, apperror.Newf(apperror.CodeInvalidArgument, "unknown logger kind: %q", kind)
	}
}
