package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/SirJonasM/fpga-router/internal/algorithms"
	"github.com/SirJonasM/fpga-router/internal/fasm"
	"github.com/SirJonasM/fpga-router/internal/validators"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/logger"
)

func runCreateTest(args []string) error {
	fs := flag.NewFlagSet("create-test", flag.ExitOnError)
	graphPath := fs.String("graph", "pips.txt", "fabric pip file")
	output := fs.String("output", "route_plan.json", "output route plan file")
	destinations := fs.Int("destinations", 1, "sinks per net")
	percentage := fs.Float64("percentage", 0.2, "fraction of LUT outputs used as signals")
	seed := fs.Int64("seed", 0, "RNG seed, 0 for time-based")
	fs.Parse(args)

	graph, err := fabric.FromFile(*graphPath)
	if err != nil {
		return err
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	plan, err := fabric.GeneratePlan(graph, *percentage, *destinations, rng)
	if err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(fabric.ExpandPlan(graph, plan), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, pretty, 0644); err != nil {
		return err
	}
	logger.Info("test route plan written", "path", *output, "nets", len(plan))
	return nil
}

func runFASM(args []string) error {
	fs := flag.NewFlagSet("fasm", flag.ExitOnError)
	routing := fs.String("routing", "", "routed plan JSON file")
	output := fs.String("output", "out.fasm", "FASM output file")
	fs.Parse(args)

	if *routing == "" {
		return apperror.New(apperror.CodeInvalidArgument, "missing -routing")
	}

	plan, err := fabric.RoutePlanExpandedFromFile(*routing)
	if err != nil {
		return err
	}
	return os.WriteFile(*output, []byte(fasm.RoutingToFASM(plan)), 0644)
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	graphPath := fs.String("graph", "pips.txt", "fabric pip file")
	routing := fs.String("routing", "", "routed plan JSON file")
	fs.Parse(args)

	if *routing == "" {
		return apperror.New(apperror.CodeInvalidArgument, "missing -routing")
	}

	graph, err := fabric.FromFile(*graphPath)
	if err != nil {
		return err
	}
	plan, err := graph.RoutePlanFromFile(*routing)
	if err != nil {
		return err
	}

	if err := validators.Validate(graph, plan); err != nil {
		fmt.Printf("Routing is invalid due to: %v\n", err)
		return err
	}
	fmt.Println("Routing is valid.")
	return nil
}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	graphPath := fs.String("graph", "pips.txt", "fabric pip file")
	runs := fs.Int("runs", 10, "random signal/sink pairs to probe")
	seed := fs.Int64("seed", 0, "RNG seed, 0 for time-based")
	fs.Parse(args)

	graph, err := fabric.FromFile(*graphPath)
	if err != nil {
		return err
	}

	inputs, outputs := fabric.BucketLUTs(graph.Nodes)
	if len(inputs) == 0 || len(outputs) == 0 {
		return apperror.New(apperror.CodeEmptyGraph, "fabric has no LUT terminals to probe")
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	fmt.Println("strategy,run,start,end,found,lookups,max_frontier,path_length")
	for i := 0; i < *runs; i++ {
		start := outputs[rng.Intn(len(outputs))]
		end := inputs[rng.Intn(len(inputs))]

		bfs, bfsOK := algorithms.BreadthFirstSearch(graph, start, end)
		dfs, dfsOK := algorithms.DepthFirstSearch(graph, start, end)
		dij, dijOK := algorithms.DijkstraProbe(graph, start, end)

		printProbe("bfs", i, start, end, bfs, bfsOK)
		printProbe("dfs", i, start, end, dfs, dfsOK)
		printProbe("dijkstra", i, start, end, dij, dijOK)
	}
	return nil
}

func printProbe(strategy string, run, start, end int, res algorithms.ProbeResult, found bool) {
	fmt.Printf("%s,%d,%d,%d,%t,%d,%d,%d\n",
		strategy, run, start, end, found, res.Lookups, res.MaxFrontier, res.PathLength)
}
