package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/internal/report"
	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/logger"
)

// runSweep routes a grid of generated plans (load percentage x sinks per
// net) and renders the outcome as a report.
func runSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	graphPath := fs.String("graph", "pips.txt", "fabric pip file")
	percentages := fs.String("percentages", "10,20,30", "comma-separated load percentages")
	destinations := fs.String("destinations", "1,2,3", "comma-separated sink counts")
	solverName := fs.String("solver", "simple", "simple, steiner or simple-steiner")
	histFactor := fs.Float64("hist-factor", 0.1, "historic cost factor")
	maxIterations := fs.Int("max-iterations", 2000, "iteration cap per run")
	format := fs.String("format", "typst", "typst, csv, xlsx or pdf")
	output := fs.String("output", "", "output file, defaults to sweep.<ext>")
	compile := fs.Bool("compile", false, "compile the typst report to SVG")
	seed := fs.Int64("seed", 0, "RNG seed, 0 for time-based")
	fs.Parse(args)

	percs, err := parseIntList(*percentages)
	if err != nil {
		return err
	}
	dests, err := parseIntList(*destinations)
	if err != nil {
		return err
	}
	solverType, err := solver.ParseType(*solverName)
	if err != nil {
		return err
	}
	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	data := &report.ReportData{
		Title:       "Routing Sweep",
		Author:      "fpga-router",
		Percentages: percs,
		DestCounts:  dests,
	}

	for _, perc := range percs {
		for _, dst := range dests {
			// Every cell runs against a fresh graph: historic costs
			// must not leak between runs.
			graph, err := fabric.FromFile(*graphPath)
			if err != nil {
				return err
			}
			plan, err := fabric.GeneratePlan(graph, float64(perc)/100, dst, rng)
			if err != nil {
				return err
			}

			cfg := pathfinder.NewConfig(float32(*histFactor), solverType, *maxIterations)
			result, err := pathfinder.Route(plan, graph, cfg, pathfinder.NopLogger{})

			run := &report.RunResult{
				Percentage:   perc,
				Destinations: dst,
				Result:       result,
			}
			switch {
			case err == nil:
				run.Converged = true
				logger.Info("sweep cell converged",
					"percentage", perc, "destinations", dst, "iterations", result.Iteration)
			case apperror.Is(err, apperror.CodeUnresolvedCongestion):
				logger.Warn("sweep cell failed to converge",
					"percentage", perc, "destinations", dst, "conflicts", result.Conflicts)
			default:
				return err
			}
			data.Runs = append(data.Runs, run)
		}
	}

	gen, err := report.New(reportFormat)
	if err != nil {
		return err
	}
	rendered, err := gen.Generate(context.Background(), data)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = "sweep" + reportFormat.Extension()
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, rendered, 0644); err != nil {
		return err
	}
	logger.Info("sweep report written", "path", out)

	if *compile && reportFormat == report.FormatTypst {
		return report.CompileTypst(context.Background(), out)
	}
	return nil
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, apperror.Newf(apperror.CodeInvalidArgument, "invalid number %q in list", p)
		}
		out = append(out, n)
	}
	return out, nil
}
