// The router binary is the command-line front end of the congestion
// negotiated router: it routes a net list against a fabric, generates
// random test plans, emits FASM, validates finished routings, runs
// search benchmarks and renders sweep reports.
package main

import (
	"fmt"
	"os"

	"github.com/SirJonasM/fpga-router/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger.Init("info")

	var err error
	switch os.Args[1] {
	case "route":
		err = runRoute(os.Args[2:])
	case "create-test":
		err = runCreateTest(os.Args[2:])
	case "fasm":
		err = runFASM(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "bench":
		err = runBench(os.Args[2:])
	case "sweep":
		err = runSweep(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("command failed", "command", os.Args[1], "error", err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `FPGA Routing Utility

Usage: router <command> [flags]

Commands:
  route        Route a net list against a fabric graph
  create-test  Create a random test route plan
  fasm         Convert a routed plan to FASM
  validate     Validate a routed plan against a fabric graph
  bench        Compare search strategies on a fabric graph
  sweep        Run a load/destination sweep and render a report

Run 'router <command> -h' for command flags.
`)
}
