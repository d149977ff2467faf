package fasm

import (
	"strings"
	"testing"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

func TestRoutingToFASM(t *testing.T) {
	plan := []*fabric.RoutingExpanded{{
		Signal: "LA_O.X1Y1/X1Y1",
		Sinks:  []string{"LA_I0.X1Y1/X1Y1"},
		Result: &fabric.RoutingResultExpanded{
			Paths: map[string][]string{
				"LA_I0.X1Y1": {"W.X1Y1", "W.X2Y1", "W.X3Y1"},
			},
		},
	}}

	out := RoutingToFASM(plan)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 FASM lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "W.X1Y1.X2Y1" || lines[1] != "W.X2Y1.X3Y1" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestRoutingToFASM_SkipsForeignPairs(t *testing.T) {
	plan := []*fabric.RoutingExpanded{{
		Result: &fabric.RoutingResultExpanded{
			Paths: map[string][]string{
				// Different wire prefixes and an id without a dot
				"s": {"W.X1Y1", "V.X2Y1", "plain", "V.X3Y1"},
			},
		},
	}}

	if out := RoutingToFASM(plan); out != "" {
		t.Errorf("expected no lines, got %q", out)
	}
}

func TestRoutingToFASM_DeduplicatesAcrossNets(t *testing.T) {
	result := &fabric.RoutingResultExpanded{
		Paths: map[string][]string{
			"s": {"W.X1Y1", "W.X2Y1"},
		},
	}
	plan := []*fabric.RoutingExpanded{
		{Result: result},
		{Result: result},
		{Result: nil}, // unsolved nets are skipped
	}

	if out := RoutingToFASM(plan); out != "W.X1Y1.X2Y1" {
		t.Errorf("expected a single deduplicated line, got %q", out)
	}
}
