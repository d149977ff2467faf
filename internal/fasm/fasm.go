// Package fasm converts an expanded route plan into FASM feature lines.
package fasm

import (
	"sort"
	"strings"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// RoutingToFASM renders every routed pip of the plan as a FASM line.
// Lines are deduplicated and sorted.
func RoutingToFASM(expandedNets []*fabric.RoutingExpanded) string {
	lines := make(map[string]bool)

	for _, net := range expandedNets {
		if net.Result == nil {
			continue
		}
		for _, path := range net.Result.Paths {
			for i := 0; i+1 < len(path); i++ {
				if line, ok := nodesToFASMLine(path[i], path[i+1]); ok {
					lines[line] = true
				}
			}
		}
	}

	sorted := make([]string, 0, len(lines))
	for line := range lines {
		sorted = append(sorted, line)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, "\n")
}

// nodesToFASMLine extracts "TILE.WIRE_IN.WIRE_OUT" from two node ids.
// Only pairs sharing the dotted tile prefix produce a line.
func nodesToFASMLine(uID, vID string) (string, bool) {
	uParts := strings.Split(uID, ".")
	vParts := strings.Split(vID, ".")

	if len(uParts) < 2 || len(vParts) < 2 {
		return "", false
	}
	if uParts[0] != vParts[0] {
		return "", false
	}
	return uParts[0] + "." + uParts[1] + "." + vParts[1], true
}
