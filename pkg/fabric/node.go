// Package fabric models the FPGA interconnect fabric: nodes, edges,
// per-node congestion costs, the fabric graph itself, and the routing
// requests (nets) that are solved against it.
package fabric

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// Node is a routing resource on the FPGA fabric, identified by its wire
// id and tile coordinates.
type Node struct {
	// ID is the wire identifier inside a tile (e.g. "LA_O", "LA_I2", "N1BEG0").
	ID string
	// X coordinate on the FPGA fabric
	X uint8
	// Y coordinate on the FPGA fabric
	Y uint8
}

// FullID returns the globally unique identifier "{id}/X{x}Y{y}".
func (n Node) FullID() string {
	return fmt.Sprintf("%s/X%dY%d", n.ID, n.X, n.Y)
}

// Class is the coarse classification of a node derived from its id.
type Class int

const (
	// ClassDefault is any node that is not a LUT terminal.
	ClassDefault Class = iota
	// ClassLutInput is an input pin of a LUT.
	ClassLutInput
	// ClassLutOutput is the output pin of a LUT.
	ClassLutOutput
)

// Class classifies the node by inspecting its id.
//
// The discrimination is string-prefix based: LUT wires start with 'L' and
// carry 'O' (output) or 'I' (input) at position 3 ("LA_O", "LA_I0"). This
// matches the pip-file naming convention and is deliberately kept in one
// place.
func (n Node) Class() Class {
	if len(n.ID) < 4 || n.ID[0] != 'L' {
		return ClassDefault
	}
	switch n.ID[3] {
	case 'O':
		return ClassLutOutput
	case 'I':
		return ClassLutInput
	default:
		return ClassDefault
	}
}

// Edge is a directed connection to a destination node with its base cost.
type Edge struct {
	// To is the destination node index.
	To int
	// Cost is the congestion-free base cost of traversing this edge.
	Cost float32
}

// Costs carries the congestion state of a single node.
type Costs struct {
	// HistoricCost accumulates over routing iterations each time the
	// node is over-used. It never decreases.
	HistoricCost float32
	// Capacity is the number of nets that may use the node (1 on real
	// fabrics).
	Capacity float32
	// Usage counts how often the node was used in the current iteration.
	Usage uint32
}

// NewCosts returns the initial cost state for a node.
func NewCosts() Costs {
	return Costs{
		HistoricCost: 0,
		Capacity:     1,
		Usage:        0,
	}
}

// Update amortizes over-use into the historic cost and resets the usage
// counter for the next iteration.
//
// Returns true if the node was congested (usage > capacity).
func (c *Costs) Update(historicFactor float32) bool {
	usage := float32(c.Usage)
	overUse := usage - c.Capacity

	if overUse > 0 {
		c.HistoricCost += historicFactor * overUse
	}
	c.Usage = 0
	return overUse > 0
}

// CalcCosts computes the dynamic cost of entering this node over an edge
// with the given base cost.
func (c *Costs) CalcCosts(baseCost float32) float32 {
	return (baseCost + c.HistoricCost) * (1 + float32(c.Usage))
}

// ParseCoords parses a block coordinate of the form "X<num>Y<num>".
func ParseCoords(s string) (uint8, uint8, error) {
	if !strings.HasPrefix(s, "X") {
		return 0, 0, apperror.Newf(apperror.CodeInvalidCoords, "invalid block id, missing 'X': %s", s)
	}
	xPart, yPart, ok := strings.Cut(s[1:], "Y")
	if !ok {
		return 0, 0, apperror.Newf(apperror.CodeInvalidCoords, "invalid block id, missing 'Y': %s", s)
	}
	x, err := strconv.ParseUint(xPart, 10, 8)
	if err != nil {
		return 0, 0, apperror.Newf(apperror.CodeInvalidCoords, "invalid X number in block id: %s", s)
	}
	y, err := strconv.ParseUint(yPart, 10, 8)
	if err != nil {
		return 0, 0, apperror.Newf(apperror.CodeInvalidCoords, "invalid Y number in block id: %s", s)
	}
	return uint8(x), uint8(y), nil
}

// ParseFullID parses a "{id}/X{x}Y{y}" identifier back into a Node.
func ParseFullID(s string) (Node, error) {
	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return Node{}, apperror.Newf(apperror.CodeUnresolvedNode, "invalid node identifier: %s", s)
	}
	x, y, err := ParseCoords(s[idx+1:])
	if err != nil {
		return Node{}, err
	}
	return Node{ID: s[:idx], X: x, Y: y}, nil
}
