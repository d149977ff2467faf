// Package testutil provides fabric-graph builders shared by the solver,
// pathfinder and validator tests.
package testutil

import (
	"fmt"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// BuildGraph constructs a fabric graph from explicit nodes and directed
// edges. Edge base costs follow the Manhattan formula, like graphs
// loaded from a pip file.
func BuildGraph(nodes []fabric.Node, edges [][2]int) *fabric.FabricGraph {
	g := &fabric.FabricGraph{
		Index: make(map[fabric.Node]int, len(nodes)),
	}
	for i, n := range nodes {
		g.Nodes = append(g.Nodes, n)
		g.Costs = append(g.Costs, fabric.NewCosts())
		g.Map = append(g.Map, nil)
		g.MapReversed = append(g.MapReversed, nil)
		g.Index[n] = i
	}
	for _, e := range edges {
		a, b := e[0], e[1]
		cost := baseCost(nodes[a], nodes[b])
		g.Map[a] = append(g.Map[a], fabric.Edge{To: b, Cost: cost})
		g.MapReversed[b] = append(g.MapReversed[b], fabric.Edge{To: a, Cost: cost})
	}
	return g
}

// Line builds a straight 1xN chain n0 -> n1 -> ... placed on row y=0.
func Line(n int) *fabric.FabricGraph {
	nodes := make([]fabric.Node, n)
	for i := range nodes {
		nodes[i] = fabric.Node{ID: fmt.Sprintf("W%d", i), X: uint8(i), Y: 0}
	}
	edges := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return BuildGraph(nodes, edges)
}

func baseCost(a, b fabric.Node) float32 {
	dx := int(a.X) - int(b.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int(a.Y) - int(b.Y)
	if dy < 0 {
		dy = -dy
	}
	return float32(1 + dx + dy)
}

// At returns a plain node with the given id and coordinates.
func At(id string, x, y uint8) fabric.Node {
	return fabric.Node{ID: id, X: x, Y: y}
}
