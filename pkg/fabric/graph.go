package fabric

import (
	"bufio"
	"os"
	"strings"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// FabricGraph is the routing-resource graph of the FPGA fabric.
//
// The four slices are parallel-indexed: Nodes[i], Costs[i], Map[i] and
// MapReversed[i] all describe node i. The graph is built once from a pip
// file; afterwards only the Costs entries are mutated by the iteration
// driver.
type FabricGraph struct {
	// Index maps a node back to its index.
	Index map[Node]int
	// Nodes is the list of nodes in the graph.
	Nodes []Node
	// Costs holds the congestion state per node.
	Costs []Costs
	// Map is the forward adjacency list.
	Map [][]Edge
	// MapReversed is the reversed adjacency list, used for
	// all-targets shortest-path queries.
	MapReversed [][]Edge
}

// FromFile builds a FabricGraph from a pips.txt file.
//
// Each non-comment line is six comma-separated fields
// "<coord_a>,<id_a>,<coord_b>,<id_b>,<f5>,<f6>"; the last two fields are
// ignored. Every line creates (or finds) two nodes and one forward edge.
func FromFile(path string) (*FabricGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoadError, "error loading file: "+path)
	}
	defer f.Close()

	g := &FabricGraph{
		Index: make(map[Node]int),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		start, end, err := parsePipsLine(line)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLoadError, "malformed pip line").
				WithDetails("file", path).
				WithDetails("line", lineNo)
		}

		sid := g.getOrInsert(start)
		eid := g.getOrInsert(end)

		cost := distance(start, end)
		g.Map[sid] = append(g.Map[sid], Edge{To: eid, Cost: cost})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoadError, "error reading file: "+path)
	}
	if len(g.Nodes) == 0 {
		return nil, apperror.ErrEmptyGraph
	}

	g.MapReversed = reversedMap(g.Nodes, g.Map)
	return g, nil
}

// parsePipsLine splits one pip line into its two endpoint nodes.
func parsePipsLine(line string) (Node, Node, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return Node{}, Node{}, apperror.Newf(apperror.CodeMalformedLine,
			"expected 6 comma-separated fields, got %d", len(fields))
	}

	ax, ay, err := ParseCoords(strings.TrimSpace(fields[0]))
	if err != nil {
		return Node{}, Node{}, err
	}
	bx, by, err := ParseCoords(strings.TrimSpace(fields[2]))
	if err != nil {
		return Node{}, Node{}, err
	}

	start := Node{ID: strings.TrimSpace(fields[1]), X: ax, Y: ay}
	end := Node{ID: strings.TrimSpace(fields[3]), X: bx, Y: by}
	return start, end, nil
}

// getOrInsert returns the index of the node, appending it to the parallel
// slices if it is new.
func (g *FabricGraph) getOrInsert(n Node) int {
	if id, ok := g.Index[n]; ok {
		return id
	}
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.Costs = append(g.Costs, NewCosts())
	g.Map = append(g.Map, nil)
	g.Index[n] = id
	return id
}

// distance is the base cost between two nodes (Manhattan distance).
func distance(a, b Node) float32 {
	return float32(1 + absDiff(a.X, b.X) + absDiff(a.Y, b.Y))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// reversedMap generates the reversed adjacency list from the forward map.
func reversedMap(nodes []Node, fwd [][]Edge) [][]Edge {
	rev := make([][]Edge, len(nodes))
	for u, edges := range fwd {
		for _, e := range edges {
			rev[e.To] = append(rev[e.To], Edge{To: u, Cost: e.Cost})
		}
	}
	return rev
}

// ResetUsage wipes the per-iteration usage counter on every node.
func (g *FabricGraph) ResetUsage() {
	for i := range g.Costs {
		g.Costs[i].Usage = 0
	}
}

// EdgeCount returns the number of directed edges in the graph.
func (g *FabricGraph) EdgeCount() int {
	n := 0
	for _, edges := range g.Map {
		n += len(edges)
	}
	return n
}

// BucketLUTs partitions node indices into LUT inputs and LUT outputs.
// Generic nodes are in neither bucket.
func BucketLUTs(nodes []Node) (inputs, outputs []int) {
	for i, node := range nodes {
		switch node.Class() {
		case ClassLutInput:
			inputs = append(inputs, i)
		case ClassLutOutput:
			outputs = append(outputs, i)
		}
	}
	return inputs, outputs
}
