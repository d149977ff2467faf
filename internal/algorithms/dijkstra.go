// Package algorithms provides the cost-annotated shortest-path engine the
// routing solvers are built on, plus a couple of instrumented graph
// exploration probes used for benchmarking.
//
// # Determinism
//
// The priority key is a floating-point cumulative cost. Ties are broken
// by heap insertion sequence, which makes a single-threaded query
// deterministic. NaN costs sort as greater than everything.
//
// # Thread Safety
//
// All functions only read the graph. Concurrent queries over the same
// graph are safe as long as nobody mutates the cost vector concurrently.
package algorithms

import (
	"container/heap"
	"math"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// =============================================================================
// Dijkstra over the congestion-aware cost function
// =============================================================================
//
// The weight of an edge (u,v) is Costs[v].CalcCosts(edge.base), i.e. the
// dynamic cost of *entering* the destination node. Historic cost and
// current usage of v both make the edge less attractive, which is what
// drives the PathFinder negotiation.
//
// Time Complexity: O((V + E) log V) with binary heap
// Space Complexity: O(V)
// =============================================================================

// queueItem represents an element in the priority queue.
type queueItem struct {
	node int
	cost float32
	seq  uint64 // insertion sequence, secondary key for deterministic ties
}

// priorityQueue implements heap.Interface as a min-heap on cost.
type priorityQueue struct {
	items []queueItem
	seq   uint64
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	// NaN sorts as greater, bit-exact equality falls through to the
	// insertion sequence.
	if math.IsNaN(float64(a.cost)) {
		return false
	}
	if math.IsNaN(float64(b.cost)) {
		return true
	}
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.seq < b.seq
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x any) {
	pq.items = append(pq.items, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	pq.items = old[:n-1]
	return item
}

func (pq *priorityQueue) push(node int, cost float32) {
	pq.seq++
	heap.Push(pq, queueItem{node: node, cost: cost, seq: pq.seq})
}

const infCost = float32(math.MaxFloat32)

// ShortestPath finds the minimum-cost path from start to end under the
// congestion-aware cost function.
//
// Returns the path (start first, end last), its total cost, and false if
// the end is unreachable. ShortestPath(x, x) is ([x], 0, true).
func ShortestPath(g *fabric.FabricGraph, start, end int) ([]int, float32, bool) {
	n := len(g.Nodes)

	dist := make([]float32, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = infCost
		prev[i] = -1
	}
	dist[start] = 0

	pq := &priorityQueue{}
	pq.push(start, 0)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(queueItem)

		// Skip stale entries (already settled with a better distance)
		if current.cost > dist[current.node] {
			continue
		}

		// Reached destination, reconstruct the path
		if current.node == end {
			var path []int
			for at := end; at != -1; at = prev[at] {
				path = append(path, at)
			}
			reverse(path)
			return path, current.cost, true
		}

		for _, edge := range g.Map[current.node] {
			nextCost := current.cost + g.Costs[edge.To].CalcCosts(edge.Cost)
			if nextCost < dist[edge.To] {
				dist[edge.To] = nextCost
				prev[edge.To] = current.node
				pq.push(edge.To, nextCost)
			}
		}
	}

	return nil, 0, false
}

// ShortestPathAll computes, for every node v, the minimum cost of a path
// from v to src under the congestion-aware cost function.
//
// The relaxation is identical to ShortestPath but runs over the reversed
// adjacency list starting at src. Unreachable nodes stay at the maximum
// float32 value. ShortestPathAll(src)[src] is 0.
func ShortestPathAll(g *fabric.FabricGraph, src int) []float32 {
	n := len(g.Nodes)

	dist := make([]float32, n)
	for i := range dist {
		dist[i] = infCost
	}
	dist[src] = 0

	pq := &priorityQueue{}
	pq.push(src, 0)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(queueItem)

		if current.cost > dist[current.node] {
			continue
		}

		// A reversed edge current <- edge.To is the forward edge
		// edge.To -> current, which is priced at its destination.
		for _, edge := range g.MapReversed[current.node] {
			nextCost := current.cost + g.Costs[current.node].CalcCosts(edge.Cost)
			if nextCost < dist[edge.To] {
				dist[edge.To] = nextCost
				pq.push(edge.To, nextCost)
			}
		}
	}

	return dist
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
