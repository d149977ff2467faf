package algorithms

import (
	"container/heap"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// =============================================================================
// Exploration probes
// =============================================================================
//
// Instrumented search walkers used to compare traversal strategies on a
// fabric. They report how much work a search did rather than the route
// itself, and feed the CLI bench output.
// =============================================================================

// ProbeResult summarizes one instrumented search.
type ProbeResult struct {
	// Lookups counts node expansions.
	Lookups int
	// MaxFrontier is the largest queue/stack depth observed.
	MaxFrontier int
	// PathLength is the number of nodes on the found path.
	PathLength int
}

// BreadthFirstSearch runs an instrumented BFS from start to end.
// Returns false if end is unreachable.
func BreadthFirstSearch(g *fabric.FabricGraph, start, end int) (ProbeResult, bool) {
	n := len(g.Nodes)
	visited := make([]bool, n)
	prev := make([]int, n)
	for i := range prev {
		prev[i] = -1
	}

	var res ProbeResult
	queue := []int{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if len(queue) > res.MaxFrontier {
			res.MaxFrontier = len(queue)
		}
		res.Lookups++

		if node == end {
			for at := end; at != -1; at = prev[at] {
				res.PathLength++
			}
			return res, true
		}

		for _, edge := range g.Map[node] {
			if !visited[edge.To] {
				visited[edge.To] = true
				prev[edge.To] = node
				queue = append(queue, edge.To)
			}
		}
	}
	return res, false
}

// DepthFirstSearch runs an instrumented DFS from start to end.
// The frontier metric is the recursion depth. Returns false if end is
// unreachable.
func DepthFirstSearch(g *fabric.FabricGraph, start, end int) (ProbeResult, bool) {
	visited := make([]bool, len(g.Nodes))
	var res ProbeResult
	var path []int

	var dfs func(current int) bool
	dfs = func(current int) bool {
		res.Lookups++
		visited[current] = true
		path = append(path, current)
		if len(path) > res.MaxFrontier {
			res.MaxFrontier = len(path)
		}

		if current == end {
			return true
		}

		for _, edge := range g.Map[current] {
			if !visited[edge.To] && dfs(edge.To) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(start) {
		res.PathLength = len(path)
		return res, true
	}
	return res, false
}

// DijkstraProbe runs the cost-aware relaxation of ShortestPath but
// reports search effort instead of the path.
func DijkstraProbe(g *fabric.FabricGraph, start, end int) (ProbeResult, bool) {
	n := len(g.Nodes)

	dist := make([]float32, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = infCost
		prev[i] = -1
	}
	dist[start] = 0

	var res ProbeResult
	pq := &priorityQueue{}
	pq.push(start, 0)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(queueItem)
		if pq.Len() > res.MaxFrontier {
			res.MaxFrontier = pq.Len()
		}

		if current.cost > dist[current.node] {
			continue
		}
		res.Lookups++

		if current.node == end {
			for at := end; at != -1; at = prev[at] {
				res.PathLength++
			}
			return res, true
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
	return res, false
}

// ReachableWithin reports whether target can be reached from start using
// only nodes in the allowed set. BFS restricted to the set.
func ReachableWithin(g *fabric.FabricGraph, start, target int, allowed map[int]bool) bool {
	if start == target {
		return true
	}
	if !allowed[start] || !allowed[target] {
		return false
	}

	visited := map[int]bool{start: true}
	queue := []int{start}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, edge := range g.Map[u] {
			v := edge.To
			if !allowed[v] || visited[v] {
				continue
			}
			if v == target {
				return true
			}
			visited[v] = true
			queue = append(queue, v)
		}
	}
	return false
}
