package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/internal/testutil"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// corridorGraph is a net with two sinks sharing a long corridor:
//
//	S -> A -> B -> T1
//	          B -> T2
//	S -> C ------> T2   (cheaper for T2 alone)
func corridorGraph() *fabric.FabricGraph {
	nodes := []fabric.Node{
		testutil.At("S", 0, 0),  // 0
		testutil.At("A", 1, 0),  // 1
		testutil.At("B", 2, 0),  // 2
		testutil.At("T1", 3, 0), // 3
		testutil.At("C", 0, 1),  // 4
		testutil.At("T2", 2, 1), // 5
	}
	return testutil.BuildGraph(nodes, [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {2, 5}, {0, 4}, {4, 5},
	})
}

func TestParseType(t *testing.T) {
	for input, want := range map[string]Type{
		"simple":              TypeSimple,
		"SimpleSolver":        TypeSimple,
		"steiner":             TypeSteiner,
		"SteinerSolver":       TypeSteiner,
		"simple-steiner":      TypeSimpleSteiner,
		"simple_steiner":      TypeSimpleSteiner,
		"SimpleSteinerSolver": TypeSimpleSteiner,
	} {
		got, err := ParseType(input)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseType("dijkstra")
	assert.True(t, apperror.Is(err, apperror.CodeInvalidSolverType))
}

func TestSimpleSolver(t *testing.T) {
	g := corridorGraph()
	routing := &fabric.Routing{Signal: 0, Sinks: []int{3, 5}}

	require.NoError(t, SimpleSolver{}.Solve(g, routing))
	require.NotNil(t, routing.Result)

	assert.Equal(t, []int{0, 1, 2, 3}, routing.Result.Paths[3])
	// T2 alone is cheaper over C
	assert.Equal(t, []int{0, 4, 5}, routing.Result.Paths[5])
	assert.Len(t, routing.Result.Nodes, 6)

	// Every path node is in the node set
	for _, path := range routing.Result.Paths {
		for _, n := range path {
			assert.True(t, routing.Result.Nodes[n])
		}
	}
}

func TestSimpleSolver_SharedNodesCountOnce(t *testing.T) {
	// Both sinks hang off the end of one line
	nodes := []fabric.Node{
		testutil.At("S", 0, 0),
		testutil.At("A", 1, 0),
		testutil.At("T1", 2, 0),
		testutil.At("T2", 2, 1),
	}
	g := testutil.BuildGraph(nodes, [][2]int{{0, 1}, {1, 2}, {1, 3}})
	routing := &fabric.Routing{Signal: 0, Sinks: []int{2, 3}}

	require.NoError(t, SimpleSolver{}.Solve(g, routing))
	// S and A shared by both paths, counted once
	assert.Len(t, routing.Result.Nodes, 4)
}

func TestSimpleSolver_UnreachableSink(t *testing.T) {
	g := testutil.Line(3)
	routing := &fabric.Routing{Signal: 2, Sinks: []int{0}}

	err := SimpleSolver{}.Solve(g, routing)
	assert.True(t, apperror.Is(err, apperror.CodeUnreachableSink))
}

func TestSteinerSolver_ConsolidatesCorridor(t *testing.T) {
	g := corridorGraph()

	simpleRouting := &fabric.Routing{Signal: 0, Sinks: []int{3, 5}}
	require.NoError(t, SimpleSolver{}.Solve(g, simpleRouting))

	steinerRouting := &fabric.Routing{Signal: 0, Sinks: []int{3, 5}}
	require.NoError(t, SteinerSolver{}.Solve(g, steinerRouting))

	// The Steiner tree grafts T2 onto the trunk at B and skips C
	assert.Less(t, len(steinerRouting.Result.Nodes), len(simpleRouting.Result.Nodes))
	assert.Equal(t, []int{0, 1, 2, 3}, steinerRouting.Result.Paths[3])
	assert.Equal(t, []int{0, 1, 2, 5}, steinerRouting.Result.Paths[5])

	for _, path := range steinerRouting.Result.Paths {
		for _, n := range path {
			assert.True(t, steinerRouting.Result.Nodes[n], "node %d missing from node set", n)
		}
	}
}

func TestSteinerSolver_SingleSink(t *testing.T) {
	g := testutil.Line(4)
	routing := &fabric.Routing{Signal: 0, Sinks: []int{3}}

	require.NoError(t, SteinerSolver{}.Solve(g, routing))
	assert.Equal(t, []int{0, 1, 2, 3}, routing.Result.Paths[3])
}

func TestSteinerSolver_Unreachable(t *testing.T) {
	g := testutil.Line(3)
	routing := &fabric.Routing{Signal: 2, Sinks: []int{0}}

	err := SteinerSolver{}.Solve(g, routing)
	assert.True(t, apperror.Is(err, apperror.CodeNoSteinerTree))
	assert.Nil(t, routing.Result)
}

func TestSimpleSteinerSolver_RequiresPrePlan(t *testing.T) {
	g := testutil.Line(3)
	routing := &fabric.Routing{Signal: 0, Sinks: []int{2}}

	err := SimpleSteinerSolver{}.Solve(g, routing)
	assert.True(t, apperror.Is(err, apperror.CodeMissingPrePlan))
}

func TestPreProcess(t *testing.T) {
	g := corridorGraph()
	plan := []*fabric.Routing{{Signal: 0, Sinks: []int{3, 5}}}

	require.NoError(t, PreProcess(g, plan))
	require.NotNil(t, plan[0].SteinerTree)

	tree := plan[0].SteinerTree
	// Skeletons run from the signal to each sink
	for sink, skeleton := range tree.SteinerNodes {
		require.NotEmpty(t, skeleton)
		assert.Equal(t, 0, skeleton[0])
		assert.Equal(t, sink, skeleton[len(skeleton)-1])
	}

	// The pre-pass usage markers are wiped afterwards
	for i := range g.Costs {
		assert.Zero(t, g.Costs[i].Usage)
	}
}

func TestPreProcess_ThenSolve(t *testing.T) {
	g := corridorGraph()
	plan := []*fabric.Routing{{Signal: 0, Sinks: []int{3, 5}}}

	require.NoError(t, PreProcess(g, plan))
	require.NoError(t, SimpleSteinerSolver{}.Solve(g, plan[0]))

	result := plan[0].Result
	require.NotNil(t, result)
	for sink, path := range result.Paths {
		assert.Equal(t, 0, path[0])
		assert.Equal(t, sink, path[len(path)-1])
		for _, n := range path {
			assert.True(t, result.Nodes[n])
		}
	}
}

func TestPreProcess_OverlapFailsLoudly(t *testing.T) {
	// Five identical single-sink nets on a four node line exhaust the
	// join candidates; the fifth reservation must collide.
	g := testutil.Line(4)
	plan := make([]*fabric.Routing, 5)
	for i := range plan {
		plan[i] = &fabric.Routing{Signal: 0, Sinks: []int{3}}
	}

	err := PreProcess(g, plan)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeOverlappingPrePlan))
}

func TestPreCalcSteinerTree_PenalizesUsedJoins(t *testing.T) {
	g := testutil.Line(4)

	first := &fabric.Routing{Signal: 0, Sinks: []int{3}}
	tree1, err := PreCalcSteinerTree(g, first)
	require.NoError(t, err)
	assert.True(t, tree1.Nodes[3], "first net should join at the sink itself")

	// The second identical net must avoid the reserved join node
	second := &fabric.Routing{Signal: 0, Sinks: []int{3}}
	tree2, err := PreCalcSteinerTree(g, second)
	require.NoError(t, err)
	assert.False(t, tree2.Nodes[3], "second net must not reuse the reserved join")
	assert.True(t, tree2.Nodes[2])
}
