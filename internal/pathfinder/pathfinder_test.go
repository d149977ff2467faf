package pathfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/internal/testutil"
	"github.com/SirJonasM/fpga-router/internal/validators"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// collectLogger records every iteration result.
type collectLogger struct {
	results []*IterationResult
}

func (l *collectLogger) Log(result *IterationResult) {
	l.results = append(l.results, result)
}

// bottleneckGraph is two nets forced through the single node X:
//
//	A -> X -> B
//	C -> X -> D
func bottleneckGraph() (*fabric.FabricGraph, []*fabric.Routing) {
	nodes := []fabric.Node{
		testutil.At("A", 0, 0), // 0
		testutil.At("X", 1, 0), // 1
		testutil.At("B", 2, 0), // 2
		testutil.At("C", 0, 1), // 3
		testutil.At("D", 2, 1), // 4
	}
	g := testutil.BuildGraph(nodes, [][2]int{
		{0, 1}, {1, 2}, {3, 1}, {1, 4},
	})
	plan := []*fabric.Routing{
		{Signal: 0, Sinks: []int{2}},
		{Signal: 3, Sinks: []int{4}},
	}
	return g, plan
}

// detourGraph extends the bottleneck with an expensive bypass for the
// second net: C -> E -> D with E far off the row.
func detourGraph() (*fabric.FabricGraph, []*fabric.Routing) {
	nodes := []fabric.Node{
		testutil.At("A", 0, 0), // 0
		testutil.At("X", 1, 0), // 1
		testutil.At("B", 2, 0), // 2
		testutil.At("C", 0, 1), // 3
		testutil.At("D", 2, 1), // 4
		testutil.At("E", 1, 3), // 5
	}
	g := testutil.BuildGraph(nodes, [][2]int{
		{0, 1}, {1, 2}, {3, 1}, {1, 4}, {3, 5}, {5, 4},
	})
	// The net with the bypass is solved first so it keeps winning the
	// bottleneck until the historic cost drives it off.
	plan := []*fabric.Routing{
		{Signal: 3, Sinks: []int{4}},
		{Signal: 0, Sinks: []int{2}},
	}
	return g, plan
}

func TestRoute_TrivialSingleNet(t *testing.T) {
	g := testutil.Line(3)
	plan := []*fabric.Routing{{Signal: 0, Sinks: []int{2}}}

	log := &collectLogger{}
	cfg := NewConfig(0.1, solver.TypeSimple, 10)
	result, err := Route(plan, g, cfg, log)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Iteration)
	assert.Equal(t, 0, result.Conflicts)
	assert.Len(t, log.results, 1)

	require.NotNil(t, plan[0].Result)
	assert.Equal(t, []int{0, 1, 2}, plan[0].Result.Paths[2])
	assert.Len(t, plan[0].Result.Nodes, 3)

	assert.Equal(t, 3, result.TotalWireUse)
	assert.Equal(t, float32(1), result.WireReuse)
	// Base cost of the two line edges
	assert.Equal(t, float32(4), result.LongestPathCost)
	assert.Equal(t, 0, result.LongestPathSignal)
	assert.Equal(t, 2, result.LongestPathSink)
}

func TestRoute_ForcedCongestion(t *testing.T) {
	g, plan := bottleneckGraph()

	log := &collectLogger{}
	cfg := NewConfig(0.1, solver.TypeSimple, 10)
	result, err := Route(plan, g, cfg, log)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnresolvedCongestion))
	require.NotNil(t, result)
	assert.Equal(t, 10, result.Iteration)
	assert.Equal(t, 1, result.Conflicts)

	// X was over-used every iteration: 11 iterations x 0.1
	assert.InDelta(t, 1.1, float64(g.Costs[1].HistoricCost), 1e-5)
	// One log entry per iteration; the first already reports the conflict
	assert.Len(t, log.results, 11)
	assert.Equal(t, 1, log.results[0].Conflicts)
}

func TestRoute_NegotiationSucceeds(t *testing.T) {
	g, plan := detourGraph()

	log := &collectLogger{}
	cfg := NewConfig(0.5, solver.TypeSimple, 100)
	result, err := Route(plan, g, cfg, log)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Conflicts)
	assert.Greater(t, result.Iteration, 0, "negotiation should take a few iterations")

	// The bypass net diverted off the bottleneck
	assert.False(t, plan[0].Result.Nodes[1], "net with a bypass must avoid X")
	assert.True(t, plan[1].Result.Nodes[1], "net without alternatives keeps X")

	require.NoError(t, validators.Validate(g, plan))
}

func TestRoute_DeterministicConflictTrajectory(t *testing.T) {
	run := func() []int {
		g, plan := bottleneckGraph()
		log := &collectLogger{}
		cfg := NewConfig(0, solver.TypeSimple, 20)
		Route(plan, g, cfg, log)

		conflicts := make([]int, len(log.results))
		for i, r := range log.results {
			conflicts[i] = r.Conflicts
		}
		return conflicts
	}

	assert.Equal(t, run(), run())
}

func TestRoute_SimpleSteinerPreprocessesAndStagnates(t *testing.T) {
	g, plan := bottleneckGraph()

	log := &collectLogger{}
	cfg := NewConfig(0.1, solver.TypeSimpleSteiner, 250)
	result, err := Route(plan, g, cfg, log)

	// Pre-planning ran for every net
	for _, route := range plan {
		assert.NotNil(t, route.SteinerTree)
	}

	// The bottleneck has no alternative: the run crosses the stagnation
	// window, re-plans, and still ends congested at the cap.
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnresolvedCongestion))
	assert.Equal(t, 250, result.Iteration)
	assert.Len(t, log.results, 251)
}

func TestRoute_SimpleSteinerConverges(t *testing.T) {
	g := testutil.Line(4)
	plan := []*fabric.Routing{{Signal: 0, Sinks: []int{3}}}

	cfg := NewConfig(0.1, solver.TypeSimpleSteiner, 10)
	result, err := Route(plan, g, cfg, &collectLogger{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Conflicts)
	assert.Equal(t, []int{0, 1, 2, 3}, plan[0].Result.Paths[3])
}

func TestRoute_SolverFailureIsFatal(t *testing.T) {
	g := testutil.Line(3)
	// Sink unreachable against the edge direction
	plan := []*fabric.Routing{{Signal: 2, Sinks: []int{0}}}

	cfg := NewConfig(0.1, solver.TypeSimple, 10)
	result, err := Route(plan, g, cfg, &collectLogger{})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperror.Is(err, apperror.CodeUnreachableSink))
}

func TestNewConfig_MonotonicIDs(t *testing.T) {
	a := NewConfig(0.1, solver.TypeSimple, 10)
	b := NewConfig(0.1, solver.TypeSimple, 10)
	assert.Greater(t, b.ID, a.ID)
}
