package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/internal/testutil"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

func solvedPlan(t *testing.T) (*fabric.FabricGraph, []*fabric.Routing) {
	t.Helper()
	nodes := []fabric.Node{
		testutil.At("A", 0, 0), // 0
		testutil.At("X", 1, 0), // 1
		testutil.At("B", 2, 0), // 2
		testutil.At("C", 0, 1), // 3
		testutil.At("Y", 1, 1), // 4
		testutil.At("D", 2, 1), // 5
	}
	g := testutil.BuildGraph(nodes, [][2]int{
		{0, 1}, {1, 2}, {3, 4}, {4, 5},
	})
	plan := []*fabric.Routing{
		{Signal: 0, Sinks: []int{2}},
		{Signal: 3, Sinks: []int{5}},
	}
	for _, r := range plan {
		require.NoError(t, solver.SimpleSolver{}.Solve(g, r))
	}
	return g, plan
}

func TestValidate_AcceptsDisjointPlan(t *testing.T) {
	g, plan := solvedPlan(t)
	assert.NoError(t, Validate(g, plan))

	// Re-validation of an already valid plan stays valid
	assert.NoError(t, Validate(g, plan))
}

func TestValidate_MissingResult(t *testing.T) {
	g, plan := solvedPlan(t)
	plan[1].Result = nil

	err := Validate(g, plan)
	assert.True(t, apperror.Is(err, apperror.CodeMissingResult))
}

func TestValidate_CrossNetReuse(t *testing.T) {
	g, plan := solvedPlan(t)
	// Second net claims the first net's bottleneck node
	plan[1].Result.Nodes[1] = true

	err := Validate(g, plan)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNodeConflict))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	// The error names both nets involved
	assert.Equal(t, []int{0, 1}, appErr.Details["nets"])
	assert.Equal(t, 1, appErr.Details["node"])
}

func TestValidate_InvalidIndices(t *testing.T) {
	g, plan := solvedPlan(t)

	t.Run("result node out of range", func(t *testing.T) {
		plan[0].Result.Nodes[99] = true
		err := Validate(g, plan)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidNodeIndex))
		delete(plan[0].Result.Nodes, 99)
	})

	t.Run("signal out of range", func(t *testing.T) {
		old := plan[0].Signal
		plan[0].Signal = 99
		err := Validate(g, plan)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidNodeIndex))
		plan[0].Signal = old
	})

	t.Run("sink out of range", func(t *testing.T) {
		old := plan[0].Sinks[0]
		plan[0].Sinks[0] = -1
		err := Validate(g, plan)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidNodeIndex))
		plan[0].Sinks[0] = old
	})
}

func TestValidate_UnreachableWithinNodeSet(t *testing.T) {
	g, plan := solvedPlan(t)
	// Drop the bottleneck from the declared node set: the path claims
	// it, but reachability within the set is broken.
	delete(plan[0].Result.Nodes, 1)

	err := Validate(g, plan)
	assert.True(t, apperror.Is(err, apperror.CodeUnreachableInTree))
}

func TestValidateAll_CollectsEverything(t *testing.T) {
	g, plan := solvedPlan(t)
	plan[0].Result.Nodes[99] = true
	plan[1].Result = nil

	errs := ValidateAll(g, plan)
	assert.False(t, errs.IsValid())
	assert.GreaterOrEqual(t, len(errs.Errors), 2)
}
