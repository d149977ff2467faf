package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

func newTestCache(t *testing.T, opts *Options) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(opts)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Eviction(t *testing.T) {
	c := newTestCache(t, &Options{MaxEntries: 2, DefaultTTL: time.Minute})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	time.Sleep(2 * time.Millisecond)

	// Touch "a" so "b" becomes the eviction candidate
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalKeys)

	exists, _ := c.Exists(ctx, "b")
	assert.False(t, exists, "least recently used entry should be evicted")
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(nil)
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Set(context.Background(), "k", nil, 0), ErrCacheClosed)
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	c.Get(ctx, "k")
	c.Get(ctx, "nope")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, BackendMemory, stats.Backend)
}

func TestRouteCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, nil)
	rc := NewRouteCache(c, time.Minute)
	ctx := context.Background()

	_, hit, err := rc.Get(ctx, "route:missing")
	require.NoError(t, err)
	assert.False(t, hit)

	entry := &CachedRouteResult{
		Iterations:   12,
		TotalWireUse: 88,
		Routing: []*fabric.RoutingExpanded{{
			Signal: "LA_O/X0Y0",
			Sinks:  []string{"LA_I0/X2Y0"},
		}},
		ComputedAt: time.Now(),
	}
	require.NoError(t, rc.Put(ctx, "route:key", entry))

	got, hit, err := rc.Get(ctx, "route:key")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 12, got.Iterations)
	require.Len(t, got.Routing, 1)
	assert.Equal(t, "LA_O/X0Y0", got.Routing[0].Signal)
}

func testGraph() *fabric.FabricGraph {
	nodes := []fabric.Node{
		{ID: "A", X: 0, Y: 0},
		{ID: "B", X: 1, Y: 0},
	}
	g := &fabric.FabricGraph{Index: map[fabric.Node]int{}}
	for i, n := range nodes {
		g.Nodes = append(g.Nodes, n)
		g.Costs = append(g.Costs, fabric.NewCosts())
		g.Map = append(g.Map, nil)
		g.MapReversed = append(g.MapReversed, nil)
		g.Index[n] = i
	}
	g.Map[0] = []fabric.Edge{{To: 1, Cost: 2}}
	g.MapReversed[1] = []fabric.Edge{{To: 0, Cost: 2}}
	return g
}

func TestGraphHash(t *testing.T) {
	a := testGraph()
	b := testGraph()
	assert.Equal(t, GraphHash(a), GraphHash(b))

	// A different edge changes the hash
	b.Map[0][0].Cost = 3
	assert.NotEqual(t, GraphHash(a), GraphHash(b))

	assert.Empty(t, GraphHash(nil))
}

func TestPlanHash(t *testing.T) {
	g := testGraph()
	planA := []*fabric.Routing{{Signal: 0, Sinks: []int{1}}}
	planB := []*fabric.Routing{{Signal: 1, Sinks: []int{0}}}

	assert.Equal(t, PlanHash(g, planA), PlanHash(g, planA))
	assert.NotEqual(t, PlanHash(g, planA), PlanHash(g, planB))
}

func TestBuildRouteKey(t *testing.T) {
	key := BuildRouteKey("gh", "ph", "simple", 0.1, 1000)
	assert.Equal(t, "route:gh:ph:simple:0.1:1000", key)
}
