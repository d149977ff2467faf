// Package server implements the HTTP job-control API: scheduling routing
// tests, polling their state, and streaming iteration telemetry.
package server

import (
	"sync"
	"sync/atomic"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/cache"
	"github.com/SirJonasM/fpga-router/pkg/config"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/metrics"
)

// Test states.
const (
	StateScheduled  = "Scheduled"
	StateRunning    = "Running"
	StateSuccessful = "Successful"
	StateFailed     = "Failed"
	StateUndefined  = "Undefined"
)

// TestState is the lifecycle state of a test, with an optional payload:
// the converged iteration for Successful, the remaining conflicts for
// Failed.
type TestState struct {
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
}

// Test is one scheduled routing experiment.
type Test struct {
	ID         uint64    `json:"id"`
	Percentage int       `json:"percentage"`
	Dst        int       `json:"dst"`
	HistFactor float64   `json:"hist_factor"`
	Solver     string    `json:"solver"`
	State      TestState `json:"state"`
}

// AppState is the in-memory job store shared between the HTTP handlers
// and the background runner.
type AppState struct {
	cfg *config.Config

	nextID atomic.Uint64

	mu      sync.RWMutex
	tests   map[uint64]*Test
	data    map[uint64][]*pathfinder.IterationResult
	results map[uint64][]*fabric.RoutingExpanded
	queue   []uint64

	metrics    *metrics.Metrics
	routeCache *cache.RouteCache
	graphHash  string
}

// NewAppState builds an empty job store. graphHash keys result-cache
// entries to the loaded fabric; pass "" when caching is disabled.
func NewAppState(cfg *config.Config, m *metrics.Metrics, routeCache *cache.RouteCache, graphHash string) *AppState {
	return &AppState{
		cfg:        cfg,
		tests:      make(map[uint64]*Test),
		data:       make(map[uint64][]*pathfinder.IterationResult),
		results:    make(map[uint64][]*fabric.RoutingExpanded),
		metrics:    m,
		routeCache: routeCache,
		graphHash:  graphHash,
	}
}

// Log implements pathfinder.Logging: iteration telemetry is appended to
// the owning test's stream, keyed by the run id.
func (s *AppState) Log(result *pathfinder.IterationResult) {
	s.mu.Lock()
	s.data[result.Config.ID] = append(s.data[result.Config.ID], result)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveIteration(string(result.Config.Solver), result.Conflicts, result.TotalWireUse)
	}
}

// CreateTest registers a new test in Scheduled state and returns its id.
func (s *AppState) CreateTest(percentage, dst int, histFactor float64, solverName string) uint64 {
	id := s.nextID.Add(1) - 1
	test := &Test{
		ID:         id,
		Percentage: percentage,
		Dst:        dst,
		HistFactor: histFactor,
		Solver:     solverName,
		State:      TestState{Type: StateScheduled},
	}

	s.mu.Lock()
	s.tests[id] = test
	s.data[id] = nil
	s.mu.Unlock()
	return id
}

// ScheduleTest puts an existing test onto the FIFO run queue, wiping any
// previous telemetry.
func (s *AppState) ScheduleTest(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tests[id]; !ok {
		return apperror.Newf(apperror.CodeNotFound, "test with id %d not found", id)
	}
	s.data[id] = nil
	s.queue = append(s.queue, id)
	return nil
}

// popQueue removes and returns the next scheduled test id.
func (s *AppState) popQueue() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return 0, false
	}
	id := s.queue[0]
	s.queue = s.queue[1:]
	return id, true
}

// Tests returns a snapshot of all registered tests.
func (s *AppState) Tests() []*Test {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Test, 0, len(s.tests))
	for _, t := range s.tests {
		copied := *t
		out = append(out, &copied)
	}
	return out
}

// Test returns one test by id.
func (s *AppState) Test(id uint64) (*Test, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[id]
	if !ok {
		return nil, false
	}
	copied := *t
	return &copied, true
}

// Data returns the telemetry stream of a test, capped to the most recent
// limit entries.
func (s *AppState) Data(id uint64, limit int) ([]*pathfinder.IterationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.data[id]
	if !ok {
		return nil, false
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]*pathfinder.IterationResult, len(rows))
	copy(out, rows)
	return out, true
}

// Result returns the expanded routing of a finished test.
func (s *AppState) Result(id uint64) ([]*fabric.RoutingExpanded, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	return r, ok
}

// setState transitions a test into a new lifecycle state.
func (s *AppState) setState(id uint64, state TestState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tests[id]; ok {
		t.State = state
	}
}

// setResult stores the final routing of a successful run.
func (s *AppState) setResult(id uint64, routing []*fabric.RoutingExpanded) {
	s.mu.Lock()
	s.results[id] = routing
	s.mu.Unlock()
}

// DeleteTest removes a finished or still-scheduled test. Running tests
// cannot be deleted.
func (s *AppState) DeleteTest(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	test, ok := s.tests[id]
	if !ok {
		return apperror.Newf(apperror.CodeNotFound, "test with id %d not found", id)
	}

	switch test.State.Type {
	case StateSuccessful, StateFailed:
		delete(s.tests, id)
		delete(s.data, id)
		delete(s.results, id)
		return nil
	case StateScheduled:
		for i, queued := range s.queue {
			if queued == id {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				delete(s.tests, id)
				delete(s.data, id)
				return nil
			}
		}
		return apperror.Newf(apperror.CodeConflict, "test with id %d is currently not deletable", id)
	default:
		return apperror.Newf(apperror.CodeConflict, "test with id %d is currently not deletable", id)
	}
}
