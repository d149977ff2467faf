package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/pkg/config"
)

func testState() *AppState {
	cfg := &config.Config{}
	cfg.Router.Runners = 2
	cfg.Router.MaxIterations = 100
	return NewAppState(cfg, nil, nil, "")
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetTest(t *testing.T) {
	state := testState()
	mux := state.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/test", createTestRequest{
		Percentage: 20, Dst: 2, HistFactor: 0.1, Solver: "simple",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var id uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))

	rec = doJSON(t, mux, http.MethodGet, "/test/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var test Test
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &test))
	assert.Equal(t, id, test.ID)
	assert.Equal(t, StateScheduled, test.State.Type)
	assert.Equal(t, 20, test.Percentage)

	rec = doJSON(t, mux, http.MethodGet, "/tests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tests []Test
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tests))
	assert.Len(t, tests, 1)
}

func TestCreateTest_Validation(t *testing.T) {
	state := testState()
	mux := state.Routes()

	cases := []createTestRequest{
		{Percentage: 0, Dst: 1, Solver: "simple"},
		{Percentage: 101, Dst: 1, Solver: "simple"},
		{Percentage: 10, Dst: 0, Solver: "simple"},
		{Percentage: 10, Dst: 1, Solver: "bogus"},
	}
	for _, c := range cases {
		rec := doJSON(t, mux, http.MethodPost, "/test", c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %+v", c)
	}
}

func TestScheduleAndDelete(t *testing.T) {
	state := testState()
	mux := state.Routes()

	id := state.CreateTest(10, 1, 0.1, "simple")

	rec := doJSON(t, mux, http.MethodGet, "/schedule/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	queued, ok := state.popQueue()
	require.True(t, ok)
	assert.Equal(t, id, queued)

	// Schedule again, then delete while still queued
	require.NoError(t, state.ScheduleTest(id))
	rec = doJSON(t, mux, http.MethodDelete, "/test/0", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	if _, ok := state.Test(id); ok {
		t.Error("deleted test still present")
	}
}

func TestScheduleUnknownTest(t *testing.T) {
	state := testState()
	mux := state.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/schedule/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRunningTestRefused(t *testing.T) {
	state := testState()
	mux := state.Routes()

	id := state.CreateTest(10, 1, 0.1, "simple")
	state.setState(id, TestState{Type: StateRunning})

	rec := doJSON(t, mux, http.MethodDelete, "/test/0", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDataEndpoint(t *testing.T) {
	state := testState()
	mux := state.Routes()

	id := state.CreateTest(10, 1, 0.1, "simple")

	// Telemetry arrives through the Logging capability
	for i := 0; i < 3; i++ {
		state.Log(&pathfinder.IterationResult{
			Iteration: i,
			Conflicts: 3 - i,
			Config:    pathfinder.Config{ID: id, Solver: solver.TypeSimple},
		})
	}

	rec := doJSON(t, mux, http.MethodGet, "/data/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []*pathfinder.IterationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[2].Iteration)

	rec = doJSON(t, mux, http.MethodGet, "/data/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataEndpoint_CapsRows(t *testing.T) {
	state := testState()
	id := state.CreateTest(10, 1, 0.1, "simple")

	for i := 0; i < dataLimit+50; i++ {
		state.Log(&pathfinder.IterationResult{
			Iteration: i,
			Config:    pathfinder.Config{ID: id},
		})
	}

	rows, ok := state.Data(id, dataLimit)
	require.True(t, ok)
	require.Len(t, rows, dataLimit)
	// The stream keeps the most recent iterations
	assert.Equal(t, 50, rows[0].Iteration)
}

func TestResultEndpoint_NotFound(t *testing.T) {
	state := testState()
	mux := state.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/result/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	state := testState()
	mux := state.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareChain(t *testing.T) {
	state := testState()
	handler := Chain(state.Routes(),
		RequestIDMiddleware,
		CORSMiddleware(config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"*"},
			MaxAge:         3600,
		}),
	)

	rec := doJSON(t, handler, http.MethodGet, "/tests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight requests short-circuit
	req := httptest.NewRequest(http.MethodOptions, "/tests", nil)
	pre := httptest.NewRecorder()
	handler.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
}
