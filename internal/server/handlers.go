package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SirJonasM/fpga-router/internal/solver"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// dataLimit caps the telemetry rows returned by GET /data/{id}.
const dataLimit = 1000

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperror.HTTPStatus(err), errorResponse{Message: err.Error()})
}

// createTestRequest is the POST /test payload.
type createTestRequest struct {
	Percentage int     `json:"percentage"`
	Dst        int     `json:"dst"`
	HistFactor float64 `json:"hist_factor"`
	Solver     string  `json:"solver"`
}

// Routes builds the HTTP mux of the job-control API.
func (s *AppState) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tests", s.handleGetTests)
	mux.HandleFunc("POST /test", s.handleCreateTest)
	mux.HandleFunc("GET /test/{id}", s.handleGetTest)
	mux.HandleFunc("DELETE /test/{id}", s.handleDeleteTest)
	mux.HandleFunc("GET /data/{id}", s.handleGetData)
	mux.HandleFunc("GET /result/{id}", s.handleGetResult)
	mux.HandleFunc("GET /schedule/{id}", s.handleScheduleTest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperror.Newf(apperror.CodeInvalidArgument, "invalid test id: %q", r.PathValue("id"))
	}
	return id, nil
}

func (s *AppState) handleGetTests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tests())
}

func (s *AppState) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var req createTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid request body"))
		return
	}
	if req.Percentage <= 0 || req.Percentage > 100 {
		writeError(w, apperror.Newf(apperror.CodeInvalidPercentage,
			"percentage must be in (0, 100], got %d", req.Percentage))
		return
	}
	if req.Dst <= 0 {
		writeError(w, apperror.Newf(apperror.CodeInvalidDestination,
			"dst must be positive, got %d", req.Dst))
		return
	}
	if _, err := solver.ParseType(req.Solver); err != nil {
		writeError(w, err)
		return
	}

	id := s.CreateTest(req.Percentage, req.Dst, req.HistFactor, req.Solver)
	writeJSON(w, http.StatusOK, id)
}

func (s *AppState) handleGetTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	test, ok := s.Test(id)
	if !ok {
		writeError(w, apperror.Newf(apperror.CodeNotFound, "test with id %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, test)
}

func (s *AppState) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.DeleteTest(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *AppState) handleGetData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, ok := s.Data(id, dataLimit)
	if !ok {
		writeError(w, apperror.Newf(apperror.CodeNotFound, "results with id %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *AppState) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, ok := s.Result(id)
	if !ok {
		writeError(w, apperror.Newf(apperror.CodeNotFound, "result with id %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *AppState) handleScheduleTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ScheduleTest(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *AppState) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
