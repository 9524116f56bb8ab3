package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sweepnav/internal/buildinfo"
	"sweepnav/internal/cache"
	"sweepnav/internal/constraint"
	"sweepnav/internal/geo"
	"sweepnav/internal/integrator"
	"sweepnav/internal/logging"
	"sweepnav/internal/metrics"
	"sweepnav/internal/model"
	"sweepnav/internal/scheduler"
	"sweepnav/internal/solver"
	"sweepnav/internal/store"
)

// optionsProbe distinguishes an absent timeLimitMs from an explicit
// zero: zero is a contract (terminate immediately), absence means the
// configured default budget.
type optionsProbe struct {
	Options struct {
		TimeLimitMs *int `json:"timeLimitMs"`
	} `json:"options"`
}

func (s *Server) applyTimeLimitDefault(body []byte, o *model.OptimizeOptions) {
	var probe optionsProbe
	if err := json.Unmarshal(body, &probe); err == nil && probe.Options.TimeLimitMs == nil {
		o.TimeLimitMs = s.Cfg.SolverTimeLimitMs
		if o.TimeLimitMs <= 0 {
			o.TimeLimitMs = solver.DefaultTimeLimitMs
		}
	}
}

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Read failed", err.Error(), r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}
	s.applyTimeLimitDefault(body, &req.Options)

	runID := uuid.NewString()
	sv := solver.New(req.Options)
	sv.OnProgress(func(p solver.Progress) {
		s.Broker.Publish(runID, ProgressEvent{
			Type: "optimize.progress",
			Data: map[string]any{"algorithm": p.Algorithm, "iteration": p.Iteration, "bestDistanceM": p.BestDistanceM},
		})
	})

	algo := req.Options.Algorithm
	if algo == "" {
		algo = "hybrid"
	}
	started := time.Now()
	sol, err := sv.Solve(solver.Problem{
		Nodes:       req.Nodes,
		Start:       req.Start,
		Vehicle:     req.Vehicle,
		Constraints: req.Constraints,
	})
	metrics.OptimizeDuration.WithLabelValues(algo).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.OptimizeRuns.WithLabelValues(algo, "input_error").Inc()
		writeProblem(w, http.StatusBadRequest, "Optimize failed", err.Error(), r.URL.Path)
		return
	}
	metrics.OptimizeRuns.WithLabelValues(algo, "ok").Inc()
	metrics.OptimizeEfficiency.WithLabelValues(algo).Observe(sol.Efficiency)

	// Soft constraints are reported, never enforced after the fact.
	var violations []model.Violation
	if req.Constraints != nil {
		violations = constraint.Validate(sol.Sequence, req.Start, req.Vehicle, req.Constraints).Violations
	}

	vehicleID := ""
	if req.Vehicle != nil {
		vehicleID = req.Vehicle.ID
	}
	run := model.OptimizationRun{
		ID:         runID,
		VehicleID:  vehicleID,
		Algorithm:  sol.Algorithm,
		NodeCount:  len(req.Nodes),
		Solution:   sol,
		Violations: violations,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Store.SaveRun(r.Context(), run); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save run failed", err.Error(), r.URL.Path)
		return
	}
	s.Broker.Publish(runID, ProgressEvent{
		Type: "optimize.complete",
		Data: map[string]any{"runId": runID, "totalDistanceM": sol.TotalDistanceM, "iterations": sol.Iterations},
	})
	writeJSON(w, http.StatusOK, map[string]any{"runId": runID, "solution": sol, "violations": violations})
}

// BaselineHandler handles POST /v1/optimize/baseline: the naive
// greedy-by-distance sequence used for savings comparison.
func (s *Server) BaselineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}
	sol := geo.ComputeBaseline(req.Nodes, req.Start, req.Vehicle)
	writeJSON(w, http.StatusOK, map[string]any{"solution": sol})
}

// ScheduleHandler handles POST /v1/schedule
func (s *Server) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateScheduleRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid schedule request", err.Error(), r.URL.Path)
		return
	}
	sched, err := scheduler.GenerateSchedule(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrNoItems) || errors.Is(err, scheduler.ErrNoVehicles) {
			status = http.StatusBadRequest
		}
		writeProblem(w, status, "Schedule failed", err.Error(), r.URL.Path)
		return
	}
	metrics.ScheduleCoverage.Observe(sched.CoverageEfficiency)
	if err := s.Store.SaveSchedule(r.Context(), sched); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save schedule failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// CleaningHandler handles POST /v1/cleaning/optimize
func (s *Server) CleaningHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.CleaningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateCleaningRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid cleaning request", err.Error(), r.URL.Path)
		return
	}

	// Only seeded requests are deterministic enough to cache.
	var cacheKey string
	if s.Cache != nil && req.Options.Solver.Seed != 0 {
		if key, err := cache.Digest("plan", req); err == nil {
			cacheKey = key
			var cached model.CleaningPlan
			if err := s.Cache.Get(r.Context(), key, &cached); err == nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	plan, err := integrator.OptimizeCleaningOperations(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, integrator.ErrNoArea) || errors.Is(err, integrator.ErrNoVehicles) ||
			strings.Contains(err.Error(), "unparseable date") {
			status = http.StatusBadRequest
		}
		writeProblem(w, status, "Cleaning optimize failed", err.Error(), r.URL.Path)
		return
	}
	if err := s.Store.SavePlan(r.Context(), plan); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save plan failed", err.Error(), r.URL.Path)
		return
	}
	if cacheKey != "" {
		if err := s.Cache.Set(r.Context(), cacheKey, plan); err != nil {
			lg := logging.Component("api")
			lg.Warn().Err(err).Msg("plan cache write failed")
		}
	}
	writeJSON(w, http.StatusOK, plan)
}

// RunsIndexHandler handles GET /v1/runs
func (s *Server) RunsIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListRuns(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RunByIDHandler handles GET /v1/runs/{id} and /v1/runs/{id}/progress/ws
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/runs/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 2 && parts[1] == "progress" && parts[2] == "ws" {
		s.ProgressWSHandler(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	run, err := s.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such run", path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
