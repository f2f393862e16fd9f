// Package server implements the HTTP API of the simplexd optimization
// server: starting optimization jobs, polling their status and history,
// and cancelling them.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/optserve/simplexd/internal/config"
	"github.com/optserve/simplexd/internal/metrics"
	"github.com/optserve/simplexd/internal/optimization/multistart"
	"github.com/optserve/simplexd/internal/optimization/neldermead"
	"github.com/optserve/simplexd/internal/optimization/objectives"
	"github.com/optserve/simplexd/internal/report"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// JobState tracks one optimization job. Jobs run in their own goroutine;
// the state is guarded by the server's job mutex.
type JobState struct {
	ID          string
	Objective   string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time

	// Exactly one of Single and Multi is set once the job completes,
	// depending on whether the request asked for a single run or a
	// multi-start search.
	Single *neldermead.Result
	Multi  *multistart.Result

	Error      string
	CancelFunc context.CancelFunc
}

// Server manages optimization jobs and serves their state over HTTP.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector

	jobs   map[string]*JobState
	jobsMu sync.RWMutex
}

// NewServer creates a new server instance. The metrics collector may be
// nil, in which case runs are not instrumented.
func NewServer(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		jobs:    make(map[string]*JobState),
	}
}

// RegisterRoutes mounts the API routes on the given router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/objectives", s.handleObjectives)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Get("/report/{id}", s.handleReport)
		r.Delete("/optimization/{id}", s.handleCancel)
	})
}

// optimizeRequest is the body of POST /api/v1/optimize. A request with a
// starting point runs the optimizer once from there; a request without one
// runs a multi-start search over the sampling box. Omitted tuning fields
// fall back to the configured defaults.
type optimizeRequest struct {
	Objective     string    `json:"objective"`
	Start         []float64 `json:"start,omitempty"`
	Dim           int       `json:"dim,omitempty"`
	Runs          int       `json:"runs,omitempty"`
	SampleMin     *float64  `json:"sample_min,omitempty"`
	SampleMax     *float64  `json:"sample_max,omitempty"`
	Step          float64   `json:"step,omitempty"`
	Tolerance     float64   `json:"tolerance,omitempty"`
	MaxIterations *int      `json:"max_iterations,omitempty"`
	Seed          int64     `json:"seed,omitempty"`
}

func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"objectives": objectives.Names(),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	objective, ok := objectives.Lookup(req.Objective)
	if !ok {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown objective %q", req.Objective))
		return
	}

	defaults := s.cfg.Optimization
	if req.Step == 0 {
		req.Step = defaults.Step
	}
	if req.Tolerance == 0 {
		req.Tolerance = defaults.Tolerance
	}
	maxIterations := defaults.MaxIterations
	if req.MaxIterations != nil {
		maxIterations = *req.MaxIterations
	}

	id := fmt.Sprintf("opt_%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())
	jobLogger := s.logger.With(zap.String("job_id", id), zap.String("objective", req.Objective))

	state := &JobState{
		ID:          id,
		Objective:   req.Objective,
		Status:      StatusPending,
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		CancelFunc:  cancel,
	}

	if len(req.Start) > 0 {
		opt, err := neldermead.New(neldermead.Config{
			Objective:     objective,
			Start:         req.Start,
			Step:          req.Step,
			Tolerance:     req.Tolerance,
			MaxIterations: maxIterations,
			Logger:        jobLogger,
		})
		if err != nil {
			cancel()
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.storeJob(state)
		go s.runSingle(ctx, state, opt)
	} else {
		runs := req.Runs
		if runs == 0 {
			runs = defaults.Runs
		}
		min, max := defaults.SampleMin, defaults.SampleMax
		if req.SampleMin != nil {
			min = *req.SampleMin
		}
		if req.SampleMax != nil {
			max = *req.SampleMax
		}
		driver, err := multistart.New(multistart.Config{
			Objective:     objective,
			Dim:           req.Dim,
			Runs:          runs,
			Min:           min,
			Max:           max,
			Step:          req.Step,
			Tolerance:     req.Tolerance,
			MaxIterations: maxIterations,
			RandomSeed:    req.Seed,
			Logger:        jobLogger,
			Metrics:       s.metrics,
		})
		if err != nil {
			cancel()
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.storeJob(state)
		go s.runMulti(ctx, state, driver)
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"optimization_id": id,
		"status":          StatusPending,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	state, exists := s.jobs[id]
	if !exists {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}

	response := map[string]interface{}{
		"optimization_id": state.ID,
		"objective":       state.Objective,
		"status":          state.Status,
		"start_time":      state.StartTime.Format(time.RFC3339),
		"last_update":     state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Error != "" {
		response["error"] = state.Error
	}

	switch {
	case state.Single != nil:
		response["mode"] = "single"
		response["result"] = map[string]interface{}{
			"best":        state.Single.Best,
			"iterations":  state.Single.Iterations,
			"evaluations": state.Single.Evaluations,
			"status":      state.Single.Status,
			"history":     state.Single.History,
		}
	case state.Multi != nil:
		response["mode"] = "multistart"
		response["result"] = state.Multi
	}

	s.respondJSON(w, http.StatusOK, response)
}

// handleReport renders the completed job as a plain-text report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	state, exists := s.jobs[id]
	if !exists {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}
	if state.Status != StatusCompleted {
		s.respondError(w, http.StatusConflict, fmt.Sprintf("optimization is %s, report needs a completed job", state.Status))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	var err error
	if state.Single != nil {
		err = report.WriteResult(w, state.Single)
	} else {
		err = report.WriteRunSummaries(w, state.Multi)
	}
	if err != nil {
		s.logger.Error("writing report", zap.String("job_id", id), zap.Error(err))
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	state, exists := s.jobs[id]
	if !exists {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}

	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		s.respondError(w, http.StatusConflict, fmt.Sprintf("cannot cancel optimization with status %s", state.Status))
		return
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}
	now := time.Now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("optimization cancelled", zap.String("job_id", id))

	s.respondJSON(w, http.StatusOK, map[string]string{
		"optimization_id": id,
		"status":          StatusCancelled,
	})
}

// runSingle executes a single optimizer run in a goroutine.
func (s *Server) runSingle(ctx context.Context, state *JobState, opt *neldermead.Optimizer) {
	s.setStatus(state, StatusRunning)

	res, err := opt.Optimize(ctx)
	if res != nil {
		s.metrics.ObserveRun(res)
	}
	s.finishJob(state, err, func() {
		state.Single = res
	})
}

// runMulti executes a multi-start search in a goroutine.
func (s *Server) runMulti(ctx context.Context, state *JobState, driver *multistart.Driver) {
	s.setStatus(state, StatusRunning)

	res, err := driver.Run(ctx)
	s.finishJob(state, err, func() {
		state.Multi = res
	})
}

func (s *Server) storeJob(state *JobState) {
	s.jobsMu.Lock()
	s.jobs[state.ID] = state
	s.jobsMu.Unlock()
}

func (s *Server) setStatus(state *JobState, status string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	// A cancel may have landed before the goroutine got going.
	if state.Status == StatusCancelled {
		return
	}
	state.Status = status
	state.LastUpdated = time.Now()
}

func (s *Server) finishJob(state *JobState, err error, attach func()) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	if state.Status == StatusCancelled {
		return
	}
	if err != nil {
		s.logger.Error("optimization failed",
			zap.String("job_id", state.ID),
			zap.Error(err))
		state.Status = StatusFailed
		state.Error = err.Error()
		return
	}
	attach()
	state.Status = StatusCompleted
}

// Close cancels all running optimizations.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.CancelFunc != nil {
			job.CancelFunc()
		}
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Error("request error",
		zap.Int("status", status),
		zap.String("message", message))
	s.respondJSON(w, status, map[string]string{"error": message})
}
