// Package httpapi exposes the task endpoints over HTTP: the configure task
// and the reindex job queue.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// Handler serves the task endpoints.
type Handler struct {
	reindex   driving.ReindexService
	configure driving.ConfigureService

	// base is the context background jobs run under.
	base context.Context
	jobs sync.WaitGroup
}

// NewHandler creates a handler. Background jobs run under base and stop
// when it is cancelled.
func NewHandler(base context.Context, reindex driving.ReindexService, configure driving.ConfigureService) *Handler {
	return &Handler{
		reindex:   reindex,
		configure: configure,
		base:      base,
	}
}

// RegisterRoutes registers all routes with the given router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dev/tasks/SearchConfigure", h.HandleConfigure).Methods(http.MethodPost)
	router.HandleFunc("/jobs/reindex", h.HandleReindex).Methods(http.MethodPost)
	router.HandleFunc("/jobs", h.HandleListJobs).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", h.HandleGetJob).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
}

// Router returns a router with every route and the request logger.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.Use(requestLoggerMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("no route for %s %s", r.Method, r.URL.Path)
		WriteJSONError(w, http.StatusNotFound, "no such endpoint")
	})
	return router
}

// Wait blocks until every background job started by the handler returned.
func (h *Handler) Wait() {
	h.jobs.Wait()
}

// HandleConfigure pushes the index configuration to the search backend.
func (h *Handler) HandleConfigure(w http.ResponseWriter, r *http.Request) {
	if err := h.configure.Configure(r.Context()); err != nil {
		logger.Warn("configure failed: %v", err)
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Done."))
}

// reindexRequest is the body of POST /jobs/reindex. Both fields are optional.
type reindexRequest struct {
	Classes   []string `json:"classes"`
	BatchSize *int     `json:"batch_size"`
}

// HandleReindex queues a reindex job and runs it in the background.
func (h *Handler) HandleReindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	state, err := h.reindex.Enqueue(r.Context(), driving.ReindexOptions{
		Classes:   req.Classes,
		BatchSize: req.BatchSize,
	})
	if err != nil {
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}

	h.jobs.Add(1)
	go func(jobID string) {
		defer h.jobs.Done()
		if _, err := h.reindex.Resume(h.base, jobID); err != nil {
			logger.Error("reindex job %s failed: %v", jobID, err)
		}
	}(state.JobID)

	writeJSON(w, http.StatusAccepted, newJobView(*state))
}

// HandleGetJob returns the persisted state of one job.
func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state, err := h.reindex.Status(r.Context(), id)
	if err != nil {
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newJobView(*state))
}

// HandleListJobs returns every known job, most recent first.
func (h *Handler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	states, err := h.reindex.List(r.Context())
	if err != nil {
		WriteJSONError(w, statusFor(err), err.Error())
		return
	}
	views := make([]jobView, len(states))
	for i := range states {
		views[i] = newJobView(states[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": views, "count": len(views)})
}

// HandleHealth reports that the server is up.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestLoggerMiddleware logs the method, path and duration of each request.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request %s %s took %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexingDisabled), errors.Is(err, domain.ErrJobInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIndexingService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
