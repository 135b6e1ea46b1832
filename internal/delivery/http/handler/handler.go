package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/adapter/seedfile"
	"github.com/user/profile-harvester/internal/delivery/http/request"
	"github.com/user/profile-harvester/internal/delivery/http/response"
	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/usecase"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	harvester usecase.HarvestService
	status    usecase.StatusService
	checks    map[string]HealthCheck
	logger    *zap.Logger
}

func NewHandler(harvester usecase.HarvestService, status usecase.StatusService, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		harvester: harvester,
		status:    status,
		checks:    checks,
		logger:    logger.With(zap.String("component", "http")),
	}
}

func validateSeeds(entries []entity.SeedEntry) error {
	if len(entries) == 0 {
		return errors.New("seeds list cannot be empty")
	}
	for i, e := range entries {
		if err := seedfile.Validate(e); err != nil {
			return fmt.Errorf("seed %d: %w", i, err)
		}
	}
	return nil
}

// HandleHarvest runs a harvest synchronously and returns its report.
func (h *Handler) HandleHarvest(w http.ResponseWriter, r *http.Request) {
	var req request.HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateSeeds(req.Seeds); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Concurrency < 0 {
		h.respondWithError(w, http.StatusBadRequest, "Concurrency must be at least 1")
		return
	}

	seeds, _ := entity.ExpandEntries(req.Seeds)
	// A client disconnect must not abort the run; RUN_TIMEOUT is the only ceiling.
	res, err := h.harvester.RunHarvest(context.WithoutCancel(r.Context()), seeds, req.Concurrency)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrRunInProgress):
		h.respondWithError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, usecase.ErrInvalidConcurrency):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, usecase.ErrInfrastructure):
		h.logger.Error("harvest could not start", zap.Error(err))
		h.respondWithError(w, http.StatusServiceUnavailable, "Browser unavailable")
		return
	case errors.Is(err, usecase.ErrRunDeadline):
		h.respondWithError(w, http.StatusGatewayTimeout, err.Error())
		return
	default:
		h.logger.Error("harvest failed", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusOK, response.HarvestResponse{
		HarvestReport: res.Report,
		Stored:        res.Stored,
		StoreFailures: res.StoreFailures,
	})
}

// HandleEnqueue queues seeds for the next scheduled run.
func (h *Handler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req request.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateSeeds(req.Seeds); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.harvester.Enqueue(r.Context(), req.Seeds...); err != nil {
		h.logger.Error("failed to enqueue seeds", zap.Int("seeds", len(req.Seeds)), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Could not enqueue seeds")
		return
	}
	h.respondWithJSON(w, http.StatusAccepted, response.EnqueueResponse{Status: "queued", Enqueued: len(req.Seeds)})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.respondWithError(w, http.StatusBadRequest, "URL query parameter is required")
		return
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid URL format in query parameter")
		return
	}

	status, err := h.status.GetStatus(r.Context(), rawURL)
	if err != nil {
		h.logger.Error("failed to get target status", zap.String("url", rawURL), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Could not retrieve status")
		return
	}
	if status.CurrentStatus == entity.StatusNotFound {
		h.respondWithError(w, http.StatusNotFound, "No status found for the given URL")
		return
	}
	h.respondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		h.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	healthStatus["status"] = "ok"
	h.respondWithJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, response.ErrorResponse{Error: message})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
