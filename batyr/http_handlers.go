// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// HTTPHandlers exposes the service over HTTP.
type HTTPHandlers struct {
	service *Service
	logger  *slog.Logger
}

// NewHTTPHandlers creates the handler set for a service.
func NewHTTPHandlers(service *Service, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger,
	}
}

// HandlePull accepts a pull job submission.
func (h *HTTPHandlers) HandlePull(w http.ResponseWriter, r *http.Request) {
	var req PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Layer == "" {
		h.writeError(w, http.StatusBadRequest, "bad_request", "layer is required")
		return
	}

	job, err := h.service.Submit(req.Layer, req.Filter)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownLayer):
			h.writeError(w, http.StatusNotFound, "unknown_layer", err.Error())
		case errors.Is(err, ErrQueueFull), errors.Is(err, ErrQueueClosed):
			h.writeError(w, http.StatusServiceUnavailable, "queue_unavailable", err.Error())
		default:
			h.logger.Error("pull submission failed", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal_error", "could not submit job")
		}
		return
	}
	h.writeJSON(w, http.StatusAccepted, job.Snapshot())
}

// HandleJobs lists all tracked jobs.
func (h *HTTPHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Jobs())
}

// HandleJob returns one job by id.
func (h *HTTPHandlers) HandleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, found := h.service.Lookup(id)
	if !found {
		h.writeError(w, http.StatusNotFound, "unknown_job", "no job with id "+id)
		return
	}
	h.writeJSON(w, http.StatusOK, job.Snapshot())
}

// HandleLayers lists the configured layers.
func (h *HTTPHandlers) HandleLayers(w http.ResponseWriter, r *http.Request) {
	layers := h.service.Layers()
	infos := make([]LayerInfo, len(layers))
	for i, l := range layers {
		infos[i] = LayerInfo{Name: l.Name, Description: l.Description}
	}
	h.writeJSON(w, http.StatusOK, infos)
}

// HandleHealth is the unauthenticated liveness probe.
func (h *HTTPHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    AppName,
		"version": Version,
	})
}

func (h *HTTPHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *HTTPHandlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
