// Package handler provides HTTP request handlers for the REST API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// idPattern constrains {id} path variables to integers.
const idPattern = "{id:-?[0-9]+}"

// Error messages shared by the handlers.
const (
	msgInvalidBody = "invalid request body"
	msgInvalidID   = "invalid id"
	msgInternal    = "internal server error"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	ready  atomic.Bool
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler that reports ready.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	h := &HealthHandler{logger: logger}
	h.ready.Store(true)
	return h
}

// RegisterRoutes registers the probe routes with the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
}

// SetReady changes the readiness reported by ReadyCheck.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthCheck handles GET /health requests.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests.
func (h *HealthHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		writeJSON(h.logger, w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready"})
		return
	}
	writeJSON(h.logger, w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// pathID parses the {id} path variable.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into dst, answering 400 on failure.
func decodeJSON(logger *zap.Logger, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request body",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(logger, w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func writeError(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, model.ErrorResponse{
		Code:    status,
		Message: message,
	})
}
