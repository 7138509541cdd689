package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/middleware"
	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/notify"
)

// EndpointHandler manages notify endpoint registration. Super only.
type EndpointHandler struct {
	repo   *notify.Repository
	logger *slog.Logger
}

// NewEndpointHandler creates a new EndpointHandler.
func NewEndpointHandler(repo *notify.Repository, logger *slog.Logger) *EndpointHandler {
	return &EndpointHandler{
		repo:   repo,
		logger: logger.With("handler", "endpoint"),
	}
}

// Create handles POST /api/v1/admin/endpoints.
// The signing secret is returned once and never again.
func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateEndpointURL(req.TargetURL); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
		return
	}

	eventTypes := make([]model.EventType, 0, len(req.EventTypes))
	for _, et := range req.EventTypes {
		eventType := model.EventType(et)
		if !model.IsValidEventType(eventType) {
			writeError(w, http.StatusBadRequest, "INVALID_EVENT_TYPE", "Invalid event type: "+et)
			return
		}
		eventTypes = append(eventTypes, eventType)
	}
	if len(eventTypes) == 0 {
		eventTypes = append(eventTypes, model.ValidEventTypes...)
	}

	secret, err := notify.GenerateSecret()
	if err != nil {
		h.logger.Error("secret_generation_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create endpoint")
		return
	}

	now := time.Now().UTC()
	endpoint := &model.NotifyEndpoint{
		ID:         ulid.Make().String(),
		TargetURL:  req.TargetURL,
		Secret:     secret,
		Enabled:    true,
		EventTypes: eventTypes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.CreateEndpoint(r.Context(), endpoint); err != nil {
		h.logger.Error("endpoint_create_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create endpoint")
		return
	}

	h.logger.Info("endpoint_created",
		"endpoint_id", endpoint.ID,
		"events", len(eventTypes),
	)

	resp := dto.ToEndpointResponse(endpoint)
	resp.Secret = secret
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/v1/admin/endpoints.
func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.repo.ListEndpoints(r.Context())
	if err != nil {
		h.logger.Error("endpoint_list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list endpoints")
		return
	}

	responses := make([]*dto.EndpointResponse, len(endpoints))
	for i, ep := range endpoints {
		responses[i] = dto.ToEndpointResponse(ep)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": responses,
	})
}

// SetEnabled handles POST /api/v1/admin/endpoints/{id}/enabled.
func (h *EndpointHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Endpoint ID is required")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.repo.SetEndpointEnabled(r.Context(), id, req.Enabled); err != nil {
		if errors.Is(err, notify.ErrEndpointNotFound) {
			writeError(w, http.StatusNotFound, "ENDPOINT_NOT_FOUND", "Endpoint not found")
			return
		}
		h.logger.Error("endpoint_update_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update endpoint")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/admin/endpoints/{id}.
func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Endpoint ID is required")
		return
	}

	if err := h.repo.DeleteEndpoint(r.Context(), id); err != nil {
		if errors.Is(err, notify.ErrEndpointNotFound) {
			writeError(w, http.StatusNotFound, "ENDPOINT_NOT_FOUND", "Endpoint not found")
			return
		}
		h.logger.Error("endpoint_delete_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete endpoint")
		return
	}

	h.logger.Info("endpoint_deleted", "endpoint_id", id)

	w.WriteHeader(http.StatusNoContent)
}
