package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/service"
)

// CollaborationHandler handles collaboration invite endpoints.
type CollaborationHandler struct {
	svc    *service.CollaborationService
	logger *slog.Logger
}

// NewCollaborationHandler creates a new CollaborationHandler.
func NewCollaborationHandler(svc *service.CollaborationService, logger *slog.Logger) *CollaborationHandler {
	return &CollaborationHandler{
		svc:    svc,
		logger: logger.With("handler", "collaboration"),
	}
}

// Invite handles POST /api/v1/invites.
func (h *CollaborationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.DocumentID == "" || req.InviteeEmail == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "document_id and invitee_email are required")
		return
	}

	invite, err := h.svc.Invite(r.Context(), authCtx.AccountID, req.InviteeEmail, req.DocumentID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("invite_created",
		"invite_id", invite.ID,
		"document_id", invite.DocumentID,
		"inviter_id", invite.InviterID,
	)

	writeJSON(w, http.StatusCreated, dto.ToInviteResponse(invite))
}

// List handles GET /api/v1/invites. Returns invites addressed to the
// authenticated account.
func (h *CollaborationHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	invites, err := h.svc.ListInvites(r.Context(), authCtx.AccountID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.InviteResponse, len(invites))
	for i, inv := range invites {
		responses[i] = dto.ToInviteResponse(inv)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invites": responses,
	})
}

// Respond handles POST /api/v1/invites/{id}/respond.
// Rejecting an invite fines the inviter, not the invitee.
func (h *CollaborationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Invite ID is required")
		return
	}

	var req dto.InviteRespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	invite, err := h.svc.Respond(r.Context(), id, authCtx.AccountID, req.Accept)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("invite_decided",
		"invite_id", invite.ID,
		"status", string(invite.Status),
	)

	writeJSON(w, http.StatusOK, dto.ToInviteResponse(invite))
}
