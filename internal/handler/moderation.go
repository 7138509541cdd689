package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/middleware"
	"github.com/redink/redink/internal/service"
)

// ModerationHandler handles complaint, blacklist, rejection review and
// account administration endpoints.
type ModerationHandler struct {
	svc    *service.ModerationService
	logger *slog.Logger
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(svc *service.ModerationService, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{
		svc:    svc,
		logger: logger.With("handler", "moderation"),
	}
}

// SubmitComplaint handles POST /api/v1/complaints.
func (h *ModerationHandler) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.ComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := middleware.ValidateReason(req.Reason); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REASON", err.Error())
		return
	}

	complaint, err := h.svc.SubmitComplaint(r.Context(), authCtx.AccountID, req.AccusedID, req.DocumentID, req.Reason)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("complaint_filed",
		"complaint_id", complaint.ID,
		"accused_id", complaint.AccusedID,
	)

	writeJSON(w, http.StatusCreated, dto.ToComplaintResponse(complaint))
}

// ListComplaints handles GET /api/v1/admin/complaints.
func (h *ModerationHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.svc.ListPendingComplaints(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.ComplaintResponse, len(complaints))
	for i, c := range complaints {
		responses[i] = dto.ToComplaintResponse(c)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"complaints": responses,
	})
}

// ResolveComplaint handles POST /api/v1/admin/complaints/{id}/resolve.
// Resolution fines the accused; dismissal fines the complainant.
func (h *ModerationHandler) ResolveComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Complaint ID is required")
		return
	}

	var req dto.ResolveComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	complaint, err := h.svc.ResolveComplaint(r.Context(), id, req.Dismiss, req.Response)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("complaint_decided",
		"complaint_id", complaint.ID,
		"status", string(complaint.Status),
	)

	writeJSON(w, http.StatusOK, dto.ToComplaintResponse(complaint))
}

// RequestBlacklistWord handles POST /api/v1/blacklist.
func (h *ModerationHandler) RequestBlacklistWord(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.BlacklistWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := middleware.ValidateBlacklistWord(req.Word); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_WORD", err.Error())
		return
	}

	request, err := h.svc.RequestBlacklistWord(r.Context(), authCtx.AccountID, req.Word)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBlacklistRequestResponse(request))
}

// ListBlacklistRequests handles GET /api/v1/admin/blacklist.
func (h *ModerationHandler) ListBlacklistRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.ListPendingBlacklistRequests(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.BlacklistRequestResponse, len(requests))
	for i, b := range requests {
		responses[i] = dto.ToBlacklistRequestResponse(b)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requests": responses,
	})
}

// DecideBlacklistRequest handles POST /api/v1/admin/blacklist/{id}/decide.
func (h *ModerationHandler) DecideBlacklistRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Request ID is required")
		return
	}

	var req dto.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.DecideBlacklistRequest(r.Context(), id, req.Approve); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("blacklist_request_decided",
		"request_id", id,
		"approved", req.Approve,
	)

	w.WriteHeader(http.StatusNoContent)
}

// ListRejections handles GET /api/v1/admin/rejections.
func (h *ModerationHandler) ListRejections(w http.ResponseWriter, r *http.Request) {
	rejections, err := h.svc.ListPendingLLMRejections(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.RejectionResponse, len(rejections))
	for i, rej := range rejections {
		responses[i] = dto.ToRejectionResponse(rej)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rejections": responses,
	})
}

// ReviewRejection handles POST /api/v1/admin/rejections/{id}/review.
// The decision sets the penalty charged to the original submitter.
func (h *ModerationHandler) ReviewRejection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Rejection ID is required")
		return
	}

	var req dto.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	rejection, err := h.svc.ReviewLLMRejection(r.Context(), id, req.Approve)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("rejection_reviewed",
		"rejection_id", rejection.ID,
		"status", string(rejection.Status),
		"penalty", rejection.Penalty,
	)

	writeJSON(w, http.StatusOK, dto.ToRejectionResponse(rejection))
}

// ListAccounts handles GET /api/v1/admin/accounts.
func (h *ModerationHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = dto.ToAccountResponse(a)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": responses,
	})
}

// SuspendAccount handles POST /api/v1/admin/accounts/{id}/suspend.
func (h *ModerationHandler) SuspendAccount(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Account ID is required")
		return
	}

	var req dto.SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.SetSuspended(r.Context(), authCtx.AccountID, id, req.Suspended); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("account_suspension_set",
		"account_id", id,
		"suspended", req.Suspended,
	)

	w.WriteHeader(http.StatusNoContent)
}

// FineAccount handles POST /api/v1/admin/accounts/{id}/fine.
func (h *ModerationHandler) FineAccount(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Account ID is required")
		return
	}

	if err := h.svc.FineAccount(r.Context(), authCtx.AccountID, id); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("account_fined", "account_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// TerminateAccount handles DELETE /api/v1/admin/accounts/{id}.
func (h *ModerationHandler) TerminateAccount(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Account ID is required")
		return
	}

	if err := h.svc.TerminateAccount(r.Context(), authCtx.AccountID, id); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("account_terminated", "account_id", id)

	w.WriteHeader(http.StatusNoContent)
}
