package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/middleware"
	"github.com/redink/redink/internal/service"
)

// CorrectionHandler handles text submission and correction endpoints.
type CorrectionHandler struct {
	svc    *service.CorrectionService
	logger *slog.Logger
}

// NewCorrectionHandler creates a new CorrectionHandler.
func NewCorrectionHandler(svc *service.CorrectionService, logger *slog.Logger) *CorrectionHandler {
	return &CorrectionHandler{
		svc:    svc,
		logger: logger.With("handler", "correction"),
	}
}

// checkText enforces transport-level limits before the rule engine runs.
func checkText(w http.ResponseWriter, text string) bool {
	if err := middleware.ValidateText(text); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TEXT", err.Error())
		return false
	}
	return true
}

// Submit handles POST /api/v1/corrections/submit.
func (h *CorrectionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Text) {
		return
	}

	out, err := h.svc.Submit(r.Context(), authCtx.AccountID, req.Text)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("submission_charged",
		"account_id", authCtx.AccountID,
		"words", out.WordCount,
		"cost", out.Cost,
	)

	writeJSON(w, http.StatusOK, dto.SubmitResponse{
		Censored:  out.Censored,
		WordCount: out.WordCount,
		Cost:      out.Cost,
		Tokens:    out.Balance,
	})
}

// FreeSubmit handles POST /api/v1/corrections/free-submit.
func (h *CorrectionHandler) FreeSubmit(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Text) {
		return
	}

	out, err := h.svc.FreeSubmit(r.Context(), authCtx.AccountID, req.Text)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FreeSubmitResponse{
		Censored: out.Censored,
	})
}

// SelfCorrect handles POST /api/v1/corrections/self.
func (h *CorrectionHandler) SelfCorrect(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SelfCorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Original) || !checkText(w, req.Edited) {
		return
	}

	out, err := h.svc.SelfCorrect(r.Context(), authCtx.AccountID, req.Original, req.Edited)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SelfCorrectResponse{
		ChangedWords: out.ChangedWords,
		Cost:         out.Cost,
		Tokens:       out.Balance,
	})
}

// LLMCorrect handles POST /api/v1/corrections/llm.
func (h *CorrectionHandler) LLMCorrect(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Text) {
		return
	}

	out, err := h.svc.LLMCorrect(r.Context(), authCtx.AccountID, req.Text)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("llm_correction_charged",
		"account_id", authCtx.AccountID,
		"cost", out.Cost,
		"bonus", out.Bonus,
	)

	writeJSON(w, http.StatusOK, dto.CorrectResponse{
		Corrected: out.Corrected,
		Cost:      out.Cost,
		Bonus:     out.Bonus,
		Tokens:    out.Balance,
	})
}

// Paraphrase handles POST /api/v1/corrections/paraphrase.
func (h *CorrectionHandler) Paraphrase(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Text) {
		return
	}

	out, err := h.svc.Paraphrase(r.Context(), authCtx.AccountID, req.Text)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ParaphraseResponse{
		Paraphrased: out.Paraphrased,
		Cost:        out.Cost,
		Tokens:      out.Balance,
	})
}

// Accept handles POST /api/v1/corrections/accept.
func (h *CorrectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	out, err := h.svc.AcceptCorrection(r.Context(), authCtx.AccountID, req.ChangeLength)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AcceptResponse{
		Cost:   out.Cost,
		Tokens: out.Balance,
	})
}

// Reject handles POST /api/v1/corrections/reject.
// Rejection queues the output for super review; any penalty is charged
// when the review lands.
func (h *CorrectionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Original) || !checkText(w, req.Output) {
		return
	}
	if err := middleware.ValidateReason(req.Reason); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REASON", err.Error())
		return
	}

	rejection, err := h.svc.RejectCorrection(r.Context(), authCtx.AccountID, req.Original, req.Output, req.Reason)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.ToRejectionResponse(rejection))
}
