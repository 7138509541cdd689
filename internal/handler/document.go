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

// DocumentHandler handles saved document endpoints.
type DocumentHandler struct {
	svc    *service.CorrectionService
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.CorrectionService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:    svc,
		logger: logger.With("handler", "document"),
	}
}

// Create handles POST /api/v1/documents.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", err.Error())
		return
	}
	if !checkText(w, req.Content) {
		return
	}

	out, err := h.svc.SaveDocument(r.Context(), authCtx.AccountID, req.Title, req.Content)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("document_saved",
		"account_id", authCtx.AccountID,
		"document_id", out.Document.ID,
		"cost", out.Cost,
	)

	writeJSON(w, http.StatusCreated, dto.SaveDocumentResponse{
		Document: dto.ToDocumentResponse(out.Document),
		Cost:     out.Cost,
		Tokens:   out.Balance,
	})
}

// Update handles PUT /api/v1/documents/{id}.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	var req dto.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !checkText(w, req.Content) {
		return
	}

	out, err := h.svc.UpdateDocument(r.Context(), authCtx.AccountID, id, req.Content)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SaveDocumentResponse{
		Document: dto.ToDocumentResponse(out.Document),
		Cost:     out.Cost,
		Tokens:   out.Balance,
	})
}

// Get handles GET /api/v1/documents/{id}.
// Accessible to the owner and accepted collaborators.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), authCtx.AccountID, id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentResponse(doc))
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	docs, err := h.svc.ListDocuments(r.Context(), authCtx.AccountID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	responses := make([]*dto.DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = dto.ToDocumentResponse(d)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": responses,
	})
}
