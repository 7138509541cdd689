package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/service"
)

// AccountHandler handles registration, login and account endpoints.
type AccountHandler struct {
	svc        *service.AccountService
	logger     *slog.Logger
	jwtSecret  string
	sessionTTL time.Duration
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger, jwtSecret string, sessionTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		svc:        svc,
		logger:     logger.With("handler", "account"),
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	acct, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	token, err := auth.IssueSessionToken(acct, h.jwtSecret, h.sessionTTL)
	if err != nil {
		h.logger.Error("token_issue_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("account_registered",
		"account_id", acct.ID,
		"role", string(acct.Role),
	)

	writeJSON(w, http.StatusCreated, dto.SessionResponse{
		Token:   token,
		Account: dto.ToAccountResponse(acct),
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	acct, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	token, err := auth.IssueSessionToken(acct, h.jwtSecret, h.sessionTTL)
	if err != nil {
		h.logger.Error("token_issue_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token:   token,
		Account: dto.ToAccountResponse(acct),
	})
}

// Me handles GET /api/v1/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	acct, err := h.svc.GetAccount(r.Context(), authCtx.AccountID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(acct))
}

// Purchase handles POST /api/v1/me/purchase.
func (h *AccountHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	var req dto.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	acct, err := h.svc.Purchase(r.Context(), authCtx.AccountID, req.Amount)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("tokens_purchased",
		"account_id", acct.ID,
		"amount", req.Amount,
		"balance", acct.Tokens,
	)

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(acct))
}

// Ledger handles GET /api/v1/me/ledger.
func (h *AccountHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	entries, err := h.svc.Ledger(r.Context(), authCtx.AccountID, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": dto.ToLedgerResponse(entries),
	})
}
