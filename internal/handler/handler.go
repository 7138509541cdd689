// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/provider"
	"github.com/redink/redink/internal/rules"
	"github.com/redink/redink/internal/service"
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service and rule errors to HTTP responses.
// The rule engine's typed errors carry data the client needs: the
// penalized balance on a shortfall, the remaining cooldown on a rate
// limit.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	var insufficientErr *rules.InsufficientBalanceError
	var rateLimitedErr *rules.RateLimitedError

	switch {
	case errors.As(err, &insufficientErr):
		tokens := insufficientErr.Balance
		writeJSON(w, http.StatusPaymentRequired, dto.ErrorResponse{
			Error:  "Insufficient tokens",
			Code:   "INSUFFICIENT_TOKENS",
			Tokens: &tokens,
		})
	case errors.As(err, &rateLimitedErr):
		retryAfter := int(rateLimitedErr.RetryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
			Error:             "Free tier cooldown active",
			Code:              "FREE_TIER_COOLDOWN",
			RetryAfterSeconds: retryAfter,
		})
	case errors.Is(err, rules.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be free or paid")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrAccountSuspended):
		writeError(w, http.StatusForbidden, "ACCOUNT_SUSPENDED", "Account is suspended")
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrNotDocumentOwner):
		writeError(w, http.StatusForbidden, "NOT_DOCUMENT_OWNER", "Document belongs to another account")
	case errors.Is(err, service.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "RECORD_NOT_FOUND", "Moderation record not found")
	case errors.Is(err, service.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "INVITE_NOT_FOUND", "Invite not found")
	case errors.Is(err, service.ErrNotInvitee):
		writeError(w, http.StatusForbidden, "NOT_INVITEE", "Invite addressed to another account")
	case errors.Is(err, service.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "ALREADY_DECIDED", "Record already decided")
	case errors.Is(err, service.ErrSelfTarget):
		writeError(w, http.StatusBadRequest, "SELF_TARGET", "Action cannot target your own account")
	case errors.Is(err, service.ErrBalanceContention):
		writeError(w, http.StatusConflict, "BALANCE_CONTENTION", "Balance changed concurrently, retry")
	case errors.Is(err, provider.ErrProvider):
		logger.Error("provider_error", "error", err)
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", "Correction provider unavailable")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
