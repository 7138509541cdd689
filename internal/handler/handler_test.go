package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redink/redink/internal/handler/dto"
	"github.com/redink/redink/internal/provider"
	"github.com/redink/redink/internal/rules"
	"github.com/redink/redink/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "insufficient balance",
			err:        &rules.InsufficientBalanceError{Balance: 7},
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "INSUFFICIENT_TOKENS",
		},
		{
			name:       "free tier cooldown",
			err:        &rules.RateLimitedError{RetryAfter: 90 * time.Second},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "FREE_TIER_COOLDOWN",
		},
		{
			name:       "empty text",
			err:        rules.ErrEmptyText,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "account not found",
			err:        service.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
		{
			name:       "suspended",
			err:        service.ErrAccountSuspended,
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCOUNT_SUSPENDED",
		},
		{
			name:       "email exists",
			err:        service.ErrEmailExists,
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_EXISTS",
		},
		{
			name:       "already decided",
			err:        service.ErrAlreadyDecided,
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_DECIDED",
		},
		{
			name:       "provider failure",
			err:        provider.ErrProvider,
			wantStatus: http.StatusBadGateway,
			wantCode:   "PROVIDER_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(discardLogger(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleServiceError_InsufficientCarriesBalance(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(discardLogger(), rec, &rules.InsufficientBalanceError{Balance: 12})

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens == nil || *resp.Tokens != 12 {
		t.Errorf("tokens = %v, want 12", resp.Tokens)
	}
}

func TestHandleServiceError_CooldownCarriesRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(discardLogger(), rec, &rules.RateLimitedError{RetryAfter: 90 * time.Second})

	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After = %q, want %q", got, "90")
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RetryAfterSeconds != 90 {
		t.Errorf("retry_after_seconds = %d, want 90", resp.RetryAfterSeconds)
	}
}

func TestNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/healthz", nil)
	rec := httptest.NewRecorder()

	MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
