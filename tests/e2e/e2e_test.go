//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redink/redink/internal/notify"
	"github.com/redink/redink/internal/repository"
)

type accountResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Tokens int    `json:"tokens"`
	Role   string `json:"role"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

type submitResponse struct {
	Censored  string `json:"censored"`
	WordCount int    `json:"word_count"`
	Cost      int    `json:"cost"`
	Tokens    int    `json:"tokens"`
}

type saveDocumentResponse struct {
	Document struct {
		ID string `json:"id"`
	} `json:"document"`
	Cost   int `json:"cost"`
	Tokens int `json:"tokens"`
}

type endpointCreateResponse struct {
	ID        string `json:"id"`
	TargetURL string `json:"target_url"`
	Secret    string `json:"secret"`
}

type deliveryRequest struct {
	Headers http.Header
	Body    []byte
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("REDINK_BASE_URL", "http://localhost:8080")

	session := registerAccount(t, baseURL, "paid")
	if session.Account.Tokens != 100 {
		t.Fatalf("expected starting balance 100, got %d", session.Account.Tokens)
	}

	// Five clean words cost five tokens.
	var submit submitResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/corrections/submit", session.Token,
		map[string]any{"text": "the quick brown fox jumps"}, &submit)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from submit, got %d", status)
	}
	if submit.WordCount != 5 || submit.Cost != 5 {
		t.Fatalf("expected 5 words costing 5, got %d words costing %d", submit.WordCount, submit.Cost)
	}
	if submit.Tokens != 95 {
		t.Fatalf("expected balance 95 after submit, got %d", submit.Tokens)
	}

	var saved saveDocumentResponse
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/documents", session.Token,
		map[string]any{"title": "smoke", "content": submit.Censored}, &saved)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from document save, got %d", status)
	}
	if saved.Cost != 5 || saved.Tokens != 90 {
		t.Fatalf("expected save to cost 5 leaving 90, got cost %d balance %d", saved.Cost, saved.Tokens)
	}

	var ledger struct {
		Entries []struct {
			Amount  int    `json:"amount"`
			Balance int    `json:"balance"`
			Reason  string `json:"reason"`
		} `json:"entries"`
	}
	status = doJSON(t, http.MethodGet, baseURL+"/api/v1/me/ledger", session.Token, nil, &ledger)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from ledger, got %d", status)
	}
	if len(ledger.Entries) < 2 {
		t.Fatalf("expected at least two ledger entries, got %d", len(ledger.Entries))
	}
	if ledger.Entries[0].Balance != 90 {
		t.Fatalf("expected newest ledger balance 90, got %d", ledger.Entries[0].Balance)
	}
}

func TestE2EFreeTierCooldown(t *testing.T) {
	baseURL := envOrDefault("REDINK_BASE_URL", "http://localhost:8080")

	session := registerAccount(t, baseURL, "free")

	var first struct {
		Censored string `json:"censored"`
	}
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/corrections/free-submit", session.Token,
		map[string]any{"text": "hello there"}, &first)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from first free submit, got %d", status)
	}

	// Second submit inside the cooldown window must be refused.
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/corrections/free-submit",
		strings.NewReader(`{"text":"hello again"}`))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("second free submit: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside cooldown, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header on cooldown response")
	}

	var errResp struct {
		Code              string `json:"code"`
		RetryAfterSeconds int    `json:"retry_after_seconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode cooldown response: %v", err)
	}
	if errResp.Code != "FREE_TIER_COOLDOWN" {
		t.Errorf("expected code FREE_TIER_COOLDOWN, got %q", errResp.Code)
	}
	if errResp.RetryAfterSeconds <= 0 {
		t.Errorf("expected positive retry_after_seconds, got %d", errResp.RetryAfterSeconds)
	}
}

func TestE2ENotifyDelivery(t *testing.T) {
	baseURL := envOrDefault("REDINK_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	super := registerAccount(t, baseURL, "paid")
	promoteToSuper(t, dbURL, super.Account.ID)
	target := registerAccount(t, baseURL, "free")

	receiverURL, deliveries, shutdown := startReceiver(t)
	defer shutdown()

	var endpoint endpointCreateResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/admin/endpoints", super.Token,
		map[string]any{"target_url": receiverURL, "event_types": []string{"account.suspended"}}, &endpoint)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from endpoint create, got %d", status)
	}
	if endpoint.Secret == "" {
		t.Fatalf("endpoint create response missing secret")
	}

	status = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/v1/admin/accounts/%s/suspend", baseURL, target.Account.ID),
		super.Token, map[string]any{"suspended": true}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 from suspend, got %d", status)
	}

	waitForDelivery(t, deliveries, endpoint.Secret, target.Account.ID)
}

func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("REDINK_BASE_URL", "http://localhost:8080")

	password := fmt.Sprintf("Sup3r-secret-%d", time.Now().UnixNano())
	email := uniqueEmail()

	var session sessionResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "",
		map[string]any{"email": email, "password": password, "role": "free"}, &session)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/me", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if strings.Contains(string(body), password) {
		t.Error("SECURITY: account response contains the plaintext password")
	}
	if strings.Contains(string(body), "password_hash") {
		t.Error("SECURITY: account response exposes the password hash")
	}

	// A bad credential must not be echoed back in the error body.
	var loginErr bytes.Buffer
	badPassword := "Wrong-password-123"
	payload, _ := json.Marshal(map[string]any{"email": email, "password": badPassword})
	loginResp, err := client.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	_, _ = loginErr.ReadFrom(loginResp.Body)
	loginResp.Body.Close()

	if loginResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", loginResp.StatusCode)
	}
	if strings.Contains(loginErr.String(), badPassword) {
		t.Error("SECURITY: login error echoed the submitted password")
	}
}

func registerAccount(t *testing.T, baseURL, role string) sessionResponse {
	t.Helper()

	var session sessionResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", map[string]any{
		"email":    uniqueEmail(),
		"password": "Test-password-1234",
		"role":     role,
	}, &session)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
	if session.Token == "" || session.Account.ID == "" {
		t.Fatalf("register response missing fields")
	}
	return session
}

// promoteToSuper flips an account's role directly in the database. There
// is no API path to super on purpose.
func promoteToSuper(t *testing.T, dbURL, accountID string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	tag, err := repo.Pool().Exec(ctx, `UPDATE accounts SET role = 'super' WHERE id = $1`, accountID)
	if err != nil {
		t.Fatalf("promote account: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("expected one account promoted, got %d", tag.RowsAffected())
	}
}

func startReceiver(t *testing.T) (string, <-chan deliveryRequest, func()) {
	t.Helper()

	received := make(chan deliveryRequest, 4)

	listener, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		t.Fatalf("listen receiver: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		received <- deliveryRequest{Headers: r.Header.Clone(), Body: body}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Handler: handler}
	go func() {
		_ = srv.Serve(listener)
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://host.docker.internal:%d/notify", port)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}

	return url, received, shutdown
}

func waitForDelivery(t *testing.T, deliveries <-chan deliveryRequest, secret, accountID string) {
	t.Helper()

	select {
	case req := <-deliveries:
		sig := req.Headers.Get(notify.HeaderSignature)
		ts := req.Headers.Get(notify.HeaderTimestamp)
		if sig == "" {
			t.Fatalf("missing %s header", notify.HeaderSignature)
		}
		if ts == "" {
			t.Fatalf("missing %s header", notify.HeaderTimestamp)
		}
		if req.Headers.Get(notify.HeaderDeliveryID) == "" {
			t.Fatalf("missing %s header", notify.HeaderDeliveryID)
		}

		var timestamp int64
		if _, err := fmt.Sscanf(ts, "%d", &timestamp); err != nil {
			t.Fatalf("parse timestamp header %q: %v", ts, err)
		}
		if err := notify.ValidateSignature(secret, sig, timestamp, req.Body, 5*time.Minute); err != nil {
			t.Fatalf("signature validation failed: %v", err)
		}

		var event struct {
			EventType string         `json:"event_type"`
			EventID   string         `json:"event_id"`
			Data      map[string]any `json:"data"`
		}
		if err := json.Unmarshal(req.Body, &event); err != nil {
			t.Fatalf("decode event payload: %v", err)
		}
		if event.EventType != "account.suspended" {
			t.Fatalf("unexpected event_type %q", event.EventType)
		}
		if event.EventID == "" {
			t.Fatalf("event payload missing event_id")
		}
		if got, ok := event.Data["account_id"].(string); !ok || got != accountID {
			t.Fatalf("unexpected account_id in event payload")
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("timed out waiting for event delivery")
	}
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}

func uniqueEmail() string {
	return fmt.Sprintf("e2e-%d@redink.test", time.Now().UnixNano())
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
