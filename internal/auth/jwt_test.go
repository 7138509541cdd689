package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/redink/redink/internal/model"
)

func testAccount() *model.Account {
	return &model.Account{
		ID:    "01HTESTACCOUNT0000000000",
		Email: "writer@example.com",
		Role:  model.RolePaid,
	}
}

func TestIssueAndParseSessionToken(t *testing.T) {
	secret := "test-secret"

	token, err := IssueSessionToken(testAccount(), secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	authCtx, err := ParseSessionToken(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if authCtx.AccountID != "01HTESTACCOUNT0000000000" {
		t.Errorf("unexpected account ID %q", authCtx.AccountID)
	}
	if authCtx.Email != "writer@example.com" {
		t.Errorf("unexpected email %q", authCtx.Email)
	}
	if authCtx.Role != model.RolePaid {
		t.Errorf("unexpected role %q", authCtx.Role)
	}
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	token, err := IssueSessionToken(testAccount(), "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := ParseSessionToken(token, "secret-b"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	token, err := IssueSessionToken(testAccount(), "secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := ParseSessionToken(token, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken("not-a-token", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
