//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/testutil"
)

func TestIntegrationAccountRepository_CreateAccount(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("create"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	retrieved, err := repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}

	if retrieved.Email != account.Email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, account.Email)
	}
	if retrieved.Tokens != 100 {
		t.Errorf("Tokens = %d, want starting balance 100", retrieved.Tokens)
	}
	if retrieved.Role != model.RoleFree {
		t.Errorf("Role = %q, want %q", retrieved.Role, model.RoleFree)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationAccountRepository_CreateAccount_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestAccount(t, email)
	second := testutil.NewTestAccount(t, email)

	if err := repo.CreateAccount(ctx, first); err != nil {
		t.Fatalf("CreateAccount (first) failed: %v", err)
	}

	err := repo.CreateAccount(ctx, second)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationAccountRepository_GetByEmail_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetAccountByEmail(ctx, "nobody@redink.test")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got: %v", err)
	}
}

func TestIntegrationAccountRepository_CompareAndSetTokens(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("cas"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := repo.CompareAndSetTokens(ctx, account.ID, 100, 75); err != nil {
		t.Fatalf("CompareAndSetTokens failed: %v", err)
	}

	retrieved, err := repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if retrieved.Tokens != 75 {
		t.Errorf("Tokens = %d, want 75", retrieved.Tokens)
	}
}

func TestIntegrationAccountRepository_CompareAndSetTokens_StaleRead(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("stale"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Balance is 100, so an expectation of 90 must lose.
	err := repo.CompareAndSetTokens(ctx, account.ID, 90, 80)
	if !errors.Is(err, ErrBalanceConflict) {
		t.Errorf("Expected ErrBalanceConflict, got: %v", err)
	}
}

func TestIntegrationAccountRepository_CompareAndSetTokens_MissingAccount(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	err := repo.CompareAndSetTokens(ctx, "no-such-account", 100, 50)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got: %v", err)
	}
}

func TestIntegrationAccountRepository_DebitClampsAtZero(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("debit"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	balance, err := repo.Debit(ctx, account.ID, 30)
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if balance != 70 {
		t.Errorf("balance after debit = %d, want 70", balance)
	}

	// A fine larger than the balance empties the account, never below.
	balance, err = repo.Debit(ctx, account.ID, 1000)
	if err != nil {
		t.Fatalf("Debit (oversized) failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance after oversized debit = %d, want 0", balance)
	}
}

func TestIntegrationAccountRepository_Credit(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("credit"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	balance, err := repo.Credit(ctx, account.ID, 250)
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if balance != 350 {
		t.Errorf("balance after credit = %d, want 350", balance)
	}
}

func TestIntegrationAccountRepository_SuspendAndFlag(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("suspend"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := repo.SetSuspended(ctx, account.ID, true); err != nil {
		t.Fatalf("SetSuspended failed: %v", err)
	}
	if err := repo.SetComplaintFlag(ctx, account.ID, true); err != nil {
		t.Fatalf("SetComplaintFlag failed: %v", err)
	}

	retrieved, err := repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if !retrieved.Suspended {
		t.Error("account should be suspended")
	}
	if !retrieved.ComplaintFlag {
		t.Error("complaint flag should be set")
	}
}

func TestIntegrationAccountRepository_LastFreeUse(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("freeuse"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Microsecond)
	if err := repo.SetLastFreeUse(ctx, account.ID, at); err != nil {
		t.Fatalf("SetLastFreeUse failed: %v", err)
	}

	retrieved, err := repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if retrieved.LastFreeUse == nil {
		t.Fatal("LastFreeUse should be set")
	}
	if !retrieved.LastFreeUse.Equal(at) {
		t.Errorf("LastFreeUse = %v, want %v", retrieved.LastFreeUse, at)
	}
}

func TestIntegrationLedgerRepository_AppendAndList(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("ledger"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	entries := []*model.LedgerEntry{
		{ID: testutil.UniqueID("led"), AccountID: account.ID, Amount: -5, Balance: 95, Reason: model.ReasonSubmit, CreatedAt: time.Now().UTC()},
		{ID: testutil.UniqueID("led"), AccountID: account.ID, Amount: 50, Balance: 145, Reason: model.ReasonPurchase, CreatedAt: time.Now().UTC().Add(time.Second)},
	}
	for _, e := range entries {
		if err := repo.AppendLedger(ctx, e); err != nil {
			t.Fatalf("AppendLedger failed: %v", err)
		}
	}

	listed, err := repo.ListLedger(ctx, account.ID, 10)
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(listed))
	}

	// Newest first
	if listed[0].Reason != model.ReasonPurchase {
		t.Errorf("newest entry reason = %q, want %q", listed[0].Reason, model.ReasonPurchase)
	}
	if listed[0].Balance != 145 {
		t.Errorf("newest entry balance = %d, want 145", listed[0].Balance)
	}
}

func TestIntegrationModerationRepository_BlacklistLifecycle(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueEmail("word"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	request := &model.BlacklistRequest{
		ID:          testutil.UniqueID("blreq"),
		SubmitterID: account.ID,
		Word:        "zonk",
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateBlacklistRequest(ctx, request); err != nil {
		t.Fatalf("CreateBlacklistRequest failed: %v", err)
	}

	word, err := repo.DecideBlacklistRequest(ctx, request.ID, model.StatusApproved)
	if err != nil {
		t.Fatalf("DecideBlacklistRequest failed: %v", err)
	}
	if word != "zonk" {
		t.Errorf("decided word = %q, want %q", word, "zonk")
	}

	words, err := repo.ListApprovedBlacklistWords(ctx)
	if err != nil {
		t.Fatalf("ListApprovedBlacklistWords failed: %v", err)
	}
	found := false
	for _, w := range words {
		if w == "zonk" {
			found = true
		}
	}
	if !found {
		t.Errorf("approved word list %v missing %q", words, "zonk")
	}

	// Second decide on the same request must fail.
	if _, err := repo.DecideBlacklistRequest(ctx, request.ID, model.StatusRejected); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("Expected ErrAlreadyDecided, got: %v", err)
	}
}

func TestIntegrationCollaborationRepository_InviteDecideOnce(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	inviter := testutil.NewTestAccount(t, testutil.UniqueEmail("inviter"))
	invitee := testutil.NewTestAccount(t, testutil.UniqueEmail("invitee"))
	for _, a := range []*model.Account{inviter, invitee} {
		if err := repo.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	doc := testutil.NewTestDocument(t, inviter.ID)
	if err := repo.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	invite := &model.CollaborationInvite{
		ID:         testutil.UniqueID("inv"),
		DocumentID: doc.ID,
		InviterID:  inviter.ID,
		InviteeID:  invitee.ID,
		Status:     model.InvitePending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	if err := repo.DecideInvite(ctx, invite.ID, model.InviteAccepted); err != nil {
		t.Fatalf("DecideInvite failed: %v", err)
	}

	ok, err := repo.IsCollaborator(ctx, doc.ID, invitee.ID)
	if err != nil {
		t.Fatalf("IsCollaborator failed: %v", err)
	}
	if !ok {
		t.Error("invitee should be a collaborator after accepting")
	}

	if err := repo.DecideInvite(ctx, invite.ID, model.InviteRejected); !errors.Is(err, ErrInviteDecided) {
		t.Errorf("Expected ErrInviteDecided, got: %v", err)
	}
}

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
