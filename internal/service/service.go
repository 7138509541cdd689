// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/repository"
)

// Service errors.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidRole        = errors.New("role not available at registration")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrNotDocumentOwner   = errors.New("document owned by another account")
	ErrRecordNotFound     = errors.New("moderation record not found")
	ErrAlreadyDecided     = errors.New("record already decided")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrNotInvitee         = errors.New("invite addressed to another account")
	ErrSelfTarget         = errors.New("action cannot target your own account")
	ErrBalanceContention  = errors.New("balance changed concurrently, retry")
)

// Corrector produces machine corrections and paraphrases. Implemented
// by the LLM provider client; swapped for a stub in tests.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
	Paraphrase(ctx context.Context, text string) (string, error)
}

// Notifier publishes moderation events to subscribed endpoints.
type Notifier interface {
	Publish(ctx context.Context, eventType model.EventType, payload any) error
}

// balanceRetries bounds the compare-and-set loop. Contention on a
// single account is rare; three attempts is plenty.
const balanceRetries = 3

// balanceOp computes a new balance from a freshly read account. It
// must be pure: the loop re-invokes it after a lost race.
type balanceOp func(acct *model.Account) (newBalance int, opErr error)

// applyBalance reads the account, computes the new balance with fn,
// and persists it with a compare-and-set, retrying lost races. When fn
// returns an error alongside a changed balance (overdraft halving),
// the balance is persisted first and the error surfaced after, so
// punitive outcomes both stick and reach the caller. The returned
// account carries the persisted balance.
func applyBalance(ctx context.Context, repo *repository.Repository, id string, fn balanceOp) (*model.Account, error) {
	for attempt := 0; attempt < balanceRetries; attempt++ {
		acct, err := repo.GetAccountByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		if acct.Suspended {
			return nil, ErrAccountSuspended
		}

		newBalance, opErr := fn(acct)
		if newBalance != acct.Tokens {
			err := repo.CompareAndSetTokens(ctx, acct.ID, acct.Tokens, newBalance)
			if errors.Is(err, repository.ErrBalanceConflict) {
				continue
			}
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return nil, ErrAccountNotFound
				}
				return nil, err
			}
		}
		acct.Tokens = newBalance
		return acct, opErr
	}
	return nil, ErrBalanceContention
}

// newID generates a unique record ID.
func newID() string {
	return ulid.Make().String()
}

// appendLedger records a balance change. The ledger is an audit trail;
// a failed append never rolls back the balance it describes.
func appendLedger(ctx context.Context, repo *repository.Repository, accountID string, amount, balance int, reason model.LedgerReason) {
	entry := &model.LedgerEntry{
		ID:        newID(),
		AccountID: accountID,
		Amount:    amount,
		Balance:   balance,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.AppendLedger(ctx, entry); err != nil {
		_ = err // audit only, balance state is already durable
	}
}
