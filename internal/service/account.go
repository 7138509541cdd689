package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/metrics"
	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/repository"
	"github.com/redink/redink/internal/rules"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// AccountService handles registration, authentication, purchases, and
// the token ledger.
type AccountService struct {
	repo    *repository.Repository
	engine  *rules.Engine
	metrics metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, engine *rules.Engine, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:    repo,
		engine:  engine,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email    string
	Password string
	Role     model.Role
}

// registrationRole validates the client-chosen tier, defaulting blank
// to free. Super is never client-assignable; promotion happens out of
// band, directly against the account store.
func registrationRole(r model.Role) (model.Role, error) {
	switch r {
	case "":
		return model.RoleFree, nil
	case model.RoleFree, model.RolePaid:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Register creates an account with the configured starting balance.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	role, err := registrationRole(input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Tokens:       s.engine.Pricing().StartingBalance,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return account, nil
}

// Authenticate verifies credentials and returns the account. Suspended
// accounts may still log in; suspension only blocks actions.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Purchase credits purchased tokens. The amount must be positive; the
// rule engine rejects zero and negative purchases.
func (s *AccountService) Purchase(ctx context.Context, accountID string, amount int) (*model.Account, error) {
	account, err := applyBalance(ctx, s.repo, accountID, func(acct *model.Account) (int, error) {
		return s.engine.Purchase(acct.Tokens, amount)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddTokensCredited(amount)
	appendLedger(ctx, s.repo, account.ID, amount, account.Tokens, model.ReasonPurchase)
	return account, nil
}

// Ledger returns recent balance changes for an account, newest first.
func (s *AccountService) Ledger(ctx context.Context, accountID string, limit int) ([]*model.LedgerEntry, error) {
	return s.repo.ListLedger(ctx, accountID, limit)
}
