package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/redink/redink/internal/model"
)

// Common errors for account repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailExists     = errors.New("email already exists")
	// ErrBalanceConflict is returned by CompareAndSetTokens when the
	// balance changed between read and write.
	ErrBalanceConflict = errors.New("token balance modified concurrently")
)

const accountColumns = `id, email, password_hash, tokens, role, suspended, complaint_flag, last_free_use, created_at`

// CreateAccount inserts a new account.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, tokens, role, suspended, complaint_flag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Tokens,
		account.Role,
		account.Suspended,
		account.ComplaintFlag,
		account.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccountByID retrieves an account by its ID.
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return account, nil
}

// GetAccountByEmail retrieves an account by its email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

// ListAccounts returns all accounts, newest first. Super-user dashboard use.
func (r *Repository) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// CompareAndSetTokens writes a new balance only if the current balance
// still matches expect. Callers compute the new balance from a read,
// then apply it here; on ErrBalanceConflict they re-read and retry.
func (r *Repository) CompareAndSetTokens(ctx context.Context, id string, expect, tokens int) error {
	query := `
		UPDATE accounts
		SET tokens = $3
		WHERE id = $1 AND tokens = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, expect, tokens)
	if err != nil {
		return fmt.Errorf("failed to set tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the account is missing or the balance moved.
		if _, getErr := r.GetAccountByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrBalanceConflict
	}
	return nil
}

// Debit reduces the balance by amount, clamping at zero.
func (r *Repository) Debit(ctx context.Context, id string, amount int) (int, error) {
	query := `
		UPDATE accounts
		SET tokens = GREATEST(tokens - $2, 0)
		WHERE id = $1
		RETURNING tokens
	`

	var balance int
	err := r.pool.QueryRow(ctx, query, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to debit tokens: %w", err)
	}

	return balance, nil
}

// Credit increases the balance by amount.
func (r *Repository) Credit(ctx context.Context, id string, amount int) (int, error) {
	query := `
		UPDATE accounts
		SET tokens = tokens + $2
		WHERE id = $1
		RETURNING tokens
	`

	var balance int
	err := r.pool.QueryRow(ctx, query, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to credit tokens: %w", err)
	}

	return balance, nil
}

// SetSuspended sets the suspension flag.
func (r *Repository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET suspended = $2 WHERE id = $1`, id, suspended)
	if err != nil {
		return fmt.Errorf("failed to set suspended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetComplaintFlag sets the pending-complaint flag.
func (r *Repository) SetComplaintFlag(ctx context.Context, id string, flagged bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET complaint_flag = $2 WHERE id = $1`, id, flagged)
	if err != nil {
		return fmt.Errorf("failed to set complaint flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetLastFreeUse records a free-tier use.
func (r *Repository) SetLastFreeUse(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET last_free_use = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to set last free use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteAccount hard-deletes an account. Moderation "terminate" only.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// scanAccount scans a single account row.
func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Tokens,
		&account.Role,
		&account.Suspended,
		&account.ComplaintFlag,
		&account.LastFreeUse,
		&account.CreatedAt,
	)
	return &account, err
}
