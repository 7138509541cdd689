package repository

import (
	"context"
	"fmt"

	"github.com/redink/redink/internal/model"
)

// AppendLedger records a single balance change. The ledger is
// append-only; entries are never updated or deleted.
func (r *Repository) AppendLedger(ctx context.Context, entry *model.LedgerEntry) error {
	query := `
		INSERT INTO token_ledger (id, account_id, amount, balance, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.AccountID, entry.Amount, entry.Balance, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ListLedger returns an account's balance history, newest first.
func (r *Repository) ListLedger(ctx context.Context, accountID string, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, account_id, amount, balance, reason, created_at
		FROM token_ledger
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LedgerEntry
	for rows.Next() {
		var entry model.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Amount, &entry.Balance, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
