package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/redink/redink/internal/model"
)

// Common errors for collaboration repository operations.
var (
	ErrInviteNotFound = errors.New("collaboration invite not found")
	// ErrInviteDecided is returned when a response targets an invite
	// that already left pending.
	ErrInviteDecided = errors.New("collaboration invite already decided")
)

const inviteColumns = `id, document_id, inviter_id, invitee_id, status, created_at, decided_at`

// CreateInvite inserts a pending collaboration invite.
func (r *Repository) CreateInvite(ctx context.Context, invite *model.CollaborationInvite) error {
	query := `
		INSERT INTO collaboration_invites (id, document_id, inviter_id, invitee_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		invite.ID, invite.DocumentID, invite.InviterID, invite.InviteeID, invite.Status, invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetInviteByID retrieves an invite.
func (r *Repository) GetInviteByID(ctx context.Context, id string) (*model.CollaborationInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM collaboration_invites WHERE id = $1`

	invite, err := scanInvite(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// ListPendingInvitesForInvitee returns an account's open invites.
func (r *Repository) ListPendingInvitesForInvitee(ctx context.Context, inviteeID string) ([]*model.CollaborationInvite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM collaboration_invites
		WHERE invitee_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*model.CollaborationInvite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, invite)
	}

	return invites, rows.Err()
}

// DecideInvite moves a pending invite to accepted or rejected. The
// pending fence makes the transition one-way.
func (r *Repository) DecideInvite(ctx context.Context, id string, status model.InviteStatus) error {
	query := `
		UPDATE collaboration_invites
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to decide invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetInviteByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInviteDecided
	}
	return nil
}

// IsCollaborator reports whether the account holds an accepted invite
// for the document.
func (r *Repository) IsCollaborator(ctx context.Context, documentID, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM collaboration_invites
			WHERE document_id = $1 AND invitee_id = $2 AND status = 'accepted'
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, documentID, accountID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check collaborator: %w", err)
	}
	return ok, nil
}

// scanInvite scans a single invite row.
func scanInvite(row pgx.Row) (*model.CollaborationInvite, error) {
	var invite model.CollaborationInvite
	err := row.Scan(
		&invite.ID,
		&invite.DocumentID,
		&invite.InviterID,
		&invite.InviteeID,
		&invite.Status,
		&invite.CreatedAt,
		&invite.DecidedAt,
	)
	return &invite, err
}
