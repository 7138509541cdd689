package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/redink/redink/internal/model"
)

// ErrDocumentNotFound is returned when no document matches.
var ErrDocumentNotFound = errors.New("document not found")

// CreateDocument inserts a saved text.
func (r *Repository) CreateDocument(ctx context.Context, doc *model.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Content,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetDocumentByID retrieves a document by its ID.
func (r *Repository) GetDocumentByID(ctx context.Context, id string) (*model.Document, error) {
	query := `
		SELECT id, owner_id, title, content, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var doc model.Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListDocumentsByOwner returns an account's saved texts plus documents
// shared with it through accepted collaboration invites, newest first.
func (r *Repository) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	query := `
		SELECT DISTINCT d.id, d.owner_id, d.title, d.content, d.created_at, d.updated_at
		FROM documents d
		LEFT JOIN collaboration_invites ci
			ON ci.document_id = d.id AND ci.invitee_id = $1 AND ci.status = 'accepted'
		WHERE d.owner_id = $1 OR ci.id IS NOT NULL
		ORDER BY d.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// UpdateDocumentContent overwrites a document's content.
func (r *Repository) UpdateDocumentContent(ctx context.Context, id, content string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET content = $2, updated_at = NOW() WHERE id = $1`, id, content)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
