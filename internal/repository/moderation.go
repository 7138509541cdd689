package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/redink/redink/internal/model"
)

// Common errors for moderation repository operations.
var (
	ErrRecordNotFound = errors.New("moderation record not found")
	// ErrAlreadyDecided is returned when a decision targets a record
	// that already left pending. Status transitions are one-way.
	ErrAlreadyDecided = errors.New("moderation record already decided")
)

// CreateComplaint inserts a pending complaint.
func (r *Repository) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	query := `
		INSERT INTO complaints (id, complainant_id, accused_id, document_id, reason, response, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.ComplainantID, c.AccusedID, c.DocumentID, c.Reason, c.Response, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetComplaintByID retrieves a complaint.
func (r *Repository) GetComplaintByID(ctx context.Context, id string) (*model.Complaint, error) {
	query := `
		SELECT id, complainant_id, accused_id, document_id, reason, response, status, created_at, decided_at
		FROM complaints
		WHERE id = $1
	`

	var c model.Complaint
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ComplainantID, &c.AccusedID, &c.DocumentID, &c.Reason, &c.Response, &c.Status, &c.CreatedAt, &c.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return &c, nil
}

// ListPendingComplaints returns undecided complaints, oldest first.
func (r *Repository) ListPendingComplaints(ctx context.Context) ([]*model.Complaint, error) {
	query := `
		SELECT id, complainant_id, accused_id, document_id, reason, response, status, created_at, decided_at
		FROM complaints
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending complaints: %w", err)
	}
	defer rows.Close()

	var complaints []*model.Complaint
	for rows.Next() {
		var c model.Complaint
		if err := rows.Scan(&c.ID, &c.ComplainantID, &c.AccusedID, &c.DocumentID, &c.Reason, &c.Response, &c.Status, &c.CreatedAt, &c.DecidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, &c)
	}

	return complaints, rows.Err()
}

// DecideComplaint moves a pending complaint to a terminal status with an
// optional moderator response. The pending fence makes the transition
// one-way; a second decision returns ErrAlreadyDecided.
func (r *Repository) DecideComplaint(ctx context.Context, id string, status model.ModerationStatus, response string) error {
	query := `
		UPDATE complaints
		SET status = $2, response = $3, decided_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, status, response, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to decide complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetComplaintByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyDecided
	}
	return nil
}

// CreateBlacklistRequest inserts a pending blacklist-word suggestion.
func (r *Repository) CreateBlacklistRequest(ctx context.Context, req *model.BlacklistRequest) error {
	query := `
		INSERT INTO blacklist_requests (id, submitter_id, word, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, req.ID, req.SubmitterID, req.Word, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create blacklist request: %w", err)
	}
	return nil
}

// ListPendingBlacklistRequests returns undecided suggestions, oldest first.
func (r *Repository) ListPendingBlacklistRequests(ctx context.Context) ([]*model.BlacklistRequest, error) {
	query := `
		SELECT id, submitter_id, word, status, created_at, decided_at
		FROM blacklist_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending blacklist requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.BlacklistRequest
	for rows.Next() {
		var req model.BlacklistRequest
		if err := rows.Scan(&req.ID, &req.SubmitterID, &req.Word, &req.Status, &req.CreatedAt, &req.DecidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist request: %w", err)
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}

// DecideBlacklistRequest moves a pending suggestion to a terminal status
// and returns the suggested word so an approval can join the active
// blacklist.
func (r *Repository) DecideBlacklistRequest(ctx context.Context, id string, status model.ModerationStatus) (string, error) {
	query := `
		UPDATE blacklist_requests
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING word
	`

	var word string
	err := r.pool.QueryRow(ctx, query, id, status, time.Now().UTC()).Scan(&word)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM blacklist_requests WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
				return "", fmt.Errorf("failed to check blacklist request: %w", checkErr)
			}
			if !exists {
				return "", ErrRecordNotFound
			}
			return "", ErrAlreadyDecided
		}
		return "", fmt.Errorf("failed to decide blacklist request: %w", err)
	}
	return word, nil
}

// ListApprovedBlacklistWords returns the active censored terms.
func (r *Repository) ListApprovedBlacklistWords(ctx context.Context) ([]string, error) {
	query := `
		SELECT word
		FROM blacklist_requests
		WHERE status = 'approved'
		ORDER BY word ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist word: %w", err)
		}
		words = append(words, word)
	}

	return words, rows.Err()
}

// CreateLLMRejection queues a rejected LLM correction for review.
func (r *Repository) CreateLLMRejection(ctx context.Context, rej *model.LLMRejection) error {
	query := `
		INSERT INTO llm_rejections (id, submitter_id, original_text, llm_output, reason, penalty, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rej.ID, rej.SubmitterID, rej.OriginalText, rej.LLMOutput, rej.Reason, rej.Penalty, rej.Status, rej.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create llm rejection: %w", err)
	}
	return nil
}

// GetLLMRejectionByID retrieves a queued rejection.
func (r *Repository) GetLLMRejectionByID(ctx context.Context, id string) (*model.LLMRejection, error) {
	query := `
		SELECT id, submitter_id, original_text, llm_output, reason, penalty, status, created_at, reviewed_at
		FROM llm_rejections
		WHERE id = $1
	`

	var rej model.LLMRejection
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rej.ID, &rej.SubmitterID, &rej.OriginalText, &rej.LLMOutput, &rej.Reason, &rej.Penalty, &rej.Status, &rej.CreatedAt, &rej.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get llm rejection: %w", err)
	}
	return &rej, nil
}

// ListPendingLLMRejections returns unreviewed rejections, oldest first.
func (r *Repository) ListPendingLLMRejections(ctx context.Context) ([]*model.LLMRejection, error) {
	query := `
		SELECT id, submitter_id, original_text, llm_output, reason, penalty, status, created_at, reviewed_at
		FROM llm_rejections
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending llm rejections: %w", err)
	}
	defer rows.Close()

	var rejections []*model.LLMRejection
	for rows.Next() {
		var rej model.LLMRejection
		if err := rows.Scan(&rej.ID, &rej.SubmitterID, &rej.OriginalText, &rej.LLMOutput, &rej.Reason, &rej.Penalty, &rej.Status, &rej.CreatedAt, &rej.ReviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan llm rejection: %w", err)
		}
		rejections = append(rejections, &rej)
	}

	return rejections, rows.Err()
}

// ReviewLLMRejection moves a pending rejection to a terminal status and
// records the penalty charged to the submitter.
func (r *Repository) ReviewLLMRejection(ctx context.Context, id string, status model.ModerationStatus, penalty int) error {
	query := `
		UPDATE llm_rejections
		SET status = $2, penalty = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, status, penalty, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to review llm rejection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetLLMRejectionByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyDecided
	}
	return nil
}
