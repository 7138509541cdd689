package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/redink/redink/internal/model"
)

// Sentinel errors for notify storage operations.
var (
	ErrEndpointNotFound = errors.New("notify endpoint not found")
	ErrDeliveryNotFound = errors.New("notify delivery not found")
)

// Repository handles notify endpoint and delivery persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new notify repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateEndpoint registers a new event endpoint.
func (r *Repository) CreateEndpoint(ctx context.Context, endpoint *model.NotifyEndpoint) error {
	query := `
		INSERT INTO notify_endpoints (id, target_url, secret, enabled, event_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	eventTypes := make([]string, len(endpoint.EventTypes))
	for i, et := range endpoint.EventTypes {
		eventTypes[i] = string(et)
	}

	_, err := r.pool.Exec(ctx, query,
		endpoint.ID,
		endpoint.TargetURL,
		endpoint.Secret,
		endpoint.Enabled,
		pq.Array(eventTypes),
		endpoint.CreatedAt,
		endpoint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert endpoint: %w", err)
	}
	return nil
}

const endpointColumns = `id, target_url, secret, enabled, event_types, created_at, updated_at`

// GetEndpoint retrieves an endpoint by ID.
func (r *Repository) GetEndpoint(ctx context.Context, id string) (*model.NotifyEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM notify_endpoints WHERE id = $1`

	endpoint, err := scanEndpoint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return endpoint, nil
}

// ListEndpoints returns all registered endpoints, newest first.
func (r *Repository) ListEndpoints(ctx context.Context) ([]*model.NotifyEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM notify_endpoints ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*model.NotifyEndpoint
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, rows.Err()
}

// ListActiveEndpointsByEvent returns enabled endpoints subscribed to
// the event type.
func (r *Repository) ListActiveEndpointsByEvent(ctx context.Context, eventType model.EventType) ([]*model.NotifyEndpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM notify_endpoints
		WHERE enabled = true AND $1 = ANY(event_types)
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("failed to list active endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*model.NotifyEndpoint
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, rows.Err()
}

// SetEndpointEnabled toggles delivery to an endpoint.
func (r *Repository) SetEndpointEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE notify_endpoints SET enabled = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set endpoint enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// DeleteEndpoint removes an endpoint and its queued deliveries.
func (r *Repository) DeleteEndpoint(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notify_endpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// CreateDelivery queues one delivery. Duplicate (event, endpoint)
// pairs are ignored so a republished event never double-delivers.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *model.NotifyDelivery) error {
	query := `
		INSERT INTO notify_deliveries (
			id, endpoint_id, event_id, event_type, payload_json,
			status, attempt_count, max_attempts, next_retry_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (event_id, endpoint_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		delivery.ID,
		delivery.EndpointID,
		delivery.EventID,
		string(delivery.EventType),
		delivery.PayloadJSON,
		string(delivery.Status),
		delivery.AttemptCount,
		delivery.MaxAttempts,
		delivery.NextRetryAt,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}
	return nil
}

// GetPendingDeliveries retrieves deliveries that are due, skipping
// rows another worker already locked.
func (r *Repository) GetPendingDeliveries(ctx context.Context, limit int) ([]*model.NotifyDelivery, error) {
	query := `
		SELECT d.id, d.endpoint_id, d.event_id, d.event_type, d.payload_json,
		       d.status, d.attempt_count, d.max_attempts, d.next_retry_at,
		       d.last_attempt_at, d.last_http_status, d.last_error,
		       d.created_at, d.updated_at
		FROM notify_deliveries d
		JOIN notify_endpoints e ON d.endpoint_id = e.id
		WHERE d.status IN ('pending', 'failed')
		  AND d.next_retry_at <= $1
		  AND e.enabled = true
		ORDER BY d.next_retry_at
		LIMIT $2
		FOR UPDATE OF d SKIP LOCKED
	`

	rows, err := r.pool.Query(ctx, query, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*model.NotifyDelivery
	for rows.Next() {
		var d model.NotifyDelivery
		var eventType, status string
		if err := rows.Scan(
			&d.ID, &d.EndpointID, &d.EventID, &eventType, &d.PayloadJSON,
			&status, &d.AttemptCount, &d.MaxAttempts, &d.NextRetryAt,
			&d.LastAttemptAt, &d.LastHTTPStatus, &d.LastError,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		d.EventType = model.EventType(eventType)
		d.Status = model.DeliveryStatus(status)
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}

// UpdateDeliverySuccess marks a delivery as delivered.
func (r *Repository) UpdateDeliverySuccess(ctx context.Context, id string, httpStatus int) error {
	query := `
		UPDATE notify_deliveries
		SET status = 'success',
		    attempt_count = attempt_count + 1,
		    last_attempt_at = $2,
		    last_http_status = $3,
		    last_error = '',
		    updated_at = $2
		WHERE id = $1
	`

	now := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query, id, now, httpStatus); err != nil {
		return fmt.Errorf("failed to update delivery success: %w", err)
	}
	return nil
}

// UpdateDeliveryFailure records a failed attempt and schedules the
// retry, or parks the delivery once attempts are exhausted.
func (r *Repository) UpdateDeliveryFailure(ctx context.Context, id string, httpStatus *int, errMsg string, nextRetryAt time.Time, exhausted bool) error {
	status := string(model.DeliveryStatusFailed)
	if exhausted {
		status = string(model.DeliveryStatusExhausted)
	}

	if len(errMsg) > 500 {
		errMsg = errMsg[:500]
	}

	query := `
		UPDATE notify_deliveries
		SET status = $2,
		    attempt_count = attempt_count + 1,
		    last_attempt_at = $3,
		    last_http_status = $4,
		    last_error = $5,
		    next_retry_at = $6,
		    updated_at = $3
		WHERE id = $1
	`

	now := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query, id, status, now, httpStatus, errMsg, nextRetryAt); err != nil {
		return fmt.Errorf("failed to update delivery failure: %w", err)
	}
	return nil
}

// QueueDepth counts deliveries still waiting to go out.
func (r *Repository) QueueDepth(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM notify_deliveries WHERE status IN ('pending', 'failed')`

	var depth int64
	if err := r.pool.QueryRow(ctx, query).Scan(&depth); err != nil {
		return 0, fmt.Errorf("failed to count queue depth: %w", err)
	}
	return depth, nil
}

// scanEndpoint scans a single endpoint row.
func scanEndpoint(row pgx.Row) (*model.NotifyEndpoint, error) {
	var endpoint model.NotifyEndpoint
	var eventTypes []string
	err := row.Scan(
		&endpoint.ID,
		&endpoint.TargetURL,
		&endpoint.Secret,
		&endpoint.Enabled,
		pq.Array(&eventTypes),
		&endpoint.CreatedAt,
		&endpoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	endpoint.EventTypes = make([]model.EventType, len(eventTypes))
	for i, et := range eventTypes {
		endpoint.EventTypes[i] = model.EventType(et)
	}
	return &endpoint, nil
}
