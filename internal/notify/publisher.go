package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/redink/redink/internal/metrics"
	"github.com/redink/redink/internal/model"
)

// EventPayload is the JSON body delivered to endpoints.
type EventPayload struct {
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher fans moderation events out into delivery records. Sending
// happens later, in the worker.
type Publisher struct {
	repo    *Repository
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new event publisher.
func NewPublisher(repo *Repository, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		repo:    repo,
		logger:  logger.With("component", "notify.publisher"),
		metrics: recorder,
	}
}

// Publish creates one queued delivery per subscribed endpoint.
func (p *Publisher) Publish(ctx context.Context, eventType model.EventType, data any) error {
	endpoints, err := p.repo.ListActiveEndpointsByEvent(ctx, eventType)
	if err != nil {
		p.metrics.IncNotifyPublished("dropped")
		return fmt.Errorf("list active endpoints: %w", err)
	}

	if len(endpoints) == 0 {
		return nil
	}

	eventID := ulid.Make().String()
	payload := EventPayload{
		EventType: string(eventType),
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		p.metrics.IncNotifyPublished("dropped")
		return fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now().UTC()
	for _, endpoint := range endpoints {
		delivery := &model.NotifyDelivery{
			ID:           ulid.Make().String(),
			EndpointID:   endpoint.ID,
			EventID:      eventID,
			EventType:    eventType,
			PayloadJSON:  string(payloadJSON),
			Status:       model.DeliveryStatusPending,
			AttemptCount: 0,
			MaxAttempts:  DefaultMaxAttempts,
			NextRetryAt:  now, // immediate
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := p.repo.CreateDelivery(ctx, delivery); err != nil {
			p.logger.Warn("failed to create delivery",
				"endpoint_id", endpoint.ID,
				"event_type", eventType,
				"error", err,
			)
			continue
		}

		p.logger.Debug("delivery queued",
			"delivery_id", delivery.ID,
			"endpoint_id", endpoint.ID,
			"event_type", eventType,
		)
	}

	p.metrics.IncNotifyPublished("success")
	return nil
}
