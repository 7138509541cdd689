package model

import (
	"slices"
	"time"
)

// EventType identifies a moderation event published to notify endpoints.
type EventType string

const (
	EventComplaintResolved  EventType = "complaint.resolved"
	EventComplaintDismissed EventType = "complaint.dismissed"
	EventBlacklistDecided   EventType = "blacklist.decided"
	EventRejectionReviewed  EventType = "llm_rejection.reviewed"
	EventAccountSuspended   EventType = "account.suspended"
	EventAccountTerminated  EventType = "account.terminated"
)

// ValidEventTypes contains all event types an endpoint may subscribe to.
var ValidEventTypes = []EventType{
	EventComplaintResolved,
	EventComplaintDismissed,
	EventBlacklistDecided,
	EventRejectionReviewed,
	EventAccountSuspended,
	EventAccountTerminated,
}

// IsValidEventType checks if an event type is known.
func IsValidEventType(et EventType) bool {
	return slices.Contains(ValidEventTypes, et)
}

// DeliveryStatus represents notification delivery state.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusSuccess   DeliveryStatus = "success"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusExhausted DeliveryStatus = "exhausted"
)

// NotifyEndpoint is a registered webhook target for moderation events.
type NotifyEndpoint struct {
	ID         string      `json:"id"`
	TargetURL  string      `json:"target_url"`
	Secret     string      `json:"-"` // Never expose
	Enabled    bool        `json:"enabled"`
	EventTypes []EventType `json:"event_types"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// IsActive returns true if the endpoint can receive notifications.
func (e *NotifyEndpoint) IsActive() bool {
	return e.Enabled
}

// SubscribesToEvent checks if endpoint subscribes to given event type.
func (e *NotifyEndpoint) SubscribesToEvent(et EventType) bool {
	return slices.Contains(e.EventTypes, et)
}

// NotifyDelivery is one queued delivery of an event to one endpoint.
type NotifyDelivery struct {
	ID             string         `json:"id"`
	EndpointID     string         `json:"endpoint_id"`
	EventID        string         `json:"event_id"`
	EventType      EventType      `json:"event_type"`
	PayloadJSON    string         `json:"-"`
	Status         DeliveryStatus `json:"status"`
	AttemptCount   int            `json:"attempt_count"`
	MaxAttempts    int            `json:"max_attempts"`
	NextRetryAt    time.Time      `json:"next_retry_at,omitempty"`
	LastAttemptAt  *time.Time     `json:"last_attempt_at,omitempty"`
	LastHTTPStatus *int           `json:"last_http_status,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CanRetry returns true if delivery can be retried.
func (d *NotifyDelivery) CanRetry() bool {
	return d.Status == DeliveryStatusFailed && d.AttemptCount < d.MaxAttempts
}

// IsTerminal returns true if delivery is in a terminal state.
func (d *NotifyDelivery) IsTerminal() bool {
	return d.Status == DeliveryStatusSuccess || d.Status == DeliveryStatusExhausted
}
