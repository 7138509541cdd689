package model

import "time"

// ModerationStatus is the lifecycle state of a moderation record.
// Records start pending and move exactly once to a terminal state.
type ModerationStatus string

const (
	StatusPending   ModerationStatus = "pending"
	StatusResolved  ModerationStatus = "resolved"
	StatusDismissed ModerationStatus = "dismissed"
	StatusApproved  ModerationStatus = "approved"
	StatusRejected  ModerationStatus = "rejected"
)

// IsTerminal returns true once the record has been decided.
func (s ModerationStatus) IsTerminal() bool {
	return s != StatusPending
}

// Complaint is a user's complaint against a collaborator on a document.
// Resolution fines the accused; dismissal fines the complainant.
type Complaint struct {
	ID            string           `json:"id"`
	ComplainantID string           `json:"complainant_id"`
	AccusedID     string           `json:"accused_id"`
	DocumentID    string           `json:"document_id"`
	Reason        string           `json:"reason"`
	Response      string           `json:"response,omitempty"`
	Status        ModerationStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	DecidedAt     *time.Time       `json:"decided_at,omitempty"`
}

// BlacklistRequest is a user-suggested censored term awaiting review.
// Approved words join the active blacklist used for submission censoring.
type BlacklistRequest struct {
	ID          string           `json:"id"`
	SubmitterID string           `json:"submitter_id"`
	Word        string           `json:"word"`
	Status      ModerationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
}

// LLMRejection records a user's rejection of an LLM correction, queued
// for super-user review. The review outcome sets the penalty charged to
// the original submitter.
type LLMRejection struct {
	ID           string           `json:"id"`
	SubmitterID  string           `json:"submitter_id"`
	OriginalText string           `json:"original_text"`
	LLMOutput    string           `json:"llm_output"`
	Reason       string           `json:"reason"`
	Penalty      int              `json:"penalty"`
	Status       ModerationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
}
