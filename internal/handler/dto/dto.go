// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/redink/redink/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// RetryAfterSeconds is set on cooldown errors.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
	// Tokens is the balance after a failed metered action, when known.
	Tokens *int `json:"tokens,omitempty"`
}

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a fresh session token and the account.
type SessionResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Tokens        int        `json:"tokens"`
	Role          string     `json:"role"`
	Suspended     bool       `json:"suspended"`
	ComplaintFlag bool       `json:"complaint_flag"`
	LastFreeUse   *time.Time `json:"last_free_use,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PurchaseRequest represents a token purchase.
type PurchaseRequest struct {
	Amount int `json:"amount"`
}

// LedgerEntryResponse represents one balance change.
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	Balance   int       `json:"balance"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest represents a text submission.
type SubmitRequest struct {
	Text string `json:"text"`
}

// SubmitResponse is the outcome of a paid submission.
type SubmitResponse struct {
	Censored  string `json:"censored"`
	WordCount int    `json:"word_count"`
	Cost      int    `json:"cost"`
	Tokens    int    `json:"tokens"`
}

// FreeSubmitResponse is the outcome of a free-tier submission.
type FreeSubmitResponse struct {
	Censored string `json:"censored"`
}

// SelfCorrectRequest carries the original and hand-edited text.
type SelfCorrectRequest struct {
	Original string `json:"original"`
	Edited   string `json:"edited"`
}

// SelfCorrectResponse is the outcome of a self-correction.
type SelfCorrectResponse struct {
	ChangedWords int `json:"changed_words"`
	Cost         int `json:"cost"`
	Tokens       int `json:"tokens"`
}

// CorrectResponse is the outcome of a machine correction.
type CorrectResponse struct {
	Corrected string `json:"corrected"`
	Cost      int    `json:"cost"`
	Bonus     int    `json:"bonus,omitempty"`
	Tokens    int    `json:"tokens"`
}

// ParaphraseResponse is the outcome of a paraphrase.
type ParaphraseResponse struct {
	Paraphrased string `json:"paraphrased"`
	Cost        int    `json:"cost"`
	Tokens      int    `json:"tokens"`
}

// AcceptRequest carries the length of the accepted change.
type AcceptRequest struct {
	ChangeLength int `json:"change_length"`
}

// AcceptResponse is the outcome of accepting a correction.
type AcceptResponse struct {
	Cost   int `json:"cost"`
	Tokens int `json:"tokens"`
}

// RejectRequest queues an LLM output for super review.
type RejectRequest struct {
	Original string `json:"original"`
	Output   string `json:"output"`
	Reason   string `json:"reason"`
}

// RejectionResponse represents a queued or reviewed rejection.
type RejectionResponse struct {
	ID           string     `json:"id"`
	SubmitterID  string     `json:"submitter_id"`
	OriginalText string     `json:"original_text"`
	LLMOutput    string     `json:"llm_output"`
	Reason       string     `json:"reason"`
	Penalty      int        `json:"penalty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// SaveDocumentRequest represents a document save.
type SaveDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateDocumentRequest represents a document content update.
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

// DocumentResponse represents a saved document.
type DocumentResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveDocumentResponse pairs a saved document with the charge.
type SaveDocumentResponse struct {
	Document *DocumentResponse `json:"document"`
	Cost     int               `json:"cost"`
	Tokens   int               `json:"tokens"`
}

// InviteRequest invites an account to collaborate on a document.
type InviteRequest struct {
	DocumentID   string `json:"document_id"`
	InviteeEmail string `json:"invitee_email"`
}

// InviteRespondRequest accepts or rejects an invite.
type InviteRespondRequest struct {
	Accept bool `json:"accept"`
}

// InviteResponse represents a collaboration invite.
type InviteResponse struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	InviterID  string     `json:"inviter_id"`
	InviteeID  string     `json:"invitee_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// ComplaintRequest files a complaint against a collaborator.
type ComplaintRequest struct {
	AccusedID  string `json:"accused_id"`
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// ResolveComplaintRequest decides a pending complaint.
type ResolveComplaintRequest struct {
	Dismiss  bool   `json:"dismiss"`
	Response string `json:"response,omitempty"`
}

// ComplaintResponse represents a complaint.
type ComplaintResponse struct {
	ID            string     `json:"id"`
	ComplainantID string     `json:"complainant_id"`
	AccusedID     string     `json:"accused_id"`
	DocumentID    string     `json:"document_id"`
	Reason        string     `json:"reason"`
	Response      string     `json:"response,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

// BlacklistWordRequest proposes a word for the blacklist.
type BlacklistWordRequest struct {
	Word string `json:"word"`
}

// DecideRequest approves or rejects a pending moderation record.
type DecideRequest struct {
	Approve bool `json:"approve"`
}

// BlacklistRequestResponse represents a pending or decided word request.
type BlacklistRequestResponse struct {
	ID          string     `json:"id"`
	SubmitterID string     `json:"submitter_id"`
	Word        string     `json:"word"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// SuspendRequest sets an account's suspension state.
type SuspendRequest struct {
	Suspended bool `json:"suspended"`
}

// CreateEndpointRequest registers a notify endpoint.
type CreateEndpointRequest struct {
	TargetURL  string   `json:"target_url"`
	EventTypes []string `json:"event_types,omitempty"`
}

// EndpointResponse represents a notify endpoint. The signing secret is
// only present in the creation response.
type EndpointResponse struct {
	ID         string    `json:"id"`
	TargetURL  string    `json:"target_url"`
	Enabled    bool      `json:"enabled"`
	EventTypes []string  `json:"event_types"`
	Secret     string    `json:"secret,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToAccountResponse converts an Account model to its DTO.
func ToAccountResponse(a *model.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Email:         a.Email,
		Tokens:        a.Tokens,
		Role:          string(a.Role),
		Suspended:     a.Suspended,
		ComplaintFlag: a.ComplaintFlag,
		LastFreeUse:   a.LastFreeUse,
		CreatedAt:     a.CreatedAt,
	}
}

// ToLedgerResponse converts ledger entries to DTOs.
func ToLedgerResponse(entries []*model.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			ID:        e.ID,
			Amount:    e.Amount,
			Balance:   e.Balance,
			Reason:    string(e.Reason),
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}

// ToDocumentResponse converts a Document model to its DTO.
func ToDocumentResponse(d *model.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ToInviteResponse converts a CollaborationInvite model to its DTO.
func ToInviteResponse(inv *model.CollaborationInvite) *InviteResponse {
	return &InviteResponse{
		ID:         inv.ID,
		DocumentID: inv.DocumentID,
		InviterID:  inv.InviterID,
		InviteeID:  inv.InviteeID,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		DecidedAt:  inv.DecidedAt,
	}
}

// ToComplaintResponse converts a Complaint model to its DTO.
func ToComplaintResponse(c *model.Complaint) *ComplaintResponse {
	return &ComplaintResponse{
		ID:            c.ID,
		ComplainantID: c.ComplainantID,
		AccusedID:     c.AccusedID,
		DocumentID:    c.DocumentID,
		Reason:        c.Reason,
		Response:      c.Response,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		DecidedAt:     c.DecidedAt,
	}
}

// ToBlacklistRequestResponse converts a BlacklistRequest model to its DTO.
func ToBlacklistRequestResponse(b *model.BlacklistRequest) *BlacklistRequestResponse {
	return &BlacklistRequestResponse{
		ID:          b.ID,
		SubmitterID: b.SubmitterID,
		Word:        b.Word,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		DecidedAt:   b.DecidedAt,
	}
}

// ToRejectionResponse converts an LLMRejection model to its DTO.
func ToRejectionResponse(rej *model.LLMRejection) *RejectionResponse {
	return &RejectionResponse{
		ID:           rej.ID,
		SubmitterID:  rej.SubmitterID,
		OriginalText: rej.OriginalText,
		LLMOutput:    rej.LLMOutput,
		Reason:       rej.Reason,
		Penalty:      rej.Penalty,
		Status:       string(rej.Status),
		CreatedAt:    rej.CreatedAt,
		ReviewedAt:   rej.ReviewedAt,
	}
}

// ToEndpointResponse converts a NotifyEndpoint model to its DTO.
// The secret is never included; creation responses add it separately.
func ToEndpointResponse(e *model.NotifyEndpoint) *EndpointResponse {
	events := make([]string, len(e.EventTypes))
	for i, et := range e.EventTypes {
		events[i] = string(et)
	}
	return &EndpointResponse{
		ID:         e.ID,
		TargetURL:  e.TargetURL,
		Enabled:    e.Enabled,
		EventTypes: events,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
