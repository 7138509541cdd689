package model

import "time"

// InviteStatus is the lifecycle state of a collaboration invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRejected InviteStatus = "rejected"
)

// CollaborationInvite pairs a document with an invited collaborator.
// A rejected invite fines the inviter, not the invitee.
type CollaborationInvite struct {
	ID         string       `json:"id"`
	DocumentID string       `json:"document_id"`
	InviterID  string       `json:"inviter_id"`
	InviteeID  string       `json:"invitee_id"`
	Status     InviteStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	DecidedAt  *time.Time   `json:"decided_at,omitempty"`
}
