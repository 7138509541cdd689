package model

import "time"

// LedgerReason identifies why a balance changed.
type LedgerReason string

const (
	ReasonSubmit           LedgerReason = "submit"
	ReasonSelfCorrect      LedgerReason = "self_correct"
	ReasonLLMCorrect       LedgerReason = "llm_correct"
	ReasonLLMBonus         LedgerReason = "llm_bonus"
	ReasonParaphrase       LedgerReason = "paraphrase"
	ReasonAcceptCorrection LedgerReason = "accept_correction"
	ReasonRejectCorrection LedgerReason = "reject_correction"
	ReasonSaveDocument     LedgerReason = "save_document"
	ReasonInviteRejected   LedgerReason = "invite_rejected"
	ReasonComplaintFine    LedgerReason = "complaint_fine"
	ReasonDismissalFine    LedgerReason = "dismissal_fine"
	ReasonRejectionReview  LedgerReason = "rejection_review"
	ReasonModerationFine   LedgerReason = "moderation_fine"
	ReasonPurchase         LedgerReason = "purchase"
	ReasonOverdraftPenalty LedgerReason = "overdraft_penalty"
)

// LedgerEntry is an append-only record of a single balance change.
// Amount is negative for debits, positive for credits; Balance is the
// account balance after the change was applied.
type LedgerEntry struct {
	ID        string       `json:"id"`
	AccountID string       `json:"account_id"`
	Amount    int          `json:"amount"`
	Balance   int          `json:"balance"`
	Reason    LedgerReason `json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}
