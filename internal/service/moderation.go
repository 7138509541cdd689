package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redink/redink/internal/cache"
	"github.com/redink/redink/internal/metrics"
	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/repository"
	"github.com/redink/redink/internal/rules"
)

// ModerationService handles complaints, blacklist curation, rejection
// reviews, and direct super-user account actions. Decisions are
// one-way: the store fences every transition on pending status.
type ModerationService struct {
	repo     *repository.Repository
	cache    *cache.Cache
	engine   *rules.Engine
	notifier Notifier
	metrics  metrics.Recorder
}

// NewModerationService creates a new ModerationService.
func NewModerationService(repo *repository.Repository, c *cache.Cache, engine *rules.Engine, notifier Notifier, recorder metrics.Recorder) *ModerationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ModerationService{
		repo:     repo,
		cache:    c,
		engine:   engine,
		notifier: notifier,
		metrics:  recorder,
	}
}

// notify publishes a moderation event. Delivery is asynchronous and
// best effort; a publish failure never fails the decision.
func (s *ModerationService) notify(ctx context.Context, eventType model.EventType, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, eventType, payload); err != nil {
		_ = err
	}
}

// fine applies a clamped debit computed by the rule engine and records
// it. Fixed fines go through the store's atomic debit, not the CAS
// loop: the amount never depends on the balance read.
func (s *ModerationService) fine(ctx context.Context, accountID string, amount int, reason model.LedgerReason) error {
	balance, err := s.repo.Debit(ctx, accountID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	s.metrics.AddTokensDebited(amount)
	appendLedger(ctx, s.repo, accountID, -amount, balance, reason)
	return nil
}

// SubmitComplaint files a complaint against another account over a
// document. The accused account is flagged until the complaint is
// decided.
func (s *ModerationService) SubmitComplaint(ctx context.Context, complainantID, accusedID, documentID, reason string) (*model.Complaint, error) {
	if complainantID == accusedID {
		return nil, ErrSelfTarget
	}
	if strings.TrimSpace(reason) == "" {
		return nil, rules.ErrInvalidInput
	}

	if _, err := s.repo.GetAccountByID(ctx, accusedID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	complaint := &model.Complaint{
		ID:            newID(),
		ComplainantID: complainantID,
		AccusedID:     accusedID,
		DocumentID:    documentID,
		Reason:        reason,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	if err := s.repo.SetComplaintFlag(ctx, accusedID, true); err != nil {
		_ = err // flag is advisory, the complaint record is authoritative
	}

	return complaint, nil
}

// ListPendingComplaints returns complaints awaiting a decision.
func (s *ModerationService) ListPendingComplaints(ctx context.Context) ([]*model.Complaint, error) {
	return s.repo.ListPendingComplaints(ctx)
}

// ResolveComplaint decides a pending complaint. Upholding it fines the
// accused; dismissing it fines the complainant for the false report.
func (s *ModerationService) ResolveComplaint(ctx context.Context, complaintID string, dismiss bool, response string) (*model.Complaint, error) {
	complaint, err := s.repo.GetComplaintByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	status := model.StatusResolved
	if dismiss {
		status = model.StatusDismissed
	}

	if err := s.repo.DecideComplaint(ctx, complaintID, status, response); err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}

	if dismiss {
		if err := s.fine(ctx, complaint.ComplainantID, s.engine.Pricing().DismissalFine, model.ReasonDismissalFine); err != nil {
			return nil, err
		}
	} else {
		if err := s.fine(ctx, complaint.AccusedID, s.engine.Pricing().ComplaintFine, model.ReasonComplaintFine); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetComplaintFlag(ctx, complaint.AccusedID, false); err != nil {
		_ = err
	}

	complaint.Status = status
	complaint.Response = response
	now := time.Now().UTC()
	complaint.DecidedAt = &now

	s.metrics.IncModerationDecision("complaint")
	event := model.EventComplaintResolved
	if dismiss {
		event = model.EventComplaintDismissed
	}
	s.notify(ctx, event, complaint)

	return complaint, nil
}

// RequestBlacklistWord files a word for blacklist consideration.
func (s *ModerationService) RequestBlacklistWord(ctx context.Context, submitterID, word string) (*model.BlacklistRequest, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || strings.ContainsAny(word, " \t\n") {
		return nil, rules.ErrInvalidInput
	}

	req := &model.BlacklistRequest{
		ID:          newID(),
		SubmitterID: submitterID,
		Word:        word,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateBlacklistRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListPendingBlacklistRequests returns blacklist words awaiting a
// decision.
func (s *ModerationService) ListPendingBlacklistRequests(ctx context.Context) ([]*model.BlacklistRequest, error) {
	return s.repo.ListPendingBlacklistRequests(ctx)
}

// DecideBlacklistRequest approves or rejects a pending blacklist word.
// Approval invalidates the cached word set so censorship picks the new
// word up on the next submission.
func (s *ModerationService) DecideBlacklistRequest(ctx context.Context, requestID string, approve bool) error {
	status := model.StatusRejected
	if approve {
		status = model.StatusApproved
	}

	word, err := s.repo.DecideBlacklistRequest(ctx, requestID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyDecided):
			return ErrAlreadyDecided
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		}
		return err
	}

	if approve && s.cache != nil {
		if err := s.cache.InvalidateBlacklist(ctx); err != nil {
			_ = err // stale for at most the cache TTL
		}
	}

	s.metrics.IncModerationDecision("blacklist")
	s.notify(ctx, model.EventBlacklistDecided, map[string]any{
		"request_id": requestID,
		"word":       word,
		"approved":   approve,
	})
	return nil
}

// ListPendingLLMRejections returns queued correction rejections.
func (s *ModerationService) ListPendingLLMRejections(ctx context.Context) ([]*model.LLMRejection, error) {
	return s.repo.ListPendingLLMRejections(ctx)
}

// ReviewLLMRejection decides a queued correction rejection and charges
// the original submitter: cheap when the reviewer agrees the machine
// output was bad, punitive when the rejection was frivolous.
func (s *ModerationService) ReviewLLMRejection(ctx context.Context, rejectionID string, approve bool) (*model.LLMRejection, error) {
	rejection, err := s.repo.GetLLMRejectionByID(ctx, rejectionID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	status := model.StatusRejected
	if approve {
		status = model.StatusApproved
	}
	penalty := s.engine.ReviewPenalty(approve)

	if err := s.repo.ReviewLLMRejection(ctx, rejectionID, status, penalty); err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}

	if err := s.fine(ctx, rejection.SubmitterID, penalty, model.ReasonRejectionReview); err != nil {
		return nil, err
	}

	rejection.Status = status
	rejection.Penalty = penalty
	now := time.Now().UTC()
	rejection.ReviewedAt = &now

	s.metrics.IncModerationDecision("llm_rejection")
	s.notify(ctx, model.EventRejectionReviewed, rejection)

	return rejection, nil
}

// ListAccounts returns all accounts for the super-user dashboard.
func (s *ModerationService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// SetSuspended suspends or reinstates an account. A super user cannot
// suspend themselves.
func (s *ModerationService) SetSuspended(ctx context.Context, actorID, accountID string, suspended bool) error {
	if actorID == accountID {
		return ErrSelfTarget
	}
	if err := s.repo.SetSuspended(ctx, accountID, suspended); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.metrics.IncModerationDecision("account")
	if suspended {
		s.notify(ctx, model.EventAccountSuspended, map[string]any{"account_id": accountID})
	}
	return nil
}

// FineAccount applies the direct moderation fine to an account.
func (s *ModerationService) FineAccount(ctx context.Context, actorID, accountID string) error {
	if actorID == accountID {
		return ErrSelfTarget
	}
	if err := s.fine(ctx, accountID, s.engine.Pricing().ModerationFine, model.ReasonModerationFine); err != nil {
		return err
	}
	s.metrics.IncModerationDecision("account")
	return nil
}

// TerminateAccount hard-deletes an account.
func (s *ModerationService) TerminateAccount(ctx context.Context, actorID, accountID string) error {
	if actorID == accountID {
		return ErrSelfTarget
	}
	if err := s.repo.DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.metrics.IncModerationDecision("account")
	s.notify(ctx, model.EventAccountTerminated, map[string]any{"account_id": accountID})
	return nil
}
