package service

import (
	"context"
	"errors"
	"time"

	"github.com/redink/redink/internal/metrics"
	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/repository"
	"github.com/redink/redink/internal/rules"
)

// CollaborationService handles document sharing invites. Rejecting an
// invite fines the inviter, never the invitee.
type CollaborationService struct {
	repo    *repository.Repository
	engine  *rules.Engine
	metrics metrics.Recorder
}

// NewCollaborationService creates a new CollaborationService.
func NewCollaborationService(repo *repository.Repository, engine *rules.Engine, recorder metrics.Recorder) *CollaborationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CollaborationService{
		repo:    repo,
		engine:  engine,
		metrics: recorder,
	}
}

// Invite asks another account to collaborate on a document. Only the
// document owner may invite, and not themselves.
func (s *CollaborationService) Invite(ctx context.Context, inviterID, inviteeEmail, documentID string) (*model.CollaborationInvite, error) {
	doc, err := s.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.OwnerID != inviterID {
		return nil, ErrNotDocumentOwner
	}

	invitee, err := s.repo.GetAccountByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if invitee.ID == inviterID {
		return nil, ErrSelfTarget
	}

	invite := &model.CollaborationInvite{
		ID:         newID(),
		DocumentID: documentID,
		InviterID:  inviterID,
		InviteeID:  invitee.ID,
		Status:     model.InvitePending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// ListInvites returns pending invites addressed to the account.
func (s *CollaborationService) ListInvites(ctx context.Context, inviteeID string) ([]*model.CollaborationInvite, error) {
	return s.repo.ListPendingInvitesForInvitee(ctx, inviteeID)
}

// Respond accepts or rejects a pending invite. Only the invitee may
// respond; a rejection fines the inviter for the unwanted invite.
func (s *CollaborationService) Respond(ctx context.Context, inviteID, inviteeID string, accept bool) (*model.CollaborationInvite, error) {
	invite, err := s.repo.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if invite.InviteeID != inviteeID {
		return nil, ErrNotInvitee
	}

	status := model.InviteRejected
	if accept {
		status = model.InviteAccepted
	}

	if err := s.repo.DecideInvite(ctx, inviteID, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrInviteDecided):
			return nil, ErrAlreadyDecided
		case errors.Is(err, repository.ErrInviteNotFound):
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	if !accept {
		fine := s.engine.Pricing().InviteRejectionFine
		balance, err := s.repo.Debit(ctx, invite.InviterID, fine)
		if err == nil {
			s.metrics.AddTokensDebited(fine)
			appendLedger(ctx, s.repo, invite.InviterID, -fine, balance, model.ReasonInviteRejected)
		} else if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, err
		}
	}

	invite.Status = status
	now := time.Now().UTC()
	invite.DecidedAt = &now
	return invite, nil
}
