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

// CorrectionService handles text submission, correction, paraphrasing,
// and document persistence. Every charge is computed by the rule
// engine and applied with a compare-and-set on the balance.
type CorrectionService struct {
	repo      *repository.Repository
	cache     *cache.Cache
	engine    *rules.Engine
	corrector Corrector
	metrics   metrics.Recorder
}

// NewCorrectionService creates a new CorrectionService.
func NewCorrectionService(repo *repository.Repository, c *cache.Cache, engine *rules.Engine, corrector Corrector, recorder metrics.Recorder) *CorrectionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CorrectionService{
		repo:      repo,
		cache:     c,
		engine:    engine,
		corrector: corrector,
		metrics:   recorder,
	}
}

// loadBlacklist compiles the approved blacklist, cache-first. A cache
// or store failure degrades to no censorship rather than failing the
// submission.
func (s *CorrectionService) loadBlacklist(ctx context.Context) *rules.Blacklist {
	if s.cache != nil {
		if words, err := s.cache.GetBlacklistWords(ctx); err == nil {
			return rules.NewBlacklist(words)
		}
	}

	words, err := s.repo.ListApprovedBlacklistWords(ctx)
	if err != nil {
		return nil
	}
	if s.cache != nil {
		_ = s.cache.SetBlacklistWords(ctx, words) // best effort
	}
	return rules.NewBlacklist(words)
}

// settleShortfall records the overdraft halving that applyBalance
// already persisted, then hands the rule error back.
func (s *CorrectionService) settleShortfall(ctx context.Context, acct *model.Account, before int, err error) error {
	if errors.Is(err, rules.ErrInsufficientBalance) {
		s.metrics.IncOverdraftPenalty()
		appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonOverdraftPenalty)
	}
	return err
}

// SubmitOutput is the result of a paid submission.
type SubmitOutput struct {
	Censored  string
	WordCount int
	Cost      int
	Balance   int
}

// Submit charges a paid text submission: one token per word plus the
// blacklist penalty, returning the censored text.
func (s *CorrectionService) Submit(ctx context.Context, accountID, text string) (*SubmitOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, rules.ErrEmptyText
	}
	blacklist := s.loadBlacklist(ctx)

	var res rules.SubmitResult
	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		r, opErr := s.engine.Submit(a.Tokens, text, blacklist)
		res = r
		return r.NewBalance, opErr
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	s.metrics.IncSubmission("paid")
	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonSubmit)

	return &SubmitOutput{
		Censored:  res.Censored,
		WordCount: res.WordCount,
		Cost:      res.Cost,
		Balance:   acct.Tokens,
	}, nil
}

// FreeSubmitOutput is the result of a free-tier submission.
type FreeSubmitOutput struct {
	Censored string
}

// FreeSubmit runs a free-tier submission: no charge, but bounded by
// the word limit and the wall-clock cooldown. Breaching the word limit
// starts the cooldown too.
func (s *CorrectionService) FreeSubmit(ctx context.Context, accountID, text string) (*FreeSubmitOutput, error) {
	acct, err := s.loadActive(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, ruleErr := s.engine.FreeSubmit(now, acct.LastFreeUse, text, s.loadBlacklist(ctx))
	if res.StartCooldown {
		if err := s.repo.SetLastFreeUse(ctx, acct.ID, now); err != nil {
			return nil, err
		}
	}
	if ruleErr != nil {
		return nil, ruleErr
	}

	s.metrics.IncSubmission("free")
	return &FreeSubmitOutput{Censored: res.Censored}, nil
}

// SelfCorrectOutput is the result of a user-edited correction.
type SelfCorrectOutput struct {
	ChangedWords int
	Cost         int
	Balance      int
}

// SelfCorrect charges a correction the user made by hand: half the
// changed word count, rounded up.
func (s *CorrectionService) SelfCorrect(ctx context.Context, accountID, original, edited string) (*SelfCorrectOutput, error) {
	if strings.TrimSpace(edited) == "" {
		return nil, rules.ErrEmptyText
	}
	changed := rules.ChangedWords(original, edited)

	var cost int
	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		newBalance, c, opErr := s.engine.SelfCorrect(a.Tokens, changed)
		cost = c
		return newBalance, opErr
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmission("self")
	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonSelfCorrect)

	return &SelfCorrectOutput{ChangedWords: changed, Cost: cost, Balance: acct.Tokens}, nil
}

// LLMCorrectOutput is the result of a machine correction.
type LLMCorrectOutput struct {
	Corrected string
	Cost      int
	Bonus     int
	Balance   int
}

// LLMCorrect sends the text to the correction provider and charges the
// submitter. The precheck (and its overdraft penalty) runs before the
// provider call; the debit lands only after the provider succeeds, so
// a provider failure never costs tokens. A byte-identical result on a
// long enough input earns the clean-text bonus.
func (s *CorrectionService) LLMCorrect(ctx context.Context, accountID, text string) (*LLMCorrectOutput, error) {
	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		return s.engine.LLMPrecheck(a.Tokens, text)
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	start := time.Now()
	corrected, err := s.corrector.Correct(ctx, text)
	s.metrics.ObserveProviderDuration(time.Since(start))
	if err != nil {
		s.metrics.IncProviderError()
		return nil, err
	}

	var res rules.LLMResult
	acct, err = applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		res = s.engine.LLMCharge(a.Tokens, text, corrected)
		return res.NewBalance, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmission("llm")
	s.metrics.AddTokensDebited(res.Cost)
	debited := (acct.Tokens - res.Bonus) - before
	appendLedger(ctx, s.repo, acct.ID, debited, acct.Tokens-res.Bonus, model.ReasonLLMCorrect)
	if res.Bonus > 0 {
		s.metrics.IncCleanBonus()
		s.metrics.AddTokensCredited(res.Bonus)
		appendLedger(ctx, s.repo, acct.ID, res.Bonus, acct.Tokens, model.ReasonLLMBonus)
	}

	return &LLMCorrectOutput{
		Corrected: corrected,
		Cost:      res.Cost,
		Bonus:     res.Bonus,
		Balance:   acct.Tokens,
	}, nil
}

// ParaphraseOutput is the result of a paraphrase request.
type ParaphraseOutput struct {
	Paraphrased string
	Cost        int
	Balance     int
}

// Paraphrase sends the text to the provider and charges the flat fee.
// Like LLMCorrect, the precheck runs first and the charge lands only
// after the provider succeeds.
func (s *CorrectionService) Paraphrase(ctx context.Context, accountID, text string) (*ParaphraseOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, rules.ErrEmptyText
	}

	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		if newBalance, opErr := s.engine.Paraphrase(a.Tokens); opErr != nil {
			return newBalance, opErr
		}
		// Covered; the debit waits for the provider.
		return a.Tokens, nil
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	start := time.Now()
	paraphrased, err := s.corrector.Paraphrase(ctx, text)
	s.metrics.ObserveProviderDuration(time.Since(start))
	if err != nil {
		s.metrics.IncProviderError()
		return nil, err
	}

	acct, err = applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		newBalance, opErr := s.engine.Paraphrase(a.Tokens)
		return newBalance, opErr
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		// The balance dropped between precheck and charge.
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	s.metrics.IncSubmission("paraphrase")
	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonParaphrase)

	return &ParaphraseOutput{
		Paraphrased: paraphrased,
		Cost:        before - acct.Tokens,
		Balance:     acct.Tokens,
	}, nil
}

// AcceptOutput is the result of accepting a correction.
type AcceptOutput struct {
	Cost    int
	Balance int
}

// AcceptCorrection charges for accepting a machine correction.
func (s *CorrectionService) AcceptCorrection(ctx context.Context, accountID string, acceptedChangeLen int) (*AcceptOutput, error) {
	var cost int
	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		newBalance, c := s.engine.AcceptCorrection(a.Tokens, acceptedChangeLen)
		cost = c
		return newBalance, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonAcceptCorrection)

	return &AcceptOutput{Cost: cost, Balance: acct.Tokens}, nil
}

// RejectCorrection queues a rejected machine correction for super-user
// review. The penalty is assessed at review time, cheap when the
// reviewer agrees and punitive when they don't.
func (s *CorrectionService) RejectCorrection(ctx context.Context, accountID, originalText, llmOutput, reason string) (*model.LLMRejection, error) {
	if strings.TrimSpace(originalText) == "" || strings.TrimSpace(llmOutput) == "" {
		return nil, rules.ErrEmptyText
	}

	if _, err := s.loadActive(ctx, accountID); err != nil {
		return nil, err
	}

	rejection := &model.LLMRejection{
		ID:           newID(),
		SubmitterID:  accountID,
		OriginalText: originalText,
		LLMOutput:    llmOutput,
		Reason:       reason,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateLLMRejection(ctx, rejection); err != nil {
		return nil, err
	}
	return rejection, nil
}

// SaveDocumentOutput is the result of saving a document.
type SaveDocumentOutput struct {
	Document *model.Document
	Cost     int
	Balance  int
}

// SaveDocument charges the save fee and persists the document.
func (s *CorrectionService) SaveDocument(ctx context.Context, accountID, title, content string) (*SaveDocumentOutput, error) {
	if strings.TrimSpace(content) == "" {
		return nil, rules.ErrEmptyText
	}

	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		return s.engine.SaveDocument(a.Tokens)
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:        newID(),
		OwnerID:   accountID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonSaveDocument)

	return &SaveDocumentOutput{Document: doc, Cost: before - acct.Tokens, Balance: acct.Tokens}, nil
}

// UpdateDocument charges the save fee and overwrites the content. The
// owner and accepted collaborators may edit.
func (s *CorrectionService) UpdateDocument(ctx context.Context, accountID, documentID, content string) (*SaveDocumentOutput, error) {
	if strings.TrimSpace(content) == "" {
		return nil, rules.ErrEmptyText
	}

	doc, err := s.GetDocument(ctx, accountID, documentID)
	if err != nil {
		return nil, err
	}

	var before int
	acct, err := applyBalance(ctx, s.repo, accountID, func(a *model.Account) (int, error) {
		before = a.Tokens
		return s.engine.SaveDocument(a.Tokens)
	})
	if acct == nil {
		return nil, err
	}
	if err != nil {
		return nil, s.settleShortfall(ctx, acct, before, err)
	}

	if err := s.repo.UpdateDocumentContent(ctx, doc.ID, content); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	doc.Content = content

	s.metrics.AddTokensDebited(before - acct.Tokens)
	appendLedger(ctx, s.repo, acct.ID, acct.Tokens-before, acct.Tokens, model.ReasonSaveDocument)

	return &SaveDocumentOutput{Document: doc, Cost: before - acct.Tokens, Balance: acct.Tokens}, nil
}

// GetDocument returns a document the account may read: its own, or one
// it collaborates on.
func (s *CorrectionService) GetDocument(ctx context.Context, accountID, documentID string) (*model.Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if doc.OwnerID != accountID {
		ok, err := s.repo.IsCollaborator(ctx, doc.ID, accountID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotDocumentOwner
		}
	}
	return doc, nil
}

// ListDocuments returns the account's own documents plus those shared
// with it through accepted invites.
func (s *CorrectionService) ListDocuments(ctx context.Context, accountID string) ([]*model.Document, error) {
	return s.repo.ListDocumentsByOwner(ctx, accountID)
}

// loadActive fetches an account and rejects suspended ones.
func (s *CorrectionService) loadActive(ctx context.Context, accountID string) (*model.Account, error) {
	acct, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if acct.Suspended {
		return nil, ErrAccountSuspended
	}
	return acct, nil
}
