// Package rules implements the token and moderation rule engine.
//
// Every token-affecting rule is a pure computation over (current
// balance, action payload, pricing) returning the new balance, the
// action outcome, and a typed error. The engine performs no I/O;
// callers read account state from a store, apply a rule, and persist
// the result.
package rules

import (
	"strings"
	"time"
)

// Engine evaluates the token rule table.
type Engine struct {
	pricing Pricing
}

// NewEngine creates an Engine with the given rule table.
func NewEngine(pricing Pricing) *Engine {
	return &Engine{pricing: pricing}
}

// Pricing returns the engine's rule table.
func (e *Engine) Pricing() Pricing {
	return e.pricing
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ChangedWords counts the words that differ between the original and
// edited text: positional mismatches plus the length difference. This
// is the charge basis for self-corrections.
func ChangedWords(original, edited string) int {
	a, b := strings.Fields(original), strings.Fields(edited)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	changed := len(a) + len(b) - 2*n
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			changed++
		}
	}
	return changed
}

// clampDebit subtracts cost from balance, clamping at zero.
// Balances are never negative.
func clampDebit(balance, cost int) int {
	if cost >= balance {
		return 0
	}
	return balance - cost
}

// halve applies the overdraft penalty: the balance is floored-halved.
func halve(balance int) int {
	return balance / 2
}

// requireBalance enforces a metered action's precondition. On shortfall
// it applies the punitive halving and returns the penalized balance
// inside the error so callers can persist and surface it.
func (e *Engine) requireBalance(balance, needed int) (int, error) {
	if balance >= needed {
		return balance, nil
	}
	penalized := halve(balance)
	return penalized, &InsufficientBalanceError{Balance: penalized}
}

// SubmitResult is the outcome of a paid text submission.
type SubmitResult struct {
	Censored   string
	WordCount  int
	Cost       int
	NewBalance int
}

// Submit charges a plain text submission: one token per word plus the
// blacklist penalty, with the censored text returned. If the balance
// does not cover the word count the balance is halved and the action
// rejected.
func (e *Engine) Submit(balance int, text string, blacklist *Blacklist) (SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return SubmitResult{NewBalance: balance}, ErrEmptyText
	}

	words := WordCount(text)
	if penalized, err := e.requireBalance(balance, words*e.pricing.SubmitCostPerWord); err != nil {
		return SubmitResult{WordCount: words, NewBalance: penalized}, err
	}

	censored, penalty := text, 0
	if blacklist != nil {
		censored, penalty = blacklist.Censor(text)
	}

	cost := words*e.pricing.SubmitCostPerWord + penalty
	return SubmitResult{
		Censored:   censored,
		WordCount:  words,
		Cost:       cost,
		NewBalance: clampDebit(balance, cost),
	}, nil
}

// FreeSubmitResult is the outcome of a free-tier submission.
type FreeSubmitResult struct {
	Censored string
	// StartCooldown is true when the caller must record a new free use:
	// after a successful submission, and after a word-limit breach
	// (breaching the limit triggers the cooldown as a deterrent).
	StartCooldown bool
}

// FreeSubmit evaluates a free-tier submission. It never charges tokens:
// the tier is limited by word count and a wall-clock cooldown instead.
func (e *Engine) FreeSubmit(now time.Time, lastFreeUse *time.Time, text string, blacklist *Blacklist) (FreeSubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return FreeSubmitResult{}, ErrEmptyText
	}

	if lastFreeUse != nil {
		if remaining := e.pricing.FreeCooldown - now.Sub(*lastFreeUse); remaining > 0 {
			return FreeSubmitResult{}, &RateLimitedError{RetryAfter: remaining}
		}
	}

	if WordCount(text) > e.pricing.FreeWordLimit {
		return FreeSubmitResult{StartCooldown: true}, &RateLimitedError{RetryAfter: e.pricing.FreeCooldown}
	}

	censored := text
	if blacklist != nil {
		censored, _ = blacklist.Censor(text)
	}
	return FreeSubmitResult{Censored: censored, StartCooldown: true}, nil
}

// SelfCorrectCost is ceil(changedWords / divisor).
func (e *Engine) SelfCorrectCost(changedWords int) int {
	d := e.pricing.SelfCorrectDivisor
	return (changedWords + d - 1) / d
}

// SelfCorrect charges a user-edited correction: half the changed word
// count, rounded up. The debit clamps at zero.
func (e *Engine) SelfCorrect(balance, changedWords int) (newBalance, cost int, err error) {
	if changedWords < 0 {
		return balance, 0, ErrInvalidInput
	}
	cost = e.SelfCorrectCost(changedWords)
	return clampDebit(balance, cost), cost, nil
}

// LLMCost returns the charge for an LLM correction of the given word
// count under the configured pricing mode.
func (e *Engine) LLMCost(wordCount int) int {
	if e.pricing.LLMMode == LLMFlatFee {
		return e.pricing.LLMFlatFeeCost
	}
	return wordCount * e.pricing.SubmitCostPerWord
}

// LLMPrecheck enforces the LLM correction precondition: the balance
// must cover the input word count. A shortfall halves the balance.
func (e *Engine) LLMPrecheck(balance int, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return balance, ErrEmptyText
	}
	return e.requireBalance(balance, WordCount(text))
}

// LLMResult is the outcome of a charged LLM correction.
type LLMResult struct {
	Cost       int
	Bonus      int
	NewBalance int
}

// LLMCharge debits the correction cost and credits the clean bonus, if
// earned. Call only after LLMPrecheck passed and the provider returned.
func (e *Engine) LLMCharge(balance int, input, output string) LLMResult {
	words := WordCount(input)
	cost := e.LLMCost(words)
	bonus := e.CorrectionBonus(input, output)
	return LLMResult{
		Cost:       cost,
		Bonus:      bonus,
		NewBalance: clampDebit(balance, cost) + bonus,
	}
}

// CorrectionBonus rewards an already-clean input: when the corrected
// text is byte-identical to the input and the input exceeds the minimum
// word count, the submitter earns the configured bonus. Any difference
// earns nothing.
func (e *Engine) CorrectionBonus(input, output string) int {
	if input != output {
		return 0
	}
	words := WordCount(input)
	if words <= e.pricing.BonusMinWords {
		return 0
	}
	if e.pricing.BonusMode == BonusPercent {
		return words / 10
	}
	return e.pricing.BonusFlatGain
}

// Paraphrase charges the flat paraphrase fee, with the overdraft
// penalty on shortfall.
func (e *Engine) Paraphrase(balance int) (int, error) {
	if penalized, err := e.requireBalance(balance, e.pricing.ParaphraseCost); err != nil {
		return penalized, err
	}
	return balance - e.pricing.ParaphraseCost, nil
}

// AcceptCost returns the charge for accepting a correction: a flat
// token, or proportional to the accepted change length, per pricing.
func (e *Engine) AcceptCost(acceptedChangeLen int) int {
	if e.pricing.AcceptMode == AcceptProportional {
		if acceptedChangeLen < 0 {
			return 0
		}
		return acceptedChangeLen
	}
	return e.pricing.AcceptFlatCost
}

// AcceptCorrection charges for accepting an LLM correction.
func (e *Engine) AcceptCorrection(balance, acceptedChangeLen int) (newBalance, cost int) {
	cost = e.AcceptCost(acceptedChangeLen)
	return clampDebit(balance, cost), cost
}

// SaveDocument charges the document save fee, with the overdraft
// penalty on shortfall.
func (e *Engine) SaveDocument(balance int) (int, error) {
	if penalized, err := e.requireBalance(balance, e.pricing.SaveDocumentCost); err != nil {
		return penalized, err
	}
	return balance - e.pricing.SaveDocumentCost, nil
}

// ReviewPenalty returns the charge applied to the original submitter
// when a super user reviews their LLM rejection.
func (e *Engine) ReviewPenalty(approved bool) int {
	if approved {
		return e.pricing.RejectApprovedPenalty
	}
	return e.pricing.RejectPenalty
}

// Purchase credits a purchased token amount. Non-positive amounts are
// rejected and the balance is unchanged.
func (e *Engine) Purchase(balance, amount int) (int, error) {
	if amount <= 0 {
		return balance, ErrInvalidAmount
	}
	return balance + amount, nil
}
