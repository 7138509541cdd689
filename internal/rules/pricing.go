package rules

import "time"

// LLMPricingMode selects how an LLM correction is charged.
type LLMPricingMode string

const (
	// LLMPerWord charges one token per word of input.
	LLMPerWord LLMPricingMode = "per_word"
	// LLMFlatFee charges a fixed fee regardless of input length.
	LLMFlatFee LLMPricingMode = "flat_fee"
)

// BonusMode selects how the clean-correction bonus is computed.
type BonusMode string

const (
	// BonusFlat grants a fixed token bonus.
	BonusFlat BonusMode = "flat"
	// BonusPercent grants 10% of the input word count.
	BonusPercent BonusMode = "percent"
)

// AcceptChargeMode selects how accepting a correction is charged.
type AcceptChargeMode string

const (
	// AcceptFlat charges a fixed single token.
	AcceptFlat AcceptChargeMode = "flat"
	// AcceptProportional charges per character of accepted change.
	AcceptProportional AcceptChargeMode = "proportional"
)

// Pricing is the consolidated token rule table. Every token-affecting
// rule in the system reads from here; there is exactly one copy.
type Pricing struct {
	StartingBalance int

	SubmitCostPerWord int

	FreeWordLimit int
	FreeCooldown  time.Duration

	SelfCorrectDivisor int

	LLMMode        LLMPricingMode
	LLMFlatFeeCost int

	BonusMode     BonusMode
	BonusFlatGain int
	BonusMinWords int

	ParaphraseCost int

	AcceptMode     AcceptChargeMode
	AcceptFlatCost int

	RejectApprovedPenalty int
	RejectPenalty         int

	SaveDocumentCost int

	InviteRejectionFine int
	ComplaintFine       int
	DismissalFine       int
	ModerationFine      int
}

// DefaultPricing returns the production rule table.
func DefaultPricing() Pricing {
	return Pricing{
		StartingBalance:       100,
		SubmitCostPerWord:     1,
		FreeWordLimit:         20,
		FreeCooldown:          3 * time.Minute,
		SelfCorrectDivisor:    2,
		LLMMode:               LLMPerWord,
		LLMFlatFeeCost:        10,
		BonusMode:             BonusFlat,
		BonusFlatGain:         3,
		BonusMinWords:         10,
		ParaphraseCost:        10,
		AcceptMode:            AcceptFlat,
		AcceptFlatCost:        1,
		RejectApprovedPenalty: 1,
		RejectPenalty:         5,
		SaveDocumentCost:      5,
		InviteRejectionFine:   3,
		ComplaintFine:         10,
		DismissalFine:         10,
		ModerationFine:        10,
	}
}
