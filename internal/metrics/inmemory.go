package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Submissions             uint64
	ProviderCalls           uint64
	ProviderErrors          uint64
	ProviderDurationTotalNs int64
	CleanBonuses            uint64
	TokensDebited           int64
	TokensCredited          int64
	OverdraftPenalties      uint64
	ModerationDecisions     uint64
	NotifyPublished         uint64
	NotifyDelivered         uint64
	NotifyDeliveryFailures  uint64
	NotifyQueueDepth        int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	submissions             uint64
	providerCalls           uint64
	providerErrors          uint64
	providerDurationTotalNs int64
	cleanBonuses            uint64
	tokensDebited           int64
	tokensCredited          int64
	overdraftPenalties      uint64
	moderationDecisions     uint64
	notifyPublished         uint64
	notifyDelivered         uint64
	notifyDeliveryFailures  uint64
	notifyQueueDepth        int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Submissions:             atomic.LoadUint64(&m.submissions),
		ProviderCalls:           atomic.LoadUint64(&m.providerCalls),
		ProviderErrors:          atomic.LoadUint64(&m.providerErrors),
		ProviderDurationTotalNs: atomic.LoadInt64(&m.providerDurationTotalNs),
		CleanBonuses:            atomic.LoadUint64(&m.cleanBonuses),
		TokensDebited:           atomic.LoadInt64(&m.tokensDebited),
		TokensCredited:          atomic.LoadInt64(&m.tokensCredited),
		OverdraftPenalties:      atomic.LoadUint64(&m.overdraftPenalties),
		ModerationDecisions:     atomic.LoadUint64(&m.moderationDecisions),
		NotifyPublished:         atomic.LoadUint64(&m.notifyPublished),
		NotifyDelivered:         atomic.LoadUint64(&m.notifyDelivered),
		NotifyDeliveryFailures:  atomic.LoadUint64(&m.notifyDeliveryFailures),
		NotifyQueueDepth:        atomic.LoadInt64(&m.notifyQueueDepth),
	}
}

// IncSubmission increments the submission counter.
func (m *InMemoryRecorder) IncSubmission(kind string) {
	atomic.AddUint64(&m.submissions, 1)
}

// ObserveProviderDuration records a provider round-trip.
func (m *InMemoryRecorder) ObserveProviderDuration(duration time.Duration) {
	atomic.AddUint64(&m.providerCalls, 1)
	atomic.AddInt64(&m.providerDurationTotalNs, duration.Nanoseconds())
}

// IncProviderError increments the provider error counter.
func (m *InMemoryRecorder) IncProviderError() {
	atomic.AddUint64(&m.providerErrors, 1)
}

// IncCleanBonus increments the clean-correction bonus counter.
func (m *InMemoryRecorder) IncCleanBonus() {
	atomic.AddUint64(&m.cleanBonuses, 1)
}

// AddTokensDebited accumulates debited tokens.
func (m *InMemoryRecorder) AddTokensDebited(amount int) {
	atomic.AddInt64(&m.tokensDebited, int64(amount))
}

// AddTokensCredited accumulates credited tokens.
func (m *InMemoryRecorder) AddTokensCredited(amount int) {
	atomic.AddInt64(&m.tokensCredited, int64(amount))
}

// IncOverdraftPenalty increments the overdraft penalty counter.
func (m *InMemoryRecorder) IncOverdraftPenalty() {
	atomic.AddUint64(&m.overdraftPenalties, 1)
}

// IncModerationDecision increments the moderation decision counter.
func (m *InMemoryRecorder) IncModerationDecision(kind string) {
	atomic.AddUint64(&m.moderationDecisions, 1)
}

// IncNotifyPublished counts queued notification deliveries.
func (m *InMemoryRecorder) IncNotifyPublished(status string) {
	atomic.AddUint64(&m.notifyPublished, 1)
}

// IncNotifyDelivered counts delivery attempts by outcome.
func (m *InMemoryRecorder) IncNotifyDelivered(status string) {
	if status == "success" {
		atomic.AddUint64(&m.notifyDelivered, 1)
		return
	}
	atomic.AddUint64(&m.notifyDeliveryFailures, 1)
}

// SetNotifyQueueDepth records the pending delivery backlog.
func (m *InMemoryRecorder) SetNotifyQueueDepth(depth int64) {
	atomic.StoreInt64(&m.notifyQueueDepth, depth)
}
