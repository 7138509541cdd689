package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSubmission is a no-op.
func (n *NoopRecorder) IncSubmission(kind string) {}

// ObserveProviderDuration is a no-op.
func (n *NoopRecorder) ObserveProviderDuration(duration time.Duration) {}

// IncProviderError is a no-op.
func (n *NoopRecorder) IncProviderError() {}

// IncCleanBonus is a no-op.
func (n *NoopRecorder) IncCleanBonus() {}

// AddTokensDebited is a no-op.
func (n *NoopRecorder) AddTokensDebited(amount int) {}

// AddTokensCredited is a no-op.
func (n *NoopRecorder) AddTokensCredited(amount int) {}

// IncOverdraftPenalty is a no-op.
func (n *NoopRecorder) IncOverdraftPenalty() {}

// IncModerationDecision is a no-op.
func (n *NoopRecorder) IncModerationDecision(kind string) {}

// IncNotifyPublished is a no-op.
func (n *NoopRecorder) IncNotifyPublished(status string) {}

// IncNotifyDelivered is a no-op.
func (n *NoopRecorder) IncNotifyDelivered(status string) {}

// SetNotifyQueueDepth is a no-op.
func (n *NoopRecorder) SetNotifyQueueDepth(depth int64) {}
