// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Correction metrics
	IncSubmission(kind string) // kind: "paid", "free", "self", "llm", "paraphrase"
	ObserveProviderDuration(duration time.Duration)
	IncProviderError()
	IncCleanBonus()

	// Token economy metrics
	AddTokensDebited(amount int)
	AddTokensCredited(amount int)
	IncOverdraftPenalty()

	// Moderation metrics
	IncModerationDecision(kind string) // kind: "complaint", "blacklist", "llm_rejection", "account"

	// Notification pipeline metrics
	IncNotifyPublished(status string) // status: "success" or "dropped"
	IncNotifyDelivered(status string) // status: "success", "failed", "exhausted"
	SetNotifyQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
