package handler

import (
	"fmt"
	"net/http"

	"github.com/redink/redink/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "redink_submissions_total %d\n", snap.Submissions)

	writeMetric(w, "redink_provider_calls_total %d\n", snap.ProviderCalls)
	writeMetric(w, "redink_provider_errors_total %d\n", snap.ProviderErrors)
	writeMetric(w, "redink_provider_duration_seconds_sum %.6f\n", float64(snap.ProviderDurationTotalNs)/1e9)
	writeMetric(w, "redink_clean_bonuses_total %d\n", snap.CleanBonuses)

	writeMetric(w, "redink_tokens_debited_total %d\n", snap.TokensDebited)
	writeMetric(w, "redink_tokens_credited_total %d\n", snap.TokensCredited)
	writeMetric(w, "redink_overdraft_penalties_total %d\n", snap.OverdraftPenalties)

	writeMetric(w, "redink_moderation_decisions_total %d\n", snap.ModerationDecisions)

	writeMetric(w, "redink_notify_published_total %d\n", snap.NotifyPublished)
	writeMetric(w, "redink_notify_delivered_total{status=\"success\"} %d\n", snap.NotifyDelivered)
	writeMetric(w, "redink_notify_delivered_total{status=\"failed\"} %d\n", snap.NotifyDeliveryFailures)
	writeMetric(w, "redink_notify_queue_depth %d\n", snap.NotifyQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
