package handler

import (
	"fmt"
	"net/http"

	"github.com/mailcast/mailcast/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
	gauges      func() (keys, tenants int)
}

// NewMetricsHandler creates a new MetricsHandler. gauges may be nil.
func NewMetricsHandler(snapshotter metrics.Snapshotter, gauges func() (keys, tenants int)) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter, gauges: gauges}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "mailcast_subscriptions_total %d\n", snap.Subscribed)
	writeMetric(w, "mailcast_unsubscriptions_total %d\n", snap.Unsubscribed)
	writeMetric(w, "mailcast_subscription_conflicts_total %d\n", snap.Conflicts)
	writeMetric(w, "mailcast_auth_failures_total %d\n", snap.AuthFailures)
	writeMetric(w, "mailcast_keys_registered_total %d\n", snap.KeysRegistered)

	writeMetric(w, "mailcast_broadcasts_total{outcome=\"sent\"} %d\n", snap.BroadcastsSent)
	writeMetric(w, "mailcast_broadcasts_total{outcome=\"skipped\"} %d\n", snap.BroadcastsSkipped)
	writeMetric(w, "mailcast_broadcasts_total{outcome=\"failed\"} %d\n", snap.BroadcastsFailed)
	writeMetric(w, "mailcast_broadcast_recipients_total %d\n", snap.RecipientsTotal)
	writeMetric(w, "mailcast_send_duration_seconds_count %d\n", snap.SendDurationCount)
	writeMetric(w, "mailcast_send_duration_seconds_sum %.6f\n", float64(snap.SendDurationTotalNs)/1e9)

	if h.gauges != nil {
		keys, tenants := h.gauges()
		writeMetric(w, "mailcast_registered_keys %d\n", keys)
		writeMetric(w, "mailcast_tenants %d\n", tenants)
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
