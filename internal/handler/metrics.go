package handler

import (
	"fmt"
	"net/http"

	"github.com/tickbox/tickbox/internal/metrics"
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

	writeMetric(w, "tickbox_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "tickbox_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "tickbox_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "tickbox_logouts_total %d\n", snap.Logouts)

	// fixed order keeps scrapes diffable
	for _, reason := range metrics.RejectReasons {
		writeMetric(w, "tickbox_auth_rejected_total{reason=%q} %d\n", reason, snap.AuthRejected[reason])
	}

	writeMetric(w, "tickbox_session_cache_hits_total %d\n", snap.SessionCacheHits)
	writeMetric(w, "tickbox_session_cache_misses_total %d\n", snap.SessionCacheMisses)

	writeMetric(w, "tickbox_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "tickbox_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "tickbox_todos_deleted_total %d\n", snap.TodosDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
