package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calsync_sync_passes_total",
		Help: "Completed sync passes by provider and outcome.",
	}, []string{"provider", "status"})

	eventsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calsync_events_imported_total",
		Help: "Remote events persisted locally, by provider.",
	}, []string{"provider"})

	eventsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calsync_events_exported_total",
		Help: "Local entities pushed to the remote calendar, by provider.",
	}, []string{"provider"})

	syncItemErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calsync_sync_errors_total",
		Help: "Per-item errors accumulated during sync passes, by provider.",
	}, []string{"provider"})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calsync_sync_duration_seconds",
		Help:    "Wall time of one sync pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

// recordPass updates the pass-level metrics from a finished result.
func recordPass(provider string, success bool, imported, exported, errs int, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	syncPasses.WithLabelValues(provider, status).Inc()
	eventsImported.WithLabelValues(provider).Add(float64(imported))
	eventsExported.WithLabelValues(provider).Add(float64(exported))
	syncItemErrors.WithLabelValues(provider).Add(float64(errs))
	syncDuration.WithLabelValues(provider).Observe(seconds)
}
