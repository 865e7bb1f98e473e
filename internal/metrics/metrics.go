// Package metrics exposes Prometheus collectors for the logging pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors. Construct with a
// dedicated registry in tests to avoid duplicate registration.
type Metrics struct {
	FlushTotal        *prometheus.CounterVec
	FlushFailures     *prometheus.CounterVec
	EntriesWritten    *prometheus.CounterVec
	EntriesRequeued   prometheus.Counter
	EntriesSetAside   prometheus.Counter
	RetriesExhausted  prometheus.Counter
	ExpiredDeletions  prometheus.Counter
	MigratedRecords   prometheus.Counter
	PrunedVersions    prometheus.Counter
	ClassTransitions  prometheus.Counter
	CostAlertsRaised  prometheus.Counter
	LifecycleFailures *prometheus.CounterVec
}

// New registers and returns the pipeline collectors on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FlushTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradelog_flush_total",
			Help: "Buffer flushes attempted, by tier.",
		}, []string{"tier"}),
		FlushFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradelog_flush_failures_total",
			Help: "Buffer flushes that failed, by tier.",
		}, []string{"tier"}),
		EntriesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradelog_entries_written_total",
			Help: "Entries durably written, by tier.",
		}, []string{"tier"}),
		EntriesRequeued: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_entries_requeued_total",
			Help: "Entries requeued after transient write failures.",
		}),
		EntriesSetAside: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_entries_set_aside_total",
			Help: "Entries dropped after permanent write failures.",
		}),
		RetriesExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_retries_exhausted_total",
			Help: "Write attempts that exhausted the retry budget.",
		}),
		ExpiredDeletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_expired_deletions_total",
			Help: "Hot records deleted by TTL expiry.",
		}),
		MigratedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_migrated_records_total",
			Help: "Hot records migrated to cold archives.",
		}),
		PrunedVersions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_pruned_versions_total",
			Help: "Cold objects deleted by version pruning.",
		}),
		ClassTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_class_transitions_total",
			Help: "Cold objects moved to a cheaper storage class.",
		}),
		CostAlertsRaised: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradelog_cost_alerts_total",
			Help: "Cost threshold alerts raised.",
		}),
		LifecycleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradelog_lifecycle_failures_total",
			Help: "Per-unit failures inside lifecycle passes, by pass.",
		}, []string{"pass"}),
	}
}

// NewNop returns collectors on a throwaway registry. Used in tests that do
// not assert on metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
