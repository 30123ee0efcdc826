// Package metrics exposes datastore activity as Prometheus metrics.
//
// A nil *Registry is valid and records nothing, so callers that do not care
// about metrics can leave it unset.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"txkv/internal/common"
)

const (
	OutcomeCommitted  = "committed"
	OutcomeAborted    = "aborted"
	OutcomeRolledBack = "rolled_back"
)

type Registry struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	TransactionsTotal *prometheus.CounterVec
	PendingOperations prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.OperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "txkv_operations_total",
			Help: "Total number of datastore operations by result status",
		},
		[]string{"operation", "status"},
	)

	r.OperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "txkv_operation_duration_seconds",
			Help:    "Duration of datastore operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"operation"},
	)

	r.TransactionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "txkv_transactions_total",
			Help: "Total number of finished transactions by outcome",
		},
		[]string{"outcome"}, // committed, aborted, rolled_back
	)

	r.PendingOperations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "txkv_pending_operations",
			Help: "Operations queued in the open transaction",
		},
	)

	return r
}

// Gatherer is what the /metrics handler serves.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

func (r *Registry) RecordOperation(operation string, status common.Status, duration time.Duration) {
	if r == nil {
		return
	}
	r.OperationsTotal.WithLabelValues(operation, status.String()).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *Registry) RecordTransaction(outcome string) {
	if r == nil {
		return
	}
	r.TransactionsTotal.WithLabelValues(outcome).Inc()
}

func (r *Registry) SetPending(n int) {
	if r == nil {
		return
	}
	r.PendingOperations.Set(float64(n))
}
