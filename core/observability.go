package core

import "time"

// =============================================================================
// RunOutcome: Terminal classification of a run
// =============================================================================

// RunOutcome classifies how an acquisition run ended.
type RunOutcome string

const (
	// OutcomeCompleted: every stream produced data, no error.
	OutcomeCompleted RunOutcome = "completed"

	// OutcomePartial: a later step failed or was cancelled after at least
	// one stream produced data; the collected data was delivered anyway.
	OutcomePartial RunOutcome = "partial"

	// OutcomeFailed: the run failed before any data was produced.
	OutcomeFailed RunOutcome = "failed"

	// OutcomeCancelled: the run was cancelled before any data was produced.
	OutcomeCancelled RunOutcome = "cancelled"
)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting acquisition metrics.
// Implementations can send metrics to monitoring systems (Prometheus,
// StatsD, etc.).
//
// Methods should be non-blocking and fast: they are called from the run
// goroutine between sub-steps.
type Metrics interface {
	// RecordStreamDuration records how long one stream's acquisition took.
	RecordStreamDuration(stream string, category StreamCategory, duration time.Duration)

	// RecordRunOutcome records a finished run with its terminal outcome and
	// total wall-clock duration.
	RecordRunOutcome(outcome RunOutcome, duration time.Duration)

	// RecordCancelRequest records a cancellation request against a run and
	// whether it was accepted.
	RecordCancelRequest(accepted bool)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordStreamDuration is a no-op.
func (m *NilMetrics) RecordStreamDuration(stream string, category StreamCategory, duration time.Duration) {
}

// RecordRunOutcome is a no-op.
func (m *NilMetrics) RecordRunOutcome(outcome RunOutcome, duration time.Duration) {
}

// RecordCancelRequest is a no-op.
func (m *NilMetrics) RecordCancelRequest(accepted bool) {
}
