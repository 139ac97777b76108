package core

import (
	"time"
)

// =============================================================================
// AcquirerConfig: Configuration for acquisition runs
// =============================================================================

// AcquirerConfig holds the collaborators of an acquisition run. All fields
// are optional; zero values fall back to defaults.
type AcquirerConfig struct {
	// Logger receives the scheduler's diagnostics. Defaults to DefaultLogger.
	Logger Logger

	// Metrics receives acquisition metrics. Defaults to NilMetrics.
	Metrics Metrics

	// History, when set, records every finished run (except cancelled runs
	// with no data). Nil disables recording.
	History *RunHistory
}

// DefaultAcquirerConfig returns a config with default collaborators.
func DefaultAcquirerConfig() *AcquirerConfig {
	return &AcquirerConfig{
		Logger:  NewDefaultLogger(),
		Metrics: &NilMetrics{},
	}
}

// withDefaults returns a copy with nil fields replaced by defaults.
func (c *AcquirerConfig) withDefaults() *AcquirerConfig {
	out := AcquirerConfig{}
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = NewDefaultLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	return &out
}

// =============================================================================
// Entry points
// =============================================================================

// Acquire starts an acquisition run for the given streams and returns its
// future immediately. The run executes on a dedicated goroutine; streams
// are acquired strictly one at a time, in descending weight order.
//
// It is highly recommended not to have any other acquisition going on
// against the same instrument: strict sequencing within one run is the only
// instrument-ownership guarantee this layer provides.
func Acquire(streams []Stream, cfg *AcquirerConfig) *ProgressiveFuture {
	cfg = cfg.withDefaults()

	future := NewProgressiveFuture()
	task := NewAcquisitionTask(streams, future, cfg)
	future.bindCanceller(task.Cancel)

	go executeRun(task, cfg)

	return future
}

// EstimateTotalTime computes the approximate duration of an acquisition run
// for the given streams: the pure sum of each stream's own estimate. It
// does not construct a task.
func EstimateTotalTime(streams []Stream) time.Duration {
	var total time.Duration
	for _, s := range streams {
		if d := s.EstimateAcquisitionTime(); d > 0 {
			total += d
		}
	}
	return total
}

// executeRun drives one task to completion on the current goroutine and
// produces the single terminal outcome of its future.
func executeRun(task *AcquisitionTask, cfg *AcquirerConfig) {
	future := task.future
	future.setRunning()
	startedAt, _ := future.Progress()

	results, err := task.Run()

	var outcome RunOutcome
	switch {
	case err == nil:
		future.setFinished(results, nil)
		outcome = OutcomeCompleted
	case len(results) > 0:
		// Partial success: deliver the data with the triggering error as
		// the trailing element, instead of discarding completed work.
		future.setFinished(results, err)
		outcome = OutcomePartial
	case isCancellation(err):
		future.setCancelled(err)
		outcome = OutcomeCancelled
	default:
		future.setFailed(err)
		outcome = OutcomeFailed
	}

	finishedAt := future.now()
	cfg.Metrics.RecordRunOutcome(outcome, finishedAt.Sub(startedAt))
	cfg.History.Add(RunRecord{
		ID:         future.ID(),
		Outcome:    outcome,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Streams:    len(task.streams),
		Results:    len(results),
		Error:      errString(err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
