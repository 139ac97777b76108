package acqsched

import (
	"time"

	"github.com/openacq/go-acq-scheduler/core"
)

// Acquire starts an acquisition run for the given streams with the default
// configuration and immediately returns its future.
func Acquire(streams []core.Stream) *core.ProgressiveFuture {
	return core.Acquire(streams, nil)
}

// AcquireWithConfig starts an acquisition run with explicit collaborators
// (logger, metrics, run history).
func AcquireWithConfig(streams []core.Stream, cfg *core.AcquirerConfig) *core.ProgressiveFuture {
	return core.Acquire(streams, cfg)
}

// EstimateTotalTime sums the streams' own duration estimates without
// constructing a run.
func EstimateTotalTime(streams []core.Stream) time.Duration {
	return core.EstimateTotalTime(streams)
}
