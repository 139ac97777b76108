package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// AcquisitionTask: Sequential execution of one acquisition run
// =============================================================================

// streamResult pairs a stream with the raw data it produced. Results are
// kept per-stream until metadata adjustment, which needs the association.
type streamResult struct {
	stream Stream
	data   []DataArray
}

// AcquisitionTask executes a set of streams one at a time, in priority
// order, on a single dedicated goroutine. The task object is single-use: a
// second Run is a programming error and panics.
//
// The ordered stream list and the per-stream time budgets are fixed at
// construction and never change afterwards. The only cross-goroutine
// mutation into a running task is Cancel, which is linearized with the
// current-sub-acquisition pointer under one mutex.
type AcquisitionTask struct {
	future *ProgressiveFuture

	streams []Stream        // descending weight, ties in input order
	budgets []time.Duration // aligned with streams

	mu         sync.Mutex
	currentIdx int // index of the in-flight step, -1 before the first
	current    StreamAcquisition
	cancelled  bool

	started atomic.Bool

	logger  Logger
	metrics Metrics
	now     func() time.Time
}

// NewAcquisitionTask builds a task for the given streams and binds it to
// the future. Streams are sorted by descending weight once, here; the time
// budget of each stream is cached from its own estimate.
func NewAcquisitionTask(streams []Stream, future *ProgressiveFuture, cfg *AcquirerConfig) *AcquisitionTask {
	cfg = cfg.withDefaults()

	ordered := sortStreamsByWeight(streams, cfg.Logger)
	budgets := make([]time.Duration, len(ordered))
	for i, s := range ordered {
		if d := s.EstimateAcquisitionTime(); d > 0 {
			budgets[i] = d
		}
	}

	return &AcquisitionTask{
		future:     future,
		streams:    ordered,
		budgets:    budgets,
		currentIdx: -1,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        future.now,
	}
}

// Streams returns the execution order of the task.
func (t *AcquisitionTask) Streams() []Stream {
	out := make([]Stream, len(t.streams))
	copy(out, t.streams)
	return out
}

// Run executes every stream in order and returns the collected raw data
// plus the error that ended the run early, if any.
//
// Return contract (consumed by executeRun):
//   - (all data, nil): every stream completed and metadata was adjusted.
//   - (partial data, err): a later step failed or was cancelled after at
//     least one stream produced data. err is the triggering error,
//     propagated unchanged; cancellation is reported as ErrCancelled.
//   - (nil, err): the run produced nothing. err is the first failure, or
//     ErrCancelled.
func (t *AcquisitionTask) Run() ([]DataArray, error) {
	if !t.started.CompareAndSwap(false, true) {
		panic("AcquisitionTask: Run called twice, the task is single-use")
	}

	remaining := totalBudget(t.budgets)
	t.future.SetProgress(t.now().Add(remaining))

	var collected []streamResult
	for i, s := range t.streams {
		// Recheck the cancellation flag before starting anything: a request
		// that lands between two steps must abort before the next one.
		t.mu.Lock()
		if t.cancelled {
			t.mu.Unlock()
			return t.conclude(collected, ErrCancelled)
		}
		t.mu.Unlock()

		sub, err := s.Acquire()
		if err != nil {
			// Preflight failure: no handle was ever produced. Same policy as
			// a mid-run failure.
			return t.conclude(collected, err)
		}

		t.mu.Lock()
		t.current = sub
		t.currentIdx = i
		cancelled := t.cancelled
		t.mu.Unlock()

		// Cancellation arrived while the step was being started: forward it
		// to the fresh handle and abort.
		if cancelled {
			sub.Cancel()
			return t.conclude(collected, ErrCancelled)
		}

		// Resolve the progress capability once per step.
		if p, ok := sub.(ProgressiveAcquisition); ok {
			p.SubscribeProgress(t.onProgressUpdate)
		}

		stepStart := t.now()
		data, err := sub.Result()
		if err != nil {
			return t.conclude(collected, err)
		}
		t.metrics.RecordStreamDuration(s.Name(), s.Category(), t.now().Sub(stepStart))

		collected = append(collected, streamResult{stream: s, data: data})
		remaining -= t.budgets[i]
		t.future.SetProgress(t.now().Add(remaining))
	}

	return t.conclude(collected, nil)
}

// conclude applies the partial-failure policy and runs metadata adjustment
// over whatever was collected. A long multi-stream acquisition must never
// lose already-captured, possibly irreplaceable data just because a later
// step failed.
func (t *AcquisitionTask) conclude(collected []streamResult, err error) ([]DataArray, error) {
	if len(collected) == 0 {
		return nil, err
	}
	return adjustMetadata(collected, t.logger), err
}

// onProgressUpdate receives a refined completion estimate from the current
// sub-acquisition and folds the budgets of the not-yet-started streams into
// the overall estimate. Updates from any other handle are stale callbacks
// of a previous step: logged and ignored.
func (t *AcquisitionTask) onProgressUpdate(sub StreamAcquisition, start, end time.Time) {
	t.mu.Lock()
	if sub != t.current {
		t.mu.Unlock()
		t.logger.Debug("progress update from a stale sub-acquisition, ignoring")
		return
	}
	var left time.Duration
	for i := t.currentIdx + 1; i < len(t.budgets); i++ {
		left += t.budgets[i]
	}
	t.mu.Unlock()

	t.future.SetProgress(end.Add(left))
}

// Cancel requests cancellation of the run. Callable from any goroutine at
// any time; the task reacts at most once.
//
// If a sub-step is in flight, the request is forwarded to it. The request
// is reported as too late (false) only when the in-flight step refused it
// and no steps remain to start; otherwise the next loop iteration observes
// the flag before starting anything.
func (t *AcquisitionTask) Cancel() bool {
	t.mu.Lock()
	t.cancelled = true
	current := t.current
	stepsLeft := t.currentIdx+1 < len(t.streams)
	t.mu.Unlock()

	accepted := false
	if current != nil {
		accepted = current.Cancel()
	}
	if !accepted && !stepsLeft {
		t.metrics.RecordCancelRequest(false)
		return false
	}

	t.metrics.RecordCancelRequest(true)
	return true
}

func totalBudget(budgets []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range budgets {
		total += d
	}
	return total
}

// isCancellation reports whether err carries the cancellation signal.
func isCancellation(err error) bool {
	return errors.Is(err, ErrCancelled)
}
