package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCancelled is the cancellation signal of an acquisition. Result returns
// an error satisfying errors.Is(err, ErrCancelled) when the run was
// cancelled before any data was acquired; when data was already collected,
// the same signal is delivered as the trailing error of a partial result.
var ErrCancelled = errors.New("acquisition cancelled")

// =============================================================================
// FutureState: Lifecycle of a whole acquisition run
// =============================================================================

// FutureState is the lifecycle state of a ProgressiveFuture.
type FutureState int

const (
	// StatePending: created, run goroutine not started yet.
	StatePending FutureState = iota

	// StateRunning: the run goroutine is executing streams.
	StateRunning

	// StateCancelled: terminal; cancelled before any data was acquired.
	StateCancelled

	// StateFinished: terminal; all streams completed, or a later stream
	// failed after at least one stream produced data (partial success).
	StateFinished

	// StateFailed: terminal; the run failed before any data was produced.
	StateFailed
)

// String returns the lowercase name of the state.
func (s FutureState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// terminal reports whether the state is one of the three end states.
func (s FutureState) terminal() bool {
	return s == StateCancelled || s == StateFinished || s == StateFailed
}

// =============================================================================
// ProgressiveFuture: Cancellable, progress-reporting run handle
// =============================================================================

// FutureProgressCallback receives updated wall-clock estimates for the whole
// run: start is when the run started (or is expected to), end is the current
// estimated completion time.
type FutureProgressCallback func(f *ProgressiveFuture, start, end time.Time)

// ProgressiveFuture represents a whole acquisition run to the caller. It can
// be queried, observed and cancelled from any goroutine while the run
// goroutine is mid-flight.
//
// Terminal transitions are produced only by the run goroutine; Cancel from
// other goroutines merely forwards the request to the task, which keeps the
// terminal outcome single-writer.
type ProgressiveFuture struct {
	id uuid.UUID

	mu        sync.Mutex
	state     FutureState
	start     time.Time
	end       time.Time
	callbacks []FutureProgressCallback

	results []DataArray
	err     error

	// cancelHook forwards a cancellation request to the owning task.
	// Returns true if the request was accepted.
	cancelHook func() bool

	done chan struct{}
	now  func() time.Time
}

// NewProgressiveFuture returns a Pending future.
func NewProgressiveFuture() *ProgressiveFuture {
	return newProgressiveFutureWithNow(time.Now)
}

// newProgressiveFutureWithNow allows injecting a clock for tests.
func newProgressiveFutureWithNow(now func() time.Time) *ProgressiveFuture {
	if now == nil {
		now = time.Now
	}
	return &ProgressiveFuture{
		id:   uuid.New(),
		done: make(chan struct{}),
		now:  now,
	}
}

// ID returns the unique identifier of the run.
func (f *ProgressiveFuture) ID() uuid.UUID {
	return f.id
}

// State returns the current lifecycle state.
func (f *ProgressiveFuture) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done returns a channel closed on terminal transition.
func (f *ProgressiveFuture) Done() <-chan struct{} {
	return f.done
}

// AddProgressCallback registers a callback invoked with updated completion
// estimates whenever they change. Safe to call from any goroutine.
func (f *ProgressiveFuture) AddProgressCallback(cb FutureProgressCallback) {
	if cb == nil {
		return
	}
	f.mu.Lock()
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// SetProgress publishes a new estimated completion time and notifies the
// registered callbacks. Ignored once the future is terminal.
func (f *ProgressiveFuture) SetProgress(end time.Time) {
	f.mu.Lock()
	if f.state.terminal() {
		f.mu.Unlock()
		return
	}
	f.end = end
	start := f.start
	cbs := make([]FutureProgressCallback, len(f.callbacks))
	copy(cbs, f.callbacks)
	f.mu.Unlock()

	// Callbacks run outside the lock: they may query the future.
	for _, cb := range cbs {
		cb(f, start, end)
	}
}

// Progress returns the current estimated (start, end) wall-clock window.
func (f *ProgressiveFuture) Progress() (start, end time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.start, f.end
}

// Cancel requests cancellation of the run. It returns true if cancellation
// was accepted (the run will stop early, or already was cancelled), false
// if it is too late and the run will complete normally.
func (f *ProgressiveFuture) Cancel() bool {
	f.mu.Lock()
	switch {
	case f.state == StateCancelled:
		f.mu.Unlock()
		return true
	case f.state.terminal():
		f.mu.Unlock()
		return false
	}
	hook := f.cancelHook
	f.mu.Unlock()

	if hook == nil {
		return false
	}
	return hook()
}

// Result blocks until the run reaches a terminal state.
//
// It returns (nil, ErrCancelled) if the run was cancelled before any data
// was acquired, and (nil, err) if the very first stream failed. Otherwise
// it returns all collected data plus the trailing error that ended the run
// early, or nil on full success. Callers must check the error even when
// data is returned: partial success delivers both.
func (f *ProgressiveFuture) Result() ([]DataArray, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateCancelled {
		return nil, f.err
	}
	return f.results, f.err
}

// ResultContext is like Result but gives up when ctx is done. The run keeps
// executing; only the wait is abandoned.
func (f *ProgressiveFuture) ResultContext(ctx context.Context) ([]DataArray, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// bindCanceller attaches the task's cancellation hook. Called once, before
// the run goroutine starts.
func (f *ProgressiveFuture) bindCanceller(hook func() bool) {
	f.mu.Lock()
	f.cancelHook = hook
	f.mu.Unlock()
}

// setRunning transitions Pending -> Running and records the start time.
func (f *ProgressiveFuture) setRunning() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return
	}
	f.state = StateRunning
	f.start = f.now()
}

// setFinished delivers the (possibly partial) result set. trailing is nil on
// full success, otherwise the error or cancellation signal that ended the
// run early.
func (f *ProgressiveFuture) setFinished(results []DataArray, trailing error) {
	f.terminate(StateFinished, results, trailing)
}

// setFailed marks the run failed before any data was produced.
func (f *ProgressiveFuture) setFailed(err error) {
	f.terminate(StateFailed, nil, err)
}

// setCancelled marks the run cancelled with no data.
func (f *ProgressiveFuture) setCancelled(err error) {
	f.terminate(StateCancelled, nil, err)
}

func (f *ProgressiveFuture) terminate(state FutureState, results []DataArray, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.terminal() {
		return
	}
	f.state = state
	f.results = results
	f.err = err
	// Clamp the estimate: the run is over now.
	f.end = f.now()
	close(f.done)
}
