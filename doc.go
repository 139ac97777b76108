// Package acqsched schedules multi-stream scientific acquisitions on a
// singly-owned instrument.
//
// The caller hands over an unordered collection of streams; the scheduler
// orders them by acquisition-science priority (fluorescence first to limit
// bleaching, overlay calibration last), executes them strictly one at a
// time on a dedicated goroutine, and returns a ProgressiveFuture that
// reports live completion estimates and supports cancellation from any
// goroutine.
//
// # Quick Start
//
//	future := acqsched.Acquire(streams)
//
//	future.AddProgressCallback(func(f *core.ProgressiveFuture, start, end time.Time) {
//		fmt.Println("estimated completion:", end)
//	})
//
//	data, err := future.Result() // blocks until the run concludes
//
// # Partial success
//
// A long acquisition never discards already-captured data. When a later
// stream fails after earlier streams produced results, Result returns the
// collected data together with the triggering error; callers must check
// the error even when data is returned. Only a run that fails or is
// cancelled before any data was produced surfaces as a bare error.
//
// # Ordering
//
// Stream priority is a pure function of the stream category plus, for
// fluorescence, the emission wavelength center (longer wavelengths first).
// Ties keep the caller's input order. See core.WeightStream.
//
// # Thread safety
//
// The returned future may be queried, observed and cancelled from any
// goroutine while the run is in flight. Within a run, sub-acquisitions
// never overlap: the instrument is a singly-owned physical resource, and
// the scheduler assumes (but cannot enforce) that no other acquisition is
// issued against it concurrently.
package acqsched
