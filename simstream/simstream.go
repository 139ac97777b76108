// Package simstream provides simulated streams implementing core.Stream,
// for demos and integration-style testing without instrument hardware.
package simstream

import (
	"fmt"
	"sync"
	"time"

	"github.com/openacq/go-acq-scheduler/core"
)

// Stream is a simulated acquisition stream. It "acquires" by sleeping for
// the configured duration in small slices, honoring cancellation between
// slices, and produces one DataArray per frame.
type Stream struct {
	// StreamName is the display name (defaults the description metadata).
	StreamName string

	// StreamCategory drives priority ordering.
	StreamCategory core.StreamCategory

	// Duration is the simulated acquisition time, also returned as the
	// stream's own estimate.
	Duration time.Duration

	// Frames is the number of DataArrays the acquisition produces.
	// Defaults to 1.
	Frames int

	// Emission and Excitation are the filter bands of a fluorescence
	// stream, in meters.
	Emission   []core.Band
	Excitation []core.Band

	// Metadata is attached (cloned) to every produced frame.
	Metadata core.Metadata

	// FailWith, when set, makes the acquisition end with this error after
	// the simulated duration.
	FailWith error

	// FailAcquire, when set, makes Acquire itself return this error before
	// any handle is produced.
	FailAcquire error

	// Progressive makes the acquisition report a refined completion
	// estimate halfway through.
	Progressive bool

	// RefuseCancel makes the acquisition ignore cancellation requests.
	RefuseCancel bool
}

var _ core.Stream = (*Stream)(nil)
var _ core.FluorescenceStream = (*Stream)(nil)

// Name returns the display name.
func (s *Stream) Name() string { return s.StreamName }

// Category returns the simulated modality.
func (s *Stream) Category() core.StreamCategory { return s.StreamCategory }

// EstimateAcquisitionTime returns the configured duration.
func (s *Stream) EstimateAcquisitionTime() time.Duration { return s.Duration }

// EmissionBands returns the configured emission filter bands.
func (s *Stream) EmissionBands() []core.Band { return s.Emission }

// ExcitationBands returns the configured excitation filter bands.
func (s *Stream) ExcitationBands() []core.Band { return s.Excitation }

// Acquire starts the simulated acquisition on its own goroutine.
func (s *Stream) Acquire() (core.StreamAcquisition, error) {
	if s.FailAcquire != nil {
		return nil, s.FailAcquire
	}

	a := &acquisition{
		stream: s,
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}

	// The handle handed out must be the one progress callbacks report, so
	// that the scheduler's identity check against the current sub-step holds.
	var handle core.StreamAcquisition = a
	if s.Progressive {
		handle = &progressiveAcquisition{acquisition: a}
	}
	a.handle = handle

	go a.run()
	return handle, nil
}

// acquisition is the blocking variant of the simulated handle.
type acquisition struct {
	stream *Stream
	handle core.StreamAcquisition

	mu        sync.Mutex
	callbacks []core.ProgressCallback

	data []core.DataArray
	err  error

	done       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
}

func (a *acquisition) run() {
	defer close(a.done)

	start := time.Now()
	end := start.Add(a.stream.Duration)

	const slices = 10
	slice := a.stream.Duration / slices
	for i := 0; i < slices; i++ {
		select {
		case <-a.cancel:
			a.err = fmt.Errorf("stream %q: %w", a.stream.StreamName, core.ErrCancelled)
			return
		case <-time.After(slice):
		}
		if a.stream.Progressive && i == slices/2 {
			a.notifyProgress(start, end)
		}
	}

	if a.stream.FailWith != nil {
		a.err = a.stream.FailWith
		return
	}

	frames := a.stream.Frames
	if frames < 1 {
		frames = 1
	}
	for i := 0; i < frames; i++ {
		a.data = append(a.data, core.DataArray{
			Data:     []byte{byte(i)},
			Metadata: a.stream.Metadata.Clone(),
		})
	}
}

func (a *acquisition) notifyProgress(start, end time.Time) {
	a.mu.Lock()
	cbs := make([]core.ProgressCallback, len(a.callbacks))
	copy(cbs, a.callbacks)
	a.mu.Unlock()
	for _, cb := range cbs {
		cb(a.handle, start, end)
	}
}

// Result blocks until the simulated acquisition concludes.
func (a *acquisition) Result() ([]core.DataArray, error) {
	<-a.done
	return a.data, a.err
}

// Cancel stops the simulation between slices, unless the stream refuses.
func (a *acquisition) Cancel() bool {
	if a.stream.RefuseCancel {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
	}
	a.cancelOnce.Do(func() { close(a.cancel) })
	return true
}

// progressiveAcquisition upgrades the handle with progress subscription.
type progressiveAcquisition struct {
	*acquisition
}

var _ core.ProgressiveAcquisition = (*progressiveAcquisition)(nil)

// SubscribeProgress registers a refined-estimate callback.
func (p *progressiveAcquisition) SubscribeProgress(cb core.ProgressCallback) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	p.callbacks = append(p.callbacks, cb)
	p.mu.Unlock()
}
