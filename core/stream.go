package core

import (
	"time"
)

// =============================================================================
// StreamCategory: Closed enumeration of acquisition modalities
// =============================================================================

// StreamCategory identifies the acquisition modality of a stream.
// The priority of a stream during an acquisition run is derived from its
// category (see WeightStream), so adding a category is a data change in the
// weight table, not a new conditional branch.
type StreamCategory int

const (
	// CategoryUnknown is the zero value; streams reporting it are acquired
	// last and trigger a diagnostic log.
	CategoryUnknown StreamCategory = iota

	// CategoryFluorescence: fluorescence microscopy streams. Acquired first
	// to minimize photobleaching.
	CategoryFluorescence

	// CategoryOptical: any other optical-light stream (brightfield, ...).
	CategoryOptical

	// CategoryElectron: electron-beam streams (e.g. SEM survey).
	CategoryElectron

	// CategoryScanned: combined-modality scan streams, such as an
	// electron-beam-driven multi-detector scan.
	CategoryScanned

	// CategoryOverlay: alignment-correction streams. Always acquired last;
	// their output corrects the metadata of data already captured.
	CategoryOverlay
)

// String returns the lowercase name of the category.
func (c StreamCategory) String() string {
	switch c {
	case CategoryFluorescence:
		return "fluorescence"
	case CategoryOptical:
		return "optical"
	case CategoryElectron:
		return "electron"
	case CategoryScanned:
		return "scanned"
	case CategoryOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name (as used in plan files) back to a
// StreamCategory. Unrecognized names map to CategoryUnknown.
func ParseCategory(name string) StreamCategory {
	switch name {
	case "fluorescence":
		return CategoryFluorescence
	case "optical":
		return CategoryOptical
	case "electron":
		return CategoryElectron
	case "scanned":
		return CategoryScanned
	case "overlay":
		return CategoryOverlay
	default:
		return CategoryUnknown
	}
}

// =============================================================================
// Band: Wavelength band of a fluorescence filter
// =============================================================================

// Band is a wavelength interval in meters, Low <= High.
type Band struct {
	Low  float64
	High float64
}

// Center returns the central wavelength of the band in meters.
func (b Band) Center() float64 {
	return (b.Low + b.High) / 2
}

// =============================================================================
// Metadata and DataArray: The raw acquisition output model
// =============================================================================

// Well-known metadata keys.
const (
	// MDDescription is a human-readable description of a DataArray. When a
	// stream does not set it, the scheduler defaults it to the stream name.
	MDDescription = "description"

	// Correction keys produced by overlay streams and merged into the
	// metadata of optical and electron results.
	MDPosCorrection       = "position_correction"
	MDPixelSizeCorrection = "pixel_size_correction"
	MDRotationCorrection  = "rotation_correction"
	MDShearCorrection     = "shear_correction"
)

// Metadata is the descriptive attribute set attached to a DataArray.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata, never nil.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies every entry of src that is not already present in m.
// Existing entries are never overwritten: the merge is additive only.
func (m Metadata) Merge(src Metadata) {
	for k, v := range src {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
}

// DataArray is one raw acquisition output: an opaque payload plus its
// descriptive metadata. The scheduler never interprets the payload.
type DataArray struct {
	Data     []byte
	Metadata Metadata
}

// =============================================================================
// Stream: The external unit of acquisition work
// =============================================================================

// Stream is an opaque unit of acquisition work owned by a collaborator
// (typically a hardware-facing layer). The scheduler only needs its
// category, its own duration estimate, and the ability to start it.
//
// The scheduler assumes the underlying instrument is a singly-owned
// physical resource: it never starts two acquisitions concurrently, and it
// is a documented precondition that no other acquisition is issued against
// the same instrument while a run is in flight.
type Stream interface {
	// Name returns the display name of the stream, used to default the
	// description metadata of its results.
	Name() string

	// Category returns the acquisition modality, used for priority ordering.
	Category() StreamCategory

	// EstimateAcquisitionTime returns the stream's own estimate of how long
	// its acquisition will take.
	EstimateAcquisitionTime() time.Duration

	// Acquire starts the stream's acquisition and returns a handle for it.
	// An error return means the acquisition could not be started at all; it
	// is surfaced exactly like a mid-run failure.
	Acquire() (StreamAcquisition, error)
}

// StreamAcquisition is the handle for one stream's in-flight acquisition
// within a run (the "sub-step").
type StreamAcquisition interface {
	// Result blocks until the acquisition concludes and returns the raw data,
	// or the error that ended it. A cancelled acquisition returns an error
	// satisfying errors.Is(err, ErrCancelled).
	Result() ([]DataArray, error)

	// Cancel requests best-effort cancellation. It returns true if the
	// acquisition accepted the request and will stop early.
	Cancel() bool
}

// ProgressCallback receives refined completion estimates from an in-flight
// acquisition. start and end are estimated wall-clock begin/completion times.
type ProgressCallback func(sub StreamAcquisition, start, end time.Time)

// ProgressiveAcquisition is a StreamAcquisition that additionally reports
// refined time estimates while running. The scheduler resolves this
// capability once per sub-step, when the step starts; plain blocking
// acquisitions simply never implement it.
type ProgressiveAcquisition interface {
	StreamAcquisition

	// SubscribeProgress registers a callback invoked whenever the
	// acquisition refines its completion estimate.
	SubscribeProgress(cb ProgressCallback)
}

// FluorescenceStream is implemented by fluorescence streams in addition to
// Stream. The filter bands drive the sub-ordering of fluorescence streams
// within a run (longer emission wavelengths first).
type FluorescenceStream interface {
	Stream

	// EmissionBands returns the emission filter bands, in a deterministic
	// implementation-defined order.
	EmissionBands() []Band

	// ExcitationBands returns the excitation filter bands.
	ExcitationBands() []Band
}
