package core

import "sort"

// =============================================================================
// Stream weighting: Domain priority for acquisition ordering
// =============================================================================

// Base weights per category, highest priority first. Physical and chemical
// constraints (bleaching, drift) dictate this order; a generic scheduler
// cannot infer it from timing alone, so it is encoded explicitly as data.
var categoryWeights = map[StreamCategory]float64{
	CategoryFluorescence: 100, // ASAP, to avoid bleaching
	CategoryOptical:      90,  // any other light after fluorescence
	CategoryElectron:     50,  // can be done after any light
	CategoryScanned:      40,  // after standard (survey) electron imaging
	CategoryOverlay:      10,  // after everything it has to correct
}

// excitationEmissionOffset is the guesstimated gap between an excitation
// center and the emission it produces, used when only the excitation band
// is unambiguous. 50 nm, in meters.
const excitationEmissionOffset = 50e-9

// WeightStream returns the acquisition priority of a stream: the higher the
// weight, the earlier the stream should be acquired. The function is pure
// and total; an unrecognized category yields 0 and a diagnostic log.
//
// Fluorescence streams get a sub-ordering bonus derived from the emission
// wavelength center, so that longer emission wavelengths are acquired first
// (their emission light cannot excite the other dyes, which limits
// bleaching cross-talk).
func WeightStream(s Stream, logger Logger) float64 {
	w, ok := categoryWeights[s.Category()]
	if !ok {
		if logger != nil {
			logger.Debug("unexpected stream category, scheduling last",
				F("stream", s.Name()), F("category", s.Category().String()))
		}
		return 0
	}

	if s.Category() == CategoryFluorescence {
		if fs, ok := s.(FluorescenceStream); ok {
			return w + fluorescenceBonus(fs)
		}
	}
	return w
}

// fluorescenceBonus computes the wavelength bonus of a fluorescence stream.
// Single emission band: its center. Multi-band emission filter: fall back
// to the excitation center plus a fixed offset. Both ambiguous: pick the
// first emission band's center (deterministic, implementation-defined
// order). No band information at all: no bonus.
func fluorescenceBonus(fs FluorescenceStream) float64 {
	em := fs.EmissionBands()
	if len(em) == 1 {
		return em[0].Center()
	}
	if len(em) == 0 {
		return 0
	}

	if ex := fs.ExcitationBands(); len(ex) == 1 {
		return ex[0].Center() + excitationEmissionOffset
	}

	// Multi-band excitation as well: unguessable, just pick one.
	return em[0].Center()
}

// sortStreamsByWeight returns the streams ordered by descending weight.
// The sort is stable: streams of equal weight keep their input order.
func sortStreamsByWeight(streams []Stream, logger Logger) []Stream {
	type weighted struct {
		s Stream
		w float64
	}
	ws := make([]weighted, len(streams))
	for i, s := range streams {
		ws[i] = weighted{s: s, w: WeightStream(s, logger)}
	}

	sort.SliceStable(ws, func(i, j int) bool { return ws[i].w > ws[j].w })

	out := make([]Stream, len(ws))
	for i, e := range ws {
		out[i] = e.s
	}
	return out
}
