package core

// =============================================================================
// Metadata adjustment: Overlay correction merge and description defaulting
// =============================================================================

// adjustMetadata post-processes the collected results of a run and returns
// them flattened in acquisition order.
//
// Overlay streams are a calibration side-channel, not acquisition output:
// their two-entry result (optical-path correction, electron-beam-path
// correction) is removed from the final set, and the corrections are merged
// into the metadata of the light-based and electron-beam-based results
// respectively. The merge is additive only: attributes a stream already set
// are kept. Every result still lacking a description gets its stream name.
//
// The pass is unconditional: without an overlay stream the correction merge
// is a no-op, but the description defaulting always applies.
func adjustMetadata(collected []streamResult, logger Logger) []DataArray {
	var optCor, emCor Metadata

	kept := make([]streamResult, 0, len(collected))
	for _, sr := range collected {
		if sr.stream.Category() != CategoryOverlay {
			kept = append(kept, sr)
			continue
		}
		if optCor != nil || emCor != nil {
			logger.Warn("multiple overlay streams produced correction data, last wins",
				F("stream", sr.stream.Name()))
		}
		if len(sr.data) < 2 {
			logger.Warn("overlay stream did not produce the expected two correction entries",
				F("stream", sr.stream.Name()), F("entries", len(sr.data)))
			continue
		}
		optCor = sr.data[0].Metadata
		emCor = sr.data[1].Metadata
	}

	var out []DataArray
	for _, sr := range kept {
		cor := correctionFor(sr.stream.Category(), optCor, emCor)
		for _, d := range sr.data {
			if d.Metadata == nil {
				d.Metadata = Metadata{}
			}
			if cor != nil {
				d.Metadata.Merge(cor)
			}
			if _, ok := d.Metadata[MDDescription]; !ok {
				d.Metadata[MDDescription] = sr.stream.Name()
			}
			out = append(out, d)
		}
	}
	return out
}

// correctionFor selects which correction set applies to a category.
// Fluorescence shares the optical path; scanned streams are driven by the
// electron beam.
func correctionFor(c StreamCategory, optCor, emCor Metadata) Metadata {
	switch c {
	case CategoryFluorescence, CategoryOptical:
		return optCor
	case CategoryElectron, CategoryScanned:
		return emCor
	default:
		return nil
	}
}
