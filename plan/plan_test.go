package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openacq/go-acq-scheduler/core"
	"github.com/openacq/go-acq-scheduler/simstream"
)

const samplePlan = `
name: correlative-survey
streams:
  - name: fluo-red
    category: fluorescence
    duration: 1.5s
    emission:
      - [650e-9, 690e-9]
    excitation:
      - [540e-9, 560e-9]
    progressive: true
  - name: sem-survey
    category: electron
    duration: 500ms
    frames: 3
  - name: fine-align
    category: overlay
    duration: 200ms
`

// TestParse_SamplePlan verifies YAML decoding
// Main test items:
// 1. Names, categories and durations decode from human-readable scalars
// 2. Band specs decode into [low, high] pairs
func TestParse_SamplePlan(t *testing.T) {
	// Act
	p, err := Parse([]byte(samplePlan))

	// Assert
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if p.Name != "correlative-survey" {
		t.Fatalf("plan name = %q, want correlative-survey", p.Name)
	}
	if len(p.Streams) != 3 {
		t.Fatalf("plan has %d streams, want 3", len(p.Streams))
	}
	fluo := p.Streams[0]
	if time.Duration(fluo.Duration) != 1500*time.Millisecond {
		t.Fatalf("fluo duration = %v, want 1.5s", time.Duration(fluo.Duration))
	}
	if len(fluo.Emission) != 1 || fluo.Emission[0] != (BandSpec{650e-9, 690e-9}) {
		t.Fatalf("fluo emission = %v, want [[650e-9 690e-9]]", fluo.Emission)
	}
	if !fluo.Progressive {
		t.Fatal("fluo stream should be progressive")
	}
}

// TestParse_Validation verifies rejection of malformed plans
func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "NoStreams",
			doc:     "name: empty\n",
			wantErr: "no streams",
		},
		{
			name:    "MissingName",
			doc:     "streams:\n  - category: electron\n    duration: 1s\n",
			wantErr: "name is required",
		},
		{
			name:    "UnknownCategory",
			doc:     "streams:\n  - name: s\n    category: xray\n    duration: 1s\n",
			wantErr: "unknown category",
		},
		{
			name:    "InvertedBand",
			doc:     "streams:\n  - name: s\n    category: fluorescence\n    duration: 1s\n    emission:\n      - [690e-9, 650e-9]\n",
			wantErr: "band low",
		},
		{
			name:    "BadDuration",
			doc:     "streams:\n  - name: s\n    category: electron\n    duration: soon\n",
			wantErr: "invalid duration",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Parse() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

// TestLoad_File verifies the file path entry point
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatalf("writing plan file: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if len(p.Streams) != 3 {
		t.Fatalf("loaded plan has %d streams, want 3", len(p.Streams))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() of a missing file should fail")
	}
}

// TestPlan_Build verifies materialization into simulated streams
// Given: A parsed plan with a fluorescence, an electron and an overlay stream
// When: Build runs
// Then: Streams carry the decoded config; the overlay stream defaults to two
//       frames so it produces the expected correction pair
func TestPlan_Build(t *testing.T) {
	// Arrange
	p, err := Parse([]byte(samplePlan))
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}

	// Act
	streams := p.Build()

	// Assert
	if len(streams) != 3 {
		t.Fatalf("Build() produced %d streams, want 3", len(streams))
	}
	if streams[0].Category() != core.CategoryFluorescence {
		t.Fatalf("stream 0 category = %v, want fluorescence", streams[0].Category())
	}
	fluo, ok := streams[0].(core.FluorescenceStream)
	if !ok {
		t.Fatal("fluorescence stream should expose its filter bands")
	}
	if bands := fluo.EmissionBands(); len(bands) != 1 || bands[0].Center() != (core.Band{Low: 650e-9, High: 690e-9}).Center() {
		t.Fatalf("emission bands = %v, want one band centered at 670nm", bands)
	}
	if streams[1].EstimateAcquisitionTime() != 500*time.Millisecond {
		t.Fatalf("stream 1 estimate = %v, want 500ms", streams[1].EstimateAcquisitionTime())
	}
	overlay, ok := streams[2].(*simstream.Stream)
	if !ok {
		t.Fatalf("stream 2 is %T, want *simstream.Stream", streams[2])
	}
	if overlay.Frames != 2 {
		t.Fatalf("overlay frames = %d, want 2 (correction pair)", overlay.Frames)
	}
}
