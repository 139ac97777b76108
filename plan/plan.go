// Package plan loads acquisition plans from YAML files. A plan describes a
// set of streams (name, category, expected duration, filter bands) and can
// be materialized into simulated streams for headless runs and demos.
package plan

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openacq/go-acq-scheduler/core"
	"github.com/openacq/go-acq-scheduler/simstream"
)

// Duration wraps time.Duration with YAML decoding of strings like "1.5s".
type Duration time.Duration

// UnmarshalYAML decodes a duration scalar.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// BandSpec is a wavelength interval in meters: [low, high].
type BandSpec [2]float64

// StreamSpec describes one stream of a plan.
type StreamSpec struct {
	Name        string     `yaml:"name"`
	Category    string     `yaml:"category"`
	Duration    Duration   `yaml:"duration"`
	Frames      int        `yaml:"frames,omitempty"`
	Emission    []BandSpec `yaml:"emission,omitempty"`
	Excitation  []BandSpec `yaml:"excitation,omitempty"`
	Progressive bool       `yaml:"progressive,omitempty"`
}

// Plan is a named set of streams to acquire in one run.
type Plan struct {
	Name    string       `yaml:"name,omitempty"`
	Streams []StreamSpec `yaml:"streams"`
}

// Parse decodes and validates a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

func (p *Plan) validate() error {
	if len(p.Streams) == 0 {
		return fmt.Errorf("plan has no streams")
	}
	for i, s := range p.Streams {
		if s.Name == "" {
			return fmt.Errorf("stream %d: name is required", i)
		}
		if core.ParseCategory(s.Category) == core.CategoryUnknown {
			return fmt.Errorf("stream %q: unknown category %q", s.Name, s.Category)
		}
		if s.Duration < 0 {
			return fmt.Errorf("stream %q: negative duration", s.Name)
		}
		for _, b := range append(append([]BandSpec{}, s.Emission...), s.Excitation...) {
			if b[0] > b[1] {
				return fmt.Errorf("stream %q: band low %g above high %g", s.Name, b[0], b[1])
			}
		}
	}
	return nil
}

// Build materializes the plan into simulated streams, ready to hand to the
// scheduler. Overlay streams default to two frames so they produce the
// expected correction pair.
func (p *Plan) Build() []core.Stream {
	streams := make([]core.Stream, 0, len(p.Streams))
	for _, spec := range p.Streams {
		category := core.ParseCategory(spec.Category)
		frames := spec.Frames
		if frames < 1 {
			frames = 1
			if category == core.CategoryOverlay {
				frames = 2
			}
		}
		streams = append(streams, &simstream.Stream{
			StreamName:     spec.Name,
			StreamCategory: category,
			Duration:       time.Duration(spec.Duration),
			Frames:         frames,
			Emission:       bands(spec.Emission),
			Excitation:     bands(spec.Excitation),
			Progressive:    spec.Progressive,
		})
	}
	return streams
}

func bands(specs []BandSpec) []core.Band {
	if len(specs) == 0 {
		return nil
	}
	out := make([]core.Band, len(specs))
	for i, b := range specs {
		out[i] = core.Band{Low: b[0], High: b[1]}
	}
	return out
}
