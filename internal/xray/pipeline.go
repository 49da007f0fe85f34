package xray

import (
	"context"
	"math"

	"github.com/go-logr/logr"
	"github.com/san-kum/beamhard/internal/logging"
)

// Simulator runs spectra through filter, sample and detector. It holds no
// per-request state and is safe for concurrent use when its collaborators
// are.
type Simulator struct {
	xs     CrossSections
	source SourceModel
	opts   options
}

func NewSimulator(xs CrossSections, source SourceModel, opts ...Option) *Simulator {
	return &Simulator{xs: xs, source: source, opts: newOptions(opts)}
}

// Logger returns the logger the simulator was built with.
func (s *Simulator) Logger() logr.Logger {
	return s.opts.logger
}

// spectralBase is everything upstream of the sample: it depends on the
// grid, tube, filter and detector but not on sample thickness.
type spectralBase struct {
	grid             EnergyGrid
	coeff            *layerCoefficients
	source           []float64
	filtered         []float64
	detectorAbs      []float64
	filteredDetected []float64
}

func (s *Simulator) prepare(ctx context.Context, grid EnergyGrid, src Source, filter, sample, detector Material) (*spectralBase, error) {
	top := grid.MeV(0)
	if err := probeFormulas(s.xs, top, map[string]Material{
		"filter": filter, "sample": sample, "detector": detector,
	}); err != nil {
		return nil, err
	}
	if _, err := s.source.Intensity(src.KV, src.MA, src.Target, top); err != nil {
		return nil, &StageError{Stage: "source", Err: formulaErr(src.Target, err)}
	}

	coeff, err := lookupCoefficients(s.xs, grid, filter, sample, detector)
	if err != nil {
		return nil, err
	}

	n := grid.Len()
	b := &spectralBase{
		grid:             grid,
		coeff:            coeff,
		source:           make([]float64, n),
		filtered:         make([]float64, n),
		detectorAbs:      make([]float64, n),
		filteredDetected: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		intensity, err := s.source.Intensity(src.KV, src.MA, src.Target, grid.MeV(i))
		if err != nil {
			return nil, &StageError{Stage: "source", EnergyKeV: grid.At(i), Err: err}
		}
		if intensity < 0 || math.IsNaN(intensity) || math.IsInf(intensity, 0) {
			return nil, &StageError{Stage: "source", EnergyKeV: grid.At(i), Err: invalidParam("source intensity %g", intensity)}
		}
		b.source[i] = intensity
		b.filtered[i] = intensity * Transmission(OpticalDepth(coeff.filter[i], filter))
		b.detectorAbs[i] = Absorption(OpticalDepth(coeff.detector[i], detector))
		b.filteredDetected[i] = b.filtered[i] * b.detectorAbs[i]
	}
	return b, nil
}

// sampleDetected returns the bin value behind a sample of the given
// thickness, ordered the same way as filteredDetected so that a zero
// thickness reproduces it exactly.
func (b *spectralBase) sampleDetected(i int, sample Material, thicknessCM float64) (transmitted, detected float64) {
	t := Transmission(b.coeff.sample[i] * thicknessCM * sample.Density)
	transmitted = b.filtered[i] * t
	return transmitted, transmitted * b.detectorAbs[i]
}

// Simulate evaluates the full pipeline for one request and integrates it.
func (s *Simulator) Simulate(ctx context.Context, req Request) (*PipelineState, IntegratedTotals, error) {
	if err := req.Validate(); err != nil {
		return nil, IntegratedTotals{}, err
	}
	base, err := s.prepare(ctx, req.Grid, req.Source, req.Filter, req.Sample, req.Detector)
	if err != nil {
		return nil, IntegratedTotals{}, err
	}

	n := req.Grid.Len()
	state := &PipelineState{
		EnergyKeV:         req.Grid.Energies(),
		Source:            base.source,
		Filtered:          base.filtered,
		FilteredDetected:  base.filteredDetected,
		SampleTransmitted: make([]float64, n),
		ThinTransmitted:   make([]float64, n),
		SampleDetected:    make([]float64, n),
		ThinDetected:      make([]float64, n),
	}
	nominal := req.Sample.ThicknessCM
	thin := nominal * ThinFactor
	for i := 0; i < n; i++ {
		state.SampleTransmitted[i], state.SampleDetected[i] = base.sampleDetected(i, req.Sample, nominal)
		state.ThinTransmitted[i], state.ThinDetected[i] = base.sampleDetected(i, req.Sample, thin)
	}

	totals := IntegrateState(state, req.Grid.Increment())
	s.opts.logger.V(logging.DEBUG).Info("spectrum simulated",
		"grid", req.Grid.String(),
		"source", totals.Source,
		"filteredDetected", totals.FilteredDetected,
		"sampleDetected", totals.SampleDetected,
		"thinDetected", totals.ThinDetected)
	return state, totals, nil
}
