package xray

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/beamhard/internal/logging"
)

// DefaultSweepStepCM is the usual thickness increment for a sweep.
const DefaultSweepStepCM = 0.1

const maxSweepSteps = 1_000_000

// SweepRequest describes an attenuation-versus-thickness sweep. The
// sample thickness is ignored; thicknesses run 0, step, ... up to
// MaxThicknessCM inclusive.
type SweepRequest struct {
	Grid           EnergyGrid
	Source         Source
	Filter         Material
	Sample         Material
	Detector       Material
	StepCM         float64
	MaxThicknessCM float64
}

// Base returns the simulation request the sweep is built on, with the
// sample at its configured thickness.
func (r SweepRequest) Base() Request {
	return Request{Grid: r.Grid, Source: r.Source, Filter: r.Filter, Sample: r.Sample, Detector: r.Detector}
}

func (r SweepRequest) Validate() error {
	req := r.Base()
	req.Sample = req.Sample.WithThickness(0)
	if err := req.Validate(); err != nil {
		return err
	}
	if !(r.StepCM > 0) || math.IsInf(r.StepCM, 0) {
		return invalidParam("sweep step must be > 0, got %g", r.StepCM)
	}
	if r.MaxThicknessCM < 0 || math.IsNaN(r.MaxThicknessCM) || math.IsInf(r.MaxThicknessCM, 0) {
		return invalidParam("max thickness must be >= 0, got %g", r.MaxThicknessCM)
	}
	if r.MaxThicknessCM/r.StepCM > maxSweepSteps {
		return invalidParam("sweep of %g cm in %g cm steps exceeds %d steps", r.MaxThicknessCM, r.StepCM, maxSweepSteps)
	}
	return nil
}

// Steps returns the number of thickness points the sweep produces.
func (r SweepRequest) Steps() int {
	return int(math.Floor(r.MaxThicknessCM/r.StepCM+gridTolerance)) + 1
}

// SweepPoint is one thickness of a sweep.
type SweepPoint struct {
	ThicknessCM float64 `json:"thickness_cm"`
	Attenuation float64 `json:"attenuation"`
	// Degenerate marks a step whose detected total was not positive; its
	// attenuation is undefined and left at zero.
	Degenerate bool `json:"degenerate,omitempty"`
}

// ThicknessCurve is the sweep result ordered by thickness.
type ThicknessCurve struct {
	Points           []SweepPoint `json:"points"`
	FilteredDetected float64      `json:"filtered_detected"`
}

func (c *ThicknessCurve) Thicknesses() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.ThicknessCM
	}
	return out
}

func (c *ThicknessCurve) Attenuations() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Attenuation
	}
	return out
}

// DegenerateCount returns how many points were flagged degenerate.
func (c *ThicknessCurve) DegenerateCount() int {
	n := 0
	for _, p := range c.Points {
		if p.Degenerate {
			n++
		}
	}
	return n
}

// Sweep computes attenuation −ln(I(t)/I0) for every thickness. Spectra and
// coefficients upstream of the sample are evaluated once; each step only
// recomputes the sample transmission. Steps run concurrently and the
// result is identical to a sequential run.
func (s *Simulator) Sweep(ctx context.Context, req SweepRequest) (*ThicknessCurve, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	base, err := s.prepare(ctx, req.Grid, req.Source, req.Filter, req.Sample, req.Detector)
	if err != nil {
		return nil, err
	}

	inc := req.Grid.Increment()
	i0 := Integrate(base.filteredDetected, inc)
	curve := &ThicknessCurve{
		Points:           make([]SweepPoint, req.Steps()),
		FilteredDetected: i0,
	}
	step := req.StepCM

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for k := range curve.Points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := float64(k) * step
			detected := 0.0
			for i := 0; i < req.Grid.Len(); i++ {
				_, d := base.sampleDetected(i, req.Sample, t)
				detected += d * inc
			}
			p := SweepPoint{ThicknessCM: t}
			if i0 <= 0 || detected <= 0 {
				p.Degenerate = true
				s.opts.logger.V(logging.DEBUG).Info("degenerate sweep step", "thicknessCM", t, "detected", detected, "filteredDetected", i0)
			} else {
				p.Attenuation = math.Max(0, -math.Log(detected/i0))
			}
			curve.Points[k] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.opts.logger.V(logging.DEBUG).Info("sweep complete",
		"steps", len(curve.Points),
		"maxThicknessCM", req.MaxThicknessCM,
		"degenerate", curve.DegenerateCount())
	return curve, nil
}
