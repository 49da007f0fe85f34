// Package experiment runs scenarios end to end: spectrum, effective
// energies, thickness sweeps and direct energy lookups.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/beamhard/internal/analysis"
	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/logging"
	"github.com/san-kum/beamhard/internal/metrics"
	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/xray"
)

type Config struct {
	Workers  int
	Logger   logr.Logger
	Recorder *metrics.Recorder
	// PointsPerDecade sets the inversion table density; 0 keeps the default.
	PointsPerDecade int
}

// Experiment owns one physics provider shared by every run.
type Experiment struct {
	calc      *physics.Calculator
	inv       *physics.Inverter
	simulator *xray.Simulator
	solver    *xray.Solver
	recorder  *metrics.Recorder
	logger    logr.Logger
}

func New(cfg Config) *Experiment {
	logger := cfg.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	opts := []xray.Option{xray.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, xray.WithWorkers(cfg.Workers))
	}

	calc := physics.NewCalculator()
	var invOpts []physics.InverterOption
	if cfg.PointsPerDecade > 0 {
		invOpts = append(invOpts, physics.WithPointsPerDecade(cfg.PointsPerDecade))
	}
	inv := physics.NewInverter(calc, invOpts...)

	return &Experiment{
		calc:      calc,
		inv:       inv,
		simulator: xray.NewSimulator(calc, physics.Kramers{}, opts...),
		solver:    xray.NewSolver(inv, opts...),
		recorder:  cfg.Recorder,
		logger:    logger,
	}
}

func (e *Experiment) Calculator() *physics.Calculator { return e.calc }
func (e *Experiment) Inverter() *physics.Inverter     { return e.inv }

// Estimate is the outcome of one simulate run.
type Estimate struct {
	Request  xray.Request
	State    *xray.PipelineState
	Totals   xray.IntegratedTotals
	Result   *xray.EffectiveEnergyResult
	Spectrum analysis.SpectrumSummary
	Elapsed  time.Duration
}

// Run simulates the scenario and solves both paths.
func (e *Experiment) Run(ctx context.Context, sc *config.Scenario) (*Estimate, error) {
	req, err := sc.Request()
	if err != nil {
		return nil, err
	}
	return e.RunRequest(ctx, req)
}

func (e *Experiment) RunRequest(ctx context.Context, req xray.Request) (*Estimate, error) {
	start := time.Now()
	state, totals, err := e.simulator.Simulate(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := e.solver.Solve(totals, req.Sample)
	if err != nil {
		return nil, err
	}

	est := &Estimate{
		Request:  req,
		State:    state,
		Totals:   totals,
		Result:   res,
		Spectrum: analysis.SummarizeSpectrum(state),
		Elapsed:  time.Since(start),
	}
	if e.recorder != nil {
		e.recorder.ObserveSimulation(est.Elapsed, res)
	}
	return est, nil
}

// SweepOutcome is a thickness sweep with its curvature analysis. Curvature
// is nil when too few usable points were produced.
type SweepOutcome struct {
	Request   xray.SweepRequest
	Curve     *xray.ThicknessCurve
	Curvature *analysis.Curvature
	Elapsed   time.Duration
}

func (e *Experiment) Sweep(ctx context.Context, sc *config.Scenario) (*SweepOutcome, error) {
	req, err := sc.SweepRequest()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	curve, err := e.simulator.Sweep(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &SweepOutcome{Request: req, Curve: curve, Elapsed: time.Since(start)}
	if c, err := analysis.AnalyzeCurve(curve); err == nil {
		out.Curvature = &c
	} else {
		e.logger.V(logging.DEBUG).Info("curvature analysis skipped", "reason", err.Error())
	}
	if e.recorder != nil {
		e.recorder.ObserveSweep(out.Elapsed, curve)
	}
	return out, nil
}

// Lookup returns the energies in keV at which formula at density has the
// linear attenuation muLin.
func (e *Experiment) Lookup(formula string, muLin, density float64, kind string) ([]float64, error) {
	start := time.Now()
	mev, err := e.inv.EnergiesForMuLin(formula, muLin, density, kind)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", formula, err)
	}
	if e.recorder != nil {
		e.recorder.ObserveLookup(metrics.KindSolve, time.Since(start), len(mev))
	}
	return toKeV(mev), nil
}

// LookupRatio returns the energies in keV at which the ratio of the two
// materials' linear attenuations equals mu1/mu2.
func (e *Experiment) LookupRatio(formula1 string, mu1, density1 float64, formula2 string, mu2, density2 float64, kind string) ([]float64, error) {
	start := time.Now()
	mev, err := e.inv.EnergiesForMuLinRatio(formula1, mu1, density1, formula2, mu2, density2, kind)
	if err != nil {
		return nil, fmt.Errorf("ratio lookup %s/%s: %w", formula1, formula2, err)
	}
	if e.recorder != nil {
		e.recorder.ObserveLookup(metrics.KindSolveRatio, time.Since(start), len(mev))
	}
	return toKeV(mev), nil
}

func toKeV(mev []float64) []float64 {
	if mev == nil {
		return nil
	}
	out := make([]float64, len(mev))
	for i, v := range mev {
		out[i] = v * 1000
	}
	return out
}

// Coefficient is μ/ρ for one cross-section kind.
type Coefficient struct {
	Kind      string
	MuMass    float64
	MuLinear  float64
	Transmits float64
}

// Calculate evaluates every cross-section kind of a formula at energyKeV.
// MuLinear and Transmits are filled when density and thickness are given.
func (e *Experiment) Calculate(formula string, energyKeV, density, thicknessCM float64) ([]Coefficient, []physics.Edge, error) {
	f, err := e.calc.Formula(formula)
	if err != nil {
		return nil, nil, err
	}
	kinds := physics.Kinds()
	out := make([]Coefficient, 0, len(kinds))
	for _, kind := range kinds {
		mu, err := e.calc.FormulaMuMass(f, energyKeV/1000, kind)
		if err != nil {
			return nil, nil, err
		}
		c := Coefficient{Kind: kind, MuMass: mu}
		if density > 0 {
			c.MuLinear = mu * density
			if thicknessCM > 0 {
				c.Transmits = xray.Transmission(c.MuLinear * thicknessCM)
			}
		}
		out = append(out, c)
	}
	return out, f.Edges(), nil
}
