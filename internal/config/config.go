package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/xray"
)

const (
	DefaultTarget      = "W"
	DefaultKV          = 160.0
	DefaultMA          = 100.0
	DefaultFilter      = "Cu"
	DefaultFilterCM    = 0.4
	DefaultSample      = "Ca:1:C:1:O:3"
	DefaultSampleCM    = 3.0
	DefaultSampleRho   = 2.71
	DefaultDetector    = "Cs:1:I:1"
	DefaultDetectorCM  = 0.01
	DefaultDetectorRho = 4.51
	DefaultFromKeV     = 10.0
	DefaultToKeV       = 160.0
	DefaultIncKeV      = 1.0
	DefaultSweepStepCM = xray.DefaultSweepStepCM
)

// Plot axes.
const (
	AxisKeV       = "kev"
	AxisAngstroms = "angstroms"
)

// Scenario is the YAML description of one beam-hardening setup.
type Scenario struct {
	Name        string        `yaml:"name,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Source      xray.Source   `yaml:"source"`
	Filter      xray.Material `yaml:"filter"`
	Sample      xray.Material `yaml:"sample"`
	Detector    xray.Material `yaml:"detector"`
	Energy      EnergyConfig  `yaml:"energy"`
	Sweep       SweepConfig   `yaml:"sweep"`
	Plot        PlotConfig    `yaml:"plot"`
}

// EnergyConfig sets the grid. With ToKeV unset the grid runs from the
// tube kV down to FromKeV.
type EnergyConfig struct {
	FromKeV float64 `yaml:"from_kev"`
	ToKeV   float64 `yaml:"to_kev"`
	IncKeV  float64 `yaml:"inc_kev"`
}

type SweepConfig struct {
	StepCM         float64 `yaml:"step_cm"`
	MaxThicknessCM float64 `yaml:"max_thickness_cm"`
}

type PlotConfig struct {
	Axis string `yaml:"axis"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:     "default",
		Source:   xray.Source{Target: DefaultTarget, KV: DefaultKV, MA: DefaultMA},
		Filter:   xray.Material{Formula: DefaultFilter, ThicknessCM: DefaultFilterCM},
		Sample:   xray.Material{Formula: DefaultSample, ThicknessCM: DefaultSampleCM, Density: DefaultSampleRho},
		Detector: xray.Material{Formula: DefaultDetector, ThicknessCM: DefaultDetectorCM, Density: DefaultDetectorRho},
		Energy:   EnergyConfig{FromKeV: DefaultFromKeV, ToKeV: DefaultToKeV, IncKeV: DefaultIncKeV},
		Sweep:    SweepConfig{StepCM: DefaultSweepStepCM, MaxThicknessCM: DefaultSampleCM},
		Plot:     PlotConfig{Axis: AxisKeV},
	}
}

// Load reads a scenario file over the defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a copy. Scenario holds only value fields, so the copy
// shares nothing with s.
func (s *Scenario) Clone() *Scenario {
	c := *s
	return &c
}

// Validate collects every problem with the scenario, using the checks and
// wording of the scan dialogs.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", xray.ErrInvalidParameter, fmt.Sprintf(format, args...)))
	}

	if _, ok := physics.LookupElement(s.Source.Target); !ok {
		errs = append(errs, fmt.Errorf("%w: tube target %q is not an element", xray.ErrInvalidFormula, s.Source.Target))
	}
	if s.Source.KV <= 0 {
		add("KV must be > 0")
	}
	if s.Source.MA <= 0 {
		add("mA must be > 0")
	}
	if s.Energy.IncKeV <= 0 {
		add("energy increment must be > 0")
	}
	if s.Energy.ToKeV == 0 && s.Source.KV <= s.Energy.FromKeV {
		add("KV must be greater than the minimum energy %g", s.Energy.FromKeV)
	}
	if s.Filter.ThicknessCM < 0 {
		add("filter thickness must be >= 0")
	}
	if s.Filter.Density < 0 {
		add("filter density must be >= 0")
	}
	if s.Sample.ThicknessCM < 0 {
		add("sample thickness must be >= 0")
	}
	if s.Sample.Density <= 0 {
		add("sample density must be > 0")
	}
	if s.Detector.ThicknessCM <= 0 {
		add("detector thickness must be > 0")
	}
	if s.Detector.Density <= 0 {
		add("detector density must be > 0")
	}
	if s.Sweep.StepCM < 0 || s.Sweep.MaxThicknessCM < 0 {
		add("sweep step and max thickness must be >= 0")
	}
	switch strings.ToLower(s.Plot.Axis) {
	case "", AxisKeV, AxisAngstroms:
	default:
		add("plot axis must be %q or %q", AxisKeV, AxisAngstroms)
	}
	for _, m := range []struct {
		role string
		f    string
	}{{"filter", s.Filter.Formula}, {"sample", s.Sample.Formula}, {"detector", s.Detector.Formula}} {
		if _, err := physics.ParseFormula(m.f); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", xray.ErrInvalidFormula, m.role, err))
		}
	}
	return errors.Join(errs...)
}

// Grid builds the energy grid.
func (s *Scenario) Grid() (xray.EnergyGrid, error) {
	if s.Energy.ToKeV == 0 {
		return xray.GridFromTube(s.Source.KV, s.Energy.FromKeV, s.Energy.IncKeV)
	}
	return xray.NewEnergyGrid(s.Energy.FromKeV, s.Energy.ToKeV, s.Energy.IncKeV)
}

// FilterMaterial resolves an unset filter density from the element table.
func (s *Scenario) FilterMaterial() (xray.Material, error) {
	f := s.Filter
	if f.Density > 0 {
		return f, nil
	}
	d, err := physics.ElementDensity(f.Formula)
	if err != nil {
		return f, fmt.Errorf("%w: filter density unset and %q has no tabulated density", xray.ErrInvalidFormula, f.Formula)
	}
	f.Density = d
	return f, nil
}

// Request builds the immutable simulation request.
func (s *Scenario) Request() (xray.Request, error) {
	if err := s.Validate(); err != nil {
		return xray.Request{}, err
	}
	grid, err := s.Grid()
	if err != nil {
		return xray.Request{}, err
	}
	filter, err := s.FilterMaterial()
	if err != nil {
		return xray.Request{}, err
	}
	return xray.Request{
		Grid:     grid,
		Source:   s.Source,
		Filter:   filter,
		Sample:   s.Sample,
		Detector: s.Detector,
	}, nil
}

// SweepRequest builds the thickness sweep request. A zero step uses the
// default and a zero maximum sweeps up to the sample thickness.
func (s *Scenario) SweepRequest() (xray.SweepRequest, error) {
	req, err := s.Request()
	if err != nil {
		return xray.SweepRequest{}, err
	}
	step := s.Sweep.StepCM
	if step == 0 {
		step = DefaultSweepStepCM
	}
	maxCM := s.Sweep.MaxThicknessCM
	if maxCM == 0 {
		maxCM = s.Sample.ThicknessCM
	}
	return xray.SweepRequest{
		Grid:           req.Grid,
		Source:         req.Source,
		Filter:         req.Filter,
		Sample:         req.Sample,
		Detector:       req.Detector,
		StepCM:         step,
		MaxThicknessCM: maxCM,
	}, nil
}

// UseAngstroms reports whether plots use a wavelength axis.
func (s *Scenario) UseAngstroms() bool {
	return strings.EqualFold(s.Plot.Axis, AxisAngstroms)
}
