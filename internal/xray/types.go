package xray

import (
	"fmt"
	"math"
	"strings"
)

// ThinFactor scales the sample thickness for the thin reference path.
const ThinFactor = 0.001

// TotalAttenuation is the cross-section kind used throughout the pipeline.
const TotalAttenuation = "TotAttn"

// CrossSections looks up mass attenuation coefficients (cm²/g).
type CrossSections interface {
	MuMass(formula string, energyMeV float64, kind string) (float64, error)
}

// SourceModel evaluates the tube spectrum at one energy.
type SourceModel interface {
	Intensity(kv, ma float64, target string, energyMeV float64) (float64, error)
}

// EnergyInverter finds the energies (MeV) at which a material has a given
// linear attenuation. An empty result means no solution.
type EnergyInverter interface {
	EnergiesForMuLin(formula string, muLin, density float64, kind string) ([]float64, error)
}

// Material is a layer in the beam path: filter, sample or detector.
type Material struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Formula     string  `json:"formula" yaml:"formula"`
	ThicknessCM float64 `json:"thickness_cm" yaml:"thickness_cm"`
	Density     float64 `json:"density" yaml:"density"`
}

// Validate checks the invariants shared by every role. The role names the
// layer in error messages.
func (m Material) Validate(role string) error {
	if strings.TrimSpace(m.Formula) == "" {
		return fmt.Errorf("%w: %s formula is empty", ErrInvalidFormula, role)
	}
	if m.ThicknessCM < 0 || math.IsNaN(m.ThicknessCM) || math.IsInf(m.ThicknessCM, 0) {
		return invalidParam("%s thickness must be >= 0, got %g", role, m.ThicknessCM)
	}
	if !(m.Density > 0) || math.IsInf(m.Density, 0) {
		return invalidParam("%s density must be > 0, got %g", role, m.Density)
	}
	return nil
}

// WithThickness returns a copy of m at a different thickness.
func (m Material) WithThickness(cm float64) Material {
	m.ThicknessCM = cm
	return m
}

// Label is the display name, falling back to the formula.
func (m Material) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Formula
}

// Source describes an X-ray tube.
type Source struct {
	Target string  `json:"target" yaml:"target"`
	KV     float64 `json:"kv" yaml:"kv"`
	MA     float64 `json:"ma" yaml:"ma"`
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Target) == "" {
		return fmt.Errorf("%w: tube target is empty", ErrInvalidFormula)
	}
	if !(s.KV > 0) {
		return invalidParam("kV must be > 0, got %g", s.KV)
	}
	if !(s.MA > 0) {
		return invalidParam("mA must be > 0, got %g", s.MA)
	}
	return nil
}

// Request is one spectrum simulation.
type Request struct {
	Grid     EnergyGrid
	Source   Source
	Filter   Material
	Sample   Material
	Detector Material
}

func (r Request) Validate() error {
	if r.Grid.IsZero() {
		return invalidParam("energy grid is empty")
	}
	if err := r.Source.Validate(); err != nil {
		return err
	}
	if err := r.Filter.Validate("filter"); err != nil {
		return err
	}
	if err := r.Sample.Validate("sample"); err != nil {
		return err
	}
	if err := r.Detector.Validate("detector"); err != nil {
		return err
	}
	if r.Detector.ThicknessCM == 0 {
		return invalidParam("detector thickness must be > 0")
	}
	return nil
}

// PipelineState holds the per-bin spectra of one simulation, indexed like
// the energy grid.
type PipelineState struct {
	EnergyKeV []float64
	Source    []float64
	Filtered  []float64
	// FilteredDetected is the filtered spectrum times detector absorption (I0).
	FilteredDetected []float64
	// SampleTransmitted is the filtered spectrum after the nominal sample.
	SampleTransmitted []float64
	ThinTransmitted   []float64
	// SampleDetected is the nominal sample spectrum times detector absorption (I).
	SampleDetected []float64
	ThinDetected   []float64
}

// Len returns the number of bins.
func (p *PipelineState) Len() int {
	return len(p.EnergyKeV)
}

// IntegratedTotals are the spectra of a [PipelineState] summed over energy.
type IntegratedTotals struct {
	Source           float64 `json:"source"`
	Filtered         float64 `json:"filtered"`
	FilteredDetected float64 `json:"filtered_detected"`
	Sample           float64 `json:"sample"`
	SampleDetected   float64 `json:"sample_detected"`
	ThinDetected     float64 `json:"thin_detected"`
}

// FilterTransmission is the fraction of source photons passing the filter.
func (t IntegratedTotals) FilterTransmission() float64 {
	if t.Source <= 0 {
		return 0
	}
	return t.Filtered / t.Source
}

// DetectorAbsorption is the fraction of filtered photons the detector stops.
func (t IntegratedTotals) DetectorAbsorption() float64 {
	if t.Filtered <= 0 {
		return 0
	}
	return t.FilteredDetected / t.Filtered
}

// PhotonUsePercent is the share of source photons that end up detected
// without a sample.
func (t IntegratedTotals) PhotonUsePercent() float64 {
	return t.DetectorAbsorption() * t.FilterTransmission() * 100
}
