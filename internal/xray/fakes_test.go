package xray

import (
	"errors"
	"math"
)

// unknownFormulaError is what the fakes return for a formula they do not
// know; it reports a formula fault like physics.FormulaError.
type unknownFormulaError struct{}

func (unknownFormulaError) Error() string      { return "unknown formula" }
func (unknownFormulaError) FormulaFault() bool { return true }

var (
	errUnknownFormula error = unknownFormulaError{}
	errBackend              = errors.New("table unavailable")
)

// powerLawXS gives every known formula μ/ρ = scale·(E/0.1 MeV)^-exp.
type powerLawXS struct {
	scale map[string]float64
	exp   float64
}

func (p powerLawXS) MuMass(formula string, energyMeV float64, kind string) (float64, error) {
	s, ok := p.scale[formula]
	if !ok {
		return 0, errUnknownFormula
	}
	return s * math.Pow(energyMeV/0.1, -p.exp), nil
}

// flatSource emits the same intensity below kv.
type flatSource struct {
	level float64
	err   error
}

func (f flatSource) Intensity(kv, ma float64, target string, energyMeV float64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if target != "W" {
		return 0, errUnknownFormula
	}
	if energyMeV*1000 >= kv {
		return 0, nil
	}
	return f.level * ma, nil
}

// scriptedInverter returns fixed candidates per call order.
type scriptedInverter struct {
	answers [][]float64
	err     error
	calls   []float64
}

func (s *scriptedInverter) EnergiesForMuLin(formula string, muLin, density float64, kind string) ([]float64, error) {
	s.calls = append(s.calls, muLin)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.answers) == 0 {
		return nil, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func testXS() powerLawXS {
	return powerLawXS{
		scale: map[string]float64{"Cu": 0.5, "Ca:1:C:1:O:3": 0.2, "Cs:1:I:1": 5},
		exp:   2,
	}
}

func testRequest(grid EnergyGrid) Request {
	return Request{
		Grid:     grid,
		Source:   Source{Target: "W", KV: 160, MA: 100},
		Filter:   Material{Formula: "Cu", ThicknessCM: 0.1, Density: 8.96},
		Sample:   Material{Formula: "Ca:1:C:1:O:3", ThicknessCM: 3, Density: 2.71},
		Detector: Material{Formula: "Cs:1:I:1", ThicknessCM: 0.01, Density: 4.51},
	}
}
