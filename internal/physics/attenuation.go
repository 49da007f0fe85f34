package physics

import (
	"fmt"
	"math"
	"sync"
)

// Cross-section kinds accepted by [Calculator.MuMass].
const (
	TotAttn   = "TotAttn"
	PhotoEl   = "PhotoEl"
	CohScat   = "CohScat"
	IncohScat = "IncohScat"
	PairProd  = "PairProd"
	TotNoCoh  = "TotNoCoh"
)

// Supported energy range of the model, in keV.
const (
	MinEnergyKeV = 1.0
	MaxEnergyKeV = 1e8
)

const (
	avogadro        = 6.02214076e23
	electronRestKeV = 510.99895
	electronRadius2 = 7.9407877e-26 // r_e^2, cm^2
	alphaRe2        = 5.7946e-28    // fine structure constant times r_e^2, cm^2

	photoCoefficient = 4.51e-23 // cm^2 keV^3 per atom, scaled by Z^4
	cohCoefficient   = 9.2e-24  // cm^2 keV^2 per atom, scaled by Z^2.5
	lJumpRatio       = 3.0
)

// Kinds returns every supported cross-section kind.
func Kinds() []string {
	return []string{TotAttn, PhotoEl, CohScat, IncohScat, PairProd, TotNoCoh}
}

// Calculator evaluates mass attenuation coefficients from a parametric
// model: Z^4/E^3 photoabsorption with K and L3 jumps, Klein-Nishina
// incoherent scattering, a Z^2.5/E^2 coherent term and Bethe-Heitler pair
// production. It is safe for concurrent use.
type Calculator struct {
	formulas sync.Map // string -> *Formula
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Formula parses text once and caches the result.
func (c *Calculator) Formula(text string) (*Formula, error) {
	if f, ok := c.formulas.Load(text); ok {
		return f.(*Formula), nil
	}
	f, err := ParseFormula(text)
	if err != nil {
		return nil, err
	}
	c.formulas.Store(text, f)
	return f, nil
}

// MuMass returns μ/ρ in cm²/g for a formula at energyMeV.
func (c *Calculator) MuMass(formula string, energyMeV float64, kind string) (float64, error) {
	f, err := c.Formula(formula)
	if err != nil {
		return 0, err
	}
	return c.FormulaMuMass(f, energyMeV, kind)
}

// FormulaMuMass applies the mixture rule over mass fractions.
func (c *Calculator) FormulaMuMass(f *Formula, energyMeV float64, kind string) (float64, error) {
	keV := energyMeV * 1000
	if math.IsNaN(keV) || keV < MinEnergyKeV || keV > MaxEnergyKeV {
		return 0, fmt.Errorf("%w: %g keV", ErrEnergyRange, keV)
	}
	total := 0.0
	for _, comp := range f.Components {
		mu, err := elementMuMass(comp.Element, keV, kind)
		if err != nil {
			return 0, err
		}
		total += comp.MassFraction * mu
	}
	return total, nil
}

// Density returns the tabulated density of a single-element formula.
func (c *Calculator) Density(formula string) (float64, error) {
	f, err := c.Formula(formula)
	if err != nil {
		return 0, err
	}
	if !f.IsElement() {
		return 0, &FormulaError{Formula: formula, Reason: "density is only tabulated for single elements"}
	}
	return f.Components[0].Element.Density, nil
}

func elementMuMass(el Element, keV float64, kind string) (float64, error) {
	var sigma float64
	switch kind {
	case TotAttn:
		sigma = photoelectric(el, keV) + coherent(el, keV) + incoherent(el, keV) + pair(el, keV)
	case TotNoCoh:
		sigma = photoelectric(el, keV) + incoherent(el, keV) + pair(el, keV)
	case PhotoEl:
		sigma = photoelectric(el, keV)
	case CohScat:
		sigma = coherent(el, keV)
	case IncohScat:
		sigma = incoherent(el, keV)
	case PairProd:
		sigma = pair(el, keV)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return sigma * avogadro / el.AtomicWeight, nil
}

// photoelectric returns the per-atom cross-section in cm².
func photoelectric(el Element, keV float64) float64 {
	z := float64(el.Z)
	sigma := photoCoefficient * math.Pow(z, 4) / (keV * keV * keV)
	if keV < el.KEdge {
		sigma /= kJumpRatio(el.Z)
		if el.L3Edge > 0 && keV < el.L3Edge {
			sigma /= lJumpRatio
		}
	}
	return sigma
}

func kJumpRatio(z int) float64 {
	return 125.0/float64(z) + 3.5
}

func coherent(el Element, keV float64) float64 {
	return cohCoefficient * math.Pow(float64(el.Z), 2.5) / (keV * keV)
}

func incoherent(el Element, keV float64) float64 {
	return float64(el.Z) * kleinNishina(keV/electronRestKeV)
}

func pair(el Element, keV float64) float64 {
	k := keV / electronRestKeV
	if k <= 2 {
		return 0
	}
	z := float64(el.Z)
	sigma := alphaRe2 * z * (z + 1) * (28.0/9.0*math.Log(2*k) - 218.0/27.0)
	return math.Max(0, sigma)
}

// kleinNishina is the total Compton cross-section per electron for a photon
// of energy k in units of the electron rest energy.
func kleinNishina(k float64) float64 {
	thomson := 8.0 / 3.0 * math.Pi * electronRadius2
	if k < 1e-3 {
		return thomson * (1 - 2*k + 26.0/5.0*k*k)
	}
	l := math.Log(1 + 2*k)
	a := (1 + k) / (k * k) * (2*(1+k)/(1+2*k) - l/k)
	b := l / (2 * k)
	d := (1 + 3*k) / ((1 + 2*k) * (1 + 2*k))
	return 2 * math.Pi * electronRadius2 * (a + b - d)
}
