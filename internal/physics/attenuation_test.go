package physics

import (
	"errors"
	"math"
	"testing"
)

func TestMuMass_Reference(t *testing.T) {
	// Reference values are total attenuation with coherent scattering, cm²/g.
	tests := []struct {
		formula string
		keV     float64
		nist    float64
		tol     float64
	}{
		{"Cu", 60, 1.593, 0.12},
		{"W", 100, 4.438, 0.12},
		{"Fe", 50, 1.958, 0.12},
		{"Al", 100, 0.1704, 0.12},
		{"Pb", 10000, 0.04972, 0.12},
	}

	calc := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			mu, err := calc.MuMass(tt.formula, tt.keV/1000, TotAttn)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rel := math.Abs(mu-tt.nist) / tt.nist; rel > tt.tol {
				t.Errorf("expected %g ± %.0f%%, got %g", tt.nist, tt.tol*100, mu)
			}
		})
	}
}

func TestMuMass_Kinds(t *testing.T) {
	calc := NewCalculator()
	e := 0.08
	parts := map[string]float64{}
	for _, kind := range Kinds() {
		mu, err := calc.MuMass("Ca:1:C:1:O:3", e, kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if mu < 0 {
			t.Errorf("%s: negative coefficient %g", kind, mu)
		}
		parts[kind] = mu
	}

	sum := parts[PhotoEl] + parts[CohScat] + parts[IncohScat] + parts[PairProd]
	if math.Abs(sum-parts[TotAttn]) > 1e-12*sum {
		t.Errorf("components sum to %g, total is %g", sum, parts[TotAttn])
	}
	if math.Abs(parts[TotAttn]-parts[CohScat]-parts[TotNoCoh]) > 1e-12*sum {
		t.Errorf("total without coherent mismatch")
	}
	if parts[PairProd] != 0 {
		t.Errorf("expected no pair production at 80 keV, got %g", parts[PairProd])
	}
}

func TestMuMass_KEdgeJump(t *testing.T) {
	calc := NewCalculator()
	below, _ := calc.MuMass("W", 69.5/1000, PhotoEl)
	above, _ := calc.MuMass("W", 69.6/1000, PhotoEl)
	if above <= below*4 {
		t.Errorf("expected a K edge jump, got %g below and %g above", below, above)
	}
}

func TestMuMass_Errors(t *testing.T) {
	calc := NewCalculator()
	tests := []struct {
		name     string
		formula  string
		meV      float64
		kind     string
		expected error
	}{
		{"bad formula", "Ca:1:", 0.06, TotAttn, ErrBadFormula},
		{"too low", "Cu", 0.0005, TotAttn, ErrEnergyRange},
		{"too high", "Cu", 2e5, TotAttn, ErrEnergyRange},
		{"bad kind", "Cu", 0.06, "Rayleigh", ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.MuMass(tt.formula, tt.meV, tt.kind)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestKleinNishina_ThomsonLimit(t *testing.T) {
	thomson := 8.0 / 3.0 * math.Pi * electronRadius2
	if got := kleinNishina(1e-5); math.Abs(got-thomson)/thomson > 1e-4 {
		t.Errorf("expected Thomson limit %g, got %g", thomson, got)
	}
	// Both branches agree at the switch-over.
	lo, hi := kleinNishina(0.999e-3), kleinNishina(1.001e-3)
	if math.Abs(lo-hi)/lo > 1e-5 {
		t.Errorf("discontinuity at series switch: %g vs %g", lo, hi)
	}
}

func TestCalculatorDensity(t *testing.T) {
	calc := NewCalculator()
	if d, err := calc.Density("W"); err != nil || d != 19.3 {
		t.Errorf("expected 19.3, got %g (%v)", d, err)
	}
	if _, err := calc.Density("Cs:1:I:1"); !errors.Is(err, ErrBadFormula) {
		t.Errorf("expected ErrBadFormula for a compound, got %v", err)
	}
}
