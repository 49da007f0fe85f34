package physics

import (
	"math"
	"sort"
	"testing"
)

func TestEnergiesForMuLin_RoundTrip(t *testing.T) {
	calc := NewCalculator()
	inv := NewInverter(calc)
	const density = 2.71

	for _, keV := range []float64{20, 45, 60, 100, 150} {
		mu, err := calc.MuMass("Ca:1:C:1:O:3", keV/1000, TotAttn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		energies, err := inv.EnergiesForMuLin("Ca:1:C:1:O:3", mu*density, density, TotAttn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(energies) != 1 {
			t.Fatalf("%g keV: expected one candidate, got %v", keV, energies)
		}
		if got := energies[0] * 1000; math.Abs(got-keV)/keV > 0.005 {
			t.Errorf("expected %g keV, got %g", keV, got)
		}
	}
}

func TestEnergiesForMuLin_AcrossEdge(t *testing.T) {
	inv := NewInverter(nil)
	energies, err := inv.EnergiesForMuLin("Cu", 100*8.96, 8.96, TotAttn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(energies) != 3 {
		t.Fatalf("expected three candidates around the K edge, got %v", energies)
	}
	if !sort.Float64sAreSorted(energies) {
		t.Errorf("candidates not ascending: %v", energies)
	}
	if edge := energies[1] * 1000; math.Abs(edge-8.979) > 1e-3 {
		t.Errorf("expected middle candidate at the K edge, got %g keV", edge)
	}
}

func TestEnergiesForMuLin_NoSolution(t *testing.T) {
	inv := NewInverter(nil)
	for _, mu := range []float64{0, -1, 1e-9, math.NaN()} {
		energies, err := inv.EnergiesForMuLin("Ca:1:C:1:O:3", mu, 2.71, TotAttn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(energies) != 0 {
			t.Errorf("muLin %g: expected no candidates, got %v", mu, energies)
		}
	}
}

func TestEnergiesForMuLin_BadInput(t *testing.T) {
	inv := NewInverter(nil)
	if _, err := inv.EnergiesForMuLin("Ca:1:", 0.5, 2.71, TotAttn); err == nil {
		t.Error("expected error for malformed formula")
	}
	if _, err := inv.EnergiesForMuLin("Cu", 0.5, 0, TotAttn); err == nil {
		t.Error("expected error for zero density")
	}
}

func TestEnergiesForMuLinRatio(t *testing.T) {
	calc := NewCalculator()
	inv := NewInverter(calc, WithPointsPerDecade(100))
	cu, _ := calc.MuMass("Cu", 0.06, TotAttn)
	al, _ := calc.MuMass("Al", 0.06, TotAttn)

	energies, err := inv.EnergiesForMuLinRatio("Cu", cu*8.96, 8.96, "Al", al*2.699, 2.699, TotAttn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, e := range energies {
		if math.Abs(e*1000-60) < 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a candidate near 60 keV, got %v", energies)
	}
}
