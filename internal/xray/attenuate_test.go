package xray

import (
	"math"
	"testing"
)

func TestTransmission(t *testing.T) {
	tests := []struct {
		name string
		tau  float64
	}{
		{"zero", 0},
		{"thin", 1e-6},
		{"unit", 1},
		{"opaque", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transmission(tt.tau)
			if tr <= 0 || tr > 1 {
				t.Errorf("expected transmission in (0,1], got %g", tr)
			}
			if sum := tr + Absorption(tt.tau); math.Abs(sum-1) > 1e-12 {
				t.Errorf("transmission + absorption = %g, expected 1", sum)
			}
		})
	}
}

func TestOpticalDepth_ZeroLayer(t *testing.T) {
	layers := []Material{
		{Formula: "Cu", ThicknessCM: 0, Density: 8.96},
		{Formula: "Cu", ThicknessCM: 0.4, Density: 0},
	}
	for _, m := range layers {
		if tr := Transmission(OpticalDepth(3.7, m)); tr != 1 {
			t.Errorf("expected exact transmission 1 for %+v, got %g", m, tr)
		}
	}
}

func TestAbsorption_SmallDepth(t *testing.T) {
	tau := 1e-12
	if got := Absorption(tau); math.Abs(got-tau)/tau > 1e-6 {
		t.Errorf("expected absorption ≈ %g, got %g", tau, got)
	}
}
