package xray

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testSweep(t *testing.T) SweepRequest {
	req := testRequest(mustGrid(t, 160, 10, 1))
	return SweepRequest{
		Grid:           req.Grid,
		Source:         req.Source,
		Filter:         req.Filter,
		Sample:         req.Sample,
		Detector:       req.Detector,
		StepCM:         0.1,
		MaxThicknessCM: 3,
	}
}

func TestSweep(t *testing.T) {
	curve, err := NewSimulator(testXS(), flatSource{level: 1}).Sweep(context.Background(), testSweep(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(curve.Points) != 31 {
		t.Fatalf("expected 31 points, got %d", len(curve.Points))
	}
	if curve.Points[0].ThicknessCM != 0 || curve.Points[0].Attenuation != 0 {
		t.Errorf("expected zero attenuation at zero thickness, got %+v", curve.Points[0])
	}
	for i := 1; i < len(curve.Points); i++ {
		prev, p := curve.Points[i-1], curve.Points[i]
		if p.ThicknessCM <= prev.ThicknessCM {
			t.Fatalf("thickness not increasing at %d", i)
		}
		if p.Attenuation <= prev.Attenuation {
			t.Fatalf("attenuation not increasing at %d: %g <= %g", i, p.Attenuation, prev.Attenuation)
		}
		if p.Degenerate {
			t.Errorf("unexpected degenerate step at %g cm", p.ThicknessCM)
		}
	}
}

func TestSweep_ConcurrencyIndependent(t *testing.T) {
	req := testSweep(t)
	serial, err := NewSimulator(testXS(), flatSource{level: 1}, WithWorkers(1)).Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := NewSimulator(testXS(), flatSource{level: 1}, WithWorkers(8)).Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("parallel sweep differs (-serial +parallel):\n%s", diff)
	}
}

func TestSweep_MatchesSimulate(t *testing.T) {
	req := testSweep(t)
	sim := NewSimulator(testXS(), flatSource{level: 1})
	curve, err := sim.Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := testRequest(req.Grid)
	r.Sample.ThicknessCM = 1
	_, totals, err := sim.Simulate(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curve.FilteredDetected != totals.FilteredDetected {
		t.Errorf("expected I0 %g, got %g", totals.FilteredDetected, curve.FilteredDetected)
	}
}

func TestSweep_DegenerateStep(t *testing.T) {
	xs := testXS()
	xs.scale["Pb"] = 1e6
	req := testSweep(t)
	req.Sample = Material{Formula: "Pb", Density: 11.35}
	req.MaxThicknessCM = 1

	curve, err := NewSimulator(xs, flatSource{level: 1}).Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curve.Points[0].Degenerate {
		t.Error("zero thickness should not be degenerate")
	}
	last := curve.Points[len(curve.Points)-1]
	if !last.Degenerate {
		t.Errorf("expected opaque step to be degenerate, got %+v", last)
	}
	if curve.DegenerateCount() != len(curve.Points)-1 {
		t.Errorf("expected %d degenerate steps, got %d", len(curve.Points)-1, curve.DegenerateCount())
	}
}

func TestSweep_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*SweepRequest)
		expected error
	}{
		{"zero step", func(r *SweepRequest) { r.StepCM = 0 }, ErrInvalidParameter},
		{"negative max", func(r *SweepRequest) { r.MaxThicknessCM = -1 }, ErrInvalidParameter},
		{"too many steps", func(r *SweepRequest) { r.StepCM = 1e-9 }, ErrInvalidParameter},
		{"bad sample", func(r *SweepRequest) { r.Sample.Formula = "Nope" }, ErrInvalidFormula},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testSweep(t)
			tt.mutate(&req)
			_, err := NewSimulator(testXS(), flatSource{level: 1}).Sweep(context.Background(), req)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestSweepRequest_Steps(t *testing.T) {
	tests := []struct {
		max, step float64
		expected  int
	}{
		{3, 0.1, 31},
		{0, 0.1, 1},
		{1, 0.3, 4},
		{0.7, 0.1, 8},
	}
	for _, tt := range tests {
		r := SweepRequest{MaxThicknessCM: tt.max, StepCM: tt.step}
		if got := r.Steps(); got != tt.expected {
			t.Errorf("max %g step %g: expected %d steps, got %d", tt.max, tt.step, tt.expected, got)
		}
	}
}
