package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/beamhard/internal/xray"
)

func curveOf(f func(float64) float64, n int, step float64) *xray.ThicknessCurve {
	c := &xray.ThicknessCurve{}
	for i := 0; i < n; i++ {
		t := float64(i) * step
		c.Points = append(c.Points, xray.SweepPoint{ThicknessCM: t, Attenuation: f(t)})
	}
	return c
}

func TestAnalyze_Linear(t *testing.T) {
	c, err := AnalyzeCurve(curveOf(func(t float64) float64 { return 0.5 * t }, 11, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(c.Slope-0.5) > 1e-12 {
		t.Errorf("expected slope 0.5, got %g", c.Slope)
	}
	if math.Abs(c.RSquared-1) > 1e-12 {
		t.Errorf("expected R² 1, got %g", c.RSquared)
	}
	if c.MaxDeviation > 1e-12 {
		t.Errorf("expected no deviation, got %g", c.MaxDeviation)
	}
	if math.Abs(c.HardeningRatio-1) > 1e-9 {
		t.Errorf("expected hardening ratio 1, got %g", c.HardeningRatio)
	}
}

func TestAnalyze_Concave(t *testing.T) {
	// −ln of a two-energy mixture is concave in thickness.
	f := func(t float64) float64 { return -math.Log(0.5*math.Exp(-0.8*t) + 0.5*math.Exp(-0.2*t)) }
	c, err := AnalyzeCurve(curveOf(f, 31, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Concave {
		t.Error("expected concave curve")
	}
	if c.MeanSecondDifference >= 0 {
		t.Errorf("expected negative mean second difference, got %g", c.MeanSecondDifference)
	}
	if c.HardeningRatio >= 1 {
		t.Errorf("expected hardening ratio < 1, got %g", c.HardeningRatio)
	}
	if c.MaxDeviation <= 0 {
		t.Error("expected deviation from a straight line")
	}
}

func TestAnalyze_SkipsDegenerate(t *testing.T) {
	curve := curveOf(func(t float64) float64 { return t }, 5, 1)
	curve.Points[4].Degenerate = true
	curve.Points[4].Attenuation = 0

	c, err := AnalyzeCurve(curve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(c.Slope-1) > 1e-12 {
		t.Errorf("expected slope 1, got %g", c.Slope)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	if _, err := Analyze([]float64{0, 1}, []float64{0, 1}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := Analyze([]float64{0, 1, 2}, []float64{0, 1}); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestHalfValueLayers(t *testing.T) {
	mono := curveOf(func(t float64) float64 { return math.Ln2 * t }, 41, 0.1)
	hvl1, hvl2, h := HalfValueLayers(mono)
	if math.Abs(hvl1-1) > 1e-9 || math.Abs(hvl2-1) > 1e-9 || math.Abs(h-1) > 1e-9 {
		t.Errorf("expected 1, 1, 1 for monochromatic beam, got %g %g %g", hvl1, hvl2, h)
	}

	short := curveOf(func(t float64) float64 { return 0.01 * t }, 5, 0.1)
	if hvl1, _, _ := HalfValueLayers(short); hvl1 != 0 {
		t.Errorf("expected no HVL, got %g", hvl1)
	}
}

func TestMeanEnergy(t *testing.T) {
	if got := MeanEnergy([]float64{100, 50}, []float64{1, 3}); math.Abs(got-62.5) > 1e-12 {
		t.Errorf("expected 62.5, got %g", got)
	}
	if got := MeanEnergy([]float64{100}, []float64{0}); !math.IsNaN(got) {
		t.Errorf("expected NaN for zero weights, got %g", got)
	}
}

func TestSummarizeSpectrum(t *testing.T) {
	state := &xray.PipelineState{
		EnergyKeV:        []float64{100, 50},
		Source:           []float64{1, 1},
		Filtered:         []float64{1, 0.5},
		FilteredDetected: []float64{0.5, 0.5},
		SampleDetected:   []float64{0.4, 0.1},
		ThinDetected:     []float64{0.5, 0.5},
	}
	s := SummarizeSpectrum(state)
	if !(s.SampleDetectedMeanKeV > s.DetectedMeanKeV) {
		t.Errorf("expected the sample to raise the mean energy, got %+v", s)
	}
	if s.SourceMeanKeV != 75 {
		t.Errorf("expected 75 keV, got %g", s.SourceMeanKeV)
	}
}
