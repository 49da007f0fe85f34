package xray

import (
	"math"
	"testing"
)

func TestIntegrate(t *testing.T) {
	values := []float64{4, 3, 2, 1}
	if got := Integrate(values, 0.5); got != 5 {
		t.Errorf("expected 5, got %g", got)
	}
	if got := Integrate(nil, 1); got != 0 {
		t.Errorf("expected 0 for empty spectrum, got %g", got)
	}
}

func TestIntegrate_Linear(t *testing.T) {
	values := []float64{0.1, 7.3, 2.25, 9.5, 1e-3}
	doubled := make([]float64, len(values))
	for i, v := range values {
		doubled[i] = 2 * v
	}
	a := Integrate(values, 0.7)
	b := Integrate(doubled, 0.7)
	if math.Abs(b-2*a) > 1e-12*a {
		t.Errorf("expected doubled total %g, got %g", 2*a, b)
	}
}
