package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/beamhard/internal/xray"
)

// ErrTooFewPoints indicates a curve too short to characterise.
var ErrTooFewPoints = errors.New("analysis: need at least three usable points")

// Curvature characterises how far an attenuation-versus-thickness curve
// departs from the straight line a monochromatic beam would give.
type Curvature struct {
	// Slope is the least-squares slope through the origin, cm⁻¹.
	Slope    float64
	RSquared float64
	// MaxDeviation is the largest |attenuation − Slope·t|.
	MaxDeviation float64
	InitialSlope float64
	ChordSlope   float64
	// HardeningRatio is ChordSlope/InitialSlope; below 1 the beam hardens.
	HardeningRatio       float64
	MeanSecondDifference float64
	Concave              bool
}

// AnalyzeCurve fits the points of a sweep, skipping degenerate steps.
func AnalyzeCurve(curve *xray.ThicknessCurve) (Curvature, error) {
	var x, y []float64
	for _, p := range curve.Points {
		if p.Degenerate {
			continue
		}
		x = append(x, p.ThicknessCM)
		y = append(y, p.Attenuation)
	}
	return Analyze(x, y)
}

// Analyze fits attenuation y against thickness x. x must start at 0 and
// be evenly spaced for the second differences to be meaningful.
func Analyze(x, y []float64) (Curvature, error) {
	if len(x) != len(y) {
		return Curvature{}, fmt.Errorf("analysis: %d thicknesses but %d attenuations", len(x), len(y))
	}
	if len(x) < 3 {
		return Curvature{}, ErrTooFewPoints
	}

	var c Curvature
	_, c.Slope = stat.LinearRegression(x, y, nil, true)
	c.RSquared = stat.RSquared(x, y, nil, 0, c.Slope)

	dev := make([]float64, len(x))
	floats.AddScaledTo(dev, y, -c.Slope, x)
	c.MaxDeviation = floats.Norm(dev, math.Inf(1))

	if x[1] > x[0] {
		c.InitialSlope = (y[1] - y[0]) / (x[1] - x[0])
	}
	last := len(x) - 1
	if x[last] > x[0] {
		c.ChordSlope = (y[last] - y[0]) / (x[last] - x[0])
	}
	if c.InitialSlope > 0 {
		c.HardeningRatio = c.ChordSlope / c.InitialSlope
	}

	d2 := make([]float64, 0, len(y)-2)
	c.Concave = true
	for i := 1; i < last; i++ {
		d := y[i+1] - 2*y[i] + y[i-1]
		d2 = append(d2, d)
		if d >= 0 {
			c.Concave = false
		}
	}
	c.MeanSecondDifference = stat.Mean(d2, nil)
	return c, nil
}

// HalfValueLayers returns the first and second half-value layers of the
// curve, in cm, by linear interpolation of attenuation. The homogeneity
// coefficient hvl1/hvl2 is 1 for a monochromatic beam and drops as the
// beam hardens. Zero means the curve never reached that attenuation.
func HalfValueLayers(curve *xray.ThicknessCurve) (hvl1, hvl2, homogeneity float64) {
	t1 := thicknessAt(curve, math.Ln2)
	t2 := thicknessAt(curve, 2*math.Ln2)
	if t1 > 0 {
		hvl1 = t1
	}
	if t2 > 0 && t1 > 0 {
		hvl2 = t2 - t1
		homogeneity = hvl1 / hvl2
	}
	return hvl1, hvl2, homogeneity
}

func thicknessAt(curve *xray.ThicknessCurve, target float64) float64 {
	for i := 1; i < len(curve.Points); i++ {
		a, b := curve.Points[i-1], curve.Points[i]
		if a.Degenerate || b.Degenerate {
			continue
		}
		if a.Attenuation <= target && b.Attenuation >= target && b.Attenuation > a.Attenuation {
			frac := (target - a.Attenuation) / (b.Attenuation - a.Attenuation)
			return a.ThicknessCM + frac*(b.ThicknessCM-a.ThicknessCM)
		}
	}
	return 0
}
