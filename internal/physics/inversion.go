package physics

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// DefaultPointsPerDecade sets the density of the inversion table.
const DefaultPointsPerDecade = 200

type tablePoint struct {
	keV float64
	mu  float64
}

// Inverter recovers photon energies from attenuation coefficients by
// scanning a log-spaced μ/ρ table. Every crossing of the target value is
// a candidate, so energies on both sides of an absorption edge are found.
type Inverter struct {
	calc            *Calculator
	pointsPerDecade int
	tables          sync.Map // formula|kind -> []tablePoint
}

type InverterOption func(*Inverter)

func WithPointsPerDecade(n int) InverterOption {
	return func(inv *Inverter) {
		if n > 0 {
			inv.pointsPerDecade = n
		}
	}
}

func NewInverter(calc *Calculator, opts ...InverterOption) *Inverter {
	if calc == nil {
		calc = NewCalculator()
	}
	inv := &Inverter{calc: calc, pointsPerDecade: DefaultPointsPerDecade}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// EnergiesForMuLin returns the energies in MeV, ascending, at which the
// formula at density has linear attenuation muLin (cm⁻¹). No crossing
// yields a nil slice.
func (inv *Inverter) EnergiesForMuLin(formula string, muLin, density float64, kind string) ([]float64, error) {
	if density <= 0 || math.IsNaN(density) {
		return nil, fmt.Errorf("physics: density must be positive, got %g", density)
	}
	table, err := inv.table(formula, kind)
	if err != nil {
		return nil, err
	}
	target := muLin / density
	if !(target > 0) || math.IsInf(target, 0) {
		return nil, nil
	}
	values := make([]float64, len(table))
	for i, p := range table {
		values[i] = p.mu
	}
	return crossings(table, values, target), nil
}

// EnergiesForMuLinRatio returns the energies in MeV at which the ratio of
// linear attenuations μ1ρ1/(μ2ρ2) equals mu1/mu2.
func (inv *Inverter) EnergiesForMuLinRatio(formula1 string, mu1, density1 float64, formula2 string, mu2, density2 float64, kind string) ([]float64, error) {
	if density1 <= 0 || density2 <= 0 {
		return nil, fmt.Errorf("physics: densities must be positive, got %g and %g", density1, density2)
	}
	t1, err := inv.table(formula1, kind)
	if err != nil {
		return nil, err
	}
	t2, err := inv.table(formula2, kind)
	if err != nil {
		return nil, err
	}
	target := mu1 / mu2
	if !(target > 0) || math.IsInf(target, 0) {
		return nil, nil
	}

	// Both tables share the same grid apart from edge points, so resample
	// the second material on the first one's energies.
	merged := mergeEnergies(t1, t2)
	values := make([]float64, len(merged))
	for i, p := range merged {
		m1, err := inv.calc.MuMass(formula1, p.keV/1000, kind)
		if err != nil {
			return nil, err
		}
		m2, err := inv.calc.MuMass(formula2, p.keV/1000, kind)
		if err != nil {
			return nil, err
		}
		if m2 <= 0 {
			values[i] = math.Inf(1)
			continue
		}
		values[i] = m1 * density1 / (m2 * density2)
	}
	return crossings(merged, values, target), nil
}

func (inv *Inverter) table(formula, kind string) ([]tablePoint, error) {
	key := formula + "|" + kind
	if t, ok := inv.tables.Load(key); ok {
		return t.([]tablePoint), nil
	}
	f, err := inv.calc.Formula(formula)
	if err != nil {
		return nil, err
	}

	energies := logGrid(MinEnergyKeV, MaxEnergyKeV, inv.pointsPerDecade)
	for _, edge := range f.Edges() {
		// The point just below the edge carries the pre-jump value.
		energies = append(energies, edge.KeV*(1-1e-9), edge.KeV)
	}
	sort.Float64s(energies)

	table := make([]tablePoint, 0, len(energies))
	for _, e := range energies {
		if e < MinEnergyKeV || e > MaxEnergyKeV {
			continue
		}
		mu, err := inv.calc.FormulaMuMass(f, e/1000, kind)
		if err != nil {
			return nil, err
		}
		table = append(table, tablePoint{keV: e, mu: mu})
	}
	inv.tables.Store(key, table)
	return table, nil
}

func logGrid(lo, hi float64, perDecade int) []float64 {
	decades := math.Log10(hi / lo)
	n := int(math.Round(decades*float64(perDecade))) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo * math.Pow(10, float64(i)/float64(perDecade))
	}
	out[n-1] = hi
	return out
}

func mergeEnergies(a, b []tablePoint) []tablePoint {
	seen := make(map[float64]bool, len(a)+len(b))
	out := make([]tablePoint, 0, len(a)+len(b))
	for _, set := range [][]tablePoint{a, b} {
		for _, p := range set {
			if !seen[p.keV] {
				seen[p.keV] = true
				out = append(out, tablePoint{keV: p.keV})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].keV < out[j].keV })
	return out
}

// crossings returns every energy (MeV) where values crosses target,
// interpolating log-log between neighbouring table points.
func crossings(table []tablePoint, values []float64, target float64) []float64 {
	var out []float64
	if len(values) > 0 && values[0] == target {
		out = append(out, table[0].keV/1000)
	}
	for i := 1; i < len(values); i++ {
		a, b := values[i-1]-target, values[i]-target
		if b == 0 {
			out = append(out, table[i].keV/1000)
			continue
		}
		if a == 0 || (a < 0) == (b < 0) {
			continue
		}
		out = append(out, interpolate(table[i-1].keV, values[i-1], table[i].keV, values[i], target)/1000)
	}
	return out
}

func interpolate(e1, v1, e2, v2, target float64) float64 {
	if v1 <= 0 || v2 <= 0 || math.IsInf(v1, 0) || math.IsInf(v2, 0) || v1 == v2 {
		return e1
	}
	l1, l2 := math.Log(e1), math.Log(e2)
	frac := (math.Log(target) - math.Log(v1)) / (math.Log(v2) - math.Log(v1))
	return math.Exp(l1 + frac*(l2-l1))
}
