package xray

import (
	"fmt"
	"math"
)

// Supported energy range in keV.
const (
	MinEnergyKeV = 1.0
	MaxEnergyKeV = 1e8
)

// gridTolerance keeps decimal increments such as 0.1 keV from losing their
// last bin to floating point error before flooring.
const gridTolerance = 1e-9

const maxGridBins = 1_000_000

// EnergyGrid is a descending sequence of photon energies in keV,
// start − i·increment for i in [0, Len).
type EnergyGrid struct {
	start     float64
	end       float64
	increment float64
	n         int
}

// NewEnergyGrid builds a grid between two energies. Reversed bounds are
// swapped so the grid always runs from the higher energy down.
func NewEnergyGrid(start, end, increment float64) (EnergyGrid, error) {
	if !(increment > 0) || math.IsInf(increment, 0) {
		return EnergyGrid{}, invalidParam("energy increment must be positive, got %g", increment)
	}
	if start < end {
		start, end = end, start
	}
	for _, e := range []float64{start, end} {
		if math.IsNaN(e) || e < MinEnergyKeV || e > MaxEnergyKeV {
			return EnergyGrid{}, fmt.Errorf("%w: %g keV outside [%g, %g]", ErrOutOfRangeEnergy, e, MinEnergyKeV, MaxEnergyKeV)
		}
	}
	span := (start - end) / increment
	if math.IsInf(span, 0) || math.IsNaN(span) || span >= maxGridBins {
		return EnergyGrid{}, invalidParam("%g-%g keV in %g keV steps exceeds %d bins", start, end, increment, maxGridBins)
	}
	n := int(math.Floor(span+gridTolerance)) + 1
	return EnergyGrid{start: start, end: end, increment: increment, n: n}, nil
}

// GridFromTube builds the grid a tube spectrum is evaluated on, from kv
// down to kvMin. A tube voltage at or below kvMin is rejected.
func GridFromTube(kv, kvMin, increment float64) (EnergyGrid, error) {
	if kv <= kvMin {
		return EnergyGrid{}, invalidParam("kV %g must exceed kV min %g", kv, kvMin)
	}
	return NewEnergyGrid(kv, kvMin, increment)
}

func (g EnergyGrid) Len() int           { return g.n }
func (g EnergyGrid) Start() float64     { return g.start }
func (g EnergyGrid) End() float64       { return g.end }
func (g EnergyGrid) Increment() float64 { return g.increment }
func (g EnergyGrid) At(i int) float64   { return g.start - float64(i)*g.increment }
func (g EnergyGrid) MeV(i int) float64  { return g.At(i) / 1000 }
func (g EnergyGrid) IsZero() bool       { return g.n == 0 }
func (g EnergyGrid) Last() float64      { return g.At(g.n - 1) }

// Energies returns every grid energy in traversal order.
func (g EnergyGrid) Energies() []float64 {
	out := make([]float64, g.n)
	for i := range out {
		out[i] = g.At(i)
	}
	return out
}

func (g EnergyGrid) String() string {
	return fmt.Sprintf("%g-%g keV step %g (%d bins)", g.start, g.end, g.increment, g.n)
}
