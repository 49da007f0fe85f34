package xray

import "math"

// OpticalDepth returns tau = μ/ρ · thickness · density for one layer.
func OpticalDepth(muMass float64, m Material) float64 {
	return muMass * m.ThicknessCM * m.Density
}

// Transmission is the fraction of photons passing a layer of depth tau.
func Transmission(tau float64) float64 {
	return math.Exp(-tau)
}

// Absorption is the fraction of photons stopped by a layer of depth tau.
func Absorption(tau float64) float64 {
	return -math.Expm1(-tau)
}

// layerCoefficients are the μ/ρ values of the three layers per grid bin.
// They do not depend on thickness, so a sweep computes them once.
type layerCoefficients struct {
	filter   []float64
	sample   []float64
	detector []float64
}

// probeFormulas rejects an unparseable formula before any bin is evaluated.
func probeFormulas(xs CrossSections, energyMeV float64, layers map[string]Material) error {
	for _, role := range []string{"filter", "sample", "detector"} {
		m, ok := layers[role]
		if !ok {
			continue
		}
		if _, err := xs.MuMass(m.Formula, energyMeV, TotalAttenuation); err != nil {
			return &StageError{Stage: role, Err: formulaErr(m.Formula, err)}
		}
	}
	return nil
}

func lookupCoefficients(xs CrossSections, grid EnergyGrid, filter, sample, detector Material) (*layerCoefficients, error) {
	n := grid.Len()
	c := &layerCoefficients{
		filter:   make([]float64, n),
		sample:   make([]float64, n),
		detector: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		e := grid.MeV(i)
		for _, l := range []struct {
			stage string
			m     Material
			dst   []float64
		}{
			{"filter", filter, c.filter},
			{"sample", sample, c.sample},
			{"detector", detector, c.detector},
		} {
			mu, err := xs.MuMass(l.m.Formula, e, TotalAttenuation)
			if err != nil {
				return nil, &StageError{Stage: l.stage, EnergyKeV: grid.At(i), Err: err}
			}
			l.dst[i] = mu
		}
	}
	return c, nil
}
