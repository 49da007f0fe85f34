// Package analysis characterises simulated spectra and attenuation curves.
//
//   - [Analyze]: straight-line fit, deviation and concavity of a curve
//   - [HalfValueLayers]: first and second HVL and homogeneity coefficient
//   - [SummarizeSpectrum]: mean energy of each pipeline stage
//
// # Beam Hardening
//
// A polychromatic beam yields a concave curve, so the chord slope falls
// below the initial slope:
//
//	c, _ := analysis.AnalyzeCurve(curve)
//	if c.HardeningRatio < 1 {
//	    // the sample hardens the beam
//	}
package analysis
