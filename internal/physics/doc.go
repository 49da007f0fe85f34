// Package physics provides the photon interaction data behind the beam
// simulator.
//
//   - [Calculator]: mass attenuation coefficients per cross-section kind
//   - [Kramers]: thick-target bremsstrahlung tube spectrum
//   - [Inverter]: energies at which a material reaches a given linear
//     attenuation or attenuation ratio
//   - [ParseFormula]: the "Symbol:count" compound notation
//
// Coefficients come from a parametric model over a tabulated element
// subset rather than from measured tables, so values are accurate to a
// few percent away from absorption edges.
//
// # Example
//
//	calc := physics.NewCalculator()
//	mu, err := calc.MuMass("Ca:1:C:1:O:3", 0.06, physics.TotAttn)
//	energies, err := physics.NewInverter(calc).EnergiesForMuLin("Cu", 14.9, 8.96, physics.TotAttn)
package physics
