// Package xray simulates a polychromatic X-ray beam through a filter, a
// sample and a detector and estimates beam hardening from the result.
//
// The package depends only on three collaborator interfaces, so the
// attenuation data and source model can be swapped:
//
//   - [CrossSections]: mass attenuation coefficient lookup
//   - [SourceModel]: tube spectrum evaluation
//   - [EnergyInverter]: energies matching a linear attenuation
//
// and exposes:
//
//   - [EnergyGrid]: descending energy bins in keV
//   - [Simulator]: spectrum pipeline ([Simulator.Simulate]) and thickness
//     sweeps ([Simulator.Sweep])
//   - [Solver]: effective-energy inversion for the nominal and thin paths
//
// # Example
//
//	calc := physics.NewCalculator()
//	sim := xray.NewSimulator(calc, physics.Kramers{})
//	state, totals, err := sim.Simulate(ctx, req)
//	res, err := xray.NewSolver(physics.NewInverter(calc)).Solve(totals, req.Sample)
//
// # Errors
//
// Request validation failures match [ErrInvalidParameter],
// [ErrInvalidFormula] or [ErrOutOfRangeEnergy] with errors.Is. Degenerate
// totals and failed inversions do not abort a batch: they are carried on
// [PathSolution.Status] and [SweepPoint.Degenerate].
package xray
