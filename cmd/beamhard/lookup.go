package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamhard/internal/materials"
	"github.com/san-kum/beamhard/internal/physics"
)

var (
	kind        string
	muLin       float64
	density     float64
	muLin2      float64
	density2    float64
	energyKeV   float64
	thicknessCM float64
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [formula|material]",
		Short: "energies at which a material has the given linear attenuation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	cmd.Flags().Float64Var(&muLin, "mu", 0, "linear attenuation (1/cm)")
	cmd.Flags().Float64Var(&density, "density", 0, "density (g/cc, 0 uses the library or element table)")
	cmd.Flags().StringVar(&kind, "kind", physics.TotAttn, "cross-section kind")
	cmd.MarkFlagRequired("mu")
	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	lib, err := materials.Open(cmd.Context(), dataDir)
	if err != nil {
		return err
	}
	defer lib.Close()

	formula, rho, err := lib.Resolve(cmd.Context(), args[0], density)
	if err != nil {
		return err
	}

	keV, err := newExperiment().Lookup(formula, muLin, rho, kind)
	if err != nil {
		return err
	}
	fmt.Printf("%s at %g g/cc, mu=%g /cm (%s)\n", formula, rho, muLin, kind)
	printCandidates(keV)
	return nil
}

func newSolveRatioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve-ratio [formula1|material1] [formula2|material2]",
		Short: "energies at which two materials' linear attenuations have the given ratio",
		Args:  cobra.ExactArgs(2),
		RunE:  runSolveRatio,
	}
	cmd.Flags().Float64Var(&muLin, "mu1", 0, "linear attenuation of the first material (1/cm)")
	cmd.Flags().Float64Var(&density, "density1", 0, "density of the first material (g/cc)")
	cmd.Flags().Float64Var(&muLin2, "mu2", 0, "linear attenuation of the second material (1/cm)")
	cmd.Flags().Float64Var(&density2, "density2", 0, "density of the second material (g/cc)")
	cmd.Flags().StringVar(&kind, "kind", physics.TotAttn, "cross-section kind")
	cmd.MarkFlagRequired("mu1")
	cmd.MarkFlagRequired("mu2")
	return cmd
}

func runSolveRatio(cmd *cobra.Command, args []string) error {
	lib, err := materials.Open(cmd.Context(), dataDir)
	if err != nil {
		return err
	}
	defer lib.Close()

	f1, rho1, err := lib.Resolve(cmd.Context(), args[0], density)
	if err != nil {
		return err
	}
	f2, rho2, err := lib.Resolve(cmd.Context(), args[1], density2)
	if err != nil {
		return err
	}

	keV, err := newExperiment().LookupRatio(f1, muLin, rho1, f2, muLin2, rho2, kind)
	if err != nil {
		return err
	}
	fmt.Printf("%s / %s, ratio=%g (%s)\n", f1, f2, muLin/muLin2, kind)
	printCandidates(keV)
	return nil
}

func printCandidates(keV []float64) {
	if len(keV) == 0 {
		fmt.Println("no solution")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "#\tKEV\tWAVELENGTH (Å)")
	for i, e := range keV {
		fmt.Fprintf(w, "%d\t%.4f\t%.5f\n", i, e, physics.WavelengthAngstrom(e))
	}
	w.Flush()
}

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc [formula|material]",
		Short: "mass attenuation coefficients and absorption edges",
		Args:  cobra.ExactArgs(1),
		RunE:  runCalc,
	}
	cmd.Flags().Float64Var(&energyKeV, "kev", 60, "photon energy (keV)")
	cmd.Flags().Float64Var(&density, "density", 0, "density (g/cc) for linear attenuation")
	cmd.Flags().Float64Var(&thicknessCM, "thickness", 0, "thickness (cm) for transmission")
	return cmd
}

func runCalc(cmd *cobra.Command, args []string) error {
	formula := args[0]
	rho := density

	lib, err := materials.Open(cmd.Context(), dataDir)
	if err != nil {
		return err
	}
	defer lib.Close()
	if m, err := lib.Get(cmd.Context(), formula); err == nil {
		formula = m.Formula
		if rho == 0 {
			rho = m.Density
		}
	} else if rho == 0 {
		rho, _ = physics.ElementDensity(formula)
	}

	coeffs, edges, err := newExperiment().Calculate(formula, energyKeV, rho, thicknessCM)
	if err != nil {
		return err
	}

	fmt.Printf("%s at %g keV (%.5f Å)\n", formula, energyKeV, physics.WavelengthAngstrom(energyKeV))
	w := newTable()
	fmt.Fprintln(w, "KIND\tMU/RHO (cm²/g)\tMU (1/cm)\tTRANSMISSION")
	for _, c := range coeffs {
		fmt.Fprintf(w, "%s\t%.5g\t%s\t%s\n", c.Kind, c.MuMass, optional(c.MuLinear, rho > 0), optional(c.Transmits, rho > 0 && thicknessCM > 0))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(edges) > 0 {
		fmt.Println("\nabsorption edges:")
		w = newTable()
		for _, e := range edges {
			fmt.Fprintf(w, "  %s\t%s\t%.3f keV\n", e.Symbol, e.Shell, e.KeV)
		}
		return w.Flush()
	}
	return nil
}

func optional(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}
