package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamhard/internal/analysis"
	"github.com/san-kum/beamhard/internal/export"
	"github.com/san-kum/beamhard/internal/report"
	"github.com/san-kum/beamhard/internal/storage"
)

var (
	showPlot   bool
	sweepPlot  bool
	wavelength bool
	saveRun    bool
	svgPath    string
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate the spectrum and estimate beam hardening",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	addScenarioFlags(cmd.Flags())
	cmd.Flags().BoolVar(&showPlot, "plot", false, "plot the spectra")
	cmd.Flags().BoolVar(&wavelength, "wavelength", false, "plot against wavelength (Å)")
	cmd.Flags().BoolVar(&saveRun, "save", false, "save the run to the data directory")
	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := resolveScenario(cmd)
	if err != nil {
		return err
	}

	logger.Info("simulating", "scenario", sc.Name, "target", sc.Source.Target, "kv", sc.Source.KV)
	est, err := newExperiment().Run(cmd.Context(), sc)
	if err != nil {
		return err
	}

	fmt.Println(report.RenderSimulation(report.Simulation{
		Title:    sc.Name,
		Request:  est.Request,
		Totals:   est.Totals,
		Result:   est.Result,
		Spectrum: est.Spectrum,
	}))

	if showPlot {
		angstroms := wavelength || sc.UseAngstroms()
		fmt.Println(report.SpectrumPlot(est.State, angstroms, report.DefaultPlotSize))
		fmt.Println()
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.NewMetadata(storage.KindSimulation, sc.Name, est.Request)
		meta.Totals = &est.Totals
		meta.ApplyResult(est.Result)
		meta.Metrics = finite(map[string]float64{
			"filter_transmission": est.Totals.FilterTransmission(),
			"detector_absorption": est.Totals.DetectorAbsorption(),
			"photon_use_percent":  est.Totals.PhotonUsePercent(),
			"source_mean_kev":     est.Spectrum.SourceMeanKeV,
			"detected_mean_kev":   est.Spectrum.DetectedMeanKeV,
		})
		runID, err := st.SaveSimulation(meta, est.State)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", est.Elapsed)
	return nil
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "attenuation versus sample thickness",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addScenarioFlags(cmd.Flags())
	addSweepFlags(cmd.Flags())
	cmd.Flags().BoolVar(&sweepPlot, "plot", true, "plot the curve")
	cmd.Flags().BoolVar(&saveRun, "save", false, "save the run to the data directory")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the curve as SVG to this path")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, err := resolveScenario(cmd)
	if err != nil {
		return err
	}

	out, err := newExperiment().Sweep(cmd.Context(), sc)
	if err != nil {
		return err
	}

	fmt.Println(report.RenderCurve(out.Curve, out.Curvature))
	if sweepPlot {
		fmt.Println(report.CurvePlot(out.Curve, report.DefaultPlotSize))
		fmt.Println()
	}

	if svgPath != "" {
		svg := export.CurveSVG(out.Curve, 800, 500, fmt.Sprintf("%s: %s", sc.Name, sc.Sample.Label()))
		if err := export.WriteFile(svgPath, svg); err != nil {
			return err
		}
		fmt.Printf("svg written to %s\n", svgPath)
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.NewMetadata(storage.KindSweep, sc.Name, out.Request.Base())
		meta.Metrics = curvatureMetrics(out.Curvature)
		runID, err := st.SaveSweep(meta, out.Curve)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", out.Elapsed)
	return nil
}

func curvatureMetrics(c *analysis.Curvature) map[string]float64 {
	if c == nil {
		return nil
	}
	return finite(map[string]float64{
		"slope":           c.Slope,
		"r_squared":       c.RSquared,
		"max_deviation":   c.MaxDeviation,
		"hardening_ratio": c.HardeningRatio,
	})
}

// finite drops values JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(m, k)
		}
	}
	return m
}
