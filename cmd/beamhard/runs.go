package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/beamhard/internal/analysis"
	"github.com/san-kum/beamhard/internal/export"
	"github.com/san-kum/beamhard/internal/report"
	"github.com/san-kum/beamhard/internal/storage"
	"github.com/san-kum/beamhard/internal/xray"
)

var outputPath string

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tKIND\tTIME\tSOURCE\tSAMPLE\tNOMINAL KEV\tBH %")

	for _, run := range runs {
		nominal, bh := "-", "-"
		if len(run.Matches) > 0 {
			nominal = fmt.Sprintf("%.2f", run.Matches[0].NominalKeV)
			bh = fmt.Sprintf("%.2f", run.Matches[0].HardeningPercent)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %gkV\t%s %gcm\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Source.Target, run.Source.KV,
			run.Sample.Label(), run.Sample.ThicknessCM,
			nominal, bh,
		)
	}

	return w.Flush()
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render(meta.ID))
	fmt.Printf("kind:      %s\n", meta.Kind)
	fmt.Printf("scenario:  %s\n", meta.Scenario)
	fmt.Printf("time:      %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("source:    %s %g kV %g mA\n", meta.Source.Target, meta.Source.KV, meta.Source.MA)
	fmt.Printf("filter:    %s %g cm\n", meta.Filter.Formula, meta.Filter.ThicknessCM)
	fmt.Printf("sample:    %s %g cm %g g/cc\n", meta.Sample.Formula, meta.Sample.ThicknessCM, meta.Sample.Density)
	fmt.Printf("detector:  %s %g cm %g g/cc\n", meta.Detector.Formula, meta.Detector.ThicknessCM, meta.Detector.Density)
	fmt.Printf("grid:      %g-%g keV step %g\n", meta.Grid.StartKeV, meta.Grid.EndKeV, meta.Grid.IncrementKeV)
	fmt.Printf("data:      %s\n", st.DataPath(meta))

	if meta.Totals != nil {
		fmt.Printf("\nfilter transmission  %.4f\n", meta.Totals.FilterTransmission())
		fmt.Printf("detector absorption  %.4f\n", meta.Totals.DetectorAbsorption())
		fmt.Printf("photon use           %.2f %%\n", meta.Totals.PhotonUsePercent())
	}
	if meta.Kind == storage.KindSimulation {
		fmt.Printf("status:    nominal %s, thin %s\n", meta.NominalStatus, meta.ThinStatus)
		for _, m := range meta.Matches {
			fmt.Printf("  #%d nominal %.3f keV  thin %.3f keV  BH %.2f %%\n", m.Index, m.NominalKeV, m.ThinKeV, m.HardeningPercent)
		}
	}
	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range meta.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
	}
	return nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().BoolVar(&wavelength, "wavelength", false, "plot spectra against wavelength (Å)")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if meta.Kind == storage.KindSweep {
		curve, err := st.LoadCurve(meta.ID)
		if err != nil {
			return err
		}
		fmt.Println(report.CurvePlot(curve, report.DefaultPlotSize))
		if c, err := analysis.AnalyzeCurve(curve); err == nil {
			fmt.Printf("\nhardening ratio %.4f, r² %.5f\n", c.HardeningRatio, c.RSquared)
		}
		return nil
	}

	state, err := st.LoadSpectrum(meta.ID)
	if err != nil {
		return err
	}
	fmt.Println(report.SpectrumPlot(state, wavelength, report.DefaultPlotSize))
	return nil
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if meta.Kind == storage.KindSweep {
		curve, err := st.LoadCurve(meta.ID)
		if err != nil {
			return err
		}
		return storage.WriteCurveCSV(out, curve)
	}
	state, err := st.LoadSpectrum(meta.ID)
	if err != nil {
		return err
	}
	return storage.WriteSpectrumCSV(out, state)
}

func loadRun(st *storage.Store, runID string) (*storage.RunMetadata, *xray.PipelineState, *xray.ThicknessCurve, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if meta.Kind == storage.KindSweep {
		curve, err := st.LoadCurve(meta.ID)
		return meta, nil, curve, err
	}
	state, err := st.LoadSpectrum(meta.ID)
	return meta, state, nil, err
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, state, curve, err := loadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	if outputPath == "" {
		return export.WriteJSON(os.Stdout, *meta, state, curve)
	}
	if err := export.ExportJSON(outputPath, *meta, state, curve); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outputPath)
	return nil
}

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run's curve or spectra to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.svg)")
	cmd.Flags().BoolVar(&wavelength, "wavelength", false, "plot spectra against wavelength (Å)")
	return cmd
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, state, curve, err := loadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s: %s %g kV, %s", meta.Scenario, meta.Source.Target, meta.Source.KV, meta.Sample.Label())
	var svg string
	if curve != nil {
		svg = export.CurveSVG(curve, 800, 500, title)
	} else {
		svg = export.SpectrumSVG(state, wavelength, 800, 500, title)
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := export.WriteFile(path, svg); err != nil {
		return err
	}
	fmt.Printf("svg written to %s\n", path)
	return nil
}
