package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/experiment"
	"github.com/san-kum/beamhard/internal/logging"
	"github.com/san-kum/beamhard/internal/metrics"
	"github.com/san-kum/beamhard/internal/physics"
)

var version = "dev"

var (
	dataDir     string
	logLevel    string
	configFile  string
	preset      string
	metricsFile string
	workers     int

	logger   logr.Logger
	recorder *metrics.Recorder
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		settings = config.Settings{DataDir: ".beamhard", LogLevel: "info"}
	}

	rootCmd := &cobra.Command{
		Use:          "beamhard",
		Short:        "polychromatic x-ray beam hardening estimator",
		SilenceUsage: true,
		Version:      version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.NewLogger(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			recorder = metrics.NewRecorder()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsFile == "" || recorder == nil {
				return nil
			}
			if err := recorder.WriteTextfile(metricsFile); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			logger.V(logging.DEBUG).Info("metrics written", "path", metricsFile)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", settings.DataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", settings.LogLevel, "log level (error, warn, info, debug, trace)")
	pf.StringVar(&configFile, "config", "", "scenario file (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named scenario preset")
	pf.StringVar(&metricsFile, "metrics-file", settings.MetricsFile, "write prometheus metrics to this file on exit")
	pf.IntVar(&workers, "workers", settings.Workers, "sweep workers (0 uses all CPUs)")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newSweepCmd(),
		newSolveCmd(),
		newSolveRatioCmd(),
		newCalcCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newExportSVGCmd(),
		newPresetsCmd(),
		newMaterialsCmd(),
		newScenarioCmd(),
		newWorkbenchCmd(),
		newElementsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println("beamhard", version)
			},
		},
	)
	return rootCmd
}

func newExperiment() *experiment.Experiment {
	return experiment.New(experiment.Config{
		Workers:  workers,
		Logger:   logger,
		Recorder: recorder,
	})
}

func newElementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "list tabulated elements with densities and edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newTable()
			fmt.Fprintln(w, "Z\tSYMBOL\tNAME\tWEIGHT\tDENSITY\tK EDGE\tL3 EDGE")
			for _, el := range physics.Elements() {
				l3 := "-"
				if el.L3Edge > 0 {
					l3 = fmt.Sprintf("%.3f", el.L3Edge)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.4g\t%.3f\t%s\n",
					el.Z, el.Symbol, el.Name, el.AtomicWeight, el.Density, el.KEdge, l3)
			}
			return w.Flush()
		},
	}
}
