package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/materials"
	"github.com/san-kum/beamhard/internal/xray"
)

// Scenario flags shared by simulate, sweep and workbench.
var (
	target          string
	kv              float64
	ma              float64
	filterRef       string
	filterCM        float64
	filterDensity   float64
	sampleRef       string
	sampleCM        float64
	sampleDensity   float64
	detectorRef     string
	detectorCM      float64
	detectorDensity float64
	fromKeV         float64
	toKeV           float64
	incKeV          float64
	stepCM          float64
	maxCM           float64
)

func addScenarioFlags(f *pflag.FlagSet) {
	f.StringVar(&target, "target", config.DefaultTarget, "tube anode element")
	f.Float64Var(&kv, "kv", config.DefaultKV, "tube voltage (kV)")
	f.Float64Var(&ma, "ma", config.DefaultMA, "tube current (mA)")
	f.StringVar(&filterRef, "filter", config.DefaultFilter, "filter formula or library material")
	f.Float64Var(&filterCM, "filter-cm", config.DefaultFilterCM, "filter thickness (cm)")
	f.Float64Var(&filterDensity, "filter-density", 0, "filter density (g/cc, 0 uses the element table)")
	f.StringVar(&sampleRef, "sample", config.DefaultSample, "sample formula or library material")
	f.Float64Var(&sampleCM, "sample-cm", config.DefaultSampleCM, "sample thickness (cm)")
	f.Float64Var(&sampleDensity, "sample-density", config.DefaultSampleRho, "sample density (g/cc)")
	f.StringVar(&detectorRef, "detector", config.DefaultDetector, "detector formula or library material")
	f.Float64Var(&detectorCM, "detector-cm", config.DefaultDetectorCM, "detector thickness (cm)")
	f.Float64Var(&detectorDensity, "detector-density", config.DefaultDetectorRho, "detector density (g/cc)")
	f.Float64Var(&fromKeV, "from-kev", config.DefaultFromKeV, "lowest grid energy (keV)")
	f.Float64Var(&toKeV, "to-kev", config.DefaultToKeV, "highest grid energy (keV, 0 follows the tube kV)")
	f.Float64Var(&incKeV, "inc-kev", config.DefaultIncKeV, "grid increment (keV)")
}

func addSweepFlags(f *pflag.FlagSet) {
	f.Float64Var(&stepCM, "step", config.DefaultSweepStepCM, "sweep thickness step (cm)")
	f.Float64Var(&maxCM, "max", 0, "sweep max thickness (cm, 0 uses the sample thickness)")
}

// resolveScenario layers preset, config file and changed flags, in that
// order.
func resolveScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if preset != "" {
		sc = config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	}

	flags := cmd.Flags()
	setFloat := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	if flags.Changed("target") {
		sc.Source.Target = target
	}
	setFloat("kv", &sc.Source.KV, kv)
	setFloat("ma", &sc.Source.MA, ma)
	setFloat("filter-cm", &sc.Filter.ThicknessCM, filterCM)
	setFloat("filter-density", &sc.Filter.Density, filterDensity)
	setFloat("sample-cm", &sc.Sample.ThicknessCM, sampleCM)
	setFloat("sample-density", &sc.Sample.Density, sampleDensity)
	setFloat("detector-cm", &sc.Detector.ThicknessCM, detectorCM)
	setFloat("detector-density", &sc.Detector.Density, detectorDensity)
	setFloat("from-kev", &sc.Energy.FromKeV, fromKeV)
	setFloat("to-kev", &sc.Energy.ToKeV, toKeV)
	setFloat("inc-kev", &sc.Energy.IncKeV, incKeV)
	setFloat("step", &sc.Sweep.StepCM, stepCM)
	setFloat("max", &sc.Sweep.MaxThicknessCM, maxCM)

	var lib *materials.Library
	defer func() {
		if lib != nil {
			lib.Close()
		}
	}()
	layers := []struct {
		flag, densityFlag string
		ref               string
		m                 *xray.Material
	}{
		{"filter", "filter-density", filterRef, &sc.Filter},
		{"sample", "sample-density", sampleRef, &sc.Sample},
		{"detector", "detector-density", detectorRef, &sc.Detector},
	}
	for _, layer := range layers {
		if !flags.Changed(layer.flag) {
			continue
		}
		if lib == nil {
			var err error
			if lib, err = materials.Open(cmd.Context(), dataDir); err != nil {
				return nil, err
			}
		}
		if err := applyMaterial(cmd.Context(), lib, layer.ref, layer.m, flags.Changed(layer.densityFlag)); err != nil {
			return nil, err
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// applyMaterial sets m from a library name or a bare formula. A library
// density is used unless the density flag was given.
func applyMaterial(ctx context.Context, lib *materials.Library, ref string, m *xray.Material, keepDensity bool) error {
	found, err := lib.Get(ctx, ref)
	if errors.Is(err, materials.ErrNotFound) {
		m.Name = ""
		m.Formula = ref
		return nil
	}
	if err != nil {
		return err
	}
	m.Name = found.Name
	m.Formula = found.Formula
	if !keepDensity {
		m.Density = found.Density
	}
	return nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}
