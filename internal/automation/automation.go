// Package automation runs batches of scenarios described in YAML.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/beamhard/internal/config"
	"github.com/san-kum/beamhard/internal/experiment"
	"github.com/san-kum/beamhard/internal/storage"
)

// Step modes.
const (
	ModeSimulate = "simulate"
	ModeSweep    = "sweep"
	ModeScan     = "scan"
)

var ErrUnknownMode = errors.New("automation: unknown step mode")

// Batch is a scripted sequence of scenario runs.
type Batch struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step runs one scenario. The scenario block is applied over the preset,
// or over the defaults when no preset is named.
type Step struct {
	Name     string      `yaml:"name"`
	Mode     string      `yaml:"mode"`
	Preset   string      `yaml:"preset"`
	Scenario yaml.Node   `yaml:"scenario"`
	Scan     *ScanConfig `yaml:"scan"`
	Save     bool        `yaml:"save"`
}

// StepResult holds whichever outcome the step's mode produced.
type StepResult struct {
	Index    int
	Name     string
	Mode     string
	Scenario *config.Scenario
	Estimate *experiment.Estimate
	Sweep    *experiment.SweepOutcome
	Scan     []ScanPoint
	RunID    string
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(batch.Steps) == 0 {
		return nil, fmt.Errorf("%s: batch has no steps", path)
	}
	return &batch, nil
}

// Resolve builds the scenario a step runs.
func (s Step) Resolve() (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if s.Preset != "" {
		sc = config.GetPreset(s.Preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	}
	if !s.Scenario.IsZero() {
		if err := s.Scenario.Decode(sc); err != nil {
			return nil, fmt.Errorf("decode scenario: %w", err)
		}
	}
	if s.Name != "" {
		sc.Name = s.Name
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// RunBatch executes every step in order and stops at the first failure,
// returning the results gathered so far. A nil store skips saving.
func RunBatch(ctx context.Context, batch *Batch, exp *experiment.Experiment, store *storage.Store, logger logr.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(batch.Steps))

	for i, step := range batch.Steps {
		mode := step.Mode
		if mode == "" {
			mode = ModeSimulate
		}
		logger.Info("running step", "step", i+1, "of", len(batch.Steps), "name", step.Name, "mode", mode)

		sc, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res := StepResult{Index: i, Name: sc.Name, Mode: mode, Scenario: sc}

		switch mode {
		case ModeSimulate:
			est, err := exp.Run(ctx, sc)
			if err != nil {
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
			res.Estimate = est
			if step.Save && store != nil {
				meta := storage.NewMetadata(storage.KindSimulation, sc.Name, est.Request)
				meta.Totals = &est.Totals
				meta.ApplyResult(est.Result)
				if res.RunID, err = store.SaveSimulation(meta, est.State); err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
			}
		case ModeSweep:
			out, err := exp.Sweep(ctx, sc)
			if err != nil {
				return results, fmt.Errorf("step %d sweep: %w", i+1, err)
			}
			res.Sweep = out
			if step.Save && store != nil {
				meta := storage.NewMetadata(storage.KindSweep, sc.Name, out.Request.Base())
				if res.RunID, err = store.SaveSweep(meta, out.Curve); err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
			}
		case ModeScan:
			if step.Scan == nil {
				return results, fmt.Errorf("step %d: scan mode needs a scan block", i+1)
			}
			points, err := RunScan(ctx, sc, *step.Scan, exp)
			if err != nil {
				return results, fmt.Errorf("step %d scan: %w", i+1, err)
			}
			res.Scan = points
		default:
			return results, fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownMode, mode)
		}

		results = append(results, res)
	}

	return results, nil
}

// Scan parameters.
const (
	ParamKV       = "kv"
	ParamMA       = "ma"
	ParamFilterCM = "filter_cm"
	ParamSampleCM = "sample_cm"
	ParamFromKeV  = "from_kev"
)

// ScanConfig varies one scenario parameter over an inclusive range.
type ScanConfig struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

// ScanPoint is the first matched effective energy at one parameter value.
// Solved is false when no nominal/thin pair was found.
type ScanPoint struct {
	Value            float64
	NominalKeV       float64
	ThinKeV          float64
	HardeningPercent float64
	Solved           bool
}

func setParam(sc *config.Scenario, name string, v float64) error {
	switch name {
	case ParamKV:
		sc.Source.KV = v
		if sc.Energy.ToKeV > v {
			sc.Energy.ToKeV = v
		}
	case ParamMA:
		sc.Source.MA = v
	case ParamFilterCM:
		sc.Filter.ThicknessCM = v
	case ParamSampleCM:
		sc.Sample.ThicknessCM = v
	case ParamFromKeV:
		sc.Energy.FromKeV = v
	default:
		return fmt.Errorf("unknown scan parameter %q", name)
	}
	return nil
}

// RunScan estimates the effective energies at evenly spaced values of one
// parameter.
func RunScan(ctx context.Context, base *config.Scenario, scan ScanConfig, exp *experiment.Experiment) ([]ScanPoint, error) {
	if scan.Steps < 1 {
		return nil, fmt.Errorf("scan needs at least one step, got %d", scan.Steps)
	}
	if math.IsNaN(scan.Min) || math.IsNaN(scan.Max) {
		return nil, fmt.Errorf("scan range is not a number")
	}

	paramStep := 0.0
	if scan.Steps > 1 {
		paramStep = (scan.Max - scan.Min) / float64(scan.Steps-1)
	}

	points := make([]ScanPoint, 0, scan.Steps)
	for i := 0; i < scan.Steps; i++ {
		v := scan.Min + float64(i)*paramStep
		sc := base.Clone()
		if err := setParam(sc, scan.Param, v); err != nil {
			return nil, err
		}

		est, err := exp.Run(ctx, sc)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", scan.Param, v, err)
		}
		p := ScanPoint{Value: v}
		if est.Result.HasSolution() {
			m := est.Result.Matches[0]
			p.NominalKeV, p.ThinKeV, p.HardeningPercent = m.NominalKeV, m.ThinKeV, m.HardeningPercent
			p.Solved = true
		}
		points = append(points, p)
	}
	return points, nil
}
