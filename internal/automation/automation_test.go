package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beamhard/internal/experiment"
	"github.com/san-kum/beamhard/internal/storage"
)

const batchYAML = `
name: filters
description: copper thickness comparison
steps:
  - name: thin-cu
    preset: w160-calcite
    save: true
    scenario:
      filter:
        formula: Cu
        thickness_cm: 0.1
  - name: curve
    mode: sweep
    save: true
    scenario:
      sweep:
        step_cm: 0.5
        max_thickness_cm: 2
  - name: kv-scan
    mode: scan
    scan:
      param: filter_cm
      min: 0.1
      max: 0.5
      steps: 3
`

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBatch(t *testing.T) {
	batch, err := LoadBatch(writeBatch(t, batchYAML))
	require.NoError(t, err)
	assert.Equal(t, "filters", batch.Name)
	require.Len(t, batch.Steps, 3)

	sc, err := batch.Steps[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "thin-cu", sc.Name)
	assert.Equal(t, 0.1, sc.Filter.ThicknessCM)
	assert.Equal(t, 3.0, sc.Sample.ThicknessCM, "preset values survive the overlay")

	_, err = LoadBatch(writeBatch(t, "name: empty\n"))
	assert.Error(t, err)
}

func TestResolve_UnknownPreset(t *testing.T) {
	_, err := Step{Preset: "nope"}.Resolve()
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	batch, err := LoadBatch(writeBatch(t, batchYAML))
	require.NoError(t, err)

	store := storage.New(t.TempDir())
	require.NoError(t, store.Init())

	results, err := RunBatch(context.Background(), batch, experiment.New(experiment.Config{}), store, logr.Discard())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotNil(t, results[0].Estimate)
	assert.NotEmpty(t, results[0].RunID)
	require.NotNil(t, results[1].Sweep)
	assert.Len(t, results[1].Sweep.Curve.Points, 5)
	assert.NotEmpty(t, results[1].RunID)

	scan := results[2].Scan
	require.Len(t, scan, 3)
	for i, p := range scan {
		assert.True(t, p.Solved, "point %d", i)
	}
	assert.Greater(t, scan[2].NominalKeV, scan[0].NominalKeV, "more filtering hardens the beam")

	runs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunBatch_Errors(t *testing.T) {
	exp := experiment.New(experiment.Config{})
	ctx := context.Background()

	batch := &Batch{Steps: []Step{{Mode: "explode"}}}
	_, err := RunBatch(ctx, batch, exp, nil, logr.Discard())
	assert.True(t, errors.Is(err, ErrUnknownMode))

	batch = &Batch{Steps: []Step{{Mode: ModeScan}}}
	_, err = RunBatch(ctx, batch, exp, nil, logr.Discard())
	assert.Error(t, err)
}

func TestRunScan_UnknownParam(t *testing.T) {
	sc, err := Step{}.Resolve()
	require.NoError(t, err)
	_, err = RunScan(context.Background(), sc, ScanConfig{Param: "colour", Steps: 2}, experiment.New(experiment.Config{}))
	assert.Error(t, err)
}
