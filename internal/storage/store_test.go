package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beamhard/internal/xray"
)

func fixedStore(t *testing.T) *Store {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	st.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return st
}

func testState() *xray.PipelineState {
	return &xray.PipelineState{
		EnergyKeV:         []float64{12.41, 10},
		Source:            []float64{1, 2},
		Filtered:          []float64{0.5, 0.25},
		FilteredDetected:  []float64{0.25, 0.2},
		SampleTransmitted: []float64{0.1, 0.01},
		ThinTransmitted:   []float64{0.49, 0.24},
		SampleDetected:    []float64{0.05, 0.008},
		ThinDetected:      []float64{0.245, 0.19},
	}
}

func TestSaveLoadSimulation(t *testing.T) {
	st := fixedStore(t)
	totals := xray.IntegratedTotals{Source: 3, FilteredDetected: 0.45}
	meta := RunMetadata{
		Scenario: "w160-calcite",
		Source:   xray.Source{Target: "W", KV: 160, MA: 100},
		Sample:   xray.Material{Formula: "Ca:1:C:1:O:3", ThicknessCM: 3, Density: 2.71},
		Totals:   &totals,
		Metrics:  map[string]float64{"photon_use_percent": 15},
	}
	meta.ApplyResult(&xray.EffectiveEnergyResult{
		Nominal: xray.PathSolution{Status: xray.StatusSolved},
		Thin:    xray.PathSolution{Status: xray.StatusSolved},
		Matches: []xray.Match{{NominalKeV: 96, ThinKeV: 92, DriftKeV: 4, HardeningPercent: 4.2}},
	})

	runID, err := st.SaveSimulation(meta, testState())
	require.NoError(t, err)
	assert.Equal(t, "simulate_w160-calcite_1709294400", runID)

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, KindSimulation, loaded.Kind)
	assert.Equal(t, 160.0, loaded.Source.KV)
	assert.Equal(t, 0.45, loaded.Totals.FilteredDetected)
	assert.Equal(t, "solved", loaded.NominalStatus)
	require.Len(t, loaded.Matches, 1)
	assert.Equal(t, 4.2, loaded.Matches[0].HardeningPercent)

	state, err := st.LoadSpectrum(runID)
	require.NoError(t, err)
	assert.Equal(t, testState(), state)
}

func TestSaveSweepAndCollision(t *testing.T) {
	st := fixedStore(t)
	curve := &xray.ThicknessCurve{Points: []xray.SweepPoint{
		{ThicknessCM: 0, Attenuation: 0},
		{ThicknessCM: 0.1, Attenuation: 0.062},
		{ThicknessCM: 0.2, Degenerate: true},
	}}

	first, err := st.SaveSweep(RunMetadata{Scenario: "steel"}, curve)
	require.NoError(t, err)
	second, err := st.SaveSweep(RunMetadata{Scenario: "steel"}, curve)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "runs saved in the same second need distinct ids")

	loaded, err := st.LoadCurve(second)
	require.NoError(t, err)
	assert.Equal(t, curve.Points, loaded.Points)

	meta, err := st.Load(second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(st.baseDir, second, curveFile), st.DataPath(meta))
}

func TestStoreList(t *testing.T) {
	st := fixedStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.SaveSimulation(RunMetadata{Scenario: "a"}, testState())
	require.NoError(t, err)
	_, err = st.SaveSweep(RunMetadata{Scenario: "b"}, &xray.ThicknessCurve{})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "not-a-run"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadMissing(t *testing.T) {
	st := fixedStore(t)
	_, err := st.Load("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
	_, err = st.LoadCurve("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
