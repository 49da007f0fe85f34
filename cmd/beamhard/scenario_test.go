package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScenario(t *testing.T) {
	dataDir = t.TempDir()
	preset, configFile = "", ""

	cmd := newSimulateCmd()
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Flags().Set("kv", "120"))
	require.NoError(t, cmd.Flags().Set("to-kev", "120"))
	require.NoError(t, cmd.Flags().Set("sample", "Water"))

	sc, err := resolveScenario(cmd)
	require.NoError(t, err)
	assert.Equal(t, 120.0, sc.Source.KV)
	assert.Equal(t, "Water", sc.Sample.Name)
	assert.Equal(t, "H:2:O:1", sc.Sample.Formula)
	assert.Equal(t, 1.0, sc.Sample.Density)
	assert.Equal(t, "Cu", sc.Filter.Formula, "unchanged flags keep the scenario value")
}

func TestResolveScenario_PresetAndDensityFlag(t *testing.T) {
	dataDir = t.TempDir()
	preset, configFile = "mo40-soft-tissue", ""
	defer func() { preset = "" }()

	cmd := newSimulateCmd()
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Flags().Set("sample", "Calcite"))
	require.NoError(t, cmd.Flags().Set("sample-density", "2.5"))

	sc, err := resolveScenario(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Mo", sc.Source.Target)
	assert.Equal(t, "Ca:1:C:1:O:3", sc.Sample.Formula)
	assert.Equal(t, 2.5, sc.Sample.Density)
}

func TestResolveScenario_Errors(t *testing.T) {
	dataDir = t.TempDir()
	preset, configFile = "nope", ""
	defer func() { preset = "" }()

	_, err := resolveScenario(newSimulateCmd())
	assert.Error(t, err)

	preset = ""
	cmd := newSimulateCmd()
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Flags().Set("sample", "Zz:1"))
	_, err = resolveScenario(cmd)
	assert.Error(t, err)
}
