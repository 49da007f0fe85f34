package config

import (
	"sort"

	"github.com/san-kum/beamhard/internal/xray"
)

var Presets = map[string]*Scenario{
	"w160-calcite": DefaultScenario(),
	"mo40-soft-tissue": {
		Name:        "mo40-soft-tissue",
		Description: "mammography tube through soft tissue",
		Source:      xray.Source{Target: "Mo", KV: 40, MA: 50},
		Filter:      xray.Material{Formula: "Mo", ThicknessCM: 0.003},
		Sample:      xray.Material{Name: "soft tissue", Formula: "H:63:C:6:N:1:O:29.5", ThicknessCM: 4, Density: 1.06},
		Detector:    xray.Material{Name: "GOS", Formula: "Gd:2:O:2:S:1", ThicknessCM: 0.01, Density: 7.32},
		Energy:      EnergyConfig{FromKeV: 5, ToKeV: 40, IncKeV: 0.5},
		Sweep:       SweepConfig{StepCM: 0.2, MaxThicknessCM: 6},
		Plot:        PlotConfig{Axis: AxisKeV},
	},
	"w225-steel": {
		Name:        "w225-steel",
		Description: "industrial tube through steel",
		Source:      xray.Source{Target: "W", KV: 225, MA: 10},
		Filter:      xray.Material{Formula: "Cu", ThicknessCM: 0.2},
		Sample:      xray.Material{Name: "steel", Formula: "Fe:0.98:C:0.02", ThicknessCM: 2, Density: 7.85},
		Detector:    xray.Material{Formula: "Cs:1:I:1", ThicknessCM: 0.06, Density: 4.51},
		Energy:      EnergyConfig{FromKeV: 20, IncKeV: 1},
		Sweep:       SweepConfig{StepCM: 0.1, MaxThicknessCM: 3},
		Plot:        PlotConfig{Axis: AxisKeV},
	},
	"cu-hardened": {
		Name:        "cu-hardened",
		Description: "heavily copper filtered tungsten beam through calcite",
		Source:      xray.Source{Target: "W", KV: 160, MA: 100},
		Filter:      xray.Material{Formula: "Cu", ThicknessCM: 1.0},
		Sample:      xray.Material{Name: "calcite", Formula: "Ca:1:C:1:O:3", ThicknessCM: 3, Density: 2.71},
		Detector:    xray.Material{Formula: "Cs:1:I:1", ThicknessCM: 0.01, Density: 4.51},
		Energy:      EnergyConfig{FromKeV: 10, ToKeV: 160, IncKeV: 1},
		Sweep:       SweepConfig{StepCM: 0.1, MaxThicknessCM: 3},
		Plot:        PlotConfig{Axis: AxisKeV},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := p.Clone()
	if c.Name == "default" || c.Name == "" {
		c.Name = name
	}
	return c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
