// Package export writes runs to JSON and plots to SVG.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/storage"
	"github.com/san-kum/beamhard/internal/xray"
)

// SpectrumData is the column form of a pipeline state.
type SpectrumData struct {
	EnergyKeV         []float64 `json:"energy_kev"`
	WavelengthA       []float64 `json:"wavelength_a"`
	Source            []float64 `json:"source"`
	Filtered          []float64 `json:"filtered"`
	FilteredDetected  []float64 `json:"filtered_detected"`
	SampleTransmitted []float64 `json:"sample_transmitted"`
	ThinTransmitted   []float64 `json:"thin_transmitted"`
	SampleDetected    []float64 `json:"sample_detected"`
	ThinDetected      []float64 `json:"thin_detected"`
}

type ExportData struct {
	Run      storage.RunMetadata `json:"run"`
	Spectrum *SpectrumData       `json:"spectrum,omitempty"`
	Curve    []xray.SweepPoint   `json:"curve,omitempty"`
}

func NewSpectrumData(state *xray.PipelineState) *SpectrumData {
	if state == nil {
		return nil
	}
	wl := make([]float64, state.Len())
	for i, e := range state.EnergyKeV {
		wl[i] = physics.WavelengthAngstrom(e)
	}
	return &SpectrumData{
		EnergyKeV:         state.EnergyKeV,
		WavelengthA:       wl,
		Source:            state.Source,
		Filtered:          state.Filtered,
		FilteredDetected:  state.FilteredDetected,
		SampleTransmitted: state.SampleTransmitted,
		ThinTransmitted:   state.ThinTransmitted,
		SampleDetected:    state.SampleDetected,
		ThinDetected:      state.ThinDetected,
	}
}

// WriteJSON encodes a run with whichever series it has.
func WriteJSON(w io.Writer, meta storage.RunMetadata, state *xray.PipelineState, curve *xray.ThicknessCurve) error {
	data := ExportData{Run: meta, Spectrum: NewSpectrumData(state)}
	if curve != nil {
		data.Curve = curve.Points
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta storage.RunMetadata, state *xray.PipelineState, curve *xray.ThicknessCurve) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, state, curve)
}

// CurveSVG plots attenuation against thickness with the straight line a
// monochromatic beam at the initial slope would follow.
func CurveSVG(curve *xray.ThicknessCurve, width, height int, title string) string {
	x := curve.Thicknesses()
	y := curve.Attenuations()
	series := []Series{{Name: "attenuation", X: x, Y: y}}
	if len(x) > 1 && x[1] > 0 {
		slope := y[1] / x[1]
		line := make([]float64, len(x))
		for i, t := range x {
			line[i] = slope * t
		}
		series = append(series, Series{Name: "monochromatic", X: x, Y: line, Stroke: "#666"})
	}
	return PlotToSVG(series, width, height, title, "thickness (cm)", "-ln(I/I0)")
}

// SpectrumSVG plots the stage spectra against energy or wavelength.
func SpectrumSVG(state *xray.PipelineState, angstroms bool, width, height int, title string) string {
	x := state.EnergyKeV
	xLabel := "energy (keV)"
	if angstroms {
		x = make([]float64, state.Len())
		for i, e := range state.EnergyKeV {
			x[i] = physics.WavelengthAngstrom(e)
		}
		xLabel = "wavelength (Å)"
	}
	series := []Series{
		{Name: "source", X: x, Y: state.Source},
		{Name: "filtered", X: x, Y: state.Filtered},
		{Name: "sample", X: x, Y: state.SampleTransmitted},
		{Name: "I0 detected", X: x, Y: state.FilteredDetected},
		{Name: "I detected", X: x, Y: state.SampleDetected},
	}
	return PlotToSVG(series, width, height, title, xLabel, "photons")
}

func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
