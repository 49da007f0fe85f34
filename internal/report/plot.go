package report

import (
	"fmt"
	"slices"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/xray"
)

// PlotSize bounds an ascii chart.
type PlotSize struct {
	Width  int
	Height int
}

var DefaultPlotSize = PlotSize{Width: 80, Height: 15}

// SpectrumPlot draws the five pipeline stages. On the energy axis the bins
// run from low to high keV; on the wavelength axis from short to long Å.
func SpectrumPlot(state *xray.PipelineState, angstroms bool, size PlotSize) string {
	if state == nil || state.Len() < 2 {
		return ""
	}
	series := [][]float64{
		slices.Clone(state.Source),
		slices.Clone(state.Filtered),
		slices.Clone(state.SampleTransmitted),
		slices.Clone(state.FilteredDetected),
		slices.Clone(state.SampleDetected),
	}

	lo, hi := state.EnergyKeV[state.Len()-1], state.EnergyKeV[0]
	caption := fmt.Sprintf("photons vs energy, %.4g to %.4g keV", lo, hi)
	if angstroms {
		caption = fmt.Sprintf("photons vs wavelength, %.4g to %.4g Å",
			physics.WavelengthAngstrom(hi), physics.WavelengthAngstrom(lo))
	} else {
		for _, s := range series {
			slices.Reverse(s)
		}
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(size.Height),
		asciigraph.Width(size.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Green, asciigraph.Orange),
		asciigraph.SeriesLegends("source", "filtered", "sample", "I0", "I"),
	)
}

// CurvePlot draws attenuation against thickness.
func CurvePlot(curve *xray.ThicknessCurve, size PlotSize) string {
	if curve == nil || len(curve.Points) < 2 {
		return ""
	}
	last := curve.Points[len(curve.Points)-1].ThicknessCM
	return asciigraph.Plot(curve.Attenuations(),
		asciigraph.Height(size.Height),
		asciigraph.Width(size.Width),
		asciigraph.Precision(3),
		asciigraph.Caption(fmt.Sprintf("-ln(I/I0) vs thickness, 0 to %.4g cm", last)),
		asciigraph.SeriesColors(asciigraph.Cyan),
	)
}
