package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/beamhard/internal/xray"
)

// SpectrumSummary holds the intensity-weighted mean energy of each stage.
type SpectrumSummary struct {
	SourceMeanKeV         float64 `json:"source_mean_kev"`
	FilteredMeanKeV       float64 `json:"filtered_mean_kev"`
	DetectedMeanKeV       float64 `json:"detected_mean_kev"`
	SampleDetectedMeanKeV float64 `json:"sample_detected_mean_kev"`
	ThinDetectedMeanKeV   float64 `json:"thin_detected_mean_kev"`
}

// MeanEnergy is the weighted mean of energies; NaN when all weights are 0.
func MeanEnergy(energies, weights []float64) float64 {
	if floats.Sum(weights) <= 0 {
		return math.NaN()
	}
	return stat.Mean(energies, weights)
}

func SummarizeSpectrum(state *xray.PipelineState) SpectrumSummary {
	return SpectrumSummary{
		SourceMeanKeV:         MeanEnergy(state.EnergyKeV, state.Source),
		FilteredMeanKeV:       MeanEnergy(state.EnergyKeV, state.Filtered),
		DetectedMeanKeV:       MeanEnergy(state.EnergyKeV, state.FilteredDetected),
		SampleDetectedMeanKeV: MeanEnergy(state.EnergyKeV, state.SampleDetected),
		ThinDetectedMeanKeV:   MeanEnergy(state.EnergyKeV, state.ThinDetected),
	}
}
