package xray

// Integrate sums value·increment over the spectrum in traversal order.
func Integrate(values []float64, increment float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v * increment
	}
	return total
}

// IntegrateState reduces every spectrum of a pipeline state to its total.
func IntegrateState(state *PipelineState, increment float64) IntegratedTotals {
	return IntegratedTotals{
		Source:           Integrate(state.Source, increment),
		Filtered:         Integrate(state.Filtered, increment),
		FilteredDetected: Integrate(state.FilteredDetected, increment),
		Sample:           Integrate(state.SampleTransmitted, increment),
		SampleDetected:   Integrate(state.SampleDetected, increment),
		ThinDetected:     Integrate(state.ThinDetected, increment),
	}
}
