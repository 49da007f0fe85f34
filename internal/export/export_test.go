package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/beamhard/internal/storage"
	"github.com/san-kum/beamhard/internal/xray"
)

func TestWriteJSON(t *testing.T) {
	state := &xray.PipelineState{
		EnergyKeV: []float64{12.41},
		Source:    []float64{3},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, storage.RunMetadata{ID: "run1", Kind: storage.KindSimulation}, state, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Run.ID != "run1" {
		t.Errorf("expected run1, got %s", decoded.Run.ID)
	}
	if decoded.Spectrum == nil || decoded.Spectrum.WavelengthA[0] != 1 {
		t.Errorf("expected wavelength 1 Å, got %+v", decoded.Spectrum)
	}
	if decoded.Curve != nil {
		t.Error("expected no curve for a simulation run")
	}
}

func TestCurveSVG(t *testing.T) {
	curve := &xray.ThicknessCurve{Points: []xray.SweepPoint{
		{ThicknessCM: 0, Attenuation: 0},
		{ThicknessCM: 0.5, Attenuation: 0.3},
		{ThicknessCM: 1, Attenuation: 0.55},
	}}
	svg := CurveSVG(curve, 640, 400, "calcite <3 cm>")

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete SVG document")
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("expected curve and reference line, got %d paths", got)
	}
	if !strings.Contains(svg, "calcite &lt;3 cm&gt;") {
		t.Error("expected escaped title")
	}
}

func TestPlotToSVG_Empty(t *testing.T) {
	if svg := PlotToSVG(nil, 100, 100, "", "", ""); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}

func TestSpectrumSVG(t *testing.T) {
	state := &xray.PipelineState{
		EnergyKeV:         []float64{20, 10},
		Source:            []float64{1, 3},
		Filtered:          []float64{0.9, 1},
		SampleTransmitted: []float64{0.5, 0.1},
		FilteredDetected:  []float64{0.8, 0.9},
		SampleDetected:    []float64{0.4, 0.09},
	}
	svg := SpectrumSVG(state, true, 640, 400, "spectrum")
	if !strings.Contains(svg, "wavelength") {
		t.Error("expected wavelength axis label")
	}
	if got := strings.Count(svg, "<path"); got != 5 {
		t.Errorf("expected 5 series, got %d", got)
	}
}
