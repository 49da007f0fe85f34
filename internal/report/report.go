// Package report renders simulation results for the terminal.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/beamhard/internal/analysis"
	"github.com/san-kum/beamhard/internal/xray"
)

const labelWidth = 24

// Simulation bundles everything printed after a simulate run.
type Simulation struct {
	Title    string
	Request  xray.Request
	Totals   xray.IntegratedTotals
	Result   *xray.EffectiveEnergyResult
	Spectrum analysis.SpectrumSummary
}

func row(label, value string) string {
	return Label.Render(fmt.Sprintf("%-*s", labelWidth, label)) + value + "\n"
}

func num(format string, v float64) string {
	if math.IsNaN(v) {
		return Subtle.Render("n/a")
	}
	return Value.Render(fmt.Sprintf(format, v))
}

// RenderSimulation formats the inputs echo and the results table.
func RenderSimulation(s Simulation) string {
	var b strings.Builder
	req := s.Request

	title := s.Title
	if title == "" {
		title = "beam hardening estimate"
	}
	b.WriteString(Title.Render(title) + "\n")
	b.WriteString(Separator(48) + "\n")

	b.WriteString(row("source", Value.Render(fmt.Sprintf("%s %g kV %g mA", req.Source.Target, req.Source.KV, req.Source.MA))))
	b.WriteString(row("energy grid", Value.Render(req.Grid.String())))
	b.WriteString(row("filter", material(req.Filter)))
	b.WriteString(row("sample", material(req.Sample)))
	b.WriteString(row("detector", material(req.Detector)))
	b.WriteString("\n")

	t := s.Totals
	b.WriteString(row("filter transmission", num("%.4f", t.FilterTransmission())))
	b.WriteString(row("detector absorption", num("%.4f", t.DetectorAbsorption())))
	b.WriteString(row("photon use", num("%.2f %%", t.PhotonUsePercent())))
	b.WriteString(row("mean energy source", num("%.2f keV", s.Spectrum.SourceMeanKeV)))
	b.WriteString(row("mean energy detected", num("%.2f keV", s.Spectrum.DetectedMeanKeV)))
	b.WriteString(row("mean energy behind sample", num("%.2f keV", s.Spectrum.SampleDetectedMeanKeV)))

	if s.Result != nil {
		b.WriteString("\n")
		b.WriteString(RenderResult(s.Result))
	}
	return b.String()
}

func material(m xray.Material) string {
	text := fmt.Sprintf("%s  %g cm  %g g/cc", m.Formula, m.ThicknessCM, m.Density)
	if m.Name != "" && m.Name != m.Formula {
		text = m.Name + "  " + text
	}
	return Value.Render(text)
}

// RenderResult formats both paths and the matched energies.
func RenderResult(r *xray.EffectiveEnergyResult) string {
	var b strings.Builder

	b.WriteString(row("sample tau", num("%.5f", r.Nominal.TauDetected)))
	b.WriteString(row("muLin nominal", num("%.5f /cm", r.Nominal.MuLin)))
	b.WriteString(row("muLin thin", num("%.5f /cm", r.Thin.MuLin)))
	b.WriteString(row("nominal status", status(r.Nominal.Status)))
	b.WriteString(row("thin status", status(r.Thin.Status)))

	if !r.HasSolution() {
		b.WriteString("\n" + Bad.Render("no effective energy found") + "\n")
	} else {
		b.WriteString("\n")
		b.WriteString(Label.Render(fmt.Sprintf("%-4s %12s %12s %12s %10s", "#", "nominal keV", "thin keV", "drift keV", "BH %")) + "\n")
		for _, m := range r.Matches {
			b.WriteString(fmt.Sprintf("%-4d %12.3f %12.3f %12.3f %s\n",
				m.Index, m.NominalKeV, m.ThinKeV, m.DriftKeV,
				Highlight.Render(fmt.Sprintf("%10.2f", m.HardeningPercent))))
		}
	}
	if len(r.UnmatchedNominal) > 0 {
		b.WriteString(row("unmatched nominal", Warn.Render(joinKeV(r.UnmatchedNominal))))
	}
	if len(r.UnmatchedThin) > 0 {
		b.WriteString(row("unmatched thin", Warn.Render(joinKeV(r.UnmatchedThin))))
	}
	return b.String()
}

func status(s xray.PathStatus) string {
	switch s {
	case xray.StatusSolved:
		return Good.Render(s.String())
	case xray.StatusNoSolution:
		return Warn.Render(s.String())
	}
	return Bad.Render(s.String())
}

func joinKeV(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return strings.Join(parts, ", ") + " keV"
}

// RenderCurve prints the sweep table followed by the curvature summary.
func RenderCurve(curve *xray.ThicknessCurve, c *analysis.Curvature) string {
	var b strings.Builder
	b.WriteString(Label.Render(fmt.Sprintf("%12s %14s", "t (cm)", "-ln(I/I0)")) + "\n")
	for _, p := range curve.Points {
		line := fmt.Sprintf("%12.4f %14.6f", p.ThicknessCM, p.Attenuation)
		if p.Degenerate {
			line += "  " + Bad.Render("degenerate")
		}
		b.WriteString(line + "\n")
	}

	if n := curve.DegenerateCount(); n > 0 {
		b.WriteString(Warn.Render(fmt.Sprintf("%d degenerate steps", n)) + "\n")
	}
	if c == nil {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(row("fit slope", num("%.5f /cm", c.Slope)))
	b.WriteString(row("fit r²", num("%.5f", c.RSquared)))
	b.WriteString(row("max deviation", num("%.5f", c.MaxDeviation)))
	b.WriteString(row("initial slope", num("%.5f /cm", c.InitialSlope)))
	b.WriteString(row("chord slope", num("%.5f /cm", c.ChordSlope)))
	b.WriteString(row("hardening ratio", num("%.4f", c.HardeningRatio)))
	concave := Warn.Render("no")
	if c.Concave {
		concave = Good.Render("yes")
	}
	b.WriteString(row("concave", concave))

	hvl1, hvl2, h := analysis.HalfValueLayers(curve)
	if hvl1 > 0 {
		b.WriteString(row("first HVL", num("%.4f cm", hvl1)))
	}
	if hvl2 > 0 {
		b.WriteString(row("second HVL", num("%.4f cm", hvl2)))
		b.WriteString(row("homogeneity", num("%.4f", h)))
	}
	return b.String()
}
