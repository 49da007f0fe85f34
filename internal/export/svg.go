package export

import (
	"fmt"
	"strings"
)

// Series is one polyline in an SVG plot.
type Series struct {
	Name   string
	X, Y   []float64
	Stroke string
}

// Palette cycles through these colours for series without a stroke.
var Palette = []string{"#00d7ff", "#ffd700", "#ff5fd7", "#5fff5f", "#ff8700"}

const svgMargin = 48.0

// PlotToSVG renders one or more series on shared axes with a dark
// background, a title and min/max tick labels.
func PlotToSVG(series []Series, width, height int, title, xLabel, yLabel string) string {
	minX, maxX, minY, maxY, ok := bounds(series)
	if !ok {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	w := float64(width) - 2*svgMargin
	h := float64(height) - 2*svgMargin
	px := func(x float64) float64 { return svgMargin + (x-minX)/rangeX*w }
	py := func(y float64) float64 { return svgMargin + h - (y-minY)/rangeY*h }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<g stroke="#444" stroke-width="1"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/></g>
`, svgMargin, svgMargin+h, svgMargin+w, svgMargin+h, svgMargin, svgMargin, svgMargin, svgMargin+h))

	sb.WriteString(`<g fill="#bbb" font-family="monospace" font-size="11">` + "\n")
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="13">%s</text>`+"\n", svgMargin, svgMargin/2, escape(title)))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f">%.4g</text>`+"\n", svgMargin, svgMargin+h+16, minX))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>`+"\n", svgMargin+w, svgMargin+h+16, maxX))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n", svgMargin+w/2, svgMargin+h+32, escape(xLabel)))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>`+"\n", svgMargin-4, svgMargin+h, minY))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>`+"\n", svgMargin-4, svgMargin+8, maxY))
	sb.WriteString(fmt.Sprintf(`<text x="12" y="%.1f" transform="rotate(-90 12 %.1f)" text-anchor="middle">%s</text>`+"\n", svgMargin+h/2, svgMargin+h/2, escape(yLabel)))
	sb.WriteString("</g>\n")

	for i, s := range series {
		if len(s.X) < 2 {
			continue
		}
		stroke := s.Stroke
		if stroke == "" {
			stroke = Palette[i%len(Palette)]
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
		for j := range s.X {
			if j > 0 {
				sb.WriteString(" L")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(s.X[j]), py(s.Y[j])))
		}
		sb.WriteString(`"/>` + "\n")
		if s.Name != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11" text-anchor="end">%s</text>`+"\n",
				svgMargin+w, svgMargin+14*float64(i+1), stroke, escape(s.Name)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(series []Series) (minX, maxX, minY, maxY float64, ok bool) {
	for _, s := range series {
		n := min(len(s.X), len(s.Y))
		for j := 0; j < n; j++ {
			if !ok {
				minX, maxX, minY, maxY = s.X[j], s.X[j], s.Y[j], s.Y[j]
				ok = true
				continue
			}
			minX = min(minX, s.X[j])
			maxX = max(maxX, s.X[j])
			minY = min(minY, s.Y[j])
			maxY = max(maxY, s.Y[j])
		}
	}
	return minX, maxX, minY, maxY, ok
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return svgEscaper.Replace(s)
}
