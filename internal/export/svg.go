package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/viz"
)

// Colors shared by the SVG renderers.
const (
	backgroundFill = "#0a0a0a"
	upFill         = "#22c55e"
	downFill       = "#ef4444"
	flatFill       = "#6b7280"
	labelFill      = "#f8fafc"

	// Scaled radius below which the symbol label is dropped; smaller
	// bubbles cannot fit readable text.
	labelMinRadius = 14.0
)

// changeColor picks the fill for a percent change. Moves inside +/-0.05%
// read as flat.
func changeColor(pct float64) string {
	switch {
	case pct > 0.05:
		return upFill
	case pct < -0.05:
		return downFill
	default:
		return flatFill
	}
}

// SceneToSVG renders packed nodes as a vector scene: one circle per bubble,
// filled by change direction, with symbol labels on bubbles large enough to
// carry them. Nodes without layout state are skipped.
func SceneToSVG(nodes []*bubble.Node, w, h float64, tf market.Timeframe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, backgroundFill))

	// Large bubbles first so smaller ones stay visible on top.
	order := make([]*bubble.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Layout != nil {
			order = append(order, n)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].ScaledRadius() > order[j].ScaledRadius()
	})

	for _, n := range order {
		r := n.ScaledRadius()
		pct := market.ChangePercent(n.Instrument, tf)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.82"/>
`, n.Layout.X, n.Layout.Y, r, changeColor(pct)))
		if r >= labelMinRadius {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>
`, n.Layout.X, n.Layout.Y, r*0.42, labelFill, xmlEscape(strings.ToUpper(n.Instrument.Symbol))))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG, one small circle per lit
// dot. Useful for snapshotting exactly what the TUI showed.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, backgroundFill, upFill))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Point is a 2D sample along a recorded trail.
type Point struct {
	X, Y float64
}

// TrailToSVG draws one bubble's recorded path as a polyline, auto-fitted to
// the image with 10% padding. Fewer than two points make no trail.
func TrailToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, backgroundFill, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := (p.Y - minY) / rangeY * float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
