package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// toPixels maps NDC onto a size x size image with Y down.
func toPixels(p sim.Vec, size float64) (float64, float64) {
	return (p[0] + 1) / 2 * size, (1 - p[1]) / 2 * size
}

// CanvasSVG draws every set braille dot of c as a small circle.
func CanvasSVG(c *viz.Canvas, scale float64, color string) string {
	if c == nil {
		return ""
	}
	w, h := c.Dots()
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FrameSVG draws the bodies of one frame with their real geometry. Colors
// are used per body, cycling.
func FrameSVG(shape sim.Shape, positions []sim.Vec, size int, colors []string) string {
	s := float64(size)
	var sb strings.Builder
	header(&sb, s, s)
	cx, cy := toPixels(sim.Vec{}, s)
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2\" fill=\"#555555\"/>\n", cx, cy)

	for i, p := range positions {
		color := pick(colors, i)
		x, y := toPixels(p, s)
		switch shape.Kind {
		case sim.Rect:
			w, h := shape.HalfX*s, shape.HalfY*s
			fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\" fill-opacity=\"0.8\"/>\n",
				x-w/2, y-h/2, w, h, color)
		default:
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\" fill-opacity=\"0.8\"/>\n",
				x, y, shape.Radius*s/2, color)
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectorySVG draws one polyline per body over the [-1,1] square.
func TrajectorySVG(paths [][]sim.Vec, size int, colors []string) string {
	s := float64(size)
	var sb strings.Builder
	header(&sb, s, s)

	for i, path := range paths {
		if len(path) < 2 {
			continue
		}
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", pick(colors, i))
		for j, p := range path {
			x, y := toPixels(p, s)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func pick(colors []string, i int) string {
	if len(colors) == 0 {
		return "#00ff00"
	}
	return colors[i%len(colors)]
}
