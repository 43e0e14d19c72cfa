package viz

import (
	"strings"

	"github.com/san-kum/blobsim/internal/sim"
)

// Each cell is a 2x4 braille block; dot bits by (row, col).
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille dot grid. Dot coordinates run (Width*2) x (Height*4)
// with Y down.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// Project maps an NDC point to dot coordinates. The [-1,1] square is
// stretched over the whole canvas.
func (c *Canvas) Project(p sim.Vec) (float64, float64) {
	w, h := c.Dots()
	return (p[0] + 1) / 2 * float64(w), (1 - p[1]) / 2 * float64(h)
}

// CellToNDC maps a terminal cell of the canvas to the NDC point under the
// centre of that cell.
func (c *Canvas) CellToNDC(col, row int) sim.Vec {
	w, h := c.Dots()
	vp := sim.Viewport{Width: float64(w), Height: float64(h)}
	return vp.ToNDC(float64(col*2+1), float64(row*4+2))
}

// FillEllipse sets every dot inside the ellipse with the given centre and
// radii, all in dot units.
func (c *Canvas) FillEllipse(cx, cy, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := int(cy - ry); y <= int(cy+ry)+1; y++ {
		for x := int(cx - rx); x <= int(cx+rx)+1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				c.Set(x, y)
			}
		}
	}
}

func (c *Canvas) FillRect(cx, cy, hx, hy float64) {
	for y := int(cy - hy + 0.5); y < int(cy+hy+0.5); y++ {
		for x := int(cx - hx + 0.5); x < int(cx+hx+0.5); x++ {
			c.Set(x, y)
		}
	}
}

// DrawLine uses Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawBody paints one body of the given shape at NDC position p.
func (c *Canvas) DrawBody(shape sim.Shape, p sim.Vec) {
	w, h := c.Dots()
	cx, cy := c.Project(p)
	switch shape.Kind {
	case sim.Rect:
		c.FillRect(cx, cy, shape.HalfX/2*float64(w), shape.HalfY/2*float64(h))
	default:
		c.FillEllipse(cx, cy, shape.Radius/2*float64(w), shape.Radius/2*float64(h))
	}
}

// DrawCross marks the origin.
func (c *Canvas) DrawCross(p sim.Vec, size int) {
	fx, fy := c.Project(p)
	x, y := int(fx), int(fy)
	c.DrawLine(x-size, y, x+size, y)
	c.DrawLine(x, y-size/2, x, y+size/2)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
