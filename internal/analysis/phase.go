package analysis

import "strings"

type Point struct{ X, Y float64 }

// Portrait is a trajectory through two recorded columns, typically a
// position and its velocity.
type Portrait struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPortrait pairs columns xIdx and yIdx of every row. Rows too short for
// either index are skipped.
func NewPortrait(rows [][]float64, xIdx, yIdx int) *Portrait {
	p := &Portrait{Points: make([]Point, 0, len(rows))}
	for _, r := range rows {
		if xIdx >= len(r) || yIdx >= len(r) {
			continue
		}
		p.Points = append(p.Points, Point{r[xIdx], r[yIdx]})
	}
	return p
}

// Bounds returns the extent of the points padded by 10% on each side.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return -1, 1, -1, 1
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	rx, ry := maxX-minX, maxY-minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return minX - rx*0.1, maxX + rx*0.1, minY - ry*0.1, maxY + ry*0.1
}

// ASCII draws the portrait on a width x height character grid. The start
// is marked 'o', the end '@'.
func (p *Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/(maxY-minY)*float64(height-1))
		return max(0, min(width-1, col)), max(0, min(height-1, row))
	}

	for _, pt := range p.Points {
		c, r := cell(pt)
		grid[r][c] = '·'
	}
	c, r := cell(p.Points[0])
	grid[r][c] = 'o'
	c, r = cell(p.Points[len(p.Points)-1])
	grid[r][c] = '@'

	var b strings.Builder
	for i, row := range grid {
		b.WriteString(string(row))
		if i < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
