package sim

import (
	"fmt"
	"math"
)

type ShapeKind int

const (
	Circle ShapeKind = iota
	Rect
)

func (k ShapeKind) String() string {
	switch k {
	case Circle:
		return "circle"
	case Rect:
		return "rect"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "circle", "":
		return Circle, nil
	case "rect", "rectangle":
		return Rect, nil
	}
	return Circle, fmt.Errorf("unknown shape: %q", s)
}

// Shape holds the static extents shared by every body. Radius is used by
// circles; HalfX/HalfY by rectangles. GrabMargin widens the rectangle hit box
// so the blended rim can be picked up.
type Shape struct {
	Kind       ShapeKind `json:"kind" yaml:"kind"`
	Radius     float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
	HalfX      float64   `json:"half_x,omitempty" yaml:"half_x,omitempty"`
	HalfY      float64   `json:"half_y,omitempty" yaml:"half_y,omitempty"`
	GrabMargin float64   `json:"grab_margin,omitempty" yaml:"grab_margin,omitempty"`
}

// Contains reports whether p hits a body centred at c.
func (s Shape) Contains(c, p Vec) bool {
	d := p.Sub(c)
	switch s.Kind {
	case Rect:
		return math.Abs(d[0]) <= s.HalfX+s.GrabMargin && math.Abs(d[1]) <= s.HalfY+s.GrabMargin
	default:
		return d.Dot(d) <= s.Radius*s.Radius
	}
}
