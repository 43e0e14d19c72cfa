package sim

// Viewport maps host pixel coordinates (Y down) onto normalized device
// coordinates (Y up).
type Viewport struct {
	Width  float64
	Height float64
}

// ToNDC clamps (x, y) into the viewport and converts it. A viewport with no
// area maps everything to the origin.
func (v Viewport) ToNDC(x, y float64) Vec {
	if v.Width <= 0 || v.Height <= 0 {
		return Vec{}
	}
	x = clamp(x, 0, v.Width-1)
	y = clamp(y, 0, v.Height-1)
	return Vec{x/v.Width*2 - 1, 1 - y/v.Height*2}
}

// ToTexture converts an NDC position to [0,1] texture space.
func ToTexture(p Vec) Vec {
	return Vec{p[0]*0.5 + 0.5, p[1]*0.5 + 0.5}
}
