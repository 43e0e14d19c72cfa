package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSemiImplicitEulerUsesNewVelocity(t *testing.T) {
	pos := mgl64.Vec2{0.5, 0}
	vel := mgl64.Vec2{0, 0}
	acc := mgl64.Vec2{-0.5, 0}
	dt := 0.016

	p, v := SemiImplicitEuler(pos, vel, acc, dt)

	if math.Abs(v[0]-(-0.008)) > 1e-12 {
		t.Errorf("vx = %.9f, want -0.008", v[0])
	}
	if math.Abs(p[0]-0.499872) > 1e-12 {
		t.Errorf("x = %.9f, want 0.499872", p[0])
	}
	if p[1] != 0 || v[1] != 0 {
		t.Errorf("y axis moved: p=%v v=%v", p, v)
	}
}

func TestSemiImplicitEulerHarmonicOscillator(t *testing.T) {
	// x'' = -x, starting at rest from x=1. Semi-implicit Euler is symplectic,
	// so amplitude stays bounded over many periods.
	pos := mgl64.Vec2{1, 0}
	vel := mgl64.Vec2{}
	dt := 0.01
	steps := int(2 * math.Pi / dt)

	for i := 0; i < steps*10; i++ {
		pos, vel = SemiImplicitEuler(pos, vel, pos.Mul(-1), dt)
	}

	if a := pos.Len(); a > 1.01 {
		t.Errorf("amplitude grew to %.4f", a)
	}
	if math.Abs(pos[0]-1) > 0.05 {
		t.Errorf("after 10 periods x = %.4f, want ~1", pos[0])
	}
}
