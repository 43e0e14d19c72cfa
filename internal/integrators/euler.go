package integrators

import "github.com/go-gl/mathgl/mgl64"

// SemiImplicitEuler advances one body by dt. Velocity is updated first and
// the new velocity moves the position.
func SemiImplicitEuler(pos, vel, acc mgl64.Vec2, dt float64) (mgl64.Vec2, mgl64.Vec2) {
	vel = vel.Add(acc.Mul(dt))
	pos = pos.Add(vel.Mul(dt))
	return pos, vel
}
