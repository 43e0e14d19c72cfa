package sim

import "math"

// DampingFor returns the centre-pull damping for a body at distance d from
// the origin. Damping grows toward the centre so bodies do not overshoot it.
func DampingFor(p *Params, d float64) float64 {
	r := p.NearDamping
	if r.Radius > 0 && d < r.Radius {
		return r.AtRadius + (r.Radius-d)*r.PerUnit
	}
	return p.Damping
}

// SpeedCapFor returns the maximum speed at distance d, or +Inf when the cap
// is disabled.
func SpeedCapFor(p *Params, d float64) float64 {
	if p.MaxSpeed <= 0 {
		return math.Inf(1)
	}
	r := p.NearSpeed
	if r.Radius > 0 && d < r.Radius {
		return r.AtCenter + d*r.PerUnit
	}
	return p.MaxSpeed
}

// CenterPull is the spring-damper acceleration toward the origin.
func CenterPull(p *Params, pos, vel Vec) Vec {
	c := DampingFor(p, pos.Len())
	return pos.Mul(-p.Stiffness).Sub(vel.Mul(c))
}

// PairAccel is the coupling acceleration on body a from body b. Body b
// receives the negation. ok is false when the pair is out of range.
func PairAccel(p *Params, a, b Body) (Vec, bool) {
	d := a.Pos.Sub(b.Pos)
	if p.PairRange > 0 && d.Dot(d) >= p.PairRange*p.PairRange {
		return Vec{}, false
	}
	dv := a.Vel.Sub(b.Vel)
	acc := d.Mul(-p.PairStiffness).Sub(dv.Mul(p.PairDamping))
	return acc.Mul(p.PairGain), true
}

// capSpeed rescales v to at most limit, keeping its direction.
func capSpeed(v Vec, limit float64) Vec {
	speed := v.Len()
	if speed == 0 || speed <= limit {
		return v
	}
	return v.Mul(limit / speed)
}

// clampBounce keeps one axis inside ±bound, reflecting and attenuating the
// velocity on contact.
func clampBounce(pos, vel, bound, restitution float64) (float64, float64) {
	if pos < -bound {
		return -bound, -vel * restitution
	}
	if pos > bound {
		return bound, -vel * restitution
	}
	return pos, vel
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
