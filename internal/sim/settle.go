package sim

import "math"

// mergeKick fires the one-shot vertical impulse once both flags are set and
// every body sits on the origin. Even-indexed bodies go up, odd go down.
func mergeKick(st *State, p *Params) bool {
	if p.MergeImpulse == 0 || !st.MergeKickArmed || !st.UserInteracted {
		return false
	}
	for i := range st.Bodies {
		if !within(st.Bodies[i].Pos, p.MergeTolerance) {
			return false
		}
	}
	for i := range st.Bodies {
		if i%2 == 0 {
			st.Bodies[i].Vel[1] += p.MergeImpulse
		} else {
			st.Bodies[i].Vel[1] -= p.MergeImpulse
		}
	}
	st.MergeKickArmed = false
	st.UserInteracted = false
	return true
}

// Settled reports whether every body is near the centre and slow.
func Settled(st *State, p *Params) bool {
	for i := range st.Bodies {
		b := &st.Bodies[i]
		if !within(b.Pos, p.CenterTolerance) || b.Speed() >= p.SpeedEpsilon {
			return false
		}
	}
	return true
}

func settle(st *State, p *Params, dt float64) Events {
	if !Settled(st, p) {
		st.CalmTimer = 0
		return 0
	}
	st.CalmTimer += dt

	switch p.Policy {
	case SettleContract:
		var ev Events
		before := converged(st)
		contract(st, &p.Contract)
		after := converged(st)
		if after && !before {
			ev |= EventConverged
		}
		if after && st.CalmTimer >= p.CalmThreshold {
			resetState(st)
			ev |= EventReset
		}
		return ev
	default:
		if st.CalmTimer >= p.CalmThreshold {
			resetState(st)
			return EventReset
		}
		return 0
	}
}

func contract(st *State, c *Contraction) {
	for i := range st.Bodies {
		b := &st.Bodies[i]
		distSq := b.Pos.Dot(b.Pos)
		if distSq < c.BandSq {
			b.Vel = b.Vel.Mul(c.VelFactor)
			b.Pos = b.Pos.Mul(c.Near)
		} else {
			b.Pos = b.Pos.Mul(c.Far)
		}
		if distSq < c.SnapEpsSq {
			b.Pos = Vec{}
			b.Vel = Vec{}
		}
	}
}

func converged(st *State) bool {
	for i := range st.Bodies {
		b := &st.Bodies[i]
		if b.Pos != (Vec{}) || b.Vel != (Vec{}) {
			return false
		}
	}
	return true
}

func resetState(st *State) {
	for i := range st.Bodies {
		b := &st.Bodies[i]
		b.Pos = b.Initial
		b.Vel = Vec{}
		b.Mode = Idle
	}
	st.CalmTimer = 0
	st.MergeKickArmed = true
	st.UserInteracted = false
}

func within(v Vec, tol float64) bool {
	return math.Abs(v[0]) <= tol && math.Abs(v[1]) <= tol
}
