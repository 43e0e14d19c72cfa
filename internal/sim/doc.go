// Package sim is the body simulator: a handful of draggable bodies pulled
// back to the origin by a spring-damper, coupled to each other, kept inside
// a square and reset to their starting layout once they have sat idle.
//
// All state lives in [State] and one tick is the pure transition [Advance].
// [Simulator] wraps a State with the pointer operations hosts call:
//
//	s, err := sim.New(sim.PairParams())
//	if err != nil {
//	    return err
//	}
//	s.OnPointerDown(vp, x, y)
//	ev := s.Step()
//	if ev.Has(sim.EventReset) {
//	    // back at the start
//	}
//
// # Variants
//
// [PairParams] is two circles that snap back to the start after half a
// second of calm, with a one-shot vertical kick when they meet after the
// user has touched them. [QuadParams] is four rectangles that are contracted
// onto the origin before the reset and never kick.
//
// Nothing in this package is safe for concurrent use. Hosts run input and
// ticks on one goroutine.
package sim
