package sim

import "github.com/san-kum/blobsim/internal/integrators"

// Simulator owns one animation: its bodies, timers and flags. It is not safe
// for concurrent use; hosts serialise input and ticks.
type Simulator struct {
	params    Params
	state     State
	observers []Observer
}

func New(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Initial = append([]Vec(nil), p.Initial...)
	return &Simulator{
		params:    p,
		state:     NewState(p.Initial),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() Params { return s.params }

// State returns a copy of the current state.
func (s *Simulator) State() State { return s.state.Clone() }

func (s *Simulator) NumBodies() int { return len(s.state.Bodies) }

func (s *Simulator) Dragging() bool { return s.state.AnyDragging() }

// HitTest returns the first body, in stable order, whose shape contains p,
// or -1.
func (s *Simulator) HitTest(p Vec) int {
	for i := range s.state.Bodies {
		if s.params.Shape.Contains(s.state.Bodies[i].Pos, p) {
			return i
		}
	}
	return -1
}

// BeginDrag grabs the first body under p. Any press counts as user
// interaction, even one that misses every body.
func (s *Simulator) BeginDrag(p Vec) (int, bool) {
	s.state.UserInteracted = true
	for i := range s.state.Bodies {
		b := &s.state.Bodies[i]
		if b.Dragging() {
			continue
		}
		if s.params.Shape.Contains(b.Pos, p) {
			b.Mode = Dragging
			b.Vel = Vec{}
			return i, true
		}
	}
	return -1, false
}

// DragTo moves every dragged body to p, clamped to the drag bound.
func (s *Simulator) DragTo(p Vec) {
	lim := s.params.DragBound
	target := Vec{clamp(p[0], -lim, lim), clamp(p[1], -lim, lim)}
	for i := range s.state.Bodies {
		b := &s.state.Bodies[i]
		if b.Dragging() {
			b.Pos = target
			b.Vel = Vec{}
		}
	}
}

// EndDrag releases every body. Released bodies start from rest.
func (s *Simulator) EndDrag() {
	for i := range s.state.Bodies {
		s.state.Bodies[i].Mode = Idle
	}
}

// Step advances one fixed tick and notifies observers.
func (s *Simulator) Step() Events {
	ev := Advance(&s.state, &s.params, s.params.Dt)
	if len(s.observers) > 0 {
		snap := s.Snapshot()
		for _, o := range s.observers {
			o.OnStep(snap, ev)
		}
	}
	return ev
}

// Reset puts every body back at its initial position, exactly as the
// automatic reset does, and releases any drag.
func (s *Simulator) Reset() {
	resetState(&s.state)
}

func (s *Simulator) Snapshot() Snapshot {
	views := make([]BodyView, len(s.state.Bodies))
	for i, b := range s.state.Bodies {
		views[i] = BodyView{Pos: b.Pos, Vel: b.Vel, Dragging: b.Dragging()}
	}
	return Snapshot{
		Tick:           s.state.Tick,
		Time:           s.state.Time,
		Bodies:         views,
		CalmTimer:      s.state.CalmTimer,
		MergeKickArmed: s.state.MergeKickArmed,
		UserInteracted: s.state.UserInteracted,
		Shape:          s.params.Shape,
	}
}

func (s *Simulator) OnPointerDown(vp Viewport, x, y float64) (int, bool) {
	return s.BeginDrag(vp.ToNDC(x, y))
}

// OnPointerMove only has an effect while a body is dragged.
func (s *Simulator) OnPointerMove(vp Viewport, x, y float64) {
	if !s.state.AnyDragging() {
		return
	}
	s.DragTo(vp.ToNDC(x, y))
}

func (s *Simulator) OnPointerUp() { s.EndDrag() }

// Advance integrates st by dt under p. It is the whole per-tick transition:
// forces, integration, clamping, the merge kick and idle handling.
func Advance(st *State, p *Params, dt float64) Events {
	n := len(st.Bodies)
	anyDragging := st.AnyDragging()

	acc := make([]Vec, n)
	for i := range st.Bodies {
		b := &st.Bodies[i]
		if !b.Dragging() {
			acc[i] = CenterPull(p, b.Pos, b.Vel)
		}
	}
	if !anyDragging {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, ok := PairAccel(p, st.Bodies[i], st.Bodies[j])
				if !ok {
					continue
				}
				acc[i] = acc[i].Add(a)
				acc[j] = acc[j].Sub(a)
			}
		}
	}

	for i := range st.Bodies {
		b := &st.Bodies[i]
		if b.Dragging() {
			b.Vel = Vec{}
			continue
		}
		d := b.Pos.Len()
		b.Pos, b.Vel = integrators.SemiImplicitEuler(b.Pos, b.Vel, acc[i], dt)
		b.Vel = capSpeed(b.Vel, SpeedCapFor(p, d))
		b.Pos[0], b.Vel[0] = clampBounce(b.Pos[0], b.Vel[0], p.Bound, p.Restitution)
		b.Pos[1], b.Vel[1] = clampBounce(b.Pos[1], b.Vel[1], p.Bound, p.Restitution)
	}

	var ev Events
	if anyDragging {
		st.CalmTimer = 0
	} else {
		if mergeKick(st, p) {
			ev |= EventMergeKick
		}
		ev |= settle(st, p, dt)
	}

	st.Tick++
	st.Time += dt
	return ev
}
