package sim

import "github.com/go-gl/mathgl/mgl64"

// Vec is a point or direction in normalized device coordinates.
type Vec = mgl64.Vec2

type Mode int

const (
	Idle Mode = iota
	Dragging
)

func (m Mode) String() string {
	if m == Dragging {
		return "dragging"
	}
	return "idle"
}

type Body struct {
	Pos     Vec
	Vel     Vec
	Mode    Mode
	Initial Vec
}

func (b Body) Dragging() bool { return b.Mode == Dragging }

func (b Body) Speed() float64 { return b.Vel.Len() }

// State is everything that changes from tick to tick.
type State struct {
	Bodies         []Body
	CalmTimer      float64
	MergeKickArmed bool
	UserInteracted bool
	Tick           int
	Time           float64
}

// NewState places one body at each initial position, at rest, with the merge
// kick armed.
func NewState(initial []Vec) State {
	bodies := make([]Body, len(initial))
	for i, p := range initial {
		bodies[i] = Body{Pos: p, Initial: p}
	}
	return State{Bodies: bodies, MergeKickArmed: true}
}

func (s *State) AnyDragging() bool {
	for i := range s.Bodies {
		if s.Bodies[i].Dragging() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Bodies = make([]Body, len(s.Bodies))
	copy(c.Bodies, s.Bodies)
	return c
}

// Events reports what happened during a single step.
type Events uint8

const (
	EventMergeKick Events = 1 << iota
	EventReset
	EventConverged
)

func (e Events) Has(flag Events) bool { return e&flag != 0 }

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if e.Has(EventMergeKick) {
		add("merge_kick")
	}
	if e.Has(EventReset) {
		add("reset")
	}
	if e.Has(EventConverged) {
		add("converged")
	}
	return s
}

type BodyView struct {
	Pos      Vec  `json:"pos"`
	Vel      Vec  `json:"vel"`
	Dragging bool `json:"dragging"`
}

// Snapshot is a read-only view of the simulation handed to renderers,
// metrics and recorders.
type Snapshot struct {
	Tick           int        `json:"tick"`
	Time           float64    `json:"time"`
	Bodies         []BodyView `json:"bodies"`
	CalmTimer      float64    `json:"calm_timer"`
	MergeKickArmed bool       `json:"merge_kick_armed"`
	UserInteracted bool       `json:"user_interacted"`
	Shape          Shape      `json:"shape"`
}

// Observer is notified after every step.
type Observer interface {
	OnStep(snap Snapshot, ev Events)
}

type ObserverFunc func(snap Snapshot, ev Events)

func (f ObserverFunc) OnStep(snap Snapshot, ev Events) { f(snap, ev) }
