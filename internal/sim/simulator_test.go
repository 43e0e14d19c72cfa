package sim

import (
	"errors"
	"math"
	"testing"
)

func singleBody(pos Vec) Params {
	p := PairParams()
	p.Initial = []Vec{pos}
	return p
}

func mustNew(t *testing.T, p Params) *Simulator {
	t.Helper()
	s, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestGoldenStep(t *testing.T) {
	s := mustNew(t, singleBody(Vec{0.5, 0}))
	s.Step()

	b := s.State().Bodies[0]
	if math.Abs(b.Vel[0]-(-0.008)) > 1e-12 {
		t.Errorf("vx = %.9f, want -0.008", b.Vel[0])
	}
	if math.Abs(b.Pos[0]-0.499872) > 1e-12 {
		t.Errorf("x = %.9f, want 0.499872", b.Pos[0])
	}
	if b.Pos[1] != 0 || b.Vel[1] != 0 {
		t.Errorf("y drifted: pos=%v vel=%v", b.Pos, b.Vel)
	}
}

func TestPositionUsesNewVelocity(t *testing.T) {
	s := mustNew(t, singleBody(Vec{0.3, -0.2}))
	for i := 0; i < 10; i++ {
		before := s.State().Bodies[0]
		s.Step()
		after := s.State().Bodies[0]
		want := before.Pos.Add(after.Vel.Mul(s.Params().Dt))
		if !after.Pos.ApproxEqualThreshold(want, 1e-12) {
			t.Fatalf("tick %d: pos %v, want %v", i, after.Pos, want)
		}
	}
}

func TestPullReducesDistance(t *testing.T) {
	starts := []Vec{{0.5, 0}, {-0.4, 0.4}, {0, -0.9}, {0.05, 0.02}}
	for _, start := range starts {
		s := mustNew(t, singleBody(start))
		s.Step()
		if got := s.State().Bodies[0].Pos.Len(); got >= start.Len() {
			t.Errorf("start %v: |x| went from %f to %f", start, start.Len(), got)
		}
	}
}

func TestOverdampedPullIsMonotone(t *testing.T) {
	p := singleBody(Vec{0.9, 0})
	p.Damping = 3
	s := mustNew(t, p)

	prev := 0.9
	for i := 0; i < 5000; i++ {
		ev := s.Step()
		if ev.Has(EventReset) {
			if i == 0 {
				t.Fatal("reset on the first tick")
			}
			return
		}
		got := s.State().Bodies[0].Pos.Len()
		if got > prev {
			t.Fatalf("tick %d: |x| grew from %v to %v", i, prev, got)
		}
		if got > p.Bound {
			t.Fatalf("tick %d: |x| = %v past the bound", i, got)
		}
		prev = got
	}
	t.Fatal("no reset within 5000 ticks")
}

func TestDampingFor(t *testing.T) {
	q := QuadParams()
	tests := []struct {
		d    float64
		want float64
	}{
		{0.9, 1.5},
		{0.7, 1.5},
		{0.5, 3.0 + 0.2*7},
		{0, 3.0 + 0.7*7},
	}
	for _, tt := range tests {
		if got := DampingFor(&q, tt.d); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("DampingFor(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}

	p := PairParams()
	if got := DampingFor(&p, 0.01); got != 0.6 {
		t.Errorf("pair damping near centre = %v, want 0.6", got)
	}
}

func TestSpeedCapFor(t *testing.T) {
	q := QuadParams()
	if got := SpeedCapFor(&q, 0.5); got != 1.0 {
		t.Errorf("far cap = %v", got)
	}
	if got := SpeedCapFor(&q, 0.1); math.Abs(got-(0.3+0.233)) > 1e-12 {
		t.Errorf("near cap = %v", got)
	}

	q.MaxSpeed = 0
	if got := SpeedCapFor(&q, 0.1); !math.IsInf(got, 1) {
		t.Errorf("disabled cap = %v, want +Inf", got)
	}
}

func TestPairAccelRange(t *testing.T) {
	q := QuadParams()
	a := Body{Pos: Vec{0.1, 0}}
	b := Body{Pos: Vec{-0.1, 0}}
	acc, ok := PairAccel(&q, a, b)
	if !ok {
		t.Fatal("bodies 0.2 apart should couple")
	}
	if acc[0] >= 0 {
		t.Errorf("coupling should pull a toward b, got %v", acc)
	}

	far := Body{Pos: Vec{-0.5, 0}}
	if _, ok := PairAccel(&q, a, far); ok {
		t.Error("bodies 0.6 apart should not couple")
	}
}

func TestCapSpeed(t *testing.T) {
	v := capSpeed(Vec{3, 4}, 1)
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("capped speed = %v", v.Len())
	}
	if math.Abs(v[0]/v[1]-0.75) > 1e-12 {
		t.Errorf("direction changed: %v", v)
	}
	if got := capSpeed(Vec{}, 1); got != (Vec{}) {
		t.Errorf("zero velocity changed: %v", got)
	}
}

func TestClampBounce(t *testing.T) {
	tests := []struct {
		pos, vel         float64
		wantPos, wantVel float64
	}{
		{0.5, 1, 0.5, 1},
		{1.2, 2, 0.95, -1},
		{-1.0, -0.4, -0.95, 0.2},
	}
	for _, tt := range tests {
		pos, vel := clampBounce(tt.pos, tt.vel, 0.95, 0.5)
		if pos != tt.wantPos || vel != tt.wantVel {
			t.Errorf("clampBounce(%v, %v) = (%v, %v), want (%v, %v)",
				tt.pos, tt.vel, pos, vel, tt.wantPos, tt.wantVel)
		}
	}
}

func TestBoundsHold(t *testing.T) {
	for _, p := range []Params{PairParams(), QuadParams()} {
		s := mustNew(t, p)
		for i := range s.state.Bodies {
			s.state.Bodies[i].Vel = Vec{5, -5}
		}
		for i := 0; i < 500; i++ {
			s.Step()
			for j, b := range s.State().Bodies {
				if math.Abs(b.Pos[0]) > p.Bound || math.Abs(b.Pos[1]) > p.Bound {
					t.Fatalf("tick %d body %d out of bounds: %v", i, j, b.Pos)
				}
			}
		}
	}
}

func TestDragClamp(t *testing.T) {
	s := mustNew(t, PairParams())
	if i, ok := s.BeginDrag(Vec{-0.5, 0}); !ok || i != 0 {
		t.Fatalf("BeginDrag = (%d, %v), want (0, true)", i, ok)
	}
	s.DragTo(Vec{2, -2})
	if got := s.State().Bodies[0].Pos; got != (Vec{0.8, -0.8}) {
		t.Errorf("dragged pos = %v, want [0.8 -0.8]", got)
	}
}

func TestBeginDragMissStillCountsAsInteraction(t *testing.T) {
	s := mustNew(t, PairParams())
	if _, ok := s.BeginDrag(Vec{0, 0.9}); ok {
		t.Fatal("press at (0, 0.9) should miss")
	}
	if !s.State().UserInteracted {
		t.Error("a missed press should still set UserInteracted")
	}
	if s.Dragging() {
		t.Error("nothing should be dragged")
	}
}

func TestHitTestStableOrder(t *testing.T) {
	p := PairParams()
	p.Initial = []Vec{{0, 0}, {0, 0}}
	s := mustNew(t, p)

	if got := s.HitTest(Vec{0.1, 0}); got != 0 {
		t.Errorf("HitTest = %d, want 0", got)
	}
	if i, _ := s.BeginDrag(Vec{0, 0}); i != 0 {
		t.Errorf("first grab = %d, want 0", i)
	}
	if i, _ := s.BeginDrag(Vec{0, 0}); i != 1 {
		t.Errorf("second grab = %d, want 1", i)
	}
	s.EndDrag()
	if s.Dragging() {
		t.Error("EndDrag should release every body")
	}
}

func TestPointerEvents(t *testing.T) {
	s := mustNew(t, PairParams())
	vp := Viewport{Width: 800, Height: 600}

	// (-0.5, 0) in NDC is pixel (200, 300).
	if i, ok := s.OnPointerDown(vp, 200, 300); !ok || i != 0 {
		t.Fatalf("OnPointerDown = (%d, %v)", i, ok)
	}
	s.OnPointerMove(vp, 400, 150)
	if got := s.State().Bodies[0].Pos; !got.ApproxEqualThreshold(Vec{0, 0.5}, 1e-12) {
		t.Errorf("pos after move = %v, want [0 0.5]", got)
	}
	s.OnPointerUp()

	before := s.State().Bodies[1].Pos
	s.OnPointerMove(vp, 0, 0)
	if got := s.State().Bodies[1].Pos; got != before {
		t.Error("move without a drag should not change anything")
	}
}

func TestViewport(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	tests := []struct {
		x, y float64
		want Vec
	}{
		{400, 300, Vec{0, 0}},
		{0, 0, Vec{-1, 1}},
		{-50, 700, Vec{-1, 1 - 599.0/300}},
	}
	for _, tt := range tests {
		if got := vp.ToNDC(tt.x, tt.y); !got.ApproxEqualThreshold(tt.want, 1e-12) {
			t.Errorf("ToNDC(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if got := (Viewport{Width: 0, Height: 600}).ToNDC(10, 10); got != (Vec{}) {
		t.Errorf("degenerate viewport = %v, want origin", got)
	}
	if got := ToTexture(Vec{-1, 1}); got != (Vec{0, 1}) {
		t.Errorf("ToTexture = %v", got)
	}
}

func TestShapeContains(t *testing.T) {
	rect := Shape{Kind: Rect, HalfX: 0.18, HalfY: 0.12, GrabMargin: 0.03}
	circle := Shape{Kind: Circle, Radius: 0.28}
	tests := []struct {
		name  string
		shape Shape
		p     Vec
		want  bool
	}{
		{"rect inside margin", rect, Vec{0.2, 0}, true},
		{"rect outside margin", rect, Vec{0.22, 0}, false},
		{"rect corner", rect, Vec{0.2, 0.14}, true},
		{"circle edge", circle, Vec{0.28, 0}, true},
		{"circle outside", circle, Vec{0.2, 0.2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Contains(Vec{}, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"zero dt", func(p *Params) { p.Dt = 0 }, "dt"},
		{"nan dt", func(p *Params) { p.Dt = math.NaN() }, "dt"},
		{"drag bound past bound", func(p *Params) { p.DragBound = 1 }, "drag_bound"},
		{"no bodies", func(p *Params) { p.Initial = nil }, "initial"},
		{"body outside", func(p *Params) { p.Initial = []Vec{{2, 0}} }, "initial[0]"},
		{"zero radius", func(p *Params) { p.Shape.Radius = 0 }, "shape.radius"},
		{"nan stiffness", func(p *Params) { p.Stiffness = math.NaN() }, "stiffness"},
		{"nan damping", func(p *Params) { p.Damping = math.NaN() }, "damping"},
		{"nan pair stiffness", func(p *Params) { p.PairStiffness = math.NaN() }, "pair_stiffness"},
		{"negative pair damping", func(p *Params) { p.PairDamping = -1 }, "pair_damping"},
		{"nan pair gain", func(p *Params) { p.PairGain = math.NaN() }, "pair_gain"},
		{"nan max speed", func(p *Params) { p.MaxSpeed = math.NaN() }, "max_speed"},
		{"nan restitution", func(p *Params) { p.Restitution = math.NaN() }, "restitution"},
		{"nan tolerance", func(p *Params) { p.SpeedEpsilon = math.NaN() }, "center_tolerance"},
		{"nan impulse", func(p *Params) { p.MergeImpulse = math.NaN() }, "merge_impulse"},
		{"nan contract factor", func(p *Params) {
			p.Policy = SettleContract
			p.Contract = Contraction{Near: math.NaN(), Far: 0.9, SnapEpsSq: 1e-4}
		}, "contract"},
		{"contract factor", func(p *Params) {
			p.Policy = SettleContract
			p.Contract = Contraction{Near: 1.2, Far: 0.9, SnapEpsSq: 1e-4}
		}, "contract"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PairParams()
			tt.mutate(&p)
			_, err := New(p)
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("err = %v, want ErrInvalidParams", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Field != tt.field {
				t.Errorf("field = %v, want %q", pe, tt.field)
			}
		})
	}

	for _, p := range []Params{PairParams(), QuadParams()} {
		if err := p.Validate(); err != nil {
			t.Errorf("built-in params invalid: %v", err)
		}
	}
}

func TestSetParam(t *testing.T) {
	p := PairParams()
	for i, name := range TunableParams {
		if err := p.SetParam(name, float64(i+1)); err != nil {
			t.Fatalf("SetParam(%q): %v", name, err)
		}
	}
	if p.Dt != 1 || p.Stiffness != 2 || p.MergeImpulse != 10 {
		t.Errorf("values not applied: dt=%v stiffness=%v impulse=%v", p.Dt, p.Stiffness, p.MergeImpulse)
	}

	err := p.SetParam("gravity", 1)
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Field != "gravity" {
		t.Errorf("err = %v, want ParamError for gravity", err)
	}
}

func TestSetupError(t *testing.T) {
	cause := errors.New("address in use")
	err := error(&SetupError{Stage: "listen", Err: cause})
	if !errors.Is(err, ErrSetup) || !errors.Is(err, cause) {
		t.Errorf("SetupError should match both ErrSetup and its cause")
	}
}

func TestEventsString(t *testing.T) {
	if got := Events(0).String(); got != "none" {
		t.Errorf("got %q", got)
	}
	if got := (EventMergeKick | EventReset).String(); got != "merge_kick|reset" {
		t.Errorf("got %q", got)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := mustNew(t, PairParams())
	c := s.State()
	c.Bodies[0].Pos = Vec{0.9, 0.9}
	if s.State().Bodies[0].Pos == c.Bodies[0].Pos {
		t.Error("State() shares body storage with the simulator")
	}
}

func TestObserversSeeEveryStep(t *testing.T) {
	s := mustNew(t, PairParams())
	var ticks []int
	s.AddObserver(ObserverFunc(func(snap Snapshot, _ Events) {
		ticks = append(ticks, snap.Tick)
	}))
	for i := 0; i < 5; i++ {
		s.Step()
	}
	if len(ticks) != 5 || ticks[4] != 5 {
		t.Errorf("observed ticks = %v", ticks)
	}
}

func TestAdvanceMatchesStep(t *testing.T) {
	p := QuadParams()
	s := mustNew(t, p)
	st := s.State()
	for i := 0; i < 50; i++ {
		s.Step()
		Advance(&st, &p, p.Dt)
	}
	got := s.State()
	for i := range st.Bodies {
		if st.Bodies[i] != got.Bodies[i] {
			t.Fatalf("body %d: Advance %v, Step %v", i, st.Bodies[i], got.Bodies[i])
		}
	}
}
