package sim

import (
	"fmt"
	"math"
)

// SettlePolicy chooses how an idle system returns to its start.
type SettlePolicy int

const (
	// SettleSnap waits for the calm timer, then snaps every body back to its
	// initial position.
	SettleSnap SettlePolicy = iota
	// SettleContract shrinks positions and velocities toward the centre while
	// settled, snaps them to exactly zero, then resets once the calm timer
	// has run out.
	SettleContract
)

func (p SettlePolicy) String() string {
	switch p {
	case SettleSnap:
		return "snap"
	case SettleContract:
		return "contract"
	}
	return fmt.Sprintf("SettlePolicy(%d)", int(p))
}

func ParseSettlePolicy(s string) (SettlePolicy, error) {
	switch s {
	case "snap", "":
		return SettleSnap, nil
	case "contract":
		return SettleContract, nil
	}
	return SettleSnap, fmt.Errorf("unknown settle policy: %q", s)
}

func (p SettlePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *SettlePolicy) UnmarshalText(b []byte) error {
	v, err := ParseSettlePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (k ShapeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ShapeKind) UnmarshalText(b []byte) error {
	v, err := ParseShapeKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// DampingRamp raises the centre-pull damping inside Radius:
// c = AtRadius + (Radius-d)*PerUnit. A zero Radius disables it.
type DampingRamp struct {
	Radius   float64 `yaml:"radius"`
	AtRadius float64 `yaml:"at_radius"`
	PerUnit  float64 `yaml:"per_unit"`
}

// SpeedRamp lowers the speed cap inside Radius: cap = AtCenter + d*PerUnit.
// A zero Radius disables it.
type SpeedRamp struct {
	Radius   float64 `yaml:"radius"`
	AtCenter float64 `yaml:"at_center"`
	PerUnit  float64 `yaml:"per_unit"`
}

// Contraction tunes SettleContract.
type Contraction struct {
	BandSq    float64 `yaml:"band_sq"`     // inside: strong contraction
	Near      float64 `yaml:"near"`        // position factor inside the band
	Far       float64 `yaml:"far"`         // position factor outside the band
	VelFactor float64 `yaml:"vel_factor"`  // velocity factor inside the band
	SnapEpsSq float64 `yaml:"snap_eps_sq"` // below: snap to exactly zero
}

// Params is the full tuning of one engine instance. Variants differ only in
// their Params.
type Params struct {
	Dt float64 `yaml:"dt"`

	Stiffness   float64     `yaml:"stiffness"`
	Damping     float64     `yaml:"damping"`
	NearDamping DampingRamp `yaml:"near_damping"`

	PairStiffness float64 `yaml:"pair_stiffness"`
	PairDamping   float64 `yaml:"pair_damping"`
	PairGain      float64 `yaml:"pair_gain"`
	// PairRange limits coupling to bodies closer than this. Zero couples
	// every pair.
	PairRange float64 `yaml:"pair_range"`

	MaxSpeed  float64   `yaml:"max_speed"` // zero disables the cap
	NearSpeed SpeedRamp `yaml:"near_speed"`

	Bound       float64 `yaml:"bound"`
	DragBound   float64 `yaml:"drag_bound"`
	Restitution float64 `yaml:"restitution"`

	CenterTolerance float64 `yaml:"center_tolerance"`
	SpeedEpsilon    float64 `yaml:"speed_epsilon"`
	CalmThreshold   float64 `yaml:"calm_threshold"`

	MergeImpulse   float64 `yaml:"merge_impulse"` // zero disables the kick
	MergeTolerance float64 `yaml:"merge_tolerance"`

	Policy   SettlePolicy `yaml:"policy"`
	Contract Contraction  `yaml:"contract"`

	Shape   Shape `yaml:"shape"`
	Initial []Vec `yaml:"initial"`
}

// PairParams is the two-circle variant.
func PairParams() Params {
	return Params{
		Dt:              0.016,
		Stiffness:       1.0,
		Damping:         0.6,
		PairStiffness:   0.30,
		PairDamping:     0.10,
		PairGain:        1.0,
		MaxSpeed:        2.0,
		Bound:           0.95,
		DragBound:       0.8,
		Restitution:     0.5,
		CenterTolerance: 0.01,
		SpeedEpsilon:    0.003,
		CalmThreshold:   0.5,
		MergeImpulse:    0.25,
		MergeTolerance:  0.01,
		Policy:          SettleSnap,
		Shape:           Shape{Kind: Circle, Radius: 0.28},
		Initial:         []Vec{{-0.5, 0}, {0.5, 0}},
	}
}

// QuadParams is the four-rectangle variant.
func QuadParams() Params {
	return Params{
		Dt:        0.016,
		Stiffness: 0.8,
		Damping:   1.5,
		NearDamping: DampingRamp{
			Radius:   0.7,
			AtRadius: 3.0,
			PerUnit:  7.0,
		},
		PairStiffness: 0.01,
		PairDamping:   0.9,
		PairGain:      0.2,
		PairRange:     math.Sqrt(0.05),
		MaxSpeed:      1.0,
		NearSpeed: SpeedRamp{
			Radius:   0.3,
			AtCenter: 0.3,
			PerUnit:  2.33,
		},
		Bound:           0.95,
		DragBound:       0.8,
		Restitution:     0.5,
		CenterTolerance: 0.1,
		SpeedEpsilon:    0.01,
		CalmThreshold:   0.5,
		Policy:          SettleContract,
		Contract: Contraction{
			BandSq:    0.05,
			Near:      0.9,
			Far:       0.95,
			VelFactor: 0.85,
			SnapEpsSq: 0.0001,
		},
		Shape:   Shape{Kind: Rect, HalfX: 0.18, HalfY: 0.12, GrabMargin: 0.03},
		Initial: []Vec{{-0.7, -0.7}, {0.7, 0.7}, {-0.7, 0.7}, {0.7, -0.7}},
	}
}

func (p *Params) Validate() error {
	switch {
	case !(p.Dt > 0):
		return &ParamError{Field: "dt", Reason: "must be positive"}
	case !(p.Stiffness >= 0):
		return &ParamError{Field: "stiffness", Reason: "must not be negative"}
	case !(p.Damping >= 0):
		return &ParamError{Field: "damping", Reason: "must not be negative"}
	case !(p.PairStiffness >= 0):
		return &ParamError{Field: "pair_stiffness", Reason: "must not be negative"}
	case !(p.PairDamping >= 0):
		return &ParamError{Field: "pair_damping", Reason: "must not be negative"}
	case !(p.PairGain >= 0):
		return &ParamError{Field: "pair_gain", Reason: "must not be negative"}
	case !(p.PairRange >= 0):
		return &ParamError{Field: "pair_range", Reason: "must not be negative"}
	case !(p.MaxSpeed >= 0):
		return &ParamError{Field: "max_speed", Reason: "must not be negative"}
	case !(p.Bound > 0):
		return &ParamError{Field: "bound", Reason: "must be positive"}
	case !(p.DragBound > 0) || p.DragBound > p.Bound:
		return &ParamError{Field: "drag_bound", Reason: fmt.Sprintf("must be in (0, bound=%g]", p.Bound)}
	case !(p.Restitution >= 0 && p.Restitution <= 1):
		return &ParamError{Field: "restitution", Reason: "must be in [0, 1]"}
	case !(p.CenterTolerance >= 0) || !(p.SpeedEpsilon >= 0):
		return &ParamError{Field: "center_tolerance", Reason: "tolerances must not be negative"}
	case math.IsNaN(p.MergeImpulse) || !(p.MergeTolerance >= 0):
		return &ParamError{Field: "merge_impulse", Reason: "must be a number"}
	case !(p.CalmThreshold > 0):
		return &ParamError{Field: "calm_threshold", Reason: "must be positive"}
	case len(p.Initial) == 0:
		return &ParamError{Field: "initial", Reason: "need at least one body"}
	}
	if p.Policy != SettleSnap && p.Policy != SettleContract {
		return &ParamError{Field: "policy", Reason: p.Policy.String()}
	}
	if p.Policy == SettleContract {
		c := p.Contract
		if !(c.Near > 0 && c.Near < 1) || !(c.Far > 0 && c.Far < 1) || !(c.VelFactor >= 0 && c.VelFactor < 1) {
			return &ParamError{Field: "contract", Reason: "factors must be in (0, 1)"}
		}
		if !(c.SnapEpsSq > 0) {
			return &ParamError{Field: "contract.snap_eps_sq", Reason: "must be positive"}
		}
	}
	switch p.Shape.Kind {
	case Circle:
		if !(p.Shape.Radius > 0) {
			return &ParamError{Field: "shape.radius", Reason: "must be positive"}
		}
	case Rect:
		if !(p.Shape.HalfX > 0) || !(p.Shape.HalfY > 0) {
			return &ParamError{Field: "shape.half_x", Reason: "half extents must be positive"}
		}
	default:
		return &ParamError{Field: "shape.kind", Reason: p.Shape.Kind.String()}
	}
	for i, v := range p.Initial {
		if math.Abs(v[0]) > p.Bound || math.Abs(v[1]) > p.Bound {
			return &ParamError{Field: fmt.Sprintf("initial[%d]", i), Reason: "outside bound"}
		}
	}
	return nil
}

// SetParam sets a scalar tuning constant by its YAML name.
func (p *Params) SetParam(name string, v float64) error {
	switch name {
	case "dt":
		p.Dt = v
	case "stiffness":
		p.Stiffness = v
	case "damping":
		p.Damping = v
	case "pair_stiffness":
		p.PairStiffness = v
	case "pair_damping":
		p.PairDamping = v
	case "pair_gain":
		p.PairGain = v
	case "max_speed":
		p.MaxSpeed = v
	case "restitution":
		p.Restitution = v
	case "calm_threshold":
		p.CalmThreshold = v
	case "merge_impulse":
		p.MergeImpulse = v
	default:
		return &ParamError{Field: name, Reason: "not a tunable parameter"}
	}
	return nil
}

// TunableParams lists the names SetParam accepts.
var TunableParams = []string{
	"dt", "stiffness", "damping", "pair_stiffness", "pair_damping",
	"pair_gain", "max_speed", "restitution", "calm_threshold", "merge_impulse",
}
