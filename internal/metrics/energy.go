package metrics

import (
	"math"

	"github.com/san-kum/blobsim/internal/sim"
)

// KineticEnergy is the mean over steps of the summed 0.5·|v|² of every body,
// taking unit mass.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) OnStep(snap sim.Snapshot, _ sim.Events) {
	for _, b := range snap.Bodies {
		e.total += 0.5 * b.Vel.Dot(b.Vel)
	}
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) OnStep(snap sim.Snapshot, _ sim.Events) {
	for _, b := range snap.Bodies {
		p.peak = math.Max(p.peak, b.Vel.Len())
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
