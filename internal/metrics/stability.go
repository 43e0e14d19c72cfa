package metrics

import "github.com/san-kum/blobsim/internal/sim"

// CalmTime is the fraction of steps on which the calm timer was running.
type CalmTime struct {
	name    string
	calm    int
	samples int
}

func NewCalmTime() *CalmTime {
	return &CalmTime{name: "calm_fraction"}
}

func (c *CalmTime) Name() string { return c.name }

func (c *CalmTime) OnStep(snap sim.Snapshot, _ sim.Events) {
	c.samples++
	if snap.CalmTimer > 0 {
		c.calm++
	}
}

func (c *CalmTime) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.calm) / float64(c.samples)
}

func (c *CalmTime) Reset() {
	c.calm = 0
	c.samples = 0
}

// MeanSpread averages, over steps, the mean distance of the bodies from
// their centroid.
type MeanSpread struct {
	name    string
	total   float64
	samples int
}

func NewMeanSpread() *MeanSpread {
	return &MeanSpread{name: "mean_spread"}
}

func (m *MeanSpread) Name() string { return m.name }

func (m *MeanSpread) OnStep(snap sim.Snapshot, _ sim.Events) {
	m.total += Spread(snap)
	m.samples++
}

func (m *MeanSpread) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpread) Reset() {
	m.total = 0
	m.samples = 0
}

// Spread is the mean distance of the bodies from their centroid.
func Spread(snap sim.Snapshot) float64 {
	n := len(snap.Bodies)
	if n == 0 {
		return 0
	}
	var c sim.Vec
	for _, b := range snap.Bodies {
		c = c.Add(b.Pos)
	}
	c = c.Mul(1 / float64(n))
	var sum float64
	for _, b := range snap.Bodies {
		sum += b.Pos.Sub(c).Len()
	}
	return sum / float64(n)
}
