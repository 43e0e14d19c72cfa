package metrics

import "github.com/san-kum/blobsim/internal/sim"

// Metric accumulates a single number over the steps it observes.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Standard returns a fresh instance of every metric, in display order.
func Standard() []Metric {
	return []Metric{
		NewResetCount(),
		NewKickCount(),
		NewPeakSpeed(),
		NewKineticEnergy(),
		NewCalmTime(),
		NewMeanSpread(),
	}
}

// Values collects metric values by name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
