package metrics

import "github.com/san-kum/blobsim/internal/sim"

// EventCount counts steps that raised a given event.
type EventCount struct {
	name  string
	flag  sim.Events
	count int
}

func NewResetCount() *EventCount {
	return &EventCount{name: "resets", flag: sim.EventReset}
}

func NewKickCount() *EventCount {
	return &EventCount{name: "merge_kicks", flag: sim.EventMergeKick}
}

func (c *EventCount) Name() string { return c.name }

func (c *EventCount) OnStep(_ sim.Snapshot, ev sim.Events) {
	if ev.Has(c.flag) {
		c.count++
	}
}

func (c *EventCount) Value() float64 { return float64(c.count) }

func (c *EventCount) Reset() { c.count = 0 }
