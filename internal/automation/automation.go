package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted pointer session replayed on the fixed tick.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Variant     string   `yaml:"variant"`
	Preset      string   `yaml:"preset"`
	Duration    float64  `yaml:"duration"`
	SampleEvery int      `yaml:"sample_every"`
	Actions     []Action `yaml:"actions"`
}

// Action is one pointer event. X and Y are in normalized device
// coordinates; At is seconds from the start of the run.
type Action struct {
	At   float64 `yaml:"at"`
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

const (
	ActionDown = "down"
	ActionMove = "move"
	ActionUp   = "up"
)

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func (sc *Scenario) Validate() error {
	if !(sc.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", sc.Duration)
	}
	if sc.SampleEvery < 0 {
		return fmt.Errorf("sample_every must not be negative")
	}
	for i, a := range sc.Actions {
		switch a.Type {
		case ActionDown, ActionMove, ActionUp:
		default:
			return fmt.Errorf("action %d: unknown type %q", i, a.Type)
		}
		if a.At < 0 {
			return fmt.Errorf("action %d: negative time", i)
		}
	}
	return nil
}

// Options tunes a run. The zero value samples every tick and logs nothing.
type Options struct {
	Metrics []metrics.Metric
	Logger  *log.Logger
}

// Result is the outcome of replaying a scenario.
type Result struct {
	Scenario string             `json:"scenario"`
	Ticks    int                `json:"ticks"`
	Duration float64            `json:"duration"`
	Resets   int                `json:"resets"`
	Kicks    int                `json:"kicks"`
	Samples  []sim.Snapshot     `json:"-"`
	Metrics  map[string]float64 `json:"metrics"`
	// FirstReset is the simulated time of the first reset, or -1.
	FirstReset float64 `json:"first_reset"`
}

// Run replays sc against s. Actions due at or before a tick's start time are
// applied before that tick.
func Run(ctx context.Context, s *sim.Simulator, sc *Scenario, opts Options) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	actions := append([]Action(nil), sc.Actions...)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })

	dt := s.Params().Dt
	ticks := int(math.Ceil(sc.Duration/dt - 1e-9))
	every := sc.SampleEvery
	if every <= 0 {
		every = 1
	}

	for _, m := range opts.Metrics {
		m.Reset()
	}

	res := &Result{
		Scenario:   sc.Name,
		Samples:    make([]sim.Snapshot, 0, ticks/every+1),
		FirstReset: -1,
	}
	res.Samples = append(res.Samples, s.Snapshot())

	logger.Debug("scenario start", "name", sc.Name, "ticks", ticks, "actions", len(actions))

	next := 0
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		now := float64(i) * dt
		for next < len(actions) && actions[next].At <= now+1e-9 {
			apply(s, actions[next], logger)
			next++
		}

		ev := s.Step()
		snap := s.Snapshot()
		for _, m := range opts.Metrics {
			m.OnStep(snap, ev)
		}
		if ev.Has(sim.EventReset) {
			res.Resets++
			if res.FirstReset < 0 {
				res.FirstReset = snap.Time
			}
			logger.Debug("reset", "tick", snap.Tick, "time", snap.Time)
		}
		if ev.Has(sim.EventMergeKick) {
			res.Kicks++
			logger.Debug("merge kick", "tick", snap.Tick)
		}
		if (i+1)%every == 0 {
			res.Samples = append(res.Samples, snap)
		}
		res.Ticks++
	}

	res.Duration = float64(res.Ticks) * dt
	res.Metrics = metrics.Values(opts.Metrics)
	logger.Info("scenario done", "name", sc.Name, "ticks", res.Ticks, "resets", res.Resets, "kicks", res.Kicks)
	return res, nil
}

func apply(s *sim.Simulator, a Action, logger *log.Logger) {
	p := sim.Vec{a.X, a.Y}
	switch a.Type {
	case ActionDown:
		i, ok := s.BeginDrag(p)
		logger.Debug("pointer down", "at", a.At, "body", i, "hit", ok)
	case ActionMove:
		if s.Dragging() {
			s.DragTo(p)
		}
	case ActionUp:
		s.EndDrag()
		logger.Debug("pointer up", "at", a.At)
	}
}

// DragRelease builds the common scenario of grabbing a point, pulling it to
// another and letting go.
func DragRelease(name string, from, to sim.Vec, hold, duration float64) *Scenario {
	return &Scenario{
		Name:     name,
		Duration: duration,
		Actions: []Action{
			{At: 0, Type: ActionDown, X: from[0], Y: from[1]},
			{At: 0, Type: ActionMove, X: to[0], Y: to[1]},
			{At: hold, Type: ActionUp},
		},
	}
}
