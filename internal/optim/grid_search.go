package optim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/automation"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
)

// Objective scores a run; lower is better.
type Objective func(*automation.Result) float64

// MetricObjective scores a run by one of the standard metrics.
func MetricObjective(name string) Objective {
	return func(r *automation.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// FirstReset prefers runs that return to the start soonest. Runs that never
// reset score +Inf.
func FirstReset(r *automation.Result) float64 {
	if r.FirstReset < 0 {
		return math.Inf(1)
	}
	return r.FirstReset
}

// GridSearch tries every combination of the given values of tunable
// parameters.
type GridSearch struct {
	params []string
	values [][]float64
	logger *log.Logger
}

func NewGridSearch(params []string, values [][]float64, logger *log.Logger) (*GridSearch, error) {
	if len(params) != len(values) {
		return nil, fmt.Errorf("grid search: %d params but %d value lists", len(params), len(values))
	}
	for i, vs := range values {
		if len(vs) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GridSearch{params: params, values: values, logger: logger}, nil
}

// Point is one evaluated combination.
type Point struct {
	Params map[string]float64
	Score  float64
}

// Search replays sc for every combination and returns the best one. Ties go
// to the combination visited first. Invalid combinations are skipped.
func (g *GridSearch) Search(ctx context.Context, base sim.Params, sc *automation.Scenario, obj Objective) (Point, []Point, error) {
	best := Point{Score: math.Inf(1)}
	var all []Point
	err := g.walk(ctx, 0, map[string]float64{}, func(combo map[string]float64) error {
		p := base
		p.Initial = append([]sim.Vec(nil), base.Initial...)
		for name, v := range combo {
			if err := p.SetParam(name, v); err != nil {
				return err
			}
		}
		s, err := sim.New(p)
		if err != nil {
			g.logger.Debug("skipping invalid combination", "params", combo, "err", err)
			return nil
		}
		res, err := automation.Run(ctx, s, sc, automation.Options{Metrics: metrics.Standard()})
		if err != nil {
			return err
		}

		pt := Point{Params: combo, Score: obj(res)}
		all = append(all, pt)
		if pt.Score < best.Score || best.Params == nil {
			best = pt
		}
		g.logger.Debug("evaluated", "params", combo, "score", pt.Score)
		return nil
	})
	if err != nil {
		return best, all, err
	}
	if best.Params == nil {
		return best, all, fmt.Errorf("grid search: no valid combination")
	}
	return best, all, nil
}

func (g *GridSearch) walk(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.params) {
		combo := make(map[string]float64, len(current))
		for k, v := range current {
			combo[k] = v
		}
		return visit(combo)
	}
	name := g.params[depth]
	for _, v := range g.values[depth] {
		current[name] = v
		if err := g.walk(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

// Range returns n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
