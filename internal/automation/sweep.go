package automation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
)

// ParameterSweep replays one scenario across a range of values of a single
// tunable parameter.
type ParameterSweep struct {
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Scenario *Scenario
}

type SweepResult struct {
	ParamValue float64
	FirstReset float64
	Resets     int
	Kicks      int
	PeakSpeed  float64
}

func RunSweep(ctx context.Context, base sim.Params, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.Min + float64(i)*paramStep

		p := base
		p.Initial = append([]sim.Vec(nil), base.Initial...)
		if err := p.SetParam(sweep.Param, val); err != nil {
			return results, err
		}
		s, err := sim.New(p)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.Param, val, err)
		}

		peak := metrics.NewPeakSpeed()
		res, err := Run(ctx, s, sweep.Scenario, Options{Metrics: []metrics.Metric{peak}})
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue: val,
			FirstReset: res.FirstReset,
			Resets:     res.Resets,
			Kicks:      res.Kicks,
			PeakSpeed:  peak.Value(),
		})
		logger.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.Param, val, "resets", res.Resets)
	}

	return results, nil
}

// MonteCarloConfig perturbs the starting positions at random and checks that
// every trial still replays.
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Duration     float64
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	Initial    []sim.Vec
	FirstReset float64
	Replayed   bool
}

func RunMonteCarlo(ctx context.Context, base sim.Params, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// rng stays on this goroutine; trials only read their own start.
	starts := make([][]sim.Vec, cfg.NumTrials)
	lim := base.DragBound
	for trial := range starts {
		starts[trial] = make([]sim.Vec, len(base.Initial))
		for i, v := range base.Initial {
			for axis := 0; axis < 2; axis++ {
				x := v[axis] + (rng.Float64()-0.5)*2*cfg.Perturbation
				starts[trial][i][axis] = max(-lim, min(lim, x))
			}
		}
	}

	sc := &Scenario{Name: "monte-carlo", Duration: cfg.Duration, SampleEvery: 1 << 30}
	results := make([]MonteCarloResult, cfg.NumTrials)
	errs := make([]error, cfg.NumTrials)

	var wg sync.WaitGroup
	for trial := 0; trial < cfg.NumTrials; trial++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p := base
			p.Initial = starts[idx]
			s, err := sim.New(p)
			if err != nil {
				errs[idx] = err
				return
			}
			res, err := Run(ctx, s, sc, Options{})
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = MonteCarloResult{
				TrialID:    idx,
				Initial:    p.Initial,
				FirstReset: res.FirstReset,
				Replayed:   res.Resets > 0,
			}
			logger.Debug("monte carlo", "trial", idx, "replayed", res.Resets > 0)
		}(trial)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	logger.Info("monte carlo", "trials", cfg.NumTrials)
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (replayed int, stuck int) {
	for _, r := range results {
		if r.Replayed {
			replayed++
		} else {
			stuck++
		}
	}
	return
}
