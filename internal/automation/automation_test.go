package automation

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
)

const scenarioYAML = `
name: pull-left
description: grab the left circle and pull it up
duration: 2
sample_every: 10
actions:
  - {at: 0.5, type: up}
  - {at: 0, type: down, x: -0.5, y: 0}
  - {at: 0.1, type: move, x: -0.6, y: 0.5}
`

func newPair() *sim.Simulator {
	s, err := sim.New(sim.PairParams())
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("LoadScenario", func() {
	It("reads actions from YAML", func() {
		path := filepath.Join(GinkgoT().TempDir(), "pull.yaml")
		Expect(os.WriteFile(path, []byte(scenarioYAML), 0644)).To(Succeed())

		sc, err := LoadScenario(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Name).To(Equal("pull-left"))
		Expect(sc.Duration).To(Equal(2.0))
		Expect(sc.Actions).To(HaveLen(3))
	})

	It("rejects unknown action types", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bad.yaml")
		Expect(os.WriteFile(path, []byte("duration: 1\nactions: [{at: 0, type: tap}]\n"), 0644)).To(Succeed())

		_, err := LoadScenario(path)
		Expect(err).To(MatchError(ContainSubstring("unknown type")))
	})

	It("rejects a missing duration", func() {
		Expect((&Scenario{}).Validate()).NotTo(Succeed())
	})

	DescribeTable("bundled scenarios grab a body",
		func(file string, params sim.Params) {
			sc, err := LoadScenario(filepath.Join("..", "..", "scenarios", file))
			Expect(err).NotTo(HaveOccurred())

			s, err := sim.New(params)
			Expect(err).NotTo(HaveOccurred())
			res, err := Run(context.Background(), s, sc, Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Samples[1].UserInteracted).To(BeTrue())
			Expect(res.Samples[1].Bodies[0].Dragging).To(BeTrue())
		},
		Entry("pair", "drag-release.yaml", sim.PairParams()),
		Entry("quad", "quad-grab.yaml", sim.QuadParams()),
	)
})

var _ = Describe("Run", func() {
	var sc *Scenario

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "pull.yaml")
		Expect(os.WriteFile(path, []byte(scenarioYAML), 0644)).To(Succeed())
		var err error
		sc, err = LoadScenario(path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("applies actions in time order", func() {
		s := newPair()
		res, err := Run(context.Background(), s, &Scenario{
			Duration: 0.2,
			Actions:  sc.Actions,
		}, Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ticks).To(Equal(13))
		Expect(s.Dragging()).To(BeTrue())
		Expect(s.State().Bodies[0].Pos).To(Equal(sim.Vec{-0.6, 0.5}))
	})

	It("samples on the configured stride", func() {
		res, err := Run(context.Background(), newPair(), sc, Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ticks).To(Equal(125))
		Expect(res.Samples).To(HaveLen(1 + 12))
		Expect(res.Samples[0].Tick).To(Equal(0))
		Expect(res.Samples[1].Tick).To(Equal(10))
	})

	It("is deterministic", func() {
		a, err := Run(context.Background(), newPair(), sc, Options{})
		Expect(err).NotTo(HaveOccurred())
		b, err := Run(context.Background(), newPair(), sc, Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Samples).To(Equal(b.Samples))
	})

	It("ignores moves with nothing grabbed", func() {
		s := newPair()
		_, err := Run(context.Background(), s, &Scenario{
			Duration: 0.1,
			Actions:  []Action{{At: 0, Type: ActionMove, X: 0.7, Y: 0.7}},
		}, Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.State().Bodies[0].Pos[0]).To(BeNumerically("<", 0))
	})

	It("kicks once and replays after a drag and release", func() {
		sc := DragRelease("drag", sim.Vec{-0.5, 0}, sim.Vec{-0.8, 0.5}, 0.5, 60)
		ms := metrics.Standard()
		res, err := Run(context.Background(), newPair(), sc, Options{Metrics: ms})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Kicks).To(Equal(1))
		Expect(res.Resets).To(BeNumerically(">=", 1))
		Expect(res.FirstReset).To(BeNumerically(">", 0.5))
		Expect(res.Metrics).To(HaveKeyWithValue("merge_kicks", 1.0))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, newPair(), sc, Options{})
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("RunSweep", func() {
	It("runs one simulation per value", func() {
		results, err := RunSweep(context.Background(), sim.PairParams(), &ParameterSweep{
			Param:    "stiffness",
			Min:      0.5,
			Max:      2.0,
			NumSteps: 3,
			Scenario: &Scenario{Duration: 2},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[1].ParamValue).To(BeNumerically("~", 1.25, 1e-12))
		for _, r := range results {
			Expect(r.PeakSpeed).To(BeNumerically(">", 0))
		}
	})

	It("rejects unknown parameters", func() {
		_, err := RunSweep(context.Background(), sim.PairParams(), &ParameterSweep{
			Param:    "gravity",
			NumSteps: 2,
			Scenario: &Scenario{Duration: 1},
		}, nil)
		Expect(err).To(MatchError(sim.ErrInvalidParams))
	})
})

var _ = Describe("RunMonteCarlo", func() {
	It("replays from perturbed starts", func() {
		results, err := RunMonteCarlo(context.Background(), sim.PairParams(), &MonteCarloConfig{
			Perturbation: 0.2,
			NumTrials:    3,
			Duration:     60,
			Seed:         7,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		replayed, stuck := MonteCarloStats(results)
		Expect(replayed).To(Equal(3))
		Expect(stuck).To(BeZero())
	})
})
