package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// run steps s n times and counts each event kind.
func run(s *Simulator, n int) map[Events]int {
	counts := map[Events]int{}
	for i := 0; i < n; i++ {
		ev := s.Step()
		for _, flag := range []Events{EventMergeKick, EventReset, EventConverged} {
			if ev.Has(flag) {
				counts[flag]++
			}
		}
	}
	return counts
}

func park(s *Simulator, positions ...Vec) {
	for i, p := range positions {
		s.state.Bodies[i].Pos = p
		s.state.Bodies[i].Vel = Vec{}
	}
}

var _ = Describe("Simulator", func() {
	var s *Simulator

	Context("pair variant", func() {
		BeforeEach(func() {
			var err error
			s, err = New(PairParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts at rest on the initial positions with the kick armed", func() {
			st := s.State()
			Expect(st.Bodies).To(HaveLen(2))
			Expect(st.Bodies[0].Pos).To(Equal(Vec{-0.5, 0}))
			Expect(st.Bodies[1].Pos).To(Equal(Vec{0.5, 0}))
			Expect(st.MergeKickArmed).To(BeTrue())
			Expect(st.UserInteracted).To(BeFalse())
		})

		Describe("dragging", func() {
			It("pins the body to the pointer and keeps the calm timer at zero", func() {
				_, ok := s.BeginDrag(Vec{-0.5, 0})
				Expect(ok).To(BeTrue())
				s.DragTo(Vec{0.3, 0.2})

				for i := 0; i < 20; i++ {
					s.Step()
					st := s.State()
					Expect(st.Bodies[0].Pos).To(Equal(Vec{0.3, 0.2}))
					Expect(st.Bodies[0].Vel).To(Equal(Vec{}))
					Expect(st.CalmTimer).To(BeZero())
				}
			})

			It("still pulls the other body toward the centre", func() {
				s.BeginDrag(Vec{-0.5, 0})
				run(s, 10)
				Expect(s.State().Bodies[1].Pos[0]).To(BeNumerically("<", 0.5))
			})

			It("releases from rest", func() {
				s.BeginDrag(Vec{-0.5, 0})
				s.DragTo(Vec{0.6, 0.6})
				s.EndDrag()
				Expect(s.State().Bodies[0].Vel).To(Equal(Vec{}))
				Expect(s.Dragging()).To(BeFalse())
			})
		})

		Describe("idle reset", func() {
			It("fires exactly once after the calm threshold", func() {
				park(s, Vec{}, Vec{})

				for i := 0; i < 31; i++ {
					Expect(s.Step().Has(EventReset)).To(BeFalse())
				}
				Expect(s.Step().Has(EventReset)).To(BeTrue())

				st := s.State()
				Expect(st.Bodies[0].Pos).To(Equal(Vec{-0.5, 0}))
				Expect(st.Bodies[1].Pos).To(Equal(Vec{0.5, 0}))
				Expect(st.CalmTimer).To(BeZero())
				Expect(st.MergeKickArmed).To(BeTrue())
				Expect(st.UserInteracted).To(BeFalse())

				Expect(run(s, 100)[EventReset]).To(BeZero())
			})

			It("restarts the timer when a drag interrupts it", func() {
				park(s, Vec{}, Vec{})
				run(s, 20)
				Expect(s.State().CalmTimer).To(BeNumerically(">", 0))

				s.state.Bodies[0].Mode = Dragging
				s.Step()
				Expect(s.State().CalmTimer).To(BeZero())
			})

			It("does not kick without user interaction", func() {
				park(s, Vec{}, Vec{})
				Expect(run(s, 40)[EventMergeKick]).To(BeZero())
			})
		})

		Describe("merge kick", func() {
			It("fires once when both flags are set and the bodies meet", func() {
				park(s, Vec{}, Vec{})
				s.state.UserInteracted = true

				ev := s.Step()
				Expect(ev.Has(EventMergeKick)).To(BeTrue())
				st := s.State()
				Expect(st.Bodies[0].Vel[1]).To(BeNumerically("~", 0.25, 1e-12))
				Expect(st.Bodies[1].Vel[1]).To(BeNumerically("~", -0.25, 1e-12))
				Expect(st.MergeKickArmed).To(BeFalse())
				Expect(st.UserInteracted).To(BeFalse())

				Expect(run(s, 300)[EventMergeKick]).To(BeZero())
			})

			It("re-arms after a reset but waits for a new interaction", func() {
				park(s, Vec{}, Vec{})
				s.state.UserInteracted = true
				s.Step()
				s.Reset()
				Expect(s.State().MergeKickArmed).To(BeTrue())

				park(s, Vec{}, Vec{})
				Expect(s.Step().Has(EventMergeKick)).To(BeFalse())
			})

			It("eventually fires after a real drag and release", func() {
				s.BeginDrag(Vec{-0.5, 0})
				s.DragTo(Vec{-0.7, 0.3})
				s.EndDrag()
				Expect(run(s, 3000)[EventMergeKick]).To(Equal(1))
			})
		})

		It("reflects a body off the boundary", func() {
			p := PairParams()
			p.Initial = []Vec{{0.94, 0}}
			one, err := New(p)
			Expect(err).NotTo(HaveOccurred())
			one.state.Bodies[0].Vel = Vec{3, 0}

			one.Step()
			b := one.State().Bodies[0]
			Expect(b.Pos[0]).To(Equal(0.95))
			Expect(b.Vel[0]).To(BeNumerically("<", 0))
		})
	})

	Context("quad variant", func() {
		BeforeEach(func() {
			var err error
			s, err = New(QuadParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("grabs a rectangle by its rim", func() {
			i, ok := s.BeginDrag(Vec{-0.7 + 0.2, -0.7})
			Expect(ok).To(BeTrue())
			Expect(i).To(Equal(0))
		})

		It("contracts to exactly zero before resetting", func() {
			park(s, Vec{0.05, 0.05}, Vec{-0.05, 0.05}, Vec{-0.05, -0.05}, Vec{0.05, -0.05})

			convergedAt, resetAt := -1, -1
			for i := 0; i < 200 && resetAt < 0; i++ {
				ev := s.Step()
				if ev.Has(EventConverged) && convergedAt < 0 {
					convergedAt = i
					for _, b := range s.State().Bodies {
						Expect(b.Pos).To(Equal(Vec{}))
						Expect(b.Vel).To(Equal(Vec{}))
					}
				}
				if ev.Has(EventReset) {
					resetAt = i
				}
			}

			Expect(convergedAt).To(BeNumerically(">=", 0))
			Expect(resetAt).To(BeNumerically(">", convergedAt))
			for i, b := range s.State().Bodies {
				Expect(b.Pos).To(Equal(b.Initial), "body %d", i)
			}
		})

		It("never kicks", func() {
			s.BeginDrag(Vec{0.7, 0.7})
			s.EndDrag()
			Expect(run(s, 2000)[EventMergeKick]).To(BeZero())
		})

		It("settles from its start and replays", func() {
			Expect(run(s, 5000)[EventReset]).To(BeNumerically(">=", 1))
		})
	})
})
