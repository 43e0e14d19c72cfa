package sim

import "testing"

func benchmarkAdvance(b *testing.B, p Params) {
	st := NewState(p.Initial)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Advance(&st, &p, p.Dt)
	}
}

func BenchmarkAdvancePair(b *testing.B) { benchmarkAdvance(b, PairParams()) }

func BenchmarkAdvanceQuad(b *testing.B) { benchmarkAdvance(b, QuadParams()) }
