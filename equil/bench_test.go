package equil_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/vcs/equil"
)

// chain builds an n-element problem where species k carries elements k and
// k+1, so every row past the first has two nonzero entries and the
// damped linear stage does most of the work.
func chain(n int, rng *rand.Rand) equil.Definition {
	cs := make([]equil.Constraint, n)
	sp := make([]equil.Species, n)
	formula := make([][]float64, n)
	moles := make([]float64, n)
	for i := 0; i < n; i++ {
		cs[i] = equil.Constraint{Name: fmt.Sprintf("E%d", i), Target: 2, Active: true}
		sp[i] = equil.Species{Name: fmt.Sprintf("S%d", i)}
		formula[i] = make([]float64, n)
		formula[i][i] = 1
		if i > 0 {
			formula[i][i-1] = 1
		}
		moles[i] = 0.5 + rng.Float64()
	}
	return equil.Definition{
		Constraints: cs,
		Species:     sp,
		Phases:      []equil.PhaseDefinition{{Name: "mix"}},
		Formula:     formula,
		Moles:       moles,
		Components:  n,
	}
}

func BenchmarkCorrectAbundances(b *testing.B) {
	for _, n := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			def := chain(n, rand.New(rand.NewSource(1)))
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				p := MustProblem(b, def)
				MustRearrange(b, p)
				b.StartTimer()
				if _, err := p.CorrectAbundances(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRearrangeConstraints(b *testing.B) {
	for _, n := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			p := MustProblem(b, chain(n, rand.New(rand.NewSource(1))))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.RearrangeConstraints(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
