// Package matrix_test provides benchmarks for the matrix kernels,
// using deterministic random fill for Dense matrices.
package matrix_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/vcs/matrix"
)

// benchSizes are the system sizes to benchmark (typical element counts are small).
var benchSizes = []int{4, 16, 64}

// sinks to defeat dead-code elimination
var (
	sinkV []float64
	sinkF float64
)

func BenchmarkLUSolve(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := MustDense(b, n, n)
			RandomFill(b, a, 1337)
			for i := 0; i < n; i++ {
				MustSet(b, a, i, i, MustAt(b, a, i, i)+float64(n))
			}
			rhs := make([]float64, n)
			for i := range rhs {
				rhs[i] = 1
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				x, err := matrix.LUSolve(a, rhs)
				if err != nil {
					b.Fatal(err)
				}
				sinkV = x
			}
		})
	}
}

func BenchmarkOrthogonalizerProject(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := MustDense(b, n, n)
			RandomFill(b, a, 4242)
			o, err := matrix.NewOrthogonalizer(n, n)
			if err != nil {
				b.Fatal(err)
			}
			for i := 0; i < n-1; i++ {
				row, _ := a.RawRow(i)
				if _, err = o.Project(row); err != nil {
					b.Fatal(err)
				}
				o.Accept()
			}
			last, _ := a.RawRow(n - 1)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ns, err := o.Project(last)
				if err != nil {
					b.Fatal(err)
				}
				sinkF = ns
			}
		})
	}
}
