package equil

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/vcs/matrix"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// LinearSolver solves the square system a·x = b without modifying a or b.
// A singular system must yield an error wrapping matrix.ErrSingular.
type LinearSolver interface {
	Solve(a matrix.Matrix, b []float64) ([]float64, error)
}

// GonumSolver solves with gonum's LU factorization. An ill-conditioned
// but nonsingular system is solved anyway and reported on Logger.
type GonumSolver struct {
	Logger logrus.FieldLogger
}

// Solve implements LinearSolver.
func (s GonumSolver) Solve(a matrix.Matrix, b []float64) ([]float64, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, fmt.Errorf("GonumSolver: %w", err)
	}
	n := a.Rows()
	if err := matrix.ValidateVecLen(b, n); err != nil {
		return nil, fmt.Errorf("GonumSolver: %w", err)
	}
	if n == 0 {
		return []float64{}, nil
	}

	data := make([]float64, n*n)
	if d, ok := a.(*matrix.Dense); ok {
		for i := 0; i < n; i++ {
			row, _ := d.RawRow(i)
			copy(data[i*n:], row)
		}
	} else {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				v, err := a.At(i, j)
				if err != nil {
					return nil, fmt.Errorf("GonumSolver: %w", err)
				}
				data[i*n+j] = v
			}
		}
	}

	var lu mat.LU
	lu.Factorize(mat.NewDense(n, n, data))
	x := mat.NewVecDense(n, nil)
	rhs := mat.NewVecDense(n, append([]float64(nil), b...))
	if err := lu.SolveVecTo(x, false, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("GonumSolver: %w: %v", matrix.ErrSingular, err)
		}
		if s.Logger != nil {
			s.Logger.WithField("condition", float64(cond)).Warn("ill-conditioned component system")
		}
	}

	return x.RawVector().Data, nil
}

// PivotLUSolver solves with matrix.LUSolve (partial pivoting). It reports
// only exactly zero pivots as singular.
type PivotLUSolver struct{}

// Solve implements LinearSolver.
func (PivotLUSolver) Solve(a matrix.Matrix, b []float64) ([]float64, error) {
	return matrix.LUSolve(a, b)
}

// SolverByName maps "gonum" and "pivot-lu" to a LinearSolver.
func SolverByName(name string, l logrus.FieldLogger) (LinearSolver, error) {
	switch name {
	case "", "gonum":
		return GonumSolver{Logger: l}, nil
	case "pivot-lu":
		return PivotLUSolver{}, nil
	}
	return nil, fmt.Errorf("solver %q: %w", name, ErrUnknownType)
}
