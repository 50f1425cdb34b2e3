package equil_test

import (
	"bytes"
	"testing"

	"github.com/katalvlaran/vcs/equil"
	"github.com/katalvlaran/vcs/matrix"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSolversAgree(t *testing.T) {
	t.Parallel()

	a, err := matrix.NewDenseFrom(3, 3, []float64{
		0, 2, 1,
		1, 1, 0,
		2, 0, 3,
	})
	require.NoError(t, err)
	b := []float64{7, 3, 11}

	g, err := equil.GonumSolver{}.Solve(a, b)
	require.NoError(t, err)
	l, err := equil.PivotLUSolver{}.Solve(a, b)
	require.NoError(t, err)
	require.InDeltaSlice(t, l, g, 1e-12)
	require.InDeltaSlice(t, []float64{1, 2, 3}, g, 1e-12)

	// Inputs are untouched.
	require.Equal(t, []float64{7, 3, 11}, b)
	v, _ := a.At(0, 0)
	require.Zero(t, v)
}

func TestSolversSingular(t *testing.T) {
	t.Parallel()

	a, err := matrix.NewDenseFrom(2, 2, []float64{
		1, 2,
		2, 4,
	})
	require.NoError(t, err)

	_, err = equil.GonumSolver{}.Solve(a, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrSingular)
	_, err = equil.PivotLUSolver{}.Solve(a, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrSingular)
}

func TestGonumSolverShapes(t *testing.T) {
	t.Parallel()

	a, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = equil.GonumSolver{}.Solve(a, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	sq, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	_, err = equil.GonumSolver{}.Solve(sq, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestGonumSolverWarnsOnIllConditioned(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	a, err := matrix.NewDenseFrom(2, 2, []float64{
		1e8, 1e8,
		1, 1 + 2.220446049250313e-16,
	})
	require.NoError(t, err)

	x, err := equil.GonumSolver{Logger: l}.Solve(a, []float64{2e8, 2})
	require.NoError(t, err)
	require.Len(t, x, 2)
	require.Contains(t, buf.String(), "ill-conditioned")
}

func TestSolverByName(t *testing.T) {
	t.Parallel()

	s, err := equil.SolverByName("pivot-lu", nil)
	require.NoError(t, err)
	require.IsType(t, equil.PivotLUSolver{}, s)

	s, err = equil.SolverByName("", nil)
	require.NoError(t, err)
	require.IsType(t, equil.GonumSolver{}, s)

	_, err = equil.SolverByName("qr", nil)
	require.ErrorIs(t, err, equil.ErrUnknownType)
}
