package equil_test

import (
	"testing"

	"github.com/katalvlaran/vcs/equil"
	"github.com/stretchr/testify/require"
)

// swapLog records every position switch it is told about.
type swapLog struct{ calls [][2]int }

func (s *swapLog) SwapConstraints(i, j int) { s.calls = append(s.calls, [2]int{i, j}) }

func TestSwitchConstraints(t *testing.T) {
	t.Parallel()

	log := &swapLog{}
	sp, ph := ownPhases("X", "Y")
	cs := elements(map[string]float64{"A": 2, "B": 3}, "A", "B")
	cs[1].Type = equil.ElementAbsPos
	cs[1].Active = false
	p := MustProblem(t, equil.Definition{
		Constraints: cs,
		Species:     sp,
		Phases:      ph,
		Formula: [][]float64{
			{1, 0},
			{0, 1},
		},
		Moles:      []float64{1, 1},
		Components: 2,
	}, equil.WithObserver(log))

	require.NoError(t, p.SwitchConstraints(0, 1))

	got := p.Constraints()
	require.Equal(t, "B", got[0].Name)
	require.Equal(t, 3.0, got[0].Target)
	require.Equal(t, 1.0, got[0].Abundance)
	require.Equal(t, equil.ElementAbsPos, got[0].Type)
	require.False(t, got[0].Active)
	require.Equal(t, "A", got[1].Name)
	require.True(t, got[1].Active)

	f := p.FormulaMatrix()
	row0, _ := f.RawRow(0)
	require.Equal(t, []float64{0, 1}, row0)

	x, _ := p.Phase(0)
	y, _ := p.Phase(1)
	require.Equal(t, []int{1}, x.ElementGlobalIndex)
	require.Equal(t, []int{0}, y.ElementGlobalIndex)
	require.Equal(t, [][2]int{{0, 1}}, log.calls)

	// Self-switch is a no-op and observers are not notified.
	require.NoError(t, p.SwitchConstraints(1, 1))
	require.Len(t, log.calls, 1)

	// Switching back restores the original layout.
	require.NoError(t, p.SwitchConstraints(1, 0))
	require.Equal(t, []string{"A", "B"}, names(p))
	x, _ = p.Phase(0)
	require.Equal(t, []int{0}, x.ElementGlobalIndex)
}

func TestSwitchConstraintsRange(t *testing.T) {
	t.Parallel()

	p := MustProblem(t, scenarioAB(1, 1))
	require.ErrorIs(t, p.SwitchConstraints(0, 2), equil.ErrConstraintIndex)
	require.ErrorIs(t, p.SwitchConstraints(-1, 0), equil.ErrConstraintIndex)
	require.Equal(t, []string{"A", "B"}, names(p))
}

func TestAddObserver(t *testing.T) {
	t.Parallel()

	p := MustProblem(t, scenarioAB(1, 1))
	log := &swapLog{}
	p.AddObserver(log)
	p.AddObserver(nil)
	require.NoError(t, p.SwitchConstraints(1, 0))
	require.Equal(t, [][2]int{{1, 0}}, log.calls)
}

func TestPhaseSwapConstraints(t *testing.T) {
	t.Parallel()

	ph := &equil.Phase{ElementGlobalIndex: []int{0, 2, 3}}
	ph.SwapConstraints(2, 0)
	require.Equal(t, []int{2, 0, 3}, ph.ElementGlobalIndex)
	ph.SwapConstraints(3, 5)
	require.Equal(t, []int{2, 0, 5}, ph.ElementGlobalIndex)
}
