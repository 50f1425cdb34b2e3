package equil_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/vcs/equil"
	"github.com/stretchr/testify/require"
)

func TestNewProblemValidation(t *testing.T) {
	t.Parallel()

	base := func() equil.Definition { return scenarioAB(1, 1) }

	tests := []struct {
		name   string
		mutate func(d *equil.Definition)
		want   error
	}{
		{"ok", func(d *equil.Definition) {}, nil},
		{"formula rows", func(d *equil.Definition) { d.Formula = d.Formula[:1] }, equil.ErrShape},
		{"formula cols", func(d *equil.Definition) { d.Formula[1] = []float64{1} }, equil.ErrShape},
		{"moles len", func(d *equil.Definition) { d.Moles = []float64{1} }, equil.ErrShape},
		{"components", func(d *equil.Definition) { d.Components = 3 }, equil.ErrShape},
		{"nan coef", func(d *equil.Definition) { d.Formula[0][1] = math.NaN() }, equil.ErrNonFinite},
		{"inf target", func(d *equil.Definition) { d.Constraints[0].Target = math.Inf(1) }, equil.ErrNonFinite},
		{"negative moles", func(d *equil.Definition) { d.Moles[0] = -1 }, equil.ErrNegativeMoles},
		{"phase index", func(d *equil.Definition) { d.Species[1].Phase = 7 }, equil.ErrPhaseIndex},
		{"deleted component", func(d *equil.Definition) { d.Species[1].Status = equil.StatusDeleted }, equil.ErrDeletedOrder},
		{"charge target", func(d *equil.Definition) {
			d.Constraints[1].Type = equil.ElementChargeNeutrality
		}, equil.ErrChargeNeutralTarget},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := base()
			tc.mutate(&d)
			_, err := equil.NewProblem(d)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewProblemDeletedMustTrail(t *testing.T) {
	t.Parallel()

	sp, ph := sharedPhase("X", "Y", "Z")
	sp[1].Status = equil.StatusDeleted
	_, err := equil.NewProblem(equil.Definition{
		Constraints: elements(map[string]float64{"A": 1}, "A"),
		Species:     sp,
		Phases:      ph,
		Formula:     [][]float64{{1, 1, 1}},
		Moles:       []float64{1, 0, 0},
		Components:  1,
	})
	require.ErrorIs(t, err, equil.ErrDeletedOrder)

	sp[1].Status, sp[2].Status = equil.StatusActive, equil.StatusDeleted
	p, err := equil.NewProblem(equil.Definition{
		Constraints: elements(map[string]float64{"A": 1}, "A"),
		Species:     sp,
		Phases:      ph,
		Formula:     [][]float64{{1, 1, 1}},
		Moles:       []float64{1, 0, 0},
		Components:  1,
	})
	require.NoError(t, err)
	require.Equal(t, 2, p.NumActiveSpecies())
	require.Equal(t, 3, p.NumSpecies())
}

func TestPhaseDerivation(t *testing.T) {
	t.Parallel()

	p := MustProblem(t, equil.Definition{
		Constraints: elements(map[string]float64{"C": 1, "O": 2, "Ar": 0}, "C", "O", "Ar"),
		Species: []equil.Species{
			{Name: "CO2", Phase: 0},
			{Name: "O2", Phase: 0},
			{Name: "C(gr)", Phase: 1},
		},
		Phases: []equil.PhaseDefinition{{Name: "gas"}, {Name: "graphite"}},
		Formula: [][]float64{
			{1, 0, 1},
			{2, 2, 0},
			{0, 0, 0},
		},
		Moles:      []float64{1, 0.5, 2},
		Components: 2,
	})

	gas, err := p.Phase(0)
	require.NoError(t, err)
	require.False(t, gas.SingleSpecies)
	require.Equal(t, []int{0, 1}, gas.ElementGlobalIndex)
	require.InDelta(t, 1.5, gas.TotalMoles, 1e-15)

	gr, err := p.Phase(1)
	require.NoError(t, err)
	require.True(t, gr.SingleSpecies)
	require.Equal(t, []int{0}, gr.ElementGlobalIndex)
	require.InDelta(t, 2.0, gr.TotalMoles, 1e-15)

	_, err = p.Phase(2)
	require.ErrorIs(t, err, equil.ErrPhaseIndex)
}

func TestSetMolesAndResiduals(t *testing.T) {
	t.Parallel()

	p := MustProblem(t, scenarioAB(1, 1))
	require.Equal(t, []float64{1, 2}, p.Residuals())
	require.InDelta(t, 5.0, p.DiscrepancyNormSq(), 1e-15)

	require.NoError(t, p.SetMoles([]float64{2, 3}))
	require.Equal(t, []float64{0, 0}, p.Residuals())
	require.Zero(t, p.DiscrepancyNormSq())

	require.ErrorIs(t, p.SetMoles([]float64{1}), equil.ErrShape)
	require.ErrorIs(t, p.SetMoles([]float64{1, -1}), equil.ErrNegativeMoles)
	require.ErrorIs(t, p.SetMoles([]float64{1, math.NaN()}), equil.ErrNonFinite)
}

func TestAccessorsRangeChecks(t *testing.T) {
	t.Parallel()

	p := MustProblem(t, scenarioAB(1, 1))
	_, err := p.Constraint(2)
	require.ErrorIs(t, err, equil.ErrConstraintIndex)
	_, err = p.Species(-1)
	require.ErrorIs(t, err, equil.ErrSpeciesIndex)
	require.ErrorIs(t, p.SetConstraintActive(5, true), equil.ErrConstraintIndex)

	c, err := p.Constraint(1)
	require.NoError(t, err)
	require.Equal(t, "B", c.Name)
	s, err := p.Species(0)
	require.NoError(t, err)
	require.Equal(t, "X", s.Name)

	// FormulaMatrix is a copy.
	f := p.FormulaMatrix()
	require.NoError(t, f.Set(0, 0, 42))
	v, err := p.Coefficient(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}
