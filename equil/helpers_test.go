package equil_test

import (
	"testing"

	"github.com/katalvlaran/vcs/equil"
	"github.com/stretchr/testify/require"
)

// MustProblem builds a Problem or fails the test.
func MustProblem(t testing.TB, def equil.Definition, opts ...equil.Option) *equil.Problem {
	t.Helper()
	p, err := equil.NewProblem(def, opts...)
	require.NoError(t, err)
	return p
}

// MustRearrange conditions p or fails the test.
func MustRearrange(t testing.TB, p *equil.Problem) equil.RearrangeReport {
	t.Helper()
	rep, err := p.RearrangeConstraints()
	require.NoError(t, err)
	return rep
}

// names returns constraint names in position order.
func names(p *equil.Problem) []string {
	cs := p.Constraints()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// ownPhases puts every species into its own single-species phase.
func ownPhases(spNames ...string) ([]equil.Species, []equil.PhaseDefinition) {
	sp := make([]equil.Species, len(spNames))
	ph := make([]equil.PhaseDefinition, len(spNames))
	for k, n := range spNames {
		sp[k] = equil.Species{Name: n, Phase: k}
		ph[k] = equil.PhaseDefinition{Name: n + "(s)"}
	}
	return sp, ph
}

// sharedPhase puts every species into one mixture phase.
func sharedPhase(spNames ...string) ([]equil.Species, []equil.PhaseDefinition) {
	sp := make([]equil.Species, len(spNames))
	for k, n := range spNames {
		sp[k] = equil.Species{Name: n}
	}
	return sp, []equil.PhaseDefinition{{Name: "mix"}}
}

// elements builds active normal constraints with the given targets.
func elements(targets map[string]float64, order ...string) []equil.Constraint {
	out := make([]equil.Constraint, len(order))
	for i, n := range order {
		out[i] = equil.Constraint{Name: n, Target: targets[n], Active: true}
	}
	return out
}

// scenarioAB is the two-element, two-species problem X = A, Y = B.
func scenarioAB(moles ...float64) equil.Definition {
	sp, ph := ownPhases("X", "Y")
	return equil.Definition{
		Constraints: elements(map[string]float64{"A": 2, "B": 3}, "A", "B"),
		Species:     sp,
		Phases:      ph,
		Formula: [][]float64{
			{1, 0},
			{0, 1},
		},
		Moles:      moles,
		Components: 2,
	}
}

// plusMinus is the two-component system x+y = a, x-y = b.
func plusMinus(a, b float64, sp []equil.Species, ph []equil.PhaseDefinition, moles ...float64) equil.Definition {
	return equil.Definition{
		Constraints: elements(map[string]float64{"sum": a, "diff": b}, "sum", "diff"),
		Species:     sp,
		Phases:      ph,
		Formula: [][]float64{
			{1, 1},
			{1, -1},
		},
		Moles:      moles,
		Components: 2,
	}
}
