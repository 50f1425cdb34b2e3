// SPDX-License-Identifier: MIT

// Package equil - problem state shared by the Evaluator, Checker, Corrector,
// Rearranger and Position-Switch.
//
// Layout invariants:
//   - Constraints are ordered so the first NumComponents rows are linearly
//     independent over the component columns (established by
//     RearrangeConstraints, kept by SwitchConstraints).
//   - Species [0, NumComponents) are the components; species
//     [NumActiveSpecies, NumSpecies) are deleted.
//   - The formula matrix row i always belongs to constraint i.

package equil

import (
	"fmt"
	"math"

	"github.com/katalvlaran/vcs/matrix"
	"github.com/sirupsen/logrus"
)

const opNewProblem = "NewProblem"

// Problem is one elemental-abundance system. It is not safe for concurrent
// use; every operation mutates shared state in place.
type Problem struct {
	constraints []Constraint
	species     []Species
	phases      []*Phase
	formula     *matrix.Dense
	moles       []float64
	nc          int // components
	nActive     int // species currently in the active set
	conditioned bool

	observers []ConstraintObserver
	opts      options
	log       logrus.FieldLogger
}

// NewProblem validates def and builds a Problem owning copies of its data.
//
// Validation:
//   - Formula is E×S with E = len(Constraints), S = len(Species), len(Moles) = S.
//   - Every coefficient, target and mole number is finite; moles are non-negative.
//   - 0 ≤ Components ≤ min(E, S).
//   - Species reference existing phases; deleted species trail the active
//     ones and are never components.
//   - Charge-neutrality targets are exactly zero.
//
// Each phase's ElementGlobalIndex lists, in ascending order, the constraints
// with a nonzero coefficient for at least one species of the phase.
// A phase is single-species when exactly one species references it.
// A GonumSolver without a Logger reports through the problem's logger.
func NewProblem(def Definition, opts ...Option) (*Problem, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if gs, ok := o.solver.(GonumSolver); ok && gs.Logger == nil {
		gs.Logger = o.logger
		o.solver = gs
	}

	E, S := len(def.Constraints), len(def.Species)
	if len(def.Formula) != E {
		return nil, fmt.Errorf("%s: formula has %d rows, want %d: %w", opNewProblem, len(def.Formula), E, ErrShape)
	}
	if len(def.Moles) != S {
		return nil, fmt.Errorf("%s: %d mole numbers, want %d: %w", opNewProblem, len(def.Moles), S, ErrShape)
	}
	if def.Components < 0 || def.Components > E || def.Components > S {
		return nil, fmt.Errorf("%s: %d components with %d constraints and %d species: %w",
			opNewProblem, def.Components, E, S, ErrShape)
	}

	flat := make([]float64, 0, E*S)
	for i, row := range def.Formula {
		if len(row) != S {
			return nil, fmt.Errorf("%s: formula row %d has %d columns, want %d: %w", opNewProblem, i, len(row), S, ErrShape)
		}
		for k, v := range row {
			if !isFinite(v) {
				return nil, fmt.Errorf("%s: formula[%d][%d]: %w", opNewProblem, i, k, ErrNonFinite)
			}
		}
		flat = append(flat, row...)
	}
	formula, err := matrix.NewDenseFrom(E, S, flat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNewProblem, err)
	}

	constraints := make([]Constraint, E)
	copy(constraints, def.Constraints)
	for i, ct := range constraints {
		if !isFinite(ct.Target) {
			return nil, fmt.Errorf("%s: constraint %q target: %w", opNewProblem, ct.Name, ErrNonFinite)
		}
		if ct.Type == ElementChargeNeutrality && ct.Target != 0 {
			return nil, fmt.Errorf("%s: constraint %q: %w", opNewProblem, ct.Name, ErrChargeNeutralTarget)
		}
		constraints[i].Abundance = 0
		constraints[i].Independent = false
	}

	moles := make([]float64, S)
	for k, n := range def.Moles {
		if !isFinite(n) {
			return nil, fmt.Errorf("%s: moles[%d]: %w", opNewProblem, k, ErrNonFinite)
		}
		if n < 0 {
			return nil, fmt.Errorf("%s: moles[%d] = %g: %w", opNewProblem, k, n, ErrNegativeMoles)
		}
		moles[k] = n
	}

	species := make([]Species, S)
	copy(species, def.Species)
	members := make([]int, len(def.Phases))
	nActive := S
	for k, sp := range species {
		if sp.Phase < 0 || sp.Phase >= len(def.Phases) {
			return nil, fmt.Errorf("%s: species %q phase %d: %w", opNewProblem, sp.Name, sp.Phase, ErrPhaseIndex)
		}
		members[sp.Phase]++
		if sp.Status == StatusDeleted {
			if nActive == S {
				nActive = k
			}
		} else if nActive != S {
			return nil, fmt.Errorf("%s: species %q at %d follows a deleted species: %w", opNewProblem, sp.Name, k, ErrDeletedOrder)
		}
	}
	if nActive < def.Components {
		return nil, fmt.Errorf("%s: only %d active species for %d components: %w", opNewProblem, nActive, def.Components, ErrDeletedOrder)
	}

	phases := make([]*Phase, len(def.Phases))
	for p, pd := range def.Phases {
		phases[p] = &Phase{Name: pd.Name, SingleSpecies: members[p] == 1}
	}
	for i := 0; i < E; i++ {
		row, _ := formula.RawRow(i)
		seen := make([]bool, len(phases))
		for k, v := range row {
			if v == 0 || seen[species[k].Phase] {
				continue
			}
			ph := species[k].Phase
			seen[ph] = true
			phases[ph].ElementGlobalIndex = append(phases[ph].ElementGlobalIndex, i)
		}
	}

	p := &Problem{
		constraints: constraints,
		species:     species,
		phases:      phases,
		formula:     formula,
		moles:       moles,
		nc:          def.Components,
		nActive:     nActive,
		opts:        o,
		log:         o.logger,
	}
	for _, ph := range phases {
		p.observers = append(p.observers, ph)
	}
	p.observers = append(p.observers, o.observers...)
	p.EvaluateAbundances()
	p.UpdatePhaseTotals()

	return p, nil
}

// NumConstraints returns E.
func (p *Problem) NumConstraints() int { return len(p.constraints) }

// NumSpecies returns S.
func (p *Problem) NumSpecies() int { return len(p.species) }

// NumComponents returns C.
func (p *Problem) NumComponents() int { return p.nc }

// NumActiveSpecies returns the size of the active species prefix.
func (p *Problem) NumActiveSpecies() int { return p.nActive }

// NumPhases returns the number of phases.
func (p *Problem) NumPhases() int { return len(p.phases) }

// Conditioned reports whether RearrangeConstraints has run since the
// constraint set last changed.
func (p *Problem) Conditioned() bool { return p.conditioned }

// Constraint returns a copy of the constraint at position i.
func (p *Problem) Constraint(i int) (Constraint, error) {
	if i < 0 || i >= len(p.constraints) {
		return Constraint{}, fmt.Errorf("Constraint(%d): %w", i, ErrConstraintIndex)
	}
	return p.constraints[i], nil
}

// Constraints returns a copy of all constraints in position order.
func (p *Problem) Constraints() []Constraint {
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Species returns a copy of species k.
func (p *Problem) Species(k int) (Species, error) {
	if k < 0 || k >= len(p.species) {
		return Species{}, fmt.Errorf("Species(%d): %w", k, ErrSpeciesIndex)
	}
	return p.species[k], nil
}

// Phase returns a copy of phase ph.
func (p *Problem) Phase(ph int) (Phase, error) {
	if ph < 0 || ph >= len(p.phases) {
		return Phase{}, fmt.Errorf("Phase(%d): %w", ph, ErrPhaseIndex)
	}
	out := *p.phases[ph]
	out.ElementGlobalIndex = append([]int(nil), out.ElementGlobalIndex...)
	return out, nil
}

// FormulaMatrix returns a copy of the E×S formula matrix in current
// constraint and species order.
func (p *Problem) FormulaMatrix() *matrix.Dense {
	return p.formula.Clone().(*matrix.Dense)
}

// Coefficient returns the formula entry of constraint i and species k.
func (p *Problem) Coefficient(i, k int) (float64, error) {
	return p.formula.At(i, k)
}

// Moles returns the live mole-number vector. Callers may edit entries in
// place; the Corrector and Evaluator read it directly.
func (p *Problem) Moles() []float64 { return p.moles }

// SetMoles replaces the mole numbers with a copy of n and re-evaluates
// abundances.
func (p *Problem) SetMoles(n []float64) error {
	if len(n) != len(p.moles) {
		return fmt.Errorf("SetMoles: %d values, want %d: %w", len(n), len(p.moles), ErrShape)
	}
	for k, v := range n {
		if !isFinite(v) {
			return fmt.Errorf("SetMoles: moles[%d]: %w", k, ErrNonFinite)
		}
		if v < 0 {
			return fmt.Errorf("SetMoles: moles[%d] = %g: %w", k, v, ErrNegativeMoles)
		}
	}
	copy(p.moles, n)
	p.EvaluateAbundances()

	return nil
}

// SetConstraintActive toggles whether constraint i may be chosen as
// independent. The next correction requires a fresh RearrangeConstraints.
func (p *Problem) SetConstraintActive(i int, active bool) error {
	if i < 0 || i >= len(p.constraints) {
		return fmt.Errorf("SetConstraintActive(%d): %w", i, ErrConstraintIndex)
	}
	if p.constraints[i].Active != active {
		p.constraints[i].Active = active
		p.conditioned = false
	}
	return nil
}

// AddObserver registers a collaborator that must follow every
// SwitchConstraints.
func (p *Problem) AddObserver(obs ConstraintObserver) {
	if obs != nil {
		p.observers = append(p.observers, obs)
	}
}

// Residuals returns target minus current abundance for every constraint,
// using the cached abundances.
func (p *Problem) Residuals() []float64 {
	out := make([]float64, len(p.constraints))
	for i, ct := range p.constraints {
		out[i] = ct.Target - ct.Abundance
	}
	return out
}

// DiscrepancyNormSq returns the sum over all constraints of the squared
// difference between cached abundance and target.
func (p *Problem) DiscrepancyNormSq() float64 {
	var sum, d float64
	for _, ct := range p.constraints {
		d = ct.Abundance - ct.Target
		sum += d * d
	}
	return sum
}

// discrepancyRMS is the diagnostic norm sqrt(sum/E).
func (p *Problem) discrepancyRMS() float64 {
	if len(p.constraints) == 0 {
		return 0
	}
	return math.Sqrt(p.DiscrepancyNormSq() / float64(len(p.constraints)))
}

// UpdatePhaseTotals recomputes every phase's TotalMoles from the mole
// numbers of its non-voltage species.
func (p *Problem) UpdatePhaseTotals() {
	for _, ph := range p.phases {
		ph.TotalMoles = 0
	}
	for k, sp := range p.species {
		if sp.Type == SpeciesInterfacialVoltage {
			continue
		}
		p.phases[sp.Phase].TotalMoles += p.moles[k]
	}
}

// row returns the live formula row of constraint i. i must be valid.
func (p *Problem) row(i int) []float64 {
	r, _ := p.formula.RawRow(i)
	return r
}

func (p *Problem) isVoltage(k int) bool {
	return p.species[k].Type == SpeciesInterfacialVoltage
}

func (p *Problem) singleSpeciesPhase(k int) bool {
	return p.phases[p.species[k].Phase].SingleSpecies
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
