// SPDX-License-Identifier: MIT

// Package equil - abundance correction pipeline.
//
// The Corrector runs a fixed sequence of named stages. Each stage may
// mutate mole numbers (re-evaluating abundances after every mutation) and
// reports whether the problem is resolved; the pipeline stops at the first
// resolved stage. Phase totals are recomputed once more at the end
// regardless of outcome.

package equil

import (
	"fmt"
	"math"

	"github.com/katalvlaran/vcs/matrix"
	"github.com/sirupsen/logrus"
)

const opCorrect = "CorrectAbundances"

// CorrectionStatus is the outcome of CorrectAbundances.
type CorrectionStatus int

const (
	// CorrectionFailed means the component system was singular.
	CorrectionFailed CorrectionStatus = -1
	// CorrectionUnchanged means the abundances were already compliant.
	CorrectionUnchanged CorrectionStatus = 0
	// CorrectionCompliant means mole numbers changed and are now compliant.
	CorrectionCompliant CorrectionStatus = 1
	// CorrectionNonCompliant means mole numbers changed but some
	// constraint is still violated.
	CorrectionNonCompliant CorrectionStatus = 2
	// CorrectionComponentZeroed is CorrectionNonCompliant where, in
	// addition, a component species was driven to zero.
	CorrectionComponentZeroed CorrectionStatus = 3
)

// String implements fmt.Stringer.
func (s CorrectionStatus) String() string {
	switch s {
	case CorrectionFailed:
		return "failed"
	case CorrectionUnchanged:
		return "unchanged"
	case CorrectionCompliant:
		return "compliant"
	case CorrectionNonCompliant:
		return "non-compliant"
	case CorrectionComponentZeroed:
		return "component-zeroed"
	}
	return fmt.Sprintf("CorrectionStatus(%d)", int(s))
}

// Stage names, in pipeline order.
const (
	StageDegenerateRows = "degenerate-rows"
	StageUpperBounds    = "upper-bounds"
	StageDampedLinear   = "damped-linear"
	StageSingleSpecies  = "single-species"
	StageChargeBalance  = "charge-balance"
	StageElectronCharge = "electron-charge"
)

// CorrectionReport describes one CorrectAbundances call.
type CorrectionReport struct {
	Status CorrectionStatus
	// Stage is the stage that resolved (or failed) the correction; empty
	// when nothing was resolved or the input was already compliant.
	Stage string
	// NormBefore and NormAfter are sqrt(Σ(abundance-target)²/E).
	NormBefore float64
	NormAfter  float64
	// ZeroedComponents lists component species driven to zero.
	ZeroedComponents []int
	// Reinserted is the new index of a species brought back into the
	// active set by the single-species stage, or -1.
	Reinserted int
	// RolledBack is set when the stages left a larger sum of squared
	// discrepancies than they started from and the entry state was restored.
	RolledBack bool
}

// snapshot is the species-indexed state a correction may change.
type snapshot struct {
	moles   []float64
	species []Species
	nActive int
	formula *matrix.Dense
}

func (p *Problem) snapshot() snapshot {
	return snapshot{
		moles:   append([]float64(nil), p.moles...),
		species: append([]Species(nil), p.species...),
		nActive: p.nActive,
		formula: p.formula.Clone().(*matrix.Dense),
	}
}

// restore puts s back and re-evaluates abundances and phase totals. The
// mole slice keeps its identity so Moles() stays live.
func (p *Problem) restore(s snapshot) {
	copy(p.moles, s.moles)
	copy(p.species, s.species)
	p.nActive = s.nActive
	p.formula = s.formula
	p.EvaluateAbundances()
	p.UpdatePhaseTotals()
}

// correction carries per-call state between stages.
type correction struct {
	p      *Problem
	report *CorrectionReport
	zeroed map[int]bool
}

type correctionStage struct {
	name string
	run  func(c *correction) (bool, error)
}

var correctionStages = []correctionStage{
	{StageDegenerateRows, (*correction).degenerateRows},
	{StageUpperBounds, (*correction).upperBounds},
	{StageDampedLinear, (*correction).dampedLinear},
	{StageSingleSpecies, (*correction).singleSpecies},
	{StageChargeBalance, (*correction).chargeBalance},
	{StageElectronCharge, (*correction).electronCharge},
}

// CorrectAbundances drives the mole numbers back toward the constraint
// targets. Abundances are re-evaluated on entry.
//
// Stages, in order (each stops the pipeline when it resolves):
//  1. degenerate-rows: single-sign rows with one nonzero species, or one
//     nonzero component, are solved for that species directly.
//  2. upper-bounds: abs-pos constraints bound each contributing species
//     by target/coefficient; values under the minor-species cutoff are
//     zeroed and flagged.
//  3. damped-linear: solves F_cc·Δ = target - abundance over the C
//     component rows and columns, damps the step so no component goes
//     negative, zeroes single-species-phase components and shrinks the
//     others by 1e-4 where the step would still go non-positive.
//  4. single-species: when the components are still violated, nudges the
//     first species whose column moves every component residual the same
//     way, reinserting it if it was not active.
//  5. charge-balance: charge-neutrality and zero-target abs-pos rows are
//     repaired through the first active species of opposite sign.
//  6. electron-charge: electron-charge rows are repaired through a species
//     of matching sign, preferring those with nonzero moles.
//
// Stages 1, 2, 5 and 6 resolve when every constraint passes; stage 4
// resolves when the component constraints pass; stage 3 never resolves
// on its own.
//
// The sum of squared discrepancies never increases. Stage 1's zero floor
// and stage 3's damping can raise it; when the finished pipeline leaves it
// above its entry value, the entry state is restored with RolledBack set
// and status CorrectionNonCompliant.
//
// Errors:
//   - ErrNotConditioned when RearrangeConstraints has not run since the
//     constraint set last changed.
//   - ErrSingularCorrection (status CorrectionFailed) when the component
//     system is singular.
//   - ErrChargeNeutralTarget from the compliance checks.
func (p *Problem) CorrectAbundances() (CorrectionReport, error) {
	rep := CorrectionReport{Status: CorrectionFailed, Reinserted: -1}
	if !p.conditioned {
		return rep, fmt.Errorf("%s: %w", opCorrect, ErrNotConditioned)
	}

	p.EvaluateAbundances()
	rep.NormBefore = p.discrepancyRMS()
	ok, err := p.CheckAbundances(ScopeAll)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", opCorrect, err)
	}
	if ok {
		p.UpdatePhaseTotals()
		rep.Status = CorrectionUnchanged
		rep.NormAfter = rep.NormBefore
		return rep, nil
	}

	sumBefore := p.DiscrepancyNormSq()
	snap := p.snapshot()
	c := &correction{p: p, report: &rep, zeroed: make(map[int]bool)}
	resolved := false
	for _, st := range correctionStages {
		resolved, err = st.run(c)
		if err != nil {
			p.UpdatePhaseTotals()
			rep.Stage = st.name
			rep.NormAfter = p.discrepancyRMS()
			return rep, fmt.Errorf("%s: %s: %w", opCorrect, st.name, err)
		}
		if resolved {
			rep.Stage = st.name
			break
		}
	}
	p.UpdatePhaseTotals()

	if sumAfter := p.DiscrepancyNormSq(); sumAfter > sumBefore {
		p.log.WithFields(logrus.Fields{
			"stage":  rep.Stage,
			"before": sumBefore,
			"after":  sumAfter,
		}).Debug("correction increased the discrepancy, restoring entry state")
		p.restore(snap)
		rep.Status = CorrectionNonCompliant
		rep.Stage = ""
		rep.Reinserted = -1
		rep.RolledBack = true
		rep.NormAfter = p.discrepancyRMS()
		return rep, nil
	}

	switch {
	case resolved:
		rep.Status = CorrectionCompliant
	case len(c.zeroed) > 0:
		rep.Status = CorrectionComponentZeroed
	default:
		rep.Status = CorrectionNonCompliant
	}
	for k := 0; k < p.nc; k++ {
		if c.zeroed[k] {
			rep.ZeroedComponents = append(rep.ZeroedComponents, k)
		}
	}
	rep.NormAfter = p.discrepancyRMS()

	p.log.WithFields(logrus.Fields{
		"status": rep.Status.String(),
		"stage":  rep.Stage,
		"before": rep.NormBefore,
		"after":  rep.NormAfter,
	}).Debug("abundance correction finished")

	return rep, nil
}

// setMoles assigns species k and records a component driven to zero.
func (c *correction) setMoles(k int, v float64) {
	if k < c.p.nc && v == 0 && c.p.moles[k] > 0 {
		c.zeroed[k] = true
	}
	c.p.moles[k] = v
}

// degenerateRows is stage 1.
func (c *correction) degenerateRows() (bool, error) {
	p := c.p
	changed := false
	for i := range p.constraints {
		if !p.singleSign(i) {
			continue
		}
		row := p.row(i)
		target := p.constraints[i].Target

		nnz := 0
		for k, v := range row {
			if v != 0 && !p.isVoltage(k) {
				nnz++
			}
		}
		if nnz == 1 {
			for k, v := range row {
				if v != 0 && !p.isVoltage(k) {
					c.setMoles(k, math.Max(0, target/v))
					changed = true
				}
			}
			continue
		}

		comp, nComp := -1, 0
		for k := 0; k < p.nc; k++ {
			if row[k] != 0 && !p.isVoltage(k) {
				comp = k
				nComp++
			}
		}
		if nComp != 1 {
			continue
		}
		diff := target
		for k := p.nc; k < len(row); k++ {
			if !p.isVoltage(k) {
				diff -= row[k] * p.moles[k]
			}
		}
		c.setMoles(comp, math.Max(0, diff/row[comp]))
		changed = true
	}
	if changed {
		p.EvaluateAbundances()
	}
	return p.CheckAbundances(ScopeAll)
}

// upperBounds is stage 2.
func (c *correction) upperBounds() (bool, error) {
	p := c.p
	changed := false
	for i, ct := range p.constraints {
		if ct.Type != ElementAbsPos {
			continue
		}
		for k, v := range p.row(i) {
			if v <= 0 || p.isVoltage(k) {
				continue
			}
			limit := ct.Target / v
			if p.moles[k] <= limit {
				continue
			}
			p.log.WithFields(logrus.Fields{
				"species":    p.species[k].Name,
				"constraint": ct.Name,
				"from":       p.moles[k],
				"to":         limit,
			}).Debug("species reduced to upper bound")
			c.setMoles(k, limit)
			changed = true
			if limit < p.opts.cutoff {
				c.setMoles(k, 0)
				if p.singleSpeciesPhase(k) {
					p.species[k].Status = StatusZeroedSS
				} else {
					p.species[k].Status = StatusZeroedMS
				}
				p.log.WithField("species", p.species[k].Name).Debug("species zeroed by upper bound")
			}
		}
	}
	if changed {
		p.EvaluateAbundances()
	}
	return p.CheckAbundances(ScopeAll)
}

// dampedLinear is stage 3.
func (c *correction) dampedLinear() (bool, error) {
	p := c.p
	C := p.nc
	if C == 0 {
		return false, nil
	}
	a, err := p.formula.Leading(C)
	if err != nil {
		return false, err
	}
	rhs := make([]float64, C)
	for i := 0; i < C; i++ {
		rhs[i] = p.constraints[i].Target - p.constraints[i].Abundance
	}
	delta, err := p.opts.solver.Solve(a, rhs)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSingularCorrection, err)
	}

	par := dampFloor
	for k := 0; k < C; k++ {
		if p.moles[k] > 0 {
			if r := -delta[k] / p.moles[k]; r > par {
				par = r
			}
		}
	}
	if par > dampCeil {
		par = dampCeil
	}
	par = 1 / par
	if par < 1 && par > 0 {
		par *= dampSafety
		p.log.WithField("damping", par).Debug("damped component step")
	} else {
		par = 1
	}

	for k := 0; k < C; k++ {
		next := p.moles[k] + par*delta[k]
		switch {
		case next > 0:
			c.setMoles(k, next)
		case p.singleSpeciesPhase(k):
			c.setMoles(k, 0)
		default:
			c.setMoles(k, p.moles[k]*shrinkFactor)
		}
	}
	p.EvaluateAbundances()
	p.UpdatePhaseTotals()

	return false, nil
}

// singleSpecies is stage 4.
func (c *correction) singleSpecies() (bool, error) {
	p := c.p
	ok, err := p.CheckAbundances(ScopeComponents)
	if err != nil || ok {
		return ok, err
	}

	C := p.nc
	res := make([]float64, C)
	for i := 0; i < C; i++ {
		res[i] = p.constraints[i].Target - p.constraints[i].Abundance
	}
	for k := range p.species {
		if p.isVoltage(k) {
			continue
		}
		delta, ok := c.uniformDelta(k, res)
		if !ok {
			continue
		}
		name := p.species[k].Name
		if k >= p.nActive {
			nk, err := p.opts.reinserter(p, k)
			if err != nil {
				return false, err
			}
			c.report.Reinserted = nk
			p.moles[nk] = math.Max(delta, adhocFloor)
		} else {
			p.moles[k] = math.Max(p.moles[k]+delta, adhocFloor)
		}
		p.log.WithFields(logrus.Fields{
			"species": name,
			"delta":   delta,
		}).Debug("single-species adjustment")
		p.EvaluateAbundances()
		break
	}

	return p.CheckAbundances(ScopeComponents)
}

// uniformDelta reports whether moving species k helps every violated
// component constraint in the same direction and, if so, the average of
// residual/coefficient over its nonzero component entries.
func (c *correction) uniformDelta(k int, res []float64) (float64, bool) {
	p := c.p
	var saveDir, sum float64
	n := 0
	for i := range res {
		coef := p.row(i)[k]
		dir := coef * res[i]
		if math.Abs(dir) > directionTol {
			if (dir > 0 && saveDir < 0) || (dir < 0 && saveDir > 0) {
				return 0, false
			}
			saveDir = dir
		} else if coef != 0 {
			return 0, false
		}
		if coef != 0 {
			sum += res[i] / coef
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// chargeBalance is stage 5.
func (c *correction) chargeBalance() (bool, error) {
	p := c.p
	for i := range p.constraints {
		ct := p.constraints[i]
		if ct.Type != ElementChargeNeutrality && !(ct.Type == ElementAbsPos && ct.Target == 0) {
			continue
		}
		r := ct.Abundance - ct.Target
		if r == 0 {
			continue
		}
		row := p.row(i)
		for k := 0; k < p.nActive; k++ {
			if p.isVoltage(k) {
				continue
			}
			if (r > 0 && row[k] < 0) || (r < 0 && row[k] > 0) {
				c.setMoles(k, math.Max(0, p.moles[k]-r/row[k]))
				p.EvaluateAbundances()
				break
			}
		}
		ok, err := p.CheckAbundances(ScopeComponents)
		if err != nil {
			return false, err
		}
		if ok {
			break
		}
	}
	return p.CheckAbundances(ScopeAll)
}

// electronCharge is stage 6.
func (c *correction) electronCharge() (bool, error) {
	p := c.p
	for i := range p.constraints {
		ct := p.constraints[i]
		dev := ct.Target - ct.Abundance
		if ct.Type != ElementElectronCharge || math.Abs(dev) <= electronDevTol {
			continue
		}
		row := p.row(i)
		matches := func(k int) bool {
			return !p.isVoltage(k) && ((dev < 0 && row[k] < 0) || (dev > 0 && row[k] > 0))
		}
		useZeroed := true
		for k := 0; k < p.nActive; k++ {
			if matches(k) && p.moles[k] > 0 {
				useZeroed = false
				break
			}
		}
		for k := 0; k < p.nActive; k++ {
			if !matches(k) || (p.moles[k] <= 0 && !useZeroed) {
				continue
			}
			c.setMoles(k, math.Max(0, p.moles[k]+dev/row[k]))
			p.EvaluateAbundances()
			break
		}
		ok, err := p.CheckAbundances(ScopeAll)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return p.CheckAbundances(ScopeAll)
}
