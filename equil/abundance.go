package equil

import "fmt"

// EvaluateAbundances recomputes every constraint's Abundance from the
// current mole numbers: the sum over non-voltage species of formula
// coefficient times mole number.
//
// Deleted species are included. Voltage unknowns never contribute.
// Complexity: O(E·S).
func (p *Problem) EvaluateAbundances() {
	var (
		sum float64
		row []float64
		k   int
	)
	for i := range p.constraints {
		row = p.row(i)
		sum = 0
		for k = range row {
			if p.species[k].Type == SpeciesInterfacialVoltage {
				continue
			}
			sum += row[k] * p.moles[k]
		}
		p.constraints[i].Abundance = sum
	}
}

// PhaseAbundances returns, for every constraint position, the abundance
// contributed by the non-voltage species of phase ph alone. Summed over all
// phases the result equals the Abundance of each constraint.
func (p *Problem) PhaseAbundances(ph int) ([]float64, error) {
	if ph < 0 || ph >= len(p.phases) {
		return nil, fmt.Errorf("PhaseAbundances(%d): %w", ph, ErrPhaseIndex)
	}
	out := make([]float64, len(p.constraints))
	for i := range p.constraints {
		row := p.row(i)
		for k, v := range row {
			sp := p.species[k]
			if sp.Phase != ph || sp.Type == SpeciesInterfacialVoltage {
				continue
			}
			out[i] += v * p.moles[k]
		}
	}
	return out, nil
}
