package equil

import "fmt"

const opSwitch = "SwitchConstraints"

// SwitchConstraints exchanges constraints i and j everywhere: the
// constraint records (name, target, abundance, type, flags), the formula
// matrix rows, and every registered observer's index maps, including each
// phase's ElementGlobalIndex. Switching a position with itself is a no-op.
//
// Errors:
//   - ErrConstraintIndex when i or j is outside [0, NumConstraints).
func (p *Problem) SwitchConstraints(i, j int) error {
	E := len(p.constraints)
	if i < 0 || i >= E || j < 0 || j >= E {
		return fmt.Errorf("%s(%d, %d): %w", opSwitch, i, j, ErrConstraintIndex)
	}
	if i == j {
		return nil
	}
	if err := p.formula.SwapRows(i, j); err != nil {
		return fmt.Errorf("%s: %w", opSwitch, err)
	}
	p.constraints[i], p.constraints[j] = p.constraints[j], p.constraints[i]
	for _, obs := range p.observers {
		obs.SwapConstraints(i, j)
	}

	return nil
}

// switchSpecies exchanges species k and l: metadata, mole numbers and
// formula columns. Both indices must be valid.
func (p *Problem) switchSpecies(k, l int) {
	if k == l {
		return
	}
	_ = p.formula.SwapCols(k, l)
	p.species[k], p.species[l] = p.species[l], p.species[k]
	p.moles[k], p.moles[l] = p.moles[l], p.moles[k]
}
