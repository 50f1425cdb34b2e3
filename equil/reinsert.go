package equil

import "fmt"

// Reinserter moves non-active species k back into the active set and
// returns its new index. Implementations must keep deleted species at the
// tail and must not disturb species [0, NumComponents).
type Reinserter func(p *Problem, k int) (int, error)

// SwapReinserter swaps species k into position NumActiveSpecies, marks it
// active and grows the active set by one. Already-active species are
// returned unchanged.
func SwapReinserter(p *Problem, k int) (int, error) {
	if k < 0 || k >= len(p.species) {
		return 0, fmt.Errorf("SwapReinserter(%d): %w", k, ErrSpeciesIndex)
	}
	if k < p.nActive {
		return k, nil
	}
	pos := p.nActive
	p.switchSpecies(pos, k)
	p.species[pos].Status = StatusActive
	p.nActive++
	p.log.WithField("species", p.species[pos].Name).Debugf("reinserted species %d at %d", k, pos)

	return pos, nil
}
