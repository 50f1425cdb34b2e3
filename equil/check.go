package equil

import (
	"fmt"
	"math"
)

const opCheck = "CheckAbundances"

// CheckAbundances reports whether the cached abundances satisfy their
// targets over the requested scope. It does not re-evaluate abundances.
//
// A constraint passes outright when |abundance - target| ≤ 1e-12·|target|.
// Otherwise:
//   - a zero-target or electron-charge constraint whose row mixes positive
//     and negative coefficients (non-voltage species only) passes when the
//     discrepancy is at most 1e-11 times the largest |coefficient·moles|
//     term of the row, floored at the minor-species cutoff;
//   - the same constraint with a single-sign row passes only when the
//     discrepancy is at most the minor-species cutoff;
//   - any other constraint fails.
//
// Errors:
//   - ErrChargeNeutralTarget when a charge-neutrality target is nonzero.
func (p *Problem) CheckAbundances(scope Scope) (bool, error) {
	top := len(p.constraints)
	if scope == ScopeComponents {
		top = p.nc
	}
	for i := 0; i < top; i++ {
		ct := &p.constraints[i]
		diff := math.Abs(ct.Abundance - ct.Target)
		if diff <= relTol*math.Abs(ct.Target) {
			continue
		}
		if ct.Type == ElementChargeNeutrality && ct.Target != 0 {
			return false, fmt.Errorf("%s: constraint %q: %w", opCheck, ct.Name, ErrChargeNeutralTarget)
		}
		if ct.Target != 0 && ct.Type != ElementElectronCharge {
			return false, nil
		}
		multisign, scale := p.rowScale(i)
		if multisign {
			if diff > multisignTol*scale {
				return false, nil
			}
		} else if diff > p.opts.cutoff {
			return false, nil
		}
	}
	return true, nil
}

// rowScale reports whether constraint row i carries coefficients of both
// signs among non-voltage species, together with the largest
// |coefficient·moles| term of the row floored at the minor-species cutoff.
func (p *Problem) rowScale(i int) (multisign bool, scale float64) {
	var pos, neg bool
	scale = p.opts.cutoff
	for k, v := range p.row(i) {
		if v == 0 || p.isVoltage(k) {
			continue
		}
		if v > 0 {
			pos = true
		} else {
			neg = true
		}
		scale = math.Max(scale, math.Abs(v*p.moles[k]))
	}
	return pos && neg, scale
}

// singleSign reports whether row i has no pair of opposite-sign
// coefficients among non-voltage species.
func (p *Problem) singleSign(i int) bool {
	ms, _ := p.rowScale(i)
	return !ms
}
