// SPDX-License-Identifier: MIT

package equil

import (
	"fmt"

	"github.com/katalvlaran/vcs/matrix"
	"github.com/sirupsen/logrus"
)

const opRearrange = "RearrangeConstraints"

// RearrangeReport describes what RearrangeConstraints did.
type RearrangeReport struct {
	// Swaps lists every (position, original position) exchange, in order.
	Swaps [][2]int
	// Rejected names the active constraints found linearly dependent on
	// the constraints accepted before them.
	Rejected []string
}

// RearrangeConstraints orders the constraints so that the first
// NumComponents rows, restricted to the component columns, are linearly
// independent. Dependent constraints end up at positions ≥ NumComponents.
//
// Implementation:
//   - Stage 1: for each output position j = 0..C-1, take the first active,
//     not yet selected constraint at a position ≥ j and mark it selected.
//   - Stage 2: project its component row against the rows already accepted
//     (modified Gram–Schmidt). A squared residual norm below 1e-6 rejects
//     the candidate and the search continues.
//   - Stage 3: move the accepted constraint to position j with
//     SwitchConstraints; the selection mask follows the swap.
//
// Behavior highlights:
//   - No swaps when the first C constraints are already independent.
//   - Inactive constraints are never selected.
//   - On success the first C constraints are flagged Independent and the
//     problem is ready for CorrectAbundances.
//
// Errors:
//   - ErrInsufficientRank when the search runs out of candidates before C
//     independent constraints are found. Constraint order is then partially
//     permuted and the problem stays unconditioned.
//
// Complexity:
//   - Time O(E·C²), Space O(C²).
func (p *Problem) RearrangeConstraints() (RearrangeReport, error) {
	var rep RearrangeReport
	E, C := len(p.constraints), p.nc
	p.conditioned = false

	if C > 0 {
		orth, err := matrix.NewOrthogonalizer(C, C)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", opRearrange, err)
		}
		selected := make([]bool, E)
		for jr := 0; jr < C; jr++ {
			k, err := p.nextIndependent(orth, selected, jr, &rep)
			if err != nil {
				return rep, err
			}
			if k == jr {
				continue
			}
			p.log.WithFields(logrus.Fields{
				"constraint": p.constraints[k].Name,
				"replaces":   p.constraints[jr].Name,
				"position":   jr,
			}).Debug("constraint moved forward")
			if err = p.SwitchConstraints(jr, k); err != nil {
				return rep, fmt.Errorf("%s: %w", opRearrange, err)
			}
			selected[jr], selected[k] = selected[k], selected[jr]
			rep.Swaps = append(rep.Swaps, [2]int{jr, k})
		}
	}

	for i := range p.constraints {
		p.constraints[i].Independent = i < C
	}
	p.conditioned = true

	return rep, nil
}

// nextIndependent finds the first active unselected constraint at a
// position ≥ jr whose component row is independent of the accepted rows,
// accepts it into orth and returns its position.
func (p *Problem) nextIndependent(orth *matrix.Orthogonalizer, selected []bool, jr int, rep *RearrangeReport) (int, error) {
	C := p.nc
	for {
		k := -1
		for i := jr; i < len(p.constraints); i++ {
			if p.constraints[i].Active && !selected[i] {
				k = i
				break
			}
		}
		if k < 0 {
			return 0, fmt.Errorf("%s: found %d of %d independent constraints: %w", opRearrange, jr, C, ErrInsufficientRank)
		}
		selected[k] = true

		ns, err := orth.Project(p.row(k)[:C])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", opRearrange, err)
		}
		if ns < rankTol {
			p.log.WithFields(logrus.Fields{
				"constraint": p.constraints[k].Name,
				"norm":       ns,
			}).Debug("constraint rejected as dependent")
			rep.Rejected = append(rep.Rejected, p.constraints[k].Name)
			continue
		}
		orth.Accept()

		return k, nil
	}
}
