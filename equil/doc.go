// Package equil repairs and orders the elemental-abundance constraints of a
// multi-phase chemical equilibrium problem.
//
// A Problem holds E constraints (element or charge balances), S species and
// the E×S formula matrix relating them. The first C species and the first
// C constraints are the components. The package exposes five operations:
//
//   - EvaluateAbundances recomputes each constraint's current abundance
//     from the mole numbers; interfacial-voltage unknowns never contribute.
//   - CheckAbundances tests abundances against targets. Rows where
//     cancellation can occur get a scale-relative tolerance; everything
//     else must balance exactly.
//   - RearrangeConstraints moves a linearly independent set of C
//     constraints to the front (modified Gram–Schmidt over the component
//     columns) so the component system is never singular.
//   - SwitchConstraints exchanges two constraint positions, carrying every
//     constraint-indexed datum and notifying registered observers.
//   - CorrectAbundances drives mole numbers back toward the targets through
//     a six-stage pipeline ending in constraint-type-specific repairs.
//
// Typical use:
//
//	p, err := equil.NewProblem(def, equil.WithLogger(log))
//	if err != nil { ... }
//	if _, err = p.RearrangeConstraints(); err != nil { ... } // once per problem
//	rep, err := p.CorrectAbundances()
//
// A Problem is not safe for concurrent use.
package equil
