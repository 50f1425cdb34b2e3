package equil

import "errors"

// Sentinel errors. Operations wrap them as "<Op>: ...: %w"; callers match
// with errors.Is.
var (
	// ErrShape reports inconsistent sizes in a Definition or an argument.
	ErrShape = errors.New("equil: inconsistent shape")

	// ErrNonFinite reports a NaN or ±Inf in a target, coefficient or mole number.
	ErrNonFinite = errors.New("equil: non-finite value")

	// ErrNegativeMoles reports a negative mole number supplied from outside.
	ErrNegativeMoles = errors.New("equil: negative mole number")

	// ErrUnknownType reports an unrecognised type, status or scope name.
	ErrUnknownType = errors.New("equil: unknown type")

	// ErrConstraintIndex reports a constraint position out of range.
	ErrConstraintIndex = errors.New("equil: constraint index out of range")

	// ErrSpeciesIndex reports a species index out of range.
	ErrSpeciesIndex = errors.New("equil: species index out of range")

	// ErrPhaseIndex reports a phase index out of range.
	ErrPhaseIndex = errors.New("equil: phase index out of range")

	// ErrDeletedOrder reports a deleted species placed before an active one,
	// or among the components.
	ErrDeletedOrder = errors.New("equil: deleted species must trail the active set")

	// ErrChargeNeutralTarget reports a charge-neutrality constraint whose
	// target is not exactly zero. The problem is malformed.
	ErrChargeNeutralTarget = errors.New("equil: charge-neutrality target must be zero")

	// ErrInsufficientRank reports fewer linearly independent active
	// constraints than declared components. The problem is malformed.
	ErrInsufficientRank = errors.New("equil: fewer independent constraints than components")

	// ErrSingularCorrection reports a singular component system in the
	// damped linear correction.
	ErrSingularCorrection = errors.New("equil: singular component system")

	// ErrNotConditioned reports a correction attempted before the constraints
	// were rearranged (or after the active constraint set changed).
	ErrNotConditioned = errors.New("equil: constraints not rearranged")
)
