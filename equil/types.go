package equil

import "fmt"

// ElementType tags how a constraint row must be balanced.
type ElementType int

const (
	// ElementNormal is an ordinary element balance; species may in principle
	// carry negative amounts of it (e.g. a component made of other elements).
	ElementNormal ElementType = iota
	// ElementAbsPos is an element no species can hold a negative amount of,
	// which bounds every contributing species from above.
	ElementAbsPos
	// ElementChargeNeutrality is a charge balance whose target is always zero.
	ElementChargeNeutrality
	// ElementElectronCharge is a phase electron-charge balance.
	ElementElectronCharge
)

var elementTypeNames = [...]string{
	ElementNormal:           "normal",
	ElementAbsPos:           "abs-pos",
	ElementChargeNeutrality: "charge-neutrality",
	ElementElectronCharge:   "electron-charge",
}

// String implements fmt.Stringer.
func (t ElementType) String() string {
	if t < 0 || int(t) >= len(elementTypeNames) {
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
	return elementTypeNames[t]
}

// ParseElementType is the inverse of ElementType.String.
func ParseElementType(s string) (ElementType, error) {
	for i, name := range elementTypeNames {
		if name == s {
			return ElementType(i), nil
		}
	}
	return 0, fmt.Errorf("element type %q: %w", s, ErrUnknownType)
}

// SpeciesType tags what a species unknown represents.
type SpeciesType int

const (
	// SpeciesMoleNumber is an ordinary mole-number unknown.
	SpeciesMoleNumber SpeciesType = iota
	// SpeciesInterfacialVoltage is a voltage unknown; it never contributes
	// to an abundance sum.
	SpeciesInterfacialVoltage
)

var speciesTypeNames = [...]string{
	SpeciesMoleNumber:         "mole-number",
	SpeciesInterfacialVoltage: "interfacial-voltage",
}

// String implements fmt.Stringer.
func (t SpeciesType) String() string {
	if t < 0 || int(t) >= len(speciesTypeNames) {
		return fmt.Sprintf("SpeciesType(%d)", int(t))
	}
	return speciesTypeNames[t]
}

// ParseSpeciesType is the inverse of SpeciesType.String.
func ParseSpeciesType(s string) (SpeciesType, error) {
	for i, name := range speciesTypeNames {
		if name == s {
			return SpeciesType(i), nil
		}
	}
	return 0, fmt.Errorf("species type %q: %w", s, ErrUnknownType)
}

// SpeciesStatus records whether a species takes part in the solution.
type SpeciesStatus int

const (
	// StatusActive is a live species.
	StatusActive SpeciesStatus = iota
	// StatusZeroedSS is a species of a single-species phase driven to zero.
	StatusZeroedSS
	// StatusZeroedMS is a species of a multi-species phase driven to zero.
	StatusZeroedMS
	// StatusDeleted is a species removed from the active set; deleted
	// species always occupy the trailing positions.
	StatusDeleted
)

var speciesStatusNames = [...]string{
	StatusActive:   "active",
	StatusZeroedSS: "zeroed-ss",
	StatusZeroedMS: "zeroed-ms",
	StatusDeleted:  "deleted",
}

// String implements fmt.Stringer.
func (s SpeciesStatus) String() string {
	if s < 0 || int(s) >= len(speciesStatusNames) {
		return fmt.Sprintf("SpeciesStatus(%d)", int(s))
	}
	return speciesStatusNames[s]
}

// ParseSpeciesStatus is the inverse of SpeciesStatus.String.
func ParseSpeciesStatus(s string) (SpeciesStatus, error) {
	for i, name := range speciesStatusNames {
		if name == s {
			return SpeciesStatus(i), nil
		}
	}
	return 0, fmt.Errorf("species status %q: %w", s, ErrUnknownType)
}

// Scope selects which constraints the Checker inspects.
type Scope int

const (
	// ScopeComponents checks the first NumComponents constraints.
	ScopeComponents Scope = iota
	// ScopeAll checks every constraint.
	ScopeAll
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopeComponents:
		return "components"
	case ScopeAll:
		return "all"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope is the inverse of Scope.String.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "components":
		return ScopeComponents, nil
	case "all":
		return ScopeAll, nil
	}
	return 0, fmt.Errorf("scope %q: %w", s, ErrUnknownType)
}

// Constraint is one element or charge balance. All constraint-indexed
// state lives in this record so a position switch moves it as a unit.
type Constraint struct {
	Name        string
	Target      float64 // required abundance, fixed for the problem
	Abundance   float64 // current abundance, recomputed by EvaluateAbundances
	Type        ElementType
	Active      bool // inactive constraints are never chosen as independent
	Independent bool // set by RearrangeConstraints for the first NumComponents rows
}

// Species is the metadata of one unknown. Mole numbers live in Problem.Moles.
type Species struct {
	Name   string
	Type   SpeciesType
	Phase  int // index into the problem's phases
	Status SpeciesStatus
}

// Phase groups species and maps its local constraint indices to global
// constraint positions.
type Phase struct {
	Name string
	// SingleSpecies is true for a pure phase holding exactly one species.
	SingleSpecies bool
	// ElementGlobalIndex[e] is the global constraint position of local constraint e.
	ElementGlobalIndex []int
	// TotalMoles is the sum of mole numbers of the phase's non-voltage species,
	// as of the last UpdatePhaseTotals.
	TotalMoles float64
}

// SwapConstraints implements ConstraintObserver: every local entry pointing
// at position i now points at j and vice versa.
func (ph *Phase) SwapConstraints(i, j int) {
	for e, g := range ph.ElementGlobalIndex {
		switch g {
		case i:
			ph.ElementGlobalIndex[e] = j
		case j:
			ph.ElementGlobalIndex[e] = i
		}
	}
}

// ConstraintObserver is a collaborator holding global constraint positions
// that must follow every SwitchConstraints.
type ConstraintObserver interface {
	SwapConstraints(i, j int)
}

// Definition is the input to NewProblem. Formula has one row per constraint
// and one column per species.
type Definition struct {
	Constraints []Constraint
	Species     []Species
	Phases      []PhaseDefinition
	Formula     [][]float64
	Moles       []float64
	// Components is the number of component species/constraints (C).
	Components int
}

// PhaseDefinition names a phase. Its constraint map and single-species flag
// are derived from the formula matrix and the species that reference it.
type PhaseDefinition struct {
	Name string
}
