package problemio

import (
	"fmt"

	"github.com/katalvlaran/vcs/equil"
)

// Definition converts the file into an equil.Definition.
//
// Errors:
//   - ErrUnknownName when a species names an undeclared phase or element.
//   - ErrDuplicateName when a name is declared twice.
//   - equil.ErrUnknownType for an unrecognised type or status string.
func (f *File) Definition() (equil.Definition, error) {
	var def equil.Definition
	def.Components = f.Components

	elemIdx := make(map[string]int, len(f.Elements))
	for i, e := range f.Elements {
		if _, dup := elemIdx[e.Name]; dup {
			return def, fmt.Errorf("element %q: %w", e.Name, ErrDuplicateName)
		}
		elemIdx[e.Name] = i

		c := equil.Constraint{Name: e.Name, Target: e.Target, Active: true}
		if e.Type != "" {
			t, err := equil.ParseElementType(e.Type)
			if err != nil {
				return def, fmt.Errorf("element %q: %w", e.Name, err)
			}
			c.Type = t
		}
		if e.Active != nil {
			c.Active = *e.Active
		}
		def.Constraints = append(def.Constraints, c)
	}

	phaseIdx := make(map[string]int, len(f.Phases))
	for i, ph := range f.Phases {
		if _, dup := phaseIdx[ph.Name]; dup {
			return def, fmt.Errorf("phase %q: %w", ph.Name, ErrDuplicateName)
		}
		phaseIdx[ph.Name] = i
		def.Phases = append(def.Phases, equil.PhaseDefinition{Name: ph.Name})
	}

	def.Formula = make([][]float64, len(f.Elements))
	for i := range def.Formula {
		def.Formula[i] = make([]float64, len(f.Species))
	}
	seen := make(map[string]bool, len(f.Species))
	for k, s := range f.Species {
		if seen[s.Name] {
			return def, fmt.Errorf("species %q: %w", s.Name, ErrDuplicateName)
		}
		seen[s.Name] = true

		ph, ok := phaseIdx[s.Phase]
		if !ok {
			return def, fmt.Errorf("species %q phase %q: %w", s.Name, s.Phase, ErrUnknownName)
		}
		sp := equil.Species{Name: s.Name, Phase: ph}
		if s.Type != "" {
			t, err := equil.ParseSpeciesType(s.Type)
			if err != nil {
				return def, fmt.Errorf("species %q: %w", s.Name, err)
			}
			sp.Type = t
		}
		if s.Status != "" {
			st, err := equil.ParseSpeciesStatus(s.Status)
			if err != nil {
				return def, fmt.Errorf("species %q: %w", s.Name, err)
			}
			sp.Status = st
		}
		for name, v := range s.Formula {
			i, ok := elemIdx[name]
			if !ok {
				return def, fmt.Errorf("species %q element %q: %w", s.Name, name, ErrUnknownName)
			}
			def.Formula[i][k] = v
		}
		def.Species = append(def.Species, sp)
		def.Moles = append(def.Moles, s.Moles)
	}

	return def, nil
}

// Build converts the file and constructs the Problem.
func (f *File) Build(opts ...equil.Option) (*equil.Problem, error) {
	def, err := f.Definition()
	if err != nil {
		return nil, fmt.Errorf("problemio: %w", err)
	}
	p, err := equil.NewProblem(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("problemio: %w", err)
	}
	return p, nil
}
